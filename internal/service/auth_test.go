package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"silsilah_go/internal/family"
)

func TestAuth_RoundTrip(t *testing.T) {
	auth := NewAuth(AuthConfig{JWTSecret: "secret"})

	token, err := auth.GenerateToken("u1", []string{"b1"}, time.Hour)
	require.NoError(t, err)

	viewer, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", viewer.UserID)
	assert.True(t, viewer.CanSeeMembers("b1"))
	assert.False(t, viewer.CanSeeMembers("b2"))
}

func TestAuth_Rejects(t *testing.T) {
	auth := NewAuth(AuthConfig{JWTSecret: "secret"})
	other := NewAuth(AuthConfig{JWTSecret: "other"})

	token, err := other.GenerateToken("u1", nil, time.Hour)
	require.NoError(t, err)
	_, err = auth.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, ErrAuthentication, CodeOf(err))

	expired, err := auth.GenerateToken("u1", nil, -time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateToken(expired)
	assert.Equal(t, ErrAuthentication, CodeOf(err))

	_, err = auth.ValidateToken("not-a-token")
	assert.Equal(t, ErrAuthentication, CodeOf(err))
}

func TestAuth_Disabled(t *testing.T) {
	auth := NewAuth(AuthConfig{})
	assert.False(t, auth.Enabled())

	_, err := auth.GenerateToken("u1", nil, time.Hour)
	assert.Equal(t, ErrConfig, CodeOf(err))
	_, err = auth.ValidateToken("x")
	assert.Equal(t, ErrAuthentication, CodeOf(err))
}

func TestViewer_Projection(t *testing.T) {
	p := &family.Person{ID: "p", Name: "Ani", Alive: true, Phone: "0812", City: "Bandung"}

	assert.Equal(t, "0812", Viewer{UserID: "u", Member: true}.Projection("b1")(p).Phone)
	assert.Empty(t, Anonymous.Projection("b1")(p).Phone)
	assert.Empty(t, Viewer{UserID: "u", Member: true, baniIDs: []string{"b2"}}.Projection("b1")(p).City)
}
