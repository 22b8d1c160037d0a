package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"silsilah_go/internal/family"
	"silsilah_go/internal/middleware"
	"silsilah_go/internal/model"
	"silsilah_go/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memorySource struct {
	bani    model.Bani
	persons []family.Person
}

func (m *memorySource) GetBani(ctx context.Context, baniID string) (*model.Bani, error) {
	if baniID != m.bani.ID {
		return nil, gorm.ErrRecordNotFound
	}
	return &m.bani, nil
}

func (m *memorySource) ListByBani(ctx context.Context, baniID string) ([]family.Person, error) {
	return m.persons, nil
}

type fixture struct {
	router *gin.Engine
	auth   *service.Auth
}

func newFixture(t *testing.T, checks map[string]HealthCheck) *fixture {
	t.Helper()
	src := &memorySource{
		bani: model.Bani{ID: "b1", Name: "Bani Ahmad", IsPublic: true},
		persons: []family.Person{
			{ID: "r", Name: "Ahmad", Sex: family.SexMale, Generation: 0, Phone: "0811"},
			{ID: "a", Name: "Ani", Sex: family.SexFemale, Alive: true, Generation: 1, FatherID: "r"},
			{ID: "b", Name: "Budi", Sex: family.SexMale, Alive: true, Generation: 1, FatherID: "r"},
			{ID: "c", Name: "Cahya", Sex: family.SexMale, Alive: true, Generation: 2, FatherID: "b"},
		},
	}
	logger := zap.NewNop()
	auth := service.NewAuth(service.AuthConfig{JWTSecret: "secret"})
	trees := service.NewTreeService(src, service.NewMemoryViewStore(time.Hour),
		service.TreeConfig{Locale: "id", ExpandGeneration: 0, PageSize: 10, MaxPageSize: 100}, logger)

	router := NewRouter(RouterDeps{
		Trees:   NewTreeHandler(trees, service.NewErrorHandler(logger)),
		Auth:    auth,
		Limiter: service.NewRateLimiter(service.RateLimitConfig{Enabled: false}),
		Logger:  logger,
		Checks:  checks,
	})
	return &fixture{router: router, auth: auth}
}

func (f *fixture) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) memberHeaders(t *testing.T) map[string]string {
	token, err := f.auth.GenerateToken("u1", nil, time.Hour)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestTreeEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/bani/b1/tree", "", f.memberHeaders(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Bani service.BaniSummary `json:"bani"`
		Root struct {
			Person   family.PersonView `json:"person"`
			Children []struct {
				Person family.PersonView `json:"person"`
			} `json:"children"`
		} `json:"root"`
		Warnings []family.Warning `json:"warnings"`
	}
	decode(t, w, &result)
	assert.Equal(t, "Bani Ahmad", result.Bani.Name)
	assert.Equal(t, "r", result.Root.Person.ID)
	assert.Equal(t, "0811", result.Root.Person.Phone)
	require.Len(t, result.Root.Children, 2)
	assert.Equal(t, "Ani", result.Root.Children[0].Person.Name)
	assert.NotNil(t, result.Warnings)
}

func TestTreeEndpoint_PublicAndDepth(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/bani/b1/tree?depth=0", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result service.TreeResult
	decode(t, w, &result)
	assert.Empty(t, result.Root.Person.Phone)
	assert.Empty(t, result.Root.Children)
	assert.True(t, result.Root.HasMoreChildren)
}

func TestTreeEndpoint_Errors(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/bani/missing/tree", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"bani not found"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/bani/b1/tree?depth=-2", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/bani/b1/tree?depth=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerationEndpoints(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/bani/b1/generations", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ov service.Overview
	decode(t, w, &ov)
	assert.Equal(t, 2, ov.MaxGeneration)
	assert.Equal(t, []int{1, 2, 1}, ov.Counts)

	w = f.do(t, http.MethodGet, "/api/bani/b1/generations/1?size=1&page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page family.Page
	decode(t, w, &page)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].Person.ID)
	assert.Equal(t, 1, page.Items[0].ChildCount)

	w = f.do(t, http.MethodGet, "/api/bani/b1/generations/2?parent=b", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	assert.Equal(t, 1, page.Total)

	w = f.do(t, http.MethodGet, "/api/bani/b1/generations/x", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExpandEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	session := map[string]string{middleware.SessionHeader: "6f1c2a3e-0b7d-4c1e-9a55-2f0d4e6b8c11"}

	w := f.do(t, http.MethodGet, "/api/bani/b1/view/expand", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	var res service.ExpandResult
	decode(t, w, &res)
	assert.Equal(t, []string{"r"}, res.Expanded.IDs())
	assert.Len(t, res.Rows, 3)

	w = f.do(t, http.MethodPost, "/api/bani/b1/view/expand", `{"action":"toggle","id":"b"}`, session)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.True(t, res.Changed)
	assert.Len(t, res.Rows, 4)

	w = f.do(t, http.MethodPost, "/api/bani/b1/view/expand", `{"action":"expand_all"}`, session)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.Greater(t, len(res.Expanded.IDs()), 1)

	// 恢复到配置的默认展开代数
	w = f.do(t, http.MethodPost, "/api/bani/b1/view/expand", `{"action":"reset"}`, session)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.Equal(t, []string{"r"}, res.Expanded.IDs())

	w = f.do(t, http.MethodPost, "/api/bani/b1/view/expand", `{"action":"toggle"}`, session)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/bani/b1/view/expand", `{`, session)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/api/bani/b1/view", "", session)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/bani/b1/view/expand", "", session)
	decode(t, w, &res)
	assert.Equal(t, []string{"r"}, res.Expanded.IDs())
}

func TestDrillEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	session := map[string]string{middleware.SessionHeader: "0e8a1f52-7a3b-4f7e-8d0c-5b2e9c4a1d77"}

	w := f.do(t, http.MethodPost, "/api/bani/b1/view/drill", `{"action":"jump","generation":1}`, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/bani/b1/view/drill", `{"action":"drill","id":"b"}`, session)
	require.Equal(t, http.StatusOK, w.Code)
	var res service.DrillResult
	decode(t, w, &res)
	assert.Equal(t, family.DrillState{Generation: 2, ParentID: "b"}, res.State)
	require.Len(t, res.Members, 1)
	assert.Equal(t, "c", res.Members[0].Person.ID)
	require.Len(t, res.Breadcrumbs, 2)
	assert.Equal(t, "Ahmad", res.Breadcrumbs[0].Name)

	w = f.do(t, http.MethodGet, "/api/bani/b1/view/drill", "", session)
	decode(t, w, &res)
	assert.False(t, res.Changed)
	assert.Equal(t, 2, res.State.Generation)

	w = f.do(t, http.MethodPost, "/api/bani/b1/view/drill", `{"action":"sideways"}`, session)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, http.MethodGet, "/api/bani/b1/search?q=bud", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Results []struct {
			Person  family.PersonView `json:"person"`
			Lineage []family.Crumb    `json:"lineage"`
		} `json:"results"`
	}
	decode(t, w, &body)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "b", body.Results[0].Person.ID)
	assert.Len(t, body.Results[0].Lineage, 2)

	w = f.do(t, http.MethodGet, "/api/bani/b1/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
	})
	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","checks":{"database":"ok"}}`, w.Body.String())

	f = newFixture(t, map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return errors.New("down") },
	})
	w = f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	f.do(t, http.MethodGet, "/api/bani/b1/tree", "", nil)
	w = f.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "silsilah_tree_build_duration_seconds")
}
