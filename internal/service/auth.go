package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"silsilah_go/internal/family"
)

// Claims 访问令牌声明
type Claims struct {
	UserID  string   `json:"user_id"`
	BaniIDs []string `json:"bani_ids,omitempty"` // 可查看完整资料的家族，为空表示全部
	jwt.RegisteredClaims
}

// Viewer 当前访问者
type Viewer struct {
	UserID  string
	Member  bool
	baniIDs []string
}

// Anonymous 未登录访问者
var Anonymous = Viewer{}

// CanSeeMembers 是否可以查看该家族成员的完整资料
func (v Viewer) CanSeeMembers(baniID string) bool {
	if !v.Member {
		return false
	}
	if len(v.baniIDs) == 0 {
		return true
	}
	for _, id := range v.baniIDs {
		if id == baniID {
			return true
		}
	}
	return false
}

// Projection 按访问者身份选择展示投影
func (v Viewer) Projection(baniID string) family.Projection {
	if v.CanSeeMembers(baniID) {
		return family.MemberProjection
	}
	return family.PublicProjection
}

// Auth 令牌服务
type Auth struct {
	secret []byte
	now    func() time.Time
}

// NewAuth 创建令牌服务实例
func NewAuth(config AuthConfig) *Auth {
	return &Auth{secret: []byte(config.JWTSecret), now: time.Now}
}

// Enabled 是否配置了密钥
func (a *Auth) Enabled() bool {
	return len(a.secret) > 0
}

// GenerateToken 生成令牌
func (a *Auth) GenerateToken(userID string, baniIDs []string, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", NewError(ErrConfig, "jwt secret is not configured", nil)
	}
	now := a.now()
	claims := Claims{
		UserID:  userID,
		BaniIDs: baniIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken 验证令牌并返回访问者
func (a *Auth) ValidateToken(tokenString string) (Viewer, error) {
	if !a.Enabled() {
		return Anonymous, NewError(ErrAuthentication, "token authentication is disabled", nil)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return Anonymous, NewError(ErrAuthentication, "invalid token", err)
	}
	if !token.Valid || claims.UserID == "" {
		return Anonymous, NewError(ErrAuthentication, "invalid token", errors.New("missing user id"))
	}

	return Viewer{UserID: claims.UserID, Member: true, baniIDs: claims.BaniIDs}, nil
}
