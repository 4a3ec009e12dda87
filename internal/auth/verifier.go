// Package auth 校验身份服务签发的玩家令牌（HS256 JWT）。
// sub 为玩家 id，name 为显示名。
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Uwaniumnya/crystal-social/internal/apperrors"
)

// Claims 校验通过的身份
type Claims struct {
	PlayerID  string
	Name      string
	ExpiresAt time.Time
}

// identityClaims JWT 解析用的内部结构
type identityClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Verifier 令牌校验器。secret 为空时不启用。
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier 创建校验器
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(strings.TrimSpace(secret)),
		issuer: strings.TrimSpace(issuer),
		now:    time.Now,
	}
}

// Enabled 是否要求令牌
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify 校验令牌并返回身份
func (v *Verifier) Verify(token string) (Claims, error) {
	if !v.Enabled() {
		return Claims{}, errors.New("identity verifier is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "identity token is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var parsed identityClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if strings.TrimSpace(parsed.Subject) == "" {
		return Claims{}, apperrors.Wrapf(apperrors.ErrInvalidToken, "identity token has no subject")
	}
	return Claims{
		PlayerID:  parsed.Subject,
		Name:      strings.TrimSpace(parsed.Name),
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}

// Issue 签发令牌（供探测客户端与测试使用）
func (v *Verifier) Issue(playerID, name string, ttl time.Duration) (string, error) {
	if !v.Enabled() {
		return "", errors.New("identity verifier is not configured")
	}
	now := v.now()
	claims := identityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   playerID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name: name,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.Wrapf(apperrors.ErrInvalidToken, "identity token is expired")
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return apperrors.Wrapf(apperrors.ErrInvalidToken, "identity token issuer mismatch")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.Wrapf(apperrors.ErrInvalidToken, "identity token signature is invalid")
	default:
		return apperrors.Wrapf(apperrors.ErrInvalidToken, "identity token is invalid")
	}
}
