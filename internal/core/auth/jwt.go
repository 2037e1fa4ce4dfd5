package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingBearer = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
)

// Claims uid 即社区用户 id；role 为 user / admin
type Claims struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTer HS256 签发与校验
type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

const leeway = time.Minute

func (j *JWTer) Issue(uid, role string) (string, error) {
	if uid == "" {
		return "", errors.New("issue token: empty uid")
	}
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UID:  uid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}).SignedString(j.Secret)
}

func (j *JWTer) keyFunc(t *jwt.Token) (any, error) {
	if t.Method != jwt.SigningMethodHS256 {
		return nil, fmt.Errorf("unexpected alg %v", t.Header["alg"])
	}
	return j.Secret, nil
}

// Parse 过期返回 ErrTokenExpired，其余失败一律 ErrInvalidToken
func (j *JWTer) Parse(raw string) (*Claims, error) {
	var c Claims
	t, err := jwt.ParseWithClaims(raw, &c, j.keyFunc, jwt.WithIssuer(j.Issuer), jwt.WithLeeway(leeway))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case !t.Valid || c.UID == "":
		return nil, ErrInvalidToken
	}
	return &c, nil
}

// ParseHeader 解析 "Authorization: Bearer xxx"，scheme 不区分大小写
func (j *JWTer) ParseHeader(header string) (*Claims, error) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
		return nil, ErrMissingBearer
	}
	return j.Parse(strings.TrimSpace(tok))
}
