package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

const defaultCacheSize = 1024

type verified struct {
	p   Principal
	exp time.Time
}

// JWTVerifier checks HS256 tokens carrying the user id in "id" or "sub".
// Verified tokens are remembered until they expire.
type JWTVerifier struct {
	secret []byte
	cache  *lru.Cache[string, verified]
	now    func() time.Time
}

func NewJWTVerifier(secret string, cacheSize int) (*JWTVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: JWT secret is empty")
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New[string, verified](cacheSize)
	if err != nil {
		return nil, err
	}
	return &JWTVerifier{secret: []byte(secret), cache: cache, now: time.Now}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (Principal, error) {
	if hit, ok := v.cache.Get(token); ok {
		if hit.exp.IsZero() || v.now().Before(hit.exp) {
			return hit.p, nil
		}
		v.cache.Remove(token)
	}

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return Principal{}, fault.Unauthenticated("token verification failed, access denied")
	}

	uid := claimString(claims, "id")
	if uid == "" {
		uid = claimString(claims, "sub")
	}
	if uid == "" {
		return Principal{}, fault.Unauthenticated("user id not found in token")
	}
	role := claimString(claims, "role")
	p := Principal{UserID: uid, Admin: role == "admin" || claimString(claims, "type") == "admin"}

	var exp time.Time
	if f, ok := claims["exp"].(float64); ok {
		exp = time.Unix(int64(f), 0)
	}
	v.cache.Add(token, verified{p: p, exp: exp})
	return p, nil
}

// Issue signs a token for userID. Login lives outside this service; Issue
// backs the CLI's dev tokens and the tests.
func Issue(secret, userID string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":  userID,
		"sub": userID,
		"iat": now.Unix(),
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	if admin {
		claims["role"] = "admin"
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func claimString(c jwt.MapClaims, k string) string {
	s, _ := c[k].(string)
	return strings.TrimSpace(s)
}
