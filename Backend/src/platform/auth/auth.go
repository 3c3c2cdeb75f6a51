// Package auth verifies bearer tokens and binds the caller's identity to the
// request context. Services read the identity from the context only; no
// handler passes a user id taken from the request body.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

type Principal struct {
	UserID string
	Admin  bool
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || strings.TrimSpace(p.UserID) == "" {
		return Principal{}, false
	}
	return p, true
}

// MustUser returns the caller's user id or an Unauthenticated error.
func MustUser(ctx context.Context) (string, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return "", fault.Unauthenticated("authentication required")
	}
	return p.UserID, nil
}

// Require rejects requests without a valid bearer token before they reach
// next. fail renders the error in the API's format.
func Require(v Verifier, fail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				fail(w, r, err)
				return
			}
			p, err := v.Verify(r.Context(), token)
			if err != nil {
				fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", fault.Unauthenticated("no auth token, access denied")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", fault.Unauthenticated("invalid authorization header format")
	}
	return parts[1], nil
}
