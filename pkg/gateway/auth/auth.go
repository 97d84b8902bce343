package auth

import (
	"context"
	"net/http"
	"strings"
)

// Principal identifies an authenticated caller for the rest of the request.
type Principal struct {
	APIKey string
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(*Principal)
	return p, ok && p != nil
}

// KeyFrom extracts the caller's API key from the Authorization bearer header
// or, failing that, the X-Api-Key header. Browser clients of the coaching app
// send the latter, mirroring the header style of the voice provider.
func KeyFrom(r *http.Request) (string, bool) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if strings.HasPrefix(authz, prefix) {
		if key := strings.TrimSpace(strings.TrimPrefix(authz, prefix)); key != "" {
			return key, true
		}
	}
	if key := strings.TrimSpace(r.Header.Get("X-Api-Key")); key != "" {
		return key, true
	}
	return "", false
}
