package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/TinyGandalf/FullstackOpen-part4/internal/auth"
)

type contextKey string

const callerContextKey contextKey = "caller"

// CallerExtractor resolves the bearer token into a caller identity and
// stores it in the request context. It never rejects a request: a
// missing or unverifiable token just leaves the request anonymous.
func CallerExtractor(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := tokens.ResolveCaller(bearerToken(r))
			if ok {
				ctx := context.WithValue(r.Context(), callerContextKey, caller)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerFrom returns the caller stored by CallerExtractor, if any.
func CallerFrom(ctx context.Context) (auth.Caller, bool) {
	caller, ok := ctx.Value(callerContextKey).(auth.Caller)
	return caller, ok
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
