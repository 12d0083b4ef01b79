package middleware

import (
	"context"
	"net/http"
	"strings"

	"kpidash/internal/domain/auth"
	"kpidash/internal/requestctx"
)

// Auth attaches the bearer token's user to the request context. Requests
// without a valid token pass through anonymously; RequirePermission rejects
// them where it matters.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := requestctx.WithUser(r.Context(), auth.UserContext{
				UserID:    claims.UserID,
				ProfileID: claims.ProfileID,
				Role:      claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	return requestctx.GetUser(ctx)
}
