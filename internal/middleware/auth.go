package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/radif/blobprovider/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// SubjectKey is the context key for the authenticated caller's subject claim.
const SubjectKey contextKey = "subject"

// Subject returns the authenticated subject stored by RequireAuth.
func Subject(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(SubjectKey).(string)
	return sub, ok && sub != ""
}

// RequireAuth returns middleware that validates an HMAC-signed Bearer JWT
// and injects its subject into the request context.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "authorization header required")
				return
			}

			scheme, raw, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || raw == "" {
				response.Unauthorized(w, "invalid authorization header format")
				return
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
			if err != nil || !token.Valid {
				response.Unauthorized(w, "invalid or expired token")
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				response.Unauthorized(w, "token has no subject")
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
