package auth

import (
	"fmt"
	"net/http"
	"strings"

	apperr "rentacar/internal/errors"

	"github.com/golang-jwt/jwt/v5"
)

// AdminAuthMiddleware verifies the bearer token minted by the admin login
// endpoint against the configured signing secret.
func AdminAuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if secret == "" || !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, apperr.ErrUnauthorized.Message, apperr.ErrUnauthorized.Code)
}
