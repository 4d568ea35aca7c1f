package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Eih3/walking/internal/infrastructure/observability"
)

// AdminRole is the role claim required on admin routes.
const AdminRole = "admin"

// AdminClaims are the claims read from an admin bearer token.
type AdminClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

func (c *AdminClaims) hasRole(role string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// AdminAuthMiddleware requires an HS256 bearer token signed with secret,
// carrying a subject and the admin role. An empty secret rejects every
// request.
func AdminAuthMiddleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(key) == 0 {
				writeAuthError(w, http.StatusServiceUnavailable, "admin access is not configured")
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "no bearer token")
				return
			}

			claims := &AdminClaims{}
			token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(token *jwt.Token) (any, error) {
				if token.Method != jwt.SigningMethodHS256 {
					return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
				}
				return key, nil
			}, jwt.WithLeeway(30*time.Second))
			if err != nil || !token.Valid || claims.Subject == "" {
				observability.LoggerFromContext(r.Context()).Warn().Err(err).Msg("rejected admin token")
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if !claims.hasRole(AdminRole) {
				writeAuthError(w, http.StatusForbidden, "admin access only")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
