package main

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// requireToken guards a handler with HS256 bearer-token validation. An
// empty secret disables auth, for development and trusted networks.
func requireToken(secret string, logger *zap.Logger, next http.Handler) http.Handler {
	if secret == "" {
		return next
	}
	key := []byte(secret)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" || raw == r.Header.Get("Authorization") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			logger.Warn("rejected token", zap.Error(err))
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
