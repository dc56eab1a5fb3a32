package api

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/tripfolio/tripfolio-api/internal/service"

	"github.com/gorilla/mux"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	usernameKey  contextKey = "username"
	sessionIDKey contextKey = "sessionID"
)

// AuthMiddleware validates the Bearer token and resolves the caller
// identity into the request context
func AuthMiddleware(authSvc service.AuthInterface) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, "invalid Authorization header, expected Bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := authSvc.ValidateToken(r.Context(), parts[1])
			if err != nil {
				log.Printf("Token rejected for %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, usernameKey, claims.Username)
			ctx = context.WithValue(ctx, sessionIDKey, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id, 0 if absent
func UserIDFromContext(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

// SessionIDFromContext returns the session id behind the current token
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}
