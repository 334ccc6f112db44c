package middleware

import (
	"context"
	"net/http"

	"github.com/bensuskins/habit-hub/internal/services"
)

type contextKey string

const AdminContextKey contextKey = "admin"

type SessionReader interface {
	GetSession(r *http.Request) (services.SessionData, error)
}

// RequireAdmin rejects requests without a valid admin session cookie.
func RequireAdmin(auth SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := auth.GetSession(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"admin session required"}` + "\n"))
				return
			}

			ctx := context.WithValue(r.Context(), AdminContextKey, session.Admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetAdmin(ctx context.Context) string {
	admin, _ := ctx.Value(AdminContextKey).(string)
	return admin
}
