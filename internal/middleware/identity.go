// Package middleware provides HTTP middlewares for session identity,
// role checks, request logging and request hardening.
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"go.uber.org/zap"

	"github.com/atinyakov/stoneworks/internal/models"
	"github.com/atinyakov/stoneworks/internal/repository"
	"github.com/atinyakov/stoneworks/internal/server/response"
	"github.com/atinyakov/stoneworks/internal/session"
)

type ctxKey string

const userKey ctxKey = "user"

// UserGetter loads a user by id. It returns (nil, nil) when none matches.
type UserGetter interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// LoadUser resolves the session's user id into a user and stores it in the
// request context. A session pointing at a user that no longer exists is
// destroyed and the request continues anonymously. sm.LoadAndSave must run
// before this middleware.
func LoadUser(sm *scs.SessionManager, users UserGetter, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sm.GetString(r.Context(), session.KeyUserID)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUser(r.Context(), id)
			if err != nil {
				log.Error("failed to load session user", zap.String("user_id", id), zap.Error(err))
				if errors.Is(err, repository.ErrUnavailable) {
					response.Error(w, http.StatusServiceUnavailable, response.CodeUnavailable, "storage unavailable", nil)
					return
				}
				response.Error(w, http.StatusInternalServerError, response.CodeInternal, "internal error", nil)
				return
			}
			if user == nil {
				if err := sm.Destroy(r.Context()); err != nil {
					log.Warn("failed to destroy stale session", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the signed-in user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}
