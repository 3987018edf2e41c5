package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"go.uber.org/zap"

	"github.com/atinyakov/stoneworks/internal/middleware"
	"github.com/atinyakov/stoneworks/internal/models"
	"github.com/atinyakov/stoneworks/internal/server/response"
	"github.com/atinyakov/stoneworks/internal/service"
	"github.com/atinyakov/stoneworks/internal/session"
)

// AuthService defines the account operations required by the HTTP handlers.
type AuthService interface {
	// Authenticate returns the matching user or service.ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	// UpdateProfile changes username and/or password of user id.
	UpdateProfile(ctx context.Context, id string, p models.ProfileUpdate) (*models.User, bool, error)
}

// LoginRecorder counts login outcomes.
type LoginRecorder interface {
	LoginAttempt(result string)
}

// AuthHandler handles sign-in, sign-out and profile requests.
type AuthHandler struct {
	AuthService AuthService
	Sessions    *scs.SessionManager
	Metrics     LoginRecorder
	Log         *zap.Logger
}

func (h *AuthHandler) record(result string) {
	if h.Metrics != nil {
		h.Metrics.LoginAttempt(result)
	}
}

// Login verifies the credentials and binds the user to a fresh session
// token. Wrong credentials answer 401 without saying which part was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds, err := decode[models.Credentials](w, r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	user, err := h.AuthService.Authenticate(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.record("invalid")
		h.Log.Info("login rejected", zap.String("username", creds.Username))
		response.Error(w, http.StatusUnauthorized, response.CodeUnauthenticated, "invalid username or password", nil)
		return
	}
	if err != nil {
		h.record("error")
		writeError(w, r, h.Log, err)
		return
	}

	if err := h.Sessions.RenewToken(r.Context()); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	h.Sessions.Put(r.Context(), session.KeyUserID, user.ID)
	h.record("success")

	response.JSON(w, http.StatusOK, user)
}

// Logout ends the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Destroy(r.Context()); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUser returns the signed-in user, or 401.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		response.Error(w, http.StatusUnauthorized, response.CodeUnauthenticated, "authentication required", nil)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

// UpdateProfile changes the caller's username and/or password. When
// credentials change the session is destroyed and the caller must sign in
// again; the response still carries the updated user.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		response.Error(w, http.StatusUnauthorized, response.CodeUnauthenticated, "authentication required", nil)
		return
	}

	upd, err := decode[models.ProfileUpdate](w, r)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	updated, changed, err := h.AuthService.UpdateProfile(r.Context(), user.ID, upd)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}

	if changed {
		if err := h.Sessions.Destroy(r.Context()); err != nil {
			writeError(w, r, h.Log, err)
			return
		}
		h.Log.Info("credentials changed, session ended", zap.String("user_id", user.ID))
	}
	response.JSON(w, http.StatusOK, updated)
}
