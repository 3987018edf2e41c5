// Package session configures the cookie-based session manager.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// KeyUserID is the session key holding the signed-in user's id.
const KeyUserID = "user_id"

// DefaultLifetime applies when no lifetime is configured.
const DefaultLifetime = 24 * time.Hour

// NewStore returns a Postgres-backed store when db is set and an in-memory
// store otherwise. The Postgres store does not run its own cleanup;
// db.StartSessionCleaner does that.
func NewStore(db *sql.DB) scs.Store {
	if db == nil {
		return memstore.New()
	}
	return postgresstore.NewWithCleanupInterval(db, 0)
}

// New creates a session manager on store. Cookies are marked Secure
// outside development.
func New(store scs.Store, lifetime time.Duration, isDev bool) *scs.SessionManager {
	if lifetime <= 0 {
		lifetime = DefaultLifetime
	}

	sm := scs.New()
	sm.Store = store
	sm.Lifetime = lifetime
	sm.Cookie.Name = "stoneworks_session"
	sm.Cookie.Path = "/"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev

	return sm
}
