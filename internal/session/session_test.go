package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/v2/memstore"
)

func TestNew_DevMode(t *testing.T) {
	sm := New(memstore.New(), 0, true)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Lifetime != DefaultLifetime {
		t.Errorf("Lifetime = %v, want %v", sm.Lifetime, DefaultLifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", sm.Cookie.SameSite)
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(memstore.New(), 2*time.Hour, false)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Lifetime != 2*time.Hour {
		t.Errorf("Lifetime = %v, want 2h", sm.Lifetime)
	}
}

func TestNewStore(t *testing.T) {
	if _, ok := NewStore(nil).(*memstore.MemStore); !ok {
		t.Error("expected memstore without a database")
	}

	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()

	if _, ok := NewStore(db).(*postgresstore.PostgresStore); !ok {
		t.Error("expected postgresstore with a database")
	}
}
