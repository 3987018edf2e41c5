package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/atinyakov/stoneworks/internal/auth"
	"github.com/atinyakov/stoneworks/internal/models"
	"github.com/atinyakov/stoneworks/internal/repository"
)

type mockUserRepo struct {
	GetUserByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	CreateUserFunc        func(ctx context.Context, in models.UserInput) (*models.User, error)
	UpdateUserFunc        func(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.GetUserByUsernameFunc(ctx, username)
}
func (m *mockUserRepo) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	return m.CreateUserFunc(ctx, in)
}
func (m *mockUserRepo) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	return m.UpdateUserFunc(ctx, id, upd)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	return h
}

func TestAuthenticate(t *testing.T) {
	stored := &models.User{ID: "u1", Username: "Admin", PasswordHash: hashed(t, "Admin"), Role: models.RoleAdmin}
	repo := &mockUserRepo{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			if username == "Admin" {
				return stored, nil
			}
			return nil, nil
		},
	}
	svc := NewAuthService(repo)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "Admin", "Admin", nil},
		{"wrong password", "Admin", "admin", ErrInvalidCredentials},
		{"unknown user", "ghost", "Admin", ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Authenticate(context.Background(), tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate error = %v; want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && u.ID != "u1" {
				t.Errorf("Authenticate returned %+v", u)
			}
		})
	}
}

func TestAuthenticate_RepoError(t *testing.T) {
	wantErr := errors.New("db error")
	svc := NewAuthService(&mockUserRepo{
		GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			return nil, wantErr
		},
	})

	if _, err := svc.Authenticate(context.Background(), "Admin", "Admin"); !errors.Is(err, wantErr) {
		t.Fatalf("Authenticate error = %v; want %v", err, wantErr)
	}
}

func TestUpdateProfile_HashesPassword(t *testing.T) {
	var got models.UserUpdate
	repo := &mockUserRepo{
		UpdateUserFunc: func(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
			got = upd
			return &models.User{ID: id, Username: "Admin", PasswordHash: *upd.PasswordHash}, nil
		},
	}
	svc := NewAuthService(repo)

	password := "n3w-pass"
	u, changed, err := svc.UpdateProfile(context.Background(), "u1", models.ProfileUpdate{Password: &password})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if !changed {
		t.Error("password change must report credentialsChanged")
	}
	if got.Username != nil || got.PasswordHash == nil {
		t.Fatalf("unexpected update: %+v", got)
	}
	if *got.PasswordHash == password {
		t.Fatal("password stored in plaintext")
	}
	ok, err := auth.CheckPassword(password, u.PasswordHash)
	if err != nil || !ok {
		t.Errorf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestUpdateProfile_Conflict(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{
		UpdateUserFunc: func(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
			return nil, fmt.Errorf("username: %w", repository.ErrConflict)
		},
	})

	name := "taken"
	_, changed, err := svc.UpdateProfile(context.Background(), "u1", models.ProfileUpdate{Username: &name})
	if !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("UpdateProfile error = %v; want ErrConflict", err)
	}
	if changed {
		t.Error("failed update must not report credentialsChanged")
	}
}

func TestSeed(t *testing.T) {
	t.Run("creates admin", func(t *testing.T) {
		var created models.UserInput
		svc := NewAuthService(&mockUserRepo{
			GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) { return nil, nil },
			CreateUserFunc: func(ctx context.Context, in models.UserInput) (*models.User, error) {
				created = in
				return &models.User{ID: "u1", Username: in.Username, Role: in.Role}, nil
			},
		})

		ok, err := svc.Seed(context.Background(), "Admin", "Admin")
		if err != nil || !ok {
			t.Fatalf("Seed = %v, %v; want true, nil", ok, err)
		}
		if created.Role != models.RoleAdmin || created.PasswordHash == "Admin" {
			t.Errorf("unexpected seeded user: %+v", created)
		}
	})

	t.Run("existing user untouched", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepo{
			GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
				return &models.User{ID: "u1", Username: username}, nil
			},
			CreateUserFunc: func(ctx context.Context, in models.UserInput) (*models.User, error) {
				t.Fatal("CreateUser must not be called")
				return nil, nil
			},
		})

		ok, err := svc.Seed(context.Background(), "Admin", "Admin")
		if err != nil || ok {
			t.Fatalf("Seed = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("lost race", func(t *testing.T) {
		svc := NewAuthService(&mockUserRepo{
			GetUserByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) { return nil, nil },
			CreateUserFunc: func(ctx context.Context, in models.UserInput) (*models.User, error) {
				return nil, repository.ErrConflict
			},
		})

		ok, err := svc.Seed(context.Background(), "Admin", "Admin")
		if err != nil || ok {
			t.Fatalf("Seed = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("against memory storage", func(t *testing.T) {
		store := repository.NewMemoryStorage()
		svc := NewAuthService(store)
		for i := 0; i < 2; i++ {
			if _, err := svc.Seed(context.Background(), "Admin", "Admin"); err != nil {
				t.Fatalf("Seed #%d error: %v", i, err)
			}
		}
		u, err := svc.Authenticate(context.Background(), "Admin", "Admin")
		if err != nil || u.Role != models.RoleAdmin {
			t.Fatalf("Authenticate after seed = %+v, %v", u, err)
		}
	})
}
