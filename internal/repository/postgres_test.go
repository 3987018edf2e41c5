package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/atinyakov/stoneworks/internal/models"
)

func setupMock(t *testing.T) (*PostgresStorage, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	storage := NewPostgresStorage(db)
	cleanup := func() { db.Close() }
	return storage, mock, cleanup
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestGetUserByUsername_Found(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, password, role FROM users WHERE username = $1`)).
		WithArgs("Admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "role"}).
			AddRow("u1", "Admin", "hash", "admin"))

	u, err := storage.GetUserByUsername(context.Background(), "Admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil || u.ID != "u1" || u.Role != models.RoleAdmin || u.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", u)
	}
	expectationsMet(t, mock)
}

func TestGetUser_NotFound(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, password, role FROM users WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	u, err := storage.GetUser(context.Background(), "missing")
	if err != nil || u != nil {
		t.Errorf("GetUser() = %v, %v; want nil, nil", u, err)
	}
	expectationsMet(t, mock)
}

func TestCreateUser_Conflict(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (id, username, password, role) VALUES ($1, $2, $3, $4)`)).
		WithArgs(sqlmock.AnyArg(), "Admin", "hash", "public").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := storage.CreateUser(context.Background(), models.UserInput{Username: "Admin", PasswordHash: "hash"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestUpdateUser_PartialFields(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET username = COALESCE($2, username)`)).
		WithArgs("u1", nil, "newhash", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "role"}).
			AddRow("u1", "Admin", "newhash", "admin"))

	hash := "newhash"
	u, err := storage.UpdateUser(context.Background(), "u1", models.UserUpdate{PasswordHash: &hash})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "Admin" || u.PasswordHash != "newhash" {
		t.Errorf("unexpected user: %+v", u)
	}
	expectationsMet(t, mock)
}

func TestListGranites_Ordered(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, image, sort_order, created_at FROM granites ORDER BY sort_order, seq`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image", "sort_order", "created_at"}).
			AddRow("g1", "Absolute Black", "a.jpg", 1, created).
			AddRow("g2", "Kashmir White", "k.jpg", 2, created))

	list, err := storage.ListGranites(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "g1" || list[1].Order != 2 {
		t.Errorf("unexpected list: %+v", list)
	}
	expectationsMet(t, mock)
}

func TestListTiles_Empty(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM tiles ORDER BY sort_order, seq`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "image", "sort_order", "created_at"}))

	list, err := storage.ListTiles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", list)
	}
	expectationsMet(t, mock)
}

func TestCreateTile_DefaultOrder(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO tiles (id, name, image, sort_order, created_at) VALUES ($1, $2, $3, $4, $5)`)).
		WithArgs(sqlmock.AnyArg(), "Slate", "s.jpg", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tile, err := storage.CreateTile(context.Background(), models.CatalogInput{Name: "Slate", Image: "s.jpg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tile.ID == "" || tile.CreatedAt.IsZero() || tile.Order != 0 {
		t.Errorf("unexpected tile: %+v", tile)
	}
	expectationsMet(t, mock)
}

func TestUpdateGranite_NotFound(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	order := 7
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE granites SET name = COALESCE($2, name)`)).
		WithArgs("missing", nil, nil, 7).
		WillReturnError(sql.ErrNoRows)

	_, err := storage.UpdateGranite(context.Background(), "missing", models.CatalogUpdate{Order: &order})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestDeleteGranite_Idempotent(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM granites WHERE id = $1`)).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := storage.DeleteGranite(context.Background(), "gone"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestCreateEnquiry_StatusNew(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO enquiries (id, name, email, phone, message, status, created_at)`)).
		WithArgs(sqlmock.AnyArg(), "Ann", "ann@example.com", "123", "quote", "new", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e, err := storage.CreateEnquiry(context.Background(), models.EnquiryInput{
		Name: "Ann", Email: "ann@example.com", Phone: "123", Message: "quote",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != models.EnquiryNew {
		t.Errorf("expected status new, got %q", e.Status)
	}
	expectationsMet(t, mock)
}

func TestListEnquiries_NewestFirst(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	newer := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM enquiries ORDER BY created_at DESC, seq DESC`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "message", "status", "created_at"}).
			AddRow("e2", "B", "b@x.com", "2", "m", "new", newer).
			AddRow("e1", "A", "a@x.com", "1", "m", "contacted", older))

	list, err := storage.ListEnquiries(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "e2" || list[1].Status != models.EnquiryContacted {
		t.Errorf("unexpected list: %+v", list)
	}
	expectationsMet(t, mock)
}

func TestUpdateEnquiryStatus(t *testing.T) {
	updateSQL := regexp.QuoteMeta(`UPDATE enquiries SET status = $2 WHERE id = $1 AND (status = $2 OR status = 'new')`)
	existsSQL := regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM enquiries WHERE id = $1)`)
	columns := []string{"id", "name", "email", "phone", "message", "status", "created_at"}

	t.Run("forward", func(t *testing.T) {
		storage, mock, cleanup := setupMock(t)
		defer cleanup()

		mock.ExpectQuery(updateSQL).
			WithArgs("e1", "contacted").
			WillReturnRows(sqlmock.NewRows(columns).AddRow("e1", "A", "a@x.com", "1", "m", "contacted", time.Now()))

		e, err := storage.UpdateEnquiryStatus(context.Background(), "e1", models.EnquiryContacted)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if e.Status != models.EnquiryContacted {
			t.Errorf("expected contacted, got %q", e.Status)
		}
		expectationsMet(t, mock)
	})

	t.Run("backwards", func(t *testing.T) {
		storage, mock, cleanup := setupMock(t)
		defer cleanup()

		mock.ExpectQuery(updateSQL).WithArgs("e1", "new").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(existsSQL).WithArgs("e1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := storage.UpdateEnquiryStatus(context.Background(), "e1", models.EnquiryNew)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
		expectationsMet(t, mock)
	})

	t.Run("missing", func(t *testing.T) {
		storage, mock, cleanup := setupMock(t)
		defer cleanup()

		mock.ExpectQuery(updateSQL).WithArgs("nope", "contacted").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(existsSQL).WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := storage.UpdateEnquiryStatus(context.Background(), "nope", models.EnquiryContacted)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		expectationsMet(t, mock)
	})
}

func TestSliderImages(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO slider_images (id, before_image, after_image, sort_order) VALUES ($1, $2, $3, $4)`)).
		WithArgs(sqlmock.AnyArg(), "b.jpg", "a.jpg", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE slider_images SET before_image = COALESCE($2, before_image)`)).
		WithArgs("s1", nil, "a2.jpg", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "before_image", "after_image", "sort_order"}).
			AddRow("s1", "b.jpg", "a2.jpg", 3))

	order := 3
	img, err := storage.CreateSliderImage(context.Background(), models.SliderImageInput{
		BeforeImage: "b.jpg", AfterImage: "a.jpg", Order: &order,
	})
	if err != nil || img.Order != 3 {
		t.Fatalf("CreateSliderImage() = %+v, %v", img, err)
	}

	after := "a2.jpg"
	img, err = storage.UpdateSliderImage(context.Background(), "s1", models.SliderImageUpdate{AfterImage: &after})
	if err != nil || img.AfterImage != "a2.jpg" || img.BeforeImage != "b.jpg" {
		t.Fatalf("UpdateSliderImage() = %+v, %v", img, err)
	}
	expectationsMet(t, mock)
}

func TestMapLocations(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO map_locations (id, name, type, lat, lng, is_coming_soon)`)).
		WithArgs(sqlmock.AnyArg(), "Dubai", "international", "25.2048", "55.2708", false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, type, lat, lng, is_coming_soon FROM map_locations ORDER BY seq`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type", "lat", "lng", "is_coming_soon"}).
			AddRow("m1", "Dubai", "international", "25.2048", "55.2708", false))

	loc, err := storage.CreateMapLocation(context.Background(), models.MapLocationInput{
		Name: "Dubai", Type: models.LocationInternational, Lat: "25.2048", Lng: "55.2708",
	})
	if err != nil || loc.IsComingSoon {
		t.Fatalf("CreateMapLocation() = %+v, %v", loc, err)
	}

	list, err := storage.ListMapLocations(context.Background())
	if err != nil || len(list) != 1 || list[0].Lat != "25.2048" {
		t.Fatalf("ListMapLocations() = %+v, %v", list, err)
	}
	expectationsMet(t, mock)
}

func TestSiteContent(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, key, content FROM site_content WHERE key = $1`)).
		WithArgs("hero").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO site_content (id, key, content) VALUES ($1, $2, $3) RETURNING id, key, content`)).
		WithArgs(sqlmock.AnyArg(), "about", `{"b": 1,  "a": 2}`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "content"}).
			AddRow("c0", "about", []byte(`{"a": 2, "b": 1}`)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO site_content (id, key, content) VALUES ($1, $2, $3) RETURNING id, key, content`)).
		WithArgs(sqlmock.AnyArg(), "hero", `{"text":"Old"}`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectQuery(regexp.QuoteMeta(`ON CONFLICT (key) DO UPDATE SET content = EXCLUDED.content`)).
		WithArgs(sqlmock.AnyArg(), "hero", `{"text":"New"}`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "content"}).
			AddRow("c1", "hero", []byte(`{"text":"New"}`)))

	ctx := context.Background()
	got, err := storage.GetSiteContent(ctx, "hero")
	if err != nil || got != nil {
		t.Fatalf("GetSiteContent() = %v, %v; want nil, nil", got, err)
	}

	created, err := storage.CreateSiteContent(ctx, "about", json.RawMessage(`{"b": 1,  "a": 2}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "c0" || string(created.Content) != `{"a": 2, "b": 1}` {
		t.Errorf("CreateSiteContent() should return the stored form, got %+v", created)
	}

	if _, err := storage.CreateSiteContent(ctx, "hero", json.RawMessage(`{"text":"Old"}`)); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	c, err := storage.UpsertSiteContent(ctx, "hero", json.RawMessage(`{"text":"New"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.ID != "c1" || string(c.Content) != `{"text":"New"}` {
		t.Errorf("unexpected content: %+v", c)
	}
	expectationsMet(t, mock)
}

func TestPing_Unavailable(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	defer db.Close()

	mock.ExpectPing().WillReturnError(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")})

	if err := NewPostgresStorage(db).Ping(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505"}, ErrConflict},
		{"connection failure", &pq.Error{Code: "08006"}, ErrUnavailable},
		{"admin shutdown", &pq.Error{Code: "57P01"}, ErrUnavailable},
		{"bad conn", driver.ErrBadConn, ErrUnavailable},
		{"conn done", sql.ErrConnDone, ErrUnavailable},
		{"net error", &net.OpError{Op: "read", Err: errors.New("reset")}, ErrUnavailable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := mapError("op", c.err); !errors.Is(got, c.want) {
				t.Errorf("mapError(%v) = %v; want %v", c.err, got, c.want)
			}
		})
	}

	if mapError("op", nil) != nil {
		t.Error("mapError(nil) must be nil")
	}

	other := &pq.Error{Code: "42P01"}
	got := mapError("op", other)
	for _, sentinel := range []error{ErrNotFound, ErrConflict, ErrUnavailable} {
		if errors.Is(got, sentinel) {
			t.Errorf("mapError(%v) unexpectedly matched %v", other, sentinel)
		}
	}
	if !errors.Is(got, other) {
		t.Errorf("mapError must keep the driver error in the chain")
	}
}

func TestErrorsNameTheOperation(t *testing.T) {
	storage, mock, cleanup := setupMock(t)
	defer cleanup()

	boom := errors.New("boom")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM enquiries`)).WillReturnError(boom)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM granites`)).WillReturnError(boom)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM map_locations`)).WillReturnError(boom)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).WithArgs("u1").WillReturnError(boom)

	ctx := context.Background()
	_, errEnquiries := storage.ListEnquiries(ctx)
	_, errGranites := storage.ListGranites(ctx)
	_, errLocations := storage.ListMapLocations(ctx)
	_, errUser := storage.GetUser(ctx, "u1")

	for want, err := range map[string]error{
		"list enquiries: boom":     errEnquiries,
		"list granites: boom":      errGranites,
		"list map locations: boom": errLocations,
		"get user: boom":           errUser,
	} {
		if err == nil || err.Error() != want {
			t.Errorf("error = %v; want %q", err, want)
		}
	}
	expectationsMet(t, mock)
}
