// Package repository provides the storage abstraction used by the HTTP
// layer and its two implementations: an in-process MemoryStorage and a
// PostgreSQL-backed PostgresStorage. Both behave identically from the
// caller's point of view.
package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/atinyakov/stoneworks/internal/models"
)

var (
	// ErrNotFound is returned when an update targets an unknown id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write would break a uniqueness rule.
	ErrConflict = errors.New("record already exists")
	// ErrUnavailable is returned when the backend cannot be reached.
	ErrUnavailable = errors.New("storage unavailable")
	// ErrInvalidTransition is returned when an enquiry status would move backwards.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Users persists accounts. Lookups return (nil, nil) when nothing matches.
type Users interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, in models.UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
}

// Granites persists the granite catalog, listed by ascending order.
type Granites interface {
	ListGranites(ctx context.Context) ([]models.Granite, error)
	CreateGranite(ctx context.Context, in models.CatalogInput) (*models.Granite, error)
	UpdateGranite(ctx context.Context, id string, upd models.CatalogUpdate) (*models.Granite, error)
	DeleteGranite(ctx context.Context, id string) error
}

// Tiles persists the tile catalog, listed by ascending order.
type Tiles interface {
	ListTiles(ctx context.Context) ([]models.Tile, error)
	CreateTile(ctx context.Context, in models.CatalogInput) (*models.Tile, error)
	UpdateTile(ctx context.Context, id string, upd models.CatalogUpdate) (*models.Tile, error)
	DeleteTile(ctx context.Context, id string) error
}

// Enquiries persists sales enquiries, listed newest first.
type Enquiries interface {
	ListEnquiries(ctx context.Context) ([]models.Enquiry, error)
	CreateEnquiry(ctx context.Context, in models.EnquiryInput) (*models.Enquiry, error)
	UpdateEnquiryStatus(ctx context.Context, id string, status models.EnquiryStatus) (*models.Enquiry, error)
	DeleteEnquiry(ctx context.Context, id string) error
}

// SliderImages persists before/after pairs, listed by ascending order.
type SliderImages interface {
	ListSliderImages(ctx context.Context) ([]models.SliderImage, error)
	CreateSliderImage(ctx context.Context, in models.SliderImageInput) (*models.SliderImage, error)
	UpdateSliderImage(ctx context.Context, id string, upd models.SliderImageUpdate) (*models.SliderImage, error)
	DeleteSliderImage(ctx context.Context, id string) error
}

// MapLocations persists map markers. List order is not part of the contract.
type MapLocations interface {
	ListMapLocations(ctx context.Context) ([]models.MapLocation, error)
	CreateMapLocation(ctx context.Context, in models.MapLocationInput) (*models.MapLocation, error)
	UpdateMapLocation(ctx context.Context, id string, upd models.MapLocationUpdate) (*models.MapLocation, error)
	DeleteMapLocation(ctx context.Context, id string) error
}

// SiteContents persists editable content blocks addressed by key.
type SiteContents interface {
	GetSiteContent(ctx context.Context, key string) (*models.SiteContent, error)
	CreateSiteContent(ctx context.Context, key string, content json.RawMessage) (*models.SiteContent, error)
	UpsertSiteContent(ctx context.Context, key string, content json.RawMessage) (*models.SiteContent, error)
}

// Storage is the full set of entity families plus lifecycle hooks.
type Storage interface {
	Users
	Granites
	Tiles
	Enquiries
	SliderImages
	MapLocations
	SiteContents

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}
