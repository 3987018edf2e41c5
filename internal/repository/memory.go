package repository

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/atinyakov/stoneworks/internal/models"
)

// MemoryStorage keeps every collection in process memory. State is lost on
// restart. Each collection has its own lock.
type MemoryStorage struct {
	users        userTable
	granites     *collection[models.Granite]
	tiles        *collection[models.Tile]
	enquiries    *collection[models.Enquiry]
	sliderImages *collection[models.SliderImage]
	mapLocations *collection[models.MapLocation]
	content      contentTable
}

// userTable indexes users by id and by username.
type userTable struct {
	mu         sync.RWMutex
	byID       map[string]models.User
	byUsername map[string]string // username -> id
}

// contentTable indexes site content by key.
type contentTable struct {
	mu    sync.RWMutex
	byKey map[string]models.SiteContent
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users: userTable{
			byID:       make(map[string]models.User),
			byUsername: make(map[string]string),
		},
		granites:     newCollection[models.Granite](),
		tiles:        newCollection[models.Tile](),
		enquiries:    newCollection[models.Enquiry](),
		sliderImages: newCollection[models.SliderImage](),
		mapLocations: newCollection[models.MapLocation](),
		content:      contentTable{byKey: make(map[string]models.SiteContent)},
	}
}

// Ping always succeeds.
func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStorage) Close() error { return nil }

// GetUser returns the user with the given id, or nil.
func (m *MemoryStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	m.users.mu.RLock()
	defer m.users.mu.RUnlock()
	u, ok := m.users.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetUserByUsername returns the user with the given username, or nil.
func (m *MemoryStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.users.mu.RLock()
	defer m.users.mu.RUnlock()
	id, ok := m.users.byUsername[username]
	if !ok {
		return nil, nil
	}
	u := m.users.byID[id]
	return &u, nil
}

// CreateUser stores a new user. It fails with ErrConflict when the username is taken.
func (m *MemoryStorage) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	u := models.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		Role:         cmp.Or(in.Role, models.RolePublic),
	}

	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	if _, taken := m.users.byUsername[u.Username]; taken {
		return nil, fmt.Errorf("username %q: %w", u.Username, ErrConflict)
	}
	m.users.byID[u.ID] = u
	m.users.byUsername[u.Username] = u.ID
	return &u, nil
}

// UpdateUser merges upd onto the stored user.
func (m *MemoryStorage) UpdateUser(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	u, ok := m.users.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if upd.Username != nil && *upd.Username != u.Username {
		if _, taken := m.users.byUsername[*upd.Username]; taken {
			return nil, fmt.Errorf("username %q: %w", *upd.Username, ErrConflict)
		}
		delete(m.users.byUsername, u.Username)
		u.Username = *upd.Username
		m.users.byUsername[u.Username] = u.ID
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	m.users.byID[id] = u
	return &u, nil
}

// ListGranites returns granites by ascending order.
func (m *MemoryStorage) ListGranites(ctx context.Context) ([]models.Granite, error) {
	return m.granites.list(byOrder(func(g models.Granite) int { return g.Order })), nil
}

// CreateGranite stores a new granite.
func (m *MemoryStorage) CreateGranite(ctx context.Context, in models.CatalogInput) (*models.Granite, error) {
	g := models.Granite(newCatalogItem(in))
	m.granites.insert(g.ID, g)
	return &g, nil
}

// UpdateGranite merges upd onto the stored granite.
func (m *MemoryStorage) UpdateGranite(ctx context.Context, id string, upd models.CatalogUpdate) (*models.Granite, error) {
	g, err := m.granites.update(id, func(g *models.Granite) error {
		upd.Apply((*models.CatalogItem)(g))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("granite %s: %w", id, err)
	}
	return &g, nil
}

// DeleteGranite removes a granite. Unknown ids are ignored.
func (m *MemoryStorage) DeleteGranite(ctx context.Context, id string) error {
	m.granites.remove(id)
	return nil
}

// ListTiles returns tiles by ascending order.
func (m *MemoryStorage) ListTiles(ctx context.Context) ([]models.Tile, error) {
	return m.tiles.list(byOrder(func(t models.Tile) int { return t.Order })), nil
}

// CreateTile stores a new tile.
func (m *MemoryStorage) CreateTile(ctx context.Context, in models.CatalogInput) (*models.Tile, error) {
	t := models.Tile(newCatalogItem(in))
	m.tiles.insert(t.ID, t)
	return &t, nil
}

// UpdateTile merges upd onto the stored tile.
func (m *MemoryStorage) UpdateTile(ctx context.Context, id string, upd models.CatalogUpdate) (*models.Tile, error) {
	t, err := m.tiles.update(id, func(t *models.Tile) error {
		upd.Apply((*models.CatalogItem)(t))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", id, err)
	}
	return &t, nil
}

// DeleteTile removes a tile. Unknown ids are ignored.
func (m *MemoryStorage) DeleteTile(ctx context.Context, id string) error {
	m.tiles.remove(id)
	return nil
}

// ListEnquiries returns enquiries newest first.
func (m *MemoryStorage) ListEnquiries(ctx context.Context) ([]models.Enquiry, error) {
	return m.enquiries.list(func(a, b entry[models.Enquiry]) int {
		return cmp.Or(b.val.CreatedAt.Compare(a.val.CreatedAt), cmp.Compare(b.seq, a.seq))
	}), nil
}

// CreateEnquiry stores a new enquiry with status new.
func (m *MemoryStorage) CreateEnquiry(ctx context.Context, in models.EnquiryInput) (*models.Enquiry, error) {
	e := models.Enquiry{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		Status:    models.EnquiryNew,
		CreatedAt: models.Timestamp(),
	}
	m.enquiries.insert(e.ID, e)
	return &e, nil
}

// UpdateEnquiryStatus moves an enquiry forward to status.
func (m *MemoryStorage) UpdateEnquiryStatus(ctx context.Context, id string, status models.EnquiryStatus) (*models.Enquiry, error) {
	e, err := m.enquiries.update(id, func(e *models.Enquiry) error {
		if !e.Status.CanTransitionTo(status) {
			return ErrInvalidTransition
		}
		e.Status = status
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enquiry %s: %w", id, err)
	}
	return &e, nil
}

// DeleteEnquiry removes an enquiry. Unknown ids are ignored.
func (m *MemoryStorage) DeleteEnquiry(ctx context.Context, id string) error {
	m.enquiries.remove(id)
	return nil
}

// ListSliderImages returns slider images by ascending order.
func (m *MemoryStorage) ListSliderImages(ctx context.Context) ([]models.SliderImage, error) {
	return m.sliderImages.list(byOrder(func(s models.SliderImage) int { return s.Order })), nil
}

// CreateSliderImage stores a new slider image.
func (m *MemoryStorage) CreateSliderImage(ctx context.Context, in models.SliderImageInput) (*models.SliderImage, error) {
	s := models.SliderImage{
		ID:          uuid.NewString(),
		BeforeImage: in.BeforeImage,
		AfterImage:  in.AfterImage,
		Order:       in.OrderOrDefault(),
	}
	m.sliderImages.insert(s.ID, s)
	return &s, nil
}

// UpdateSliderImage merges upd onto the stored slider image.
func (m *MemoryStorage) UpdateSliderImage(ctx context.Context, id string, upd models.SliderImageUpdate) (*models.SliderImage, error) {
	s, err := m.sliderImages.update(id, func(s *models.SliderImage) error {
		upd.Apply(s)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("slider image %s: %w", id, err)
	}
	return &s, nil
}

// DeleteSliderImage removes a slider image. Unknown ids are ignored.
func (m *MemoryStorage) DeleteSliderImage(ctx context.Context, id string) error {
	m.sliderImages.remove(id)
	return nil
}

// ListMapLocations returns map locations in insertion order.
func (m *MemoryStorage) ListMapLocations(ctx context.Context) ([]models.MapLocation, error) {
	return m.mapLocations.list(byInsertion[models.MapLocation]), nil
}

// CreateMapLocation stores a new map location.
func (m *MemoryStorage) CreateMapLocation(ctx context.Context, in models.MapLocationInput) (*models.MapLocation, error) {
	l := models.MapLocation{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Type:         in.Type,
		Lat:          in.Lat,
		Lng:          in.Lng,
		IsComingSoon: in.ComingSoonOrDefault(),
	}
	m.mapLocations.insert(l.ID, l)
	return &l, nil
}

// UpdateMapLocation merges upd onto the stored map location.
func (m *MemoryStorage) UpdateMapLocation(ctx context.Context, id string, upd models.MapLocationUpdate) (*models.MapLocation, error) {
	l, err := m.mapLocations.update(id, func(l *models.MapLocation) error {
		upd.Apply(l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("map location %s: %w", id, err)
	}
	return &l, nil
}

// DeleteMapLocation removes a map location. Unknown ids are ignored.
func (m *MemoryStorage) DeleteMapLocation(ctx context.Context, id string) error {
	m.mapLocations.remove(id)
	return nil
}

// GetSiteContent returns the content stored under key, or nil.
func (m *MemoryStorage) GetSiteContent(ctx context.Context, key string) (*models.SiteContent, error) {
	m.content.mu.RLock()
	defer m.content.mu.RUnlock()
	c, ok := m.content.byKey[key]
	if !ok {
		return nil, nil
	}
	return cloneContent(c), nil
}

// CreateSiteContent stores content under a new key. It fails with
// ErrConflict when the key exists.
func (m *MemoryStorage) CreateSiteContent(ctx context.Context, key string, content json.RawMessage) (*models.SiteContent, error) {
	m.content.mu.Lock()
	defer m.content.mu.Unlock()
	if _, exists := m.content.byKey[key]; exists {
		return nil, fmt.Errorf("content %q: %w", key, ErrConflict)
	}
	c := models.SiteContent{ID: uuid.NewString(), Key: key, Content: bytes.Clone(content)}
	m.content.byKey[key] = c
	return cloneContent(c), nil
}

// UpsertSiteContent creates the key or replaces its content wholesale.
func (m *MemoryStorage) UpsertSiteContent(ctx context.Context, key string, content json.RawMessage) (*models.SiteContent, error) {
	m.content.mu.Lock()
	defer m.content.mu.Unlock()
	c, exists := m.content.byKey[key]
	if !exists {
		c = models.SiteContent{ID: uuid.NewString(), Key: key}
	}
	c.Content = bytes.Clone(content)
	m.content.byKey[key] = c
	return cloneContent(c), nil
}

func newCatalogItem(in models.CatalogInput) models.CatalogItem {
	return models.CatalogItem{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Image:     in.Image,
		Order:     in.OrderOrDefault(),
		CreatedAt: models.Timestamp(),
	}
}

func cloneContent(c models.SiteContent) *models.SiteContent {
	c.Content = bytes.Clone(c.Content)
	return &c
}
