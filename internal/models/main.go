// Package models defines the core records of the site: users, catalog
// items, enquiries, slider images, map locations, and editable content.
package models

import (
	"encoding/json"
	"time"
)

// Role names a user's permission level.
type Role string

const (
	// RoleDeveloper has the same CMS rights as RoleAdmin.
	RoleDeveloper Role = "developer"
	// RoleAdmin may mutate catalog, content and enquiries.
	RoleAdmin Role = "admin"
	// RolePublic is the default role and has no CMS rights.
	RolePublic Role = "public"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleDeveloper, RoleAdmin, RolePublic:
		return true
	}
	return false
}

// CanManage reports whether r may perform CMS mutations.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleDeveloper
}

// User represents an account able to sign in.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the login name; unique across users.
	Username string `json:"username"`
	// PasswordHash is the encoded one-way hash of the password.
	PasswordHash string `json:"-"`
	// Role decides which operations the user may perform.
	Role Role `json:"role"`
}

// CatalogItem is the shared shape of granite and tile records.
type CatalogItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

// Granite is a granite catalog entry.
type Granite CatalogItem

// Tile is a tile catalog entry. Tiles are stored independently of granites.
type Tile CatalogItem

// EnquiryStatus tracks whether an enquiry has been followed up.
type EnquiryStatus string

const (
	// EnquiryNew is the status of every freshly submitted enquiry.
	EnquiryNew EnquiryStatus = "new"
	// EnquiryContacted marks an enquiry the business has replied to.
	EnquiryContacted EnquiryStatus = "contacted"
)

// Valid reports whether s is a known status.
func (s EnquiryStatus) Valid() bool {
	return s == EnquiryNew || s == EnquiryContacted
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Status only moves forward: new -> contacted.
func (s EnquiryStatus) CanTransitionTo(next EnquiryStatus) bool {
	return s == next || (s == EnquiryNew && next == EnquiryContacted)
}

// Enquiry is a sales enquiry submitted from the public site.
type Enquiry struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Message   string        `json:"message"`
	Status    EnquiryStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// SliderImage pairs a before and after image for the comparison slider.
type SliderImage struct {
	ID          string `json:"id"`
	BeforeImage string `json:"beforeImage"`
	AfterImage  string `json:"afterImage"`
	Order       int    `json:"order"`
}

// LocationType distinguishes domestic from international markers.
type LocationType string

const (
	LocationDomestic      LocationType = "domestic"
	LocationInternational LocationType = "international"
)

// Valid reports whether t is a known location type.
func (t LocationType) Valid() bool {
	return t == LocationDomestic || t == LocationInternational
}

// MapLocation is a presence marker on the world map.
type MapLocation struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         LocationType `json:"type"`
	Lat          string       `json:"lat"`
	Lng          string       `json:"lng"`
	IsComingSoon bool         `json:"isComingSoon"`
}

// SiteContent is an editable block of text or imagery addressed by key.
// Content is stored verbatim.
type SiteContent struct {
	ID      string          `json:"id"`
	Key     string          `json:"key"`
	Content json.RawMessage `json:"content"`
}

// Timestamp returns the current time in the precision the durable store
// keeps, so records read back from either backend compare equal.
func Timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
