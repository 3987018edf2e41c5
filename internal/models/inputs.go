package models

import (
	"bytes"
	"encoding/json"
	"net/mail"
)

// UserInput carries the fields of a new user. PasswordHash must already be
// hashed; Role defaults to RolePublic when empty.
type UserInput struct {
	Username     string
	PasswordHash string
	Role         Role
}

// Validate checks the input before it is stored.
func (in UserInput) Validate() error {
	f := fieldErrors{}
	f.required("username", in.Username)
	f.required("password", in.PasswordHash)
	if in.Role != "" && !in.Role.Valid() {
		f.add("role", "must be one of developer, admin, public")
	}
	return f.err()
}

// UserUpdate lists the user fields that may change. Nil fields are kept.
type UserUpdate struct {
	Username     *string
	PasswordHash *string
	Role         *Role
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.PasswordHash == nil && u.Role == nil
}

// ProfileUpdate is the body of a profile change request. Password is
// plaintext here and hashed before it reaches storage.
type ProfileUpdate struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// Validate checks that at least one non-empty field is provided.
func (p ProfileUpdate) Validate() error {
	f := fieldErrors{}
	if p.Username == nil && p.Password == nil {
		f.add("body", "username or password is required")
	}
	f.notBlank("username", p.Username)
	f.notBlank("password", p.Password)
	return f.err()
}

// Credentials is the body of a login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that both fields are present.
func (c Credentials) Validate() error {
	f := fieldErrors{}
	f.required("username", c.Username)
	f.required("password", c.Password)
	return f.err()
}

// CatalogInput is the insert payload for granites and tiles.
type CatalogInput struct {
	Name  string `json:"name"`
	Image string `json:"image"`
	Order *int   `json:"order"`
}

// Validate checks the required fields.
func (in CatalogInput) Validate() error {
	f := fieldErrors{}
	f.required("name", in.Name)
	f.required("image", in.Image)
	return f.err()
}

// OrderOrDefault returns the requested order or 0.
func (in CatalogInput) OrderOrDefault() int {
	if in.Order == nil {
		return 0
	}
	return *in.Order
}

// CatalogUpdate is the partial update payload for granites and tiles.
type CatalogUpdate struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
	Order *int    `json:"order"`
}

// Validate rejects empty updates and blank strings.
func (u CatalogUpdate) Validate() error {
	f := fieldErrors{}
	if u.Name == nil && u.Image == nil && u.Order == nil {
		f.add("body", "at least one field is required")
	}
	f.notBlank("name", u.Name)
	f.notBlank("image", u.Image)
	return f.err()
}

// Apply merges the set fields onto item.
func (u CatalogUpdate) Apply(item *CatalogItem) {
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Image != nil {
		item.Image = *u.Image
	}
	if u.Order != nil {
		item.Order = *u.Order
	}
}

// EnquiryInput is the public enquiry form. Status is never accepted from
// clients; every enquiry starts as EnquiryNew.
type EnquiryInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Validate checks the required fields and the email address.
func (in EnquiryInput) Validate() error {
	f := fieldErrors{}
	f.required("name", in.Name)
	f.required("email", in.Email)
	f.required("phone", in.Phone)
	f.required("message", in.Message)
	if _, ok := f["email"]; !ok {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			f.add("email", "must be a valid email address")
		}
	}
	return f.err()
}

// EnquiryStatusUpdate is the body of a status change.
type EnquiryStatusUpdate struct {
	Status EnquiryStatus `json:"status"`
}

// Validate checks the status value.
func (u EnquiryStatusUpdate) Validate() error {
	if !u.Status.Valid() {
		return NewValidationError("status", "must be one of new, contacted")
	}
	return nil
}

// SliderImageInput is the insert payload for slider images.
type SliderImageInput struct {
	BeforeImage string `json:"beforeImage"`
	AfterImage  string `json:"afterImage"`
	Order       *int   `json:"order"`
}

// Validate checks the required fields.
func (in SliderImageInput) Validate() error {
	f := fieldErrors{}
	f.required("beforeImage", in.BeforeImage)
	f.required("afterImage", in.AfterImage)
	return f.err()
}

// OrderOrDefault returns the requested order or 0.
func (in SliderImageInput) OrderOrDefault() int {
	if in.Order == nil {
		return 0
	}
	return *in.Order
}

// SliderImageUpdate is the partial update payload for slider images.
type SliderImageUpdate struct {
	BeforeImage *string `json:"beforeImage"`
	AfterImage  *string `json:"afterImage"`
	Order       *int    `json:"order"`
}

// Validate rejects empty updates and blank strings.
func (u SliderImageUpdate) Validate() error {
	f := fieldErrors{}
	if u.BeforeImage == nil && u.AfterImage == nil && u.Order == nil {
		f.add("body", "at least one field is required")
	}
	f.notBlank("beforeImage", u.BeforeImage)
	f.notBlank("afterImage", u.AfterImage)
	return f.err()
}

// Apply merges the set fields onto img.
func (u SliderImageUpdate) Apply(img *SliderImage) {
	if u.BeforeImage != nil {
		img.BeforeImage = *u.BeforeImage
	}
	if u.AfterImage != nil {
		img.AfterImage = *u.AfterImage
	}
	if u.Order != nil {
		img.Order = *u.Order
	}
}

// MapLocationInput is the insert payload for map locations.
type MapLocationInput struct {
	Name         string       `json:"name"`
	Type         LocationType `json:"type"`
	Lat          string       `json:"lat"`
	Lng          string       `json:"lng"`
	IsComingSoon *bool        `json:"isComingSoon"`
}

// Validate checks the required fields and the location type.
func (in MapLocationInput) Validate() error {
	f := fieldErrors{}
	f.required("name", in.Name)
	f.required("lat", in.Lat)
	f.required("lng", in.Lng)
	if !in.Type.Valid() {
		f.add("type", "must be one of domestic, international")
	}
	return f.err()
}

// ComingSoonOrDefault returns the requested flag or false.
func (in MapLocationInput) ComingSoonOrDefault() bool {
	return in.IsComingSoon != nil && *in.IsComingSoon
}

// MapLocationUpdate is the partial update payload for map locations.
type MapLocationUpdate struct {
	Name         *string       `json:"name"`
	Type         *LocationType `json:"type"`
	Lat          *string       `json:"lat"`
	Lng          *string       `json:"lng"`
	IsComingSoon *bool         `json:"isComingSoon"`
}

// Validate rejects empty updates, blank strings and unknown types.
func (u MapLocationUpdate) Validate() error {
	f := fieldErrors{}
	if u.Name == nil && u.Type == nil && u.Lat == nil && u.Lng == nil && u.IsComingSoon == nil {
		f.add("body", "at least one field is required")
	}
	f.notBlank("name", u.Name)
	f.notBlank("lat", u.Lat)
	f.notBlank("lng", u.Lng)
	if u.Type != nil && !u.Type.Valid() {
		f.add("type", "must be one of domestic, international")
	}
	return f.err()
}

// Apply merges the set fields onto loc.
func (u MapLocationUpdate) Apply(loc *MapLocation) {
	if u.Name != nil {
		loc.Name = *u.Name
	}
	if u.Type != nil {
		loc.Type = *u.Type
	}
	if u.Lat != nil {
		loc.Lat = *u.Lat
	}
	if u.Lng != nil {
		loc.Lng = *u.Lng
	}
	if u.IsComingSoon != nil {
		loc.IsComingSoon = *u.IsComingSoon
	}
}

// SiteContentInput is the body of a content write.
type SiteContentInput struct {
	Content json.RawMessage `json:"content"`
}

// Validate checks that content is present. Its shape is not inspected.
func (in SiteContentInput) Validate() error {
	if !HasContent(in.Content) {
		return NewValidationError("content", "is required")
	}
	return nil
}

// HasContent reports whether raw holds a non-null JSON value.
func HasContent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// UploadRequest is the body of an image upload.
type UploadRequest struct {
	Image string `json:"image"`
}

// Validate checks that image data is present.
func (u UploadRequest) Validate() error {
	if u.Image == "" {
		return NewValidationError("image", "no image data provided")
	}
	return nil
}
