package domain

import (
	"time"

	"github.com/google/uuid"
)

// Quantity bounds enforced at submit time. The live quote deliberately
// uses the raw value so the displayed total tracks whatever the client
// is mid-typing.
const (
	MinQuantity = 1
	MaxQuantity = 10
)

// Contact holds the customer details attached to an order. The name,
// email, and website are required before an order can be submitted;
// the brief is optional.
type Contact struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Website  string `json:"website" validate:"required,url"`
	Brief    string `json:"brief,omitempty"`
}

// OrderSelection is the mutable record of one session's in-progress order.
// It lives for a single session and is never persisted beyond it.
type OrderSelection struct {
	SessionID   uuid.UUID `json:"session_id"`
	VideoTypeID string    `json:"video_type_id"`
	CategoryID  string    `json:"category_id,omitempty"`
	Quantity    int       `json:"quantity"`
	AddOnIDs    []string  `json:"add_on_ids"`
	Contact     Contact   `json:"contact"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TypeCatalog is the catalog view the selection mutators need to keep
// the video type and category choices consistent.
type TypeCatalog interface {
	VideoType(id string) (VideoType, bool)
}

// SetVideoType applies a video type choice. Unknown ids are ignored.
// A successful change always clears the category choice, even when the
// new type happens to offer a category with the old id.
func (s *OrderSelection) SetVideoType(catalog TypeCatalog, id string) {
	if _, ok := catalog.VideoType(id); !ok {
		return
	}
	s.VideoTypeID = id
	s.CategoryID = ""
}

// SetCategory applies a category choice under the current video type.
// An empty id clears the choice; ids that do not belong to the current
// type are ignored.
func (s *OrderSelection) SetCategory(catalog TypeCatalog, id string) {
	if id == "" {
		s.CategoryID = ""
		return
	}
	vt, ok := catalog.VideoType(s.VideoTypeID)
	if !ok {
		return
	}
	if _, ok := vt.Category(id); !ok {
		return
	}
	s.CategoryID = id
}

// SetQuantity stores the quantity exactly as provided. Out-of-range
// values are allowed here so the live total can track user input;
// range checks happen at submit time.
func (s *OrderSelection) SetQuantity(n int) {
	s.Quantity = n
}

// ToggleAddOn adds the add-on id if absent and removes it if present.
// Ids are not checked against the catalog; unresolvable ids simply
// price at zero.
func (s *OrderSelection) ToggleAddOn(id string) {
	for i, existing := range s.AddOnIDs {
		if existing == id {
			s.AddOnIDs = append(s.AddOnIDs[:i], s.AddOnIDs[i+1:]...)
			return
		}
	}
	s.AddOnIDs = append(s.AddOnIDs, id)
}

// HasAddOn reports whether the add-on id is currently selected
func (s *OrderSelection) HasAddOn(id string) bool {
	for _, existing := range s.AddOnIDs {
		if existing == id {
			return true
		}
	}
	return false
}

// QuantityInRange reports whether the stored quantity is within the
// submittable range
func (s *OrderSelection) QuantityInRange() bool {
	return s.Quantity >= MinQuantity && s.Quantity <= MaxQuantity
}
