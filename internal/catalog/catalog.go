package catalog

import (
	"errors"
	"fmt"

	"reelworks/internal/domain"
)

var (
	ErrEmptyCatalog     = errors.New("catalog must contain at least one video type")
	ErrDuplicateID      = errors.New("duplicate catalog id")
	ErrNonPositivePrice = errors.New("catalog price must be positive")
	ErrEmptyCategories  = errors.New("category list must be non-empty when present")
)

// Catalog is the immutable set of video type offerings and add-ons.
// It is built once at startup and shared read-only for the process
// lifetime, so lookups need no locking.
type Catalog struct {
	videoTypes []domain.VideoType
	addOns     []domain.AddOn
	typesByID  map[string]domain.VideoType
	addOnsByID map[string]domain.AddOn
}

// New builds a catalog from the given offerings, checking the id and
// price invariants the rest of the system relies on.
func New(videoTypes []domain.VideoType, addOns []domain.AddOn) (*Catalog, error) {
	if len(videoTypes) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		videoTypes: videoTypes,
		addOns:     addOns,
		typesByID:  make(map[string]domain.VideoType, len(videoTypes)),
		addOnsByID: make(map[string]domain.AddOn, len(addOns)),
	}

	for _, vt := range videoTypes {
		if _, exists := c.typesByID[vt.ID]; exists {
			return nil, fmt.Errorf("video type %q: %w", vt.ID, ErrDuplicateID)
		}
		if vt.BasePrice <= 0 {
			return nil, fmt.Errorf("video type %q: %w", vt.ID, ErrNonPositivePrice)
		}
		if vt.Categories != nil && len(vt.Categories) == 0 {
			return nil, fmt.Errorf("video type %q: %w", vt.ID, ErrEmptyCategories)
		}
		seen := make(map[string]bool, len(vt.Categories))
		for _, cat := range vt.Categories {
			if seen[cat.ID] {
				return nil, fmt.Errorf("category %q of video type %q: %w", cat.ID, vt.ID, ErrDuplicateID)
			}
			seen[cat.ID] = true
			if cat.Price <= 0 {
				return nil, fmt.Errorf("category %q of video type %q: %w", cat.ID, vt.ID, ErrNonPositivePrice)
			}
		}
		c.typesByID[vt.ID] = vt
	}

	for _, a := range addOns {
		if _, exists := c.addOnsByID[a.ID]; exists {
			return nil, fmt.Errorf("add-on %q: %w", a.ID, ErrDuplicateID)
		}
		if a.Price <= 0 {
			return nil, fmt.Errorf("add-on %q: %w", a.ID, ErrNonPositivePrice)
		}
		c.addOnsByID[a.ID] = a
	}

	return c, nil
}

// Default returns the production catalog
func Default() *Catalog {
	c, err := New(
		[]domain.VideoType{
			{
				ID:          "explainer",
				Title:       "Explainer Video",
				BasePrice:   99,
				Description: "Clear, professional explainer videos for your product or service",
				Categories: []domain.Category{
					{ID: "software", Name: "Software Walkthrough", Price: 129},
					{ID: "physical", Name: "Physical Product", Price: 99},
				},
			},
			{
				ID:          "tiktok",
				Title:       "TikTok Hook Video",
				BasePrice:   49,
				Description: "Engaging, viral-style videos optimized for social media",
			},
			{
				ID:          "youtube",
				Title:       "Longform YouTube Video",
				BasePrice:   199,
				Description: "In-depth, high-quality content for your YouTube channel",
			},
		},
		[]domain.AddOn{
			{ID: "screenshots", Label: "Screenshot Edits", Price: 20},
			{ID: "howItWorks", Label: "How it Works Video", Price: 70},
		},
	)
	if err != nil {
		// The default catalog is static data; a constraint violation
		// here is a programming error.
		panic(fmt.Sprintf("invalid default catalog: %v", err))
	}
	return c
}

// VideoTypes returns the offerings in display order
func (c *Catalog) VideoTypes() []domain.VideoType {
	return c.videoTypes
}

// AddOns returns the add-ons in display order
func (c *Catalog) AddOns() []domain.AddOn {
	return c.addOns
}

// VideoType looks up a video type by id. Unknown ids report false
// rather than failing: catalog ids come from static data and callers
// degrade gracefully.
func (c *Catalog) VideoType(id string) (domain.VideoType, bool) {
	vt, ok := c.typesByID[id]
	return vt, ok
}

// AddOn looks up an add-on by id
func (c *Catalog) AddOn(id string) (domain.AddOn, bool) {
	a, ok := c.addOnsByID[id]
	return a, ok
}

// FirstVideoType returns the default offering presented to a new session
func (c *Catalog) FirstVideoType() domain.VideoType {
	return c.videoTypes[0]
}
