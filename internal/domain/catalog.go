package domain

// VideoType represents a top-level purchasable video offering
type VideoType struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	BasePrice   int        `json:"base_price"`
	Description string     `json:"description"`
	Categories  []Category `json:"categories,omitempty"`
}

// Category is a sub-offering of a VideoType. Its price replaces the
// parent's base price when selected, it is not added on top.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// AddOn is an optional extra charge, independent of the video type
type AddOn struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Price int    `json:"price"`
}

// HasCategories reports whether the video type offers sub-categories
func (v *VideoType) HasCategories() bool {
	return len(v.Categories) > 0
}

// Category returns the category with the given id, if the video type has one
func (v *VideoType) Category(id string) (Category, bool) {
	for _, c := range v.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
