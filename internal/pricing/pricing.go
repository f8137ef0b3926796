package pricing

import (
	"reelworks/internal/domain"
)

// Catalog is the read-only catalog view the calculator prices against
type Catalog interface {
	VideoType(id string) (domain.VideoType, bool)
	AddOn(id string) (domain.AddOn, bool)
}

// Quote is the derived price for a selection. It is recomputed from
// scratch on every read and never stored alongside the selection, so
// the total can not drift from the choices that produced it.
type Quote struct {
	UnitPrice  int `json:"unit_price"`
	Quantity   int `json:"quantity"`
	AddOnTotal int `json:"add_on_total"`
	Total      int `json:"total"`
}

// Calculate derives the quote for a selection snapshot.
//
// The unit price is the selected category's price when a category of
// the selected type is chosen, otherwise the type's base price, or
// zero when the type id does not resolve. Add-on ids that do not
// resolve contribute nothing. The quantity is used exactly as stored,
// including out-of-range values: the live total mirrors user input and
// range enforcement belongs to submission.
func Calculate(catalog Catalog, sel *domain.OrderSelection) Quote {
	unit := 0
	if vt, ok := catalog.VideoType(sel.VideoTypeID); ok {
		unit = vt.BasePrice
		if sel.CategoryID != "" {
			if cat, ok := vt.Category(sel.CategoryID); ok {
				unit = cat.Price
			}
		}
	}

	addOnTotal := 0
	for _, id := range sel.AddOnIDs {
		if a, ok := catalog.AddOn(id); ok {
			addOnTotal += a.Price
		}
	}

	return Quote{
		UnitPrice:  unit,
		Quantity:   sel.Quantity,
		AddOnTotal: addOnTotal,
		Total:      unit*sel.Quantity + addOnTotal,
	}
}
