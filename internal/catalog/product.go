package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

const UnknownCategory = "Unknown"

type Product struct {
	ID            string
	Name          string
	Description   string
	Price         decimal.Decimal
	ImageURL      string
	CategoryID    string
	IsNew         bool
	IsBestselling bool
	IsAccessory   bool
	IsPromotion   bool
	CreatedAt     time.Time
}

type Category struct {
	ID    string
	Label string
}

// CategoryLabel resolves a category reference; dangling references are not
// an error and read as UnknownCategory.
func CategoryLabel(categories []Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Label
		}
	}
	return UnknownCategory
}
