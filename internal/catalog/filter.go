package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortPriceAsc, SortPriceDesc:
		return k, nil
	}
	return SortNone, fmt.Errorf("unknown sort key %q", s)
}

// Filter is the storefront's filter configuration. The zero value matches
// every product and keeps fetch order.
type Filter struct {
	CategoryID string
	Search     string
	PriceMin   decimal.NullDecimal
	PriceMax   decimal.NullDecimal
	Sort       SortKey
}

func (f Filter) IsZero() bool {
	return f.CategoryID == "" && f.Search == "" && !f.PriceMin.Valid && !f.PriceMax.Valid && f.Sort == SortNone
}

func (f Filter) Matches(p Product) bool {
	if f.CategoryID != "" && p.CategoryID != f.CategoryID {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	if f.PriceMin.Valid && p.Price.LessThan(f.PriceMin.Decimal) {
		return false
	}
	if f.PriceMax.Valid && p.Price.GreaterThan(f.PriceMax.Decimal) {
		return false
	}
	return true
}

// Apply returns the matching products in a new slice, stably ordered by
// f.Sort. The input slice is not modified.
func Apply(products []Product, f Filter) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b Product) int { return b.Price.Cmp(a.Price) })
	}
	return out
}
