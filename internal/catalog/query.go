package catalog

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	QueryCategory = "category"
	QuerySearch   = "search"
	QueryMinPrice = "min_price"
	QueryMaxPrice = "max_price"
	QuerySort     = "sort"
)

// EncodeQuery writes only the fields that differ from the zero Filter, so
// the default view has an empty query string.
func EncodeQuery(f Filter) url.Values {
	q := url.Values{}
	if f.CategoryID != "" {
		q.Set(QueryCategory, f.CategoryID)
	}
	if f.Search != "" {
		q.Set(QuerySearch, f.Search)
	}
	if f.PriceMin.Valid {
		q.Set(QueryMinPrice, f.PriceMin.Decimal.String())
	}
	if f.PriceMax.Valid {
		q.Set(QueryMaxPrice, f.PriceMax.Decimal.String())
	}
	if f.Sort != SortNone {
		q.Set(QuerySort, string(f.Sort))
	}
	return q
}

func DecodeQuery(q url.Values) (Filter, error) {
	f := Filter{
		CategoryID: strings.TrimSpace(q.Get(QueryCategory)),
		Search:     strings.TrimSpace(q.Get(QuerySearch)),
	}

	var err error
	if f.PriceMin, err = decodeBound(q, QueryMinPrice); err != nil {
		return Filter{}, err
	}
	if f.PriceMax, err = decodeBound(q, QueryMaxPrice); err != nil {
		return Filter{}, err
	}
	if f.Sort, err = ParseSortKey(q.Get(QuerySort)); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func decodeBound(q url.Values, key string) (decimal.NullDecimal, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%s: %q is not a number", key, raw)
	}
	return decimal.NewNullDecimal(d), nil
}

func CanonicalURL(path string, f Filter) string {
	if f.IsZero() {
		return path
	}
	return path + "?" + EncodeQuery(f).Encode()
}

// AddressBar models the browser history entry the storefront keeps in sync
// with its filter. Sync replaces the current entry and never pushes.
type AddressBar struct {
	entries []string
}

func NewAddressBar(initial string) *AddressBar {
	return &AddressBar{entries: []string{initial}}
}

// Sync rewrites the current entry to the canonical address for f and
// reports whether it changed.
func (a *AddressBar) Sync(path string, f Filter) (string, bool) {
	next := CanonicalURL(path, f)
	last := len(a.entries) - 1
	if a.entries[last] == next {
		return next, false
	}
	a.entries[last] = next
	return next, true
}

func (a *AddressBar) Current() string { return a.entries[len(a.entries)-1] }

func (a *AddressBar) Len() int { return len(a.entries) }
