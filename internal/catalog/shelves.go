package catalog

import (
	"fmt"
	"slices"
)

type ShelfName string

const (
	ShelfNewArrival  ShelfName = "new-arrival"
	ShelfBestSelling ShelfName = "best-selling"
	ShelfAccessories ShelfName = "accessories"
)

// PageStep is both the initial visible count and the "load more" increment.
const PageStep = 6

var ShelfNames = []ShelfName{ShelfNewArrival, ShelfBestSelling, ShelfAccessories}

func ParseShelfName(s string) (ShelfName, error) {
	n := ShelfName(s)
	if slices.Contains(ShelfNames, n) {
		return n, nil
	}
	return "", fmt.Errorf("unknown shelf %q", s)
}

func (n ShelfName) Contains(p Product) bool {
	switch n {
	case ShelfNewArrival:
		return p.IsNew
	case ShelfBestSelling:
		return p.IsBestselling
	case ShelfAccessories:
		return p.IsAccessory
	}
	return false
}

type Shelf struct {
	Name    ShelfName
	items   []Product
	visible int
}

func NewShelf(name ShelfName, products []Product) *Shelf {
	items := make([]Product, 0)
	for _, p := range products {
		if name.Contains(p) {
			items = append(items, p)
		}
	}
	return &Shelf{Name: name, items: items, visible: PageStep}
}

// Restore replays a visible count reported by a client. Counts below the
// initial page or past the end are clamped.
func (s *Shelf) Restore(visible int) {
	switch {
	case visible < PageStep:
		s.visible = PageStep
	case visible > len(s.items):
		s.visible = max(len(s.items), PageStep)
	default:
		s.visible = visible
	}
}

func (s *Shelf) Len() int { return len(s.items) }

func (s *Shelf) Visible() int { return min(s.visible, len(s.items)) }

func (s *Shelf) HasMore() bool { return s.visible < len(s.items) }

func (s *Shelf) Shown() []Product {
	return slices.Clone(s.items[:s.Visible()])
}

// ShowMore reveals the next page. It reports false and changes nothing once
// the whole shelf is visible.
func (s *Shelf) ShowMore() bool {
	if !s.HasMore() {
		return false
	}
	s.visible = min(s.visible+PageStep, len(s.items))
	return true
}

type Shelves map[ShelfName]*Shelf

// Partition splits an already filtered and sorted list into shelves. A
// product lands on every shelf whose flag it carries.
func Partition(products []Product) Shelves {
	out := make(Shelves, len(ShelfNames))
	for _, n := range ShelfNames {
		out[n] = NewShelf(n, products)
	}
	return out
}
