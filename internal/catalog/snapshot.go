package catalog

import (
	"slices"
	"time"
)

// Snapshot is a read-only copy of the catalog taken once per page load.
// Accessors hand out copies so derived views can never write back into it.
type Snapshot struct {
	products   []Product
	categories []Category
	fetchedAt  time.Time
}

func NewSnapshot(products []Product, categories []Category) *Snapshot {
	return &Snapshot{
		products:   slices.Clone(products),
		categories: slices.Clone(categories),
		fetchedAt:  time.Now().UTC(),
	}
}

func (s *Snapshot) Products() []Product {
	if s == nil {
		return nil
	}
	return slices.Clone(s.products)
}

func (s *Snapshot) Categories() []Category {
	if s == nil {
		return nil
	}
	return slices.Clone(s.categories)
}

func (s *Snapshot) Product(id string) (Product, bool) {
	if s == nil {
		return Product{}, false
	}
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.products)
}

func (s *Snapshot) FetchedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.fetchedAt
}
