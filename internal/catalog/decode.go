package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/buyme/internal/models"
)

var (
	ErrEmptyPrice    = errors.New("price is empty")
	ErrNegativePrice = errors.New("price is negative")
)

type DecodeError struct {
	Collection string
	ID         string
	Field      string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s/%s: field %q: %v", e.Collection, e.ID, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyPrice
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %q is not a number: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativePrice
	}
	return d, nil
}

func DecodeProduct(doc models.ProductDoc) (Product, error) {
	if doc.ID == "" {
		return Product{}, &DecodeError{Collection: "products", Field: "id", Err: errors.New("missing id")}
	}
	price, err := ParsePrice(doc.Price)
	if err != nil {
		return Product{}, &DecodeError{Collection: "products", ID: doc.ID, Field: "price", Err: err}
	}
	return Product{
		ID:            doc.ID,
		Name:          doc.Name,
		Description:   doc.Description,
		Price:         price,
		ImageURL:      doc.ImageURL,
		CategoryID:    doc.CategoryID,
		IsNew:         doc.IsNew,
		IsBestselling: doc.IsBestselling,
		IsAccessory:   doc.IsAccessory,
		IsPromotion:   doc.IsPromotion,
		CreatedAt:     doc.CreatedAt,
	}, nil
}

func DecodeCategory(doc models.CategoryDoc) (Category, error) {
	if doc.ID == "" {
		return Category{}, &DecodeError{Collection: "categories", Field: "id", Err: errors.New("missing id")}
	}
	return Category{ID: doc.ID, Label: doc.Label}, nil
}

// EncodeProduct is the inverse of DecodeProduct for writes.
func EncodeProduct(p Product) models.ProductDoc {
	return models.ProductDoc{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.String(),
		ImageURL:      p.ImageURL,
		CategoryID:    p.CategoryID,
		IsNew:         p.IsNew,
		IsBestselling: p.IsBestselling,
		IsAccessory:   p.IsAccessory,
		IsPromotion:   p.IsPromotion,
		CreatedAt:     p.CreatedAt,
	}
}
