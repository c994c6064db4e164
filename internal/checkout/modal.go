package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/buyme/internal/catalog"
)

type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL}

const MsgSizeRequired = "Please select a size before proceeding to payment."

var (
	ErrNotOpen      = errors.New("checkout is not open")
	ErrSizeRequired = errors.New("size not selected")
	ErrInvalidSize  = errors.New("invalid size")
)

func ParseSize(s string) (Size, error) {
	sz := Size(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(Sizes, sz) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return sz, nil
}

type Receipt struct {
	Intent  Intent
	Message string
}

// Modal is the buy-now dialog for a single product. The zero value is
// Closed.
type Modal struct {
	state    State
	product  catalog.Product
	size     Size
	quantity int
}

func (m *Modal) Open(p catalog.Product) {
	m.state = Open
	m.product = p
	m.size = ""
	m.quantity = 1
}

func (m *Modal) State() State { return m.state }
func (m *Modal) Product() catalog.Product { return m.product }
func (m *Modal) Size() Size { return m.size }
func (m *Modal) Quantity() int { return m.quantity }

func (m *Modal) SelectSize(s Size) error {
	if m.state != Open {
		return ErrNotOpen
	}
	if !slices.Contains(Sizes, s) {
		return fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	m.size = s
	return nil
}

// SetQuantity ignores values below one, leaving the quantity unchanged.
func (m *Modal) SetQuantity(n int) error {
	if m.state != Open {
		return ErrNotOpen
	}
	if n >= 1 {
		m.quantity = n
	}
	return nil
}

// Submit hands one intent to the gateway and closes the modal. Without a
// size it returns ErrSizeRequired and the modal stays open. A gateway
// failure also leaves it open so the user can retry.
func (m *Modal) Submit(ctx context.Context, gw Gateway) (Receipt, error) {
	if m.state != Open {
		return Receipt{}, ErrNotOpen
	}
	if m.size == "" {
		return Receipt{}, ErrSizeRequired
	}

	in := Intent{
		ProductID:   m.product.ID,
		ProductName: m.product.Name,
		UnitPrice:   m.product.Price,
		Size:        m.size,
		Quantity:    m.quantity,
		Total:       m.product.Price.Mul(decimal.NewFromInt(int64(m.quantity))),
	}
	if err := gw.Process(ctx, in); err != nil {
		return Receipt{}, fmt.Errorf("process payment: %w", err)
	}

	m.reset()
	return Receipt{
		Intent:  in,
		Message: fmt.Sprintf("Payment processed for %s (Size: %s, Quantity: %d)", in.ProductName, in.Size, in.Quantity),
	}, nil
}

func (m *Modal) Cancel() { m.reset() }

func (m *Modal) reset() { *m = Modal{} }
