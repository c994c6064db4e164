package checkout

import (
	"context"

	"github.com/shopspring/decimal"
)

// Intent is the one record a successful buy-now submit produces.
type Intent struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Size        Size            `json:"size"`
	Quantity    int             `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	// UserID is the signed-in buyer, empty for guests.
	UserID string `json:"user_id,omitempty"`
}

type Gateway interface {
	Process(ctx context.Context, in Intent) error
}

type GatewayFunc func(ctx context.Context, in Intent) error

func (f GatewayFunc) Process(ctx context.Context, in Intent) error { return f(ctx, in) }
