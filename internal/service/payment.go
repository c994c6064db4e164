package service

import (
	"context"

	"github.com/Skotchmaster/buyme/internal/checkout"
	"github.com/Skotchmaster/buyme/pkg/logging"
)

// SimulatedGateway stands in for a payment provider: it records the intent
// in the log and on the payments topic and always succeeds.
type SimulatedGateway struct {
	Events EventPublisher
}

func (g *SimulatedGateway) Process(ctx context.Context, in checkout.Intent) error {
	logging.FromContext(ctx).Info("payment_processed",
		"product_id", in.ProductID,
		"user_id", in.UserID,
		"size", in.Size,
		"quantity", in.Quantity,
		"total", in.Total.String(),
	)
	publish(ctx, g.Events, TopicPayments, in.ProductID, map[string]any{
		"type":      "payment_intent",
		"productID": in.ProductID,
		"userID":    in.UserID,
		"name":      in.ProductName,
		"unitPrice": in.UnitPrice.String(),
		"size":      in.Size,
		"quantity":  in.Quantity,
		"total":     in.Total.String(),
	})
	return nil
}
