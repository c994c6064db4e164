package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/buyme/pkg/logging"
)

const (
	TopicProducts   = "product_events"
	TopicCategories = "category_events"
	TopicUsers      = "user_events"
	TopicPayments   = "payment_events"
)

const publishTimeout = 5 * time.Second

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }

// publish never fails the caller; a lost event is only logged.
func publish(ctx context.Context, p EventPublisher, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	event["at"] = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_error", "topic", topic, "type", event["type"], "error", err)
	}
}
