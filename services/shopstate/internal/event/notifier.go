package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/maysa/storefront/pkg/kafka"
	"github.com/maysa/storefront/pkg/logger"
	"github.com/maysa/storefront/services/shopstate/internal/store"
)

// TopicShopStateChanged carries every accepted store mutation.
const TopicShopStateChanged = "ecommerce.shopstate.changed"

// AggregateTypeSession is the aggregate type of shopstate events.
const AggregateTypeSession = "session"

// SourceShopStateService identifies events originating from this service.
const SourceShopStateService = "shopstate-service"

// ChangedData is the payload of a shopstate.changed event.
type ChangedData struct {
	SessionID string `json:"session_id"`
	Store     string `json:"store"`
	Action    string `json:"action"`
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Count     int    `json:"count"`
}

// Notifier turns store changes into Kafka events for the toast and
// analytics consumers.
type Notifier struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewNotifier creates a Notifier publishing through publisher.
func NewNotifier(publisher pkgkafka.Publisher, logger *slog.Logger) *Notifier {
	return &Notifier{publisher: publisher, logger: logger}
}

// Publish sends one change for sessionID.
func (n *Notifier) Publish(ctx context.Context, sessionID string, change store.Change) error {
	data := ChangedData{
		SessionID: sessionID,
		Store:     change.Store,
		Action:    change.Action,
		ProductID: change.ProductID,
		Quantity:  change.Quantity,
		Count:     change.Count,
	}

	evt, err := pkgkafka.NewEvent(TopicShopStateChanged, sessionID, AggregateTypeSession, SourceShopStateService, data)
	if err != nil {
		return fmt.Errorf("create shopstate.changed event: %w", err)
	}
	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithMetadata("store", change.Store).
		WithMetadata("action", change.Action)

	if err := n.publisher.Publish(ctx, TopicShopStateChanged, evt); err != nil {
		return fmt.Errorf("publish shopstate.changed event: %w", err)
	}

	n.logger.DebugContext(ctx, "published shopstate.changed event",
		slog.String("session_id", sessionID),
		slog.String("store", change.Store),
		slog.String("action", change.Action),
	)
	return nil
}

// Subscriber returns a store subscriber bound to sessionID. Publish failures
// are logged and never reach the caller of the mutation.
func (n *Notifier) Subscriber(sessionID string) store.Subscriber {
	return func(ctx context.Context, change store.Change) {
		if err := n.Publish(ctx, sessionID, change); err != nil {
			logger.WithContext(ctx, n.logger).WarnContext(ctx, "shopstate event not published",
				slog.String("store", change.Store),
				slog.String("action", change.Action),
				slog.String("error", err.Error()),
			)
		}
	}
}
