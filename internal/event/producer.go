package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tgiffonirs/gomarketplace/internal/cart"
	pkgkafka "github.com/tgiffonirs/gomarketplace/pkg/kafka"
)

// TopicCartUpdated is the topic cart snapshots are published to.
var TopicCartUpdated = pkgkafka.Topic("cart", "updated")

// Envelope fields for cart events.
const (
	EventTypeCartUpdated = "cart.updated"
	AggregateTypeCart    = "cart"
	SourceCartStore      = "cart-store"

	// MetadataOperation names the store operation behind an event.
	MetadataOperation = "operation"
)

// CartUpdatedData is the payload of a cart.updated event.
type CartUpdatedData struct {
	Key       string         `json:"key"`
	Items     []LineItemData `json:"items"`
	LineItems int            `json:"line_items"`
	ItemCount int            `json:"item_count"`
	Subtotal  float64        `json:"subtotal"`
}

// LineItemData is one line item inside a cart event.
type LineItemData struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Publisher is the part of *pkgkafka.Producer the cart producer needs.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer turns cart snapshots into cart.updated events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a cart event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

// PublishCartUpdated publishes the state of the cart stored under key. The
// key doubles as the aggregate id, so all events for one cart land on the
// same partition. The update's correlation id and operation travel with the
// event.
func (p *Producer) PublishCartUpdated(ctx context.Context, key string, u cart.Update) error {
	items := u.Items
	data := CartUpdatedData{
		Key:       key,
		Items:     make([]LineItemData, len(items)),
		LineItems: len(items),
		ItemCount: items.ItemCount(),
		Subtotal:  items.Subtotal(),
	}
	for i, item := range items {
		data.Items[i] = LineItemData{
			ID:       item.ID,
			Title:    item.Title,
			Price:    item.Price,
			Quantity: item.Quantity,
		}
	}

	event, err := pkgkafka.NewEvent(EventTypeCartUpdated, key, AggregateTypeCart, SourceCartStore, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}
	if u.CorrelationID != "" {
		event.WithCorrelationID(u.CorrelationID)
	}
	if u.Operation != "" {
		event.WithMetadata(MetadataOperation, u.Operation)
	}

	if err := p.publisher.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("key", key),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}
