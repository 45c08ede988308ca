package producer

import (
	"context"
	"encoding/json"
	"time"

	"go-tienda-api/internal/cart"
	"go-tienda-api/internal/product"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TopicCatalogSnapshots = "catalog.snapshots"
	TopicCartSnapshots    = "cart.snapshots"

	publishTimeout = 5 * time.Second
)

// SnapshotPublisher pushes catalog and cart snapshots to Kafka so connected
// feed processes can broadcast them. Publishing is fire and forget: it runs
// off the request goroutine and a failed write is logged, never surfaced.
type SnapshotPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewSnapshotPublisher(writer *kafka.Writer, logger *zap.Logger) *SnapshotPublisher {
	return &SnapshotPublisher{
		writer: writer,
		logger: logger,
	}
}

var _ product.Notifier = (*SnapshotPublisher)(nil)
var _ cart.Notifier = (*SnapshotPublisher)(nil)

func (p *SnapshotPublisher) CatalogChanged(_ context.Context, snapshot []product.ProductResponse) {
	p.publish(TopicCatalogSnapshots, "CATALOG_SNAPSHOT", "catalog", "catalog", snapshot)
}

func (p *SnapshotPublisher) CartChanged(_ context.Context, snapshot cart.CartResponse) {
	p.publish(TopicCartSnapshots, "CART_SNAPSHOT", "cart", snapshot.ID, snapshot)
}

func (p *SnapshotPublisher) publish(topic, eventType, aggregateType, key string, payload any) {
	value, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("snapshot encode failed", zap.String("topic", topic), zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		err := p.writer.WriteMessages(ctx, kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(eventType)},
				{Key: "aggregate_type", Value: []byte(aggregateType)},
			},
		})
		if err != nil {
			p.logger.Warn("snapshot publish failed",
				zap.String("topic", topic),
				zap.String("event_type", eventType),
				zap.Error(err),
			)
		}
	}()
}
