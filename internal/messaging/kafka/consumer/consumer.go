package consumer

import (
	"context"
	"log"

	"github.com/segmentio/kafka-go"
)

// SnapshotHandler receives each decoded snapshot message.
type SnapshotHandler func(eventType string, payload []byte) error

// ConsumeMessages relays snapshot events to the handler until the context is
// cancelled. Messages with unknown event types are committed and skipped.
func ConsumeMessages(ctx context.Context, reader *kafka.Reader, handle SnapshotHandler) {
	log.Println("[FEED] Started consuming messages")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[FEED] Error fetching message: %v", err)
			continue
		}

		eventType := getHeader(msg.Headers, "event_type")

		switch eventType {
		case "CATALOG_SNAPSHOT", "CART_SNAPSHOT":
			if err := handle(eventType, msg.Value); err != nil {
				log.Printf("[FEED] Error handling %s: %v", eventType, err)
				continue
			}
			if err := reader.CommitMessages(ctx, msg); err != nil {
				log.Printf("[FEED] Error committing message: %v", err)
			}
		default:
			// Skip unknown event types
			_ = reader.CommitMessages(ctx, msg)
		}
	}
}
