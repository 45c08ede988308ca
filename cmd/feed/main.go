package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"go-tienda-api/internal/messaging/kafka/consumer"
	"go-tienda-api/internal/messaging/kafka/producer"
)

// The feed process tails the snapshot topics and relays the latest catalog
// and cart state to connected observers.
func main() {
	_ = godotenv.Load()

	log.Println("[FEED] Starting snapshot feed...")

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{os.Getenv("KAFKA_BROKER")},
		GroupTopics: []string{producer.TopicCatalogSnapshots, producer.TopicCartSnapshots},
		GroupID:     "snapshot-feed-group",
	})
	defer reader.Close()
	log.Println("[FEED] Kafka reader initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeMessages(ctx, reader, func(eventType string, payload []byte) error {
		log.Printf("[FEED] %s: %s", eventType, payload)
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[FEED] Shutting down...")
	cancel()
	log.Println("[FEED] Stopped")
}
