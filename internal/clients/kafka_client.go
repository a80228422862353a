package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/newscard/internal/models"
)

// KafkaClient emits one event per published post so downstream consumers can
// react without polling the webhook target.
type KafkaClient struct {
	Producer *kafka.Producer
	Topic    string
}

func NewKafkaClient(broker, topic string) (*KafkaClient, error) {
	slog.Info("[KafkaClient] Connecting to Kafka", slog.String("broker", broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   broker,
		"security.protocol":   "PLAINTEXT",
		"api.version.request": "true",
		"enable.idempotence":  true,
		"acks":                "all",
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized", slog.String("topic", topic))
	return &KafkaClient{Producer: p, Topic: topic}, nil
}

func (k *KafkaClient) Close() {
	if k == nil || k.Producer == nil {
		return
	}
	if remaining := k.Producer.Flush(5000); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	k.Producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

// PublishPost produces the post keyed by its article link and waits for the
// delivery report or for ctx to end, whichever comes first.
func (k *KafkaClient) PublishPost(ctx context.Context, post models.PublishedPost) error {
	jsonData, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to marshal post: %w", err)
	}

	delivery := make(chan kafka.Event, 1)
	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.Topic, Partition: kafka.PartitionAny},
		Key:            []byte(post.Link),
		Value:          jsonData,
	}, delivery)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, HTTP_TIMEOUT)
	defer cancel()
	if err := awaitDelivery(ctx, delivery); err != nil {
		return err
	}

	slog.Info("[KafkaClient] Published post event",
		slog.String("topic", k.Topic),
		slog.String("category", post.Category),
		slog.String("link", post.Link))
	return nil
}

// awaitDelivery blocks until the producer reports on the message. The
// delivery channel is buffered so an abandoned report never blocks librdkafka.
func awaitDelivery(ctx context.Context, delivery <-chan kafka.Event) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("[KafkaClient] gave up waiting for delivery: %w", ctx.Err())
	case e := <-delivery:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("[KafkaClient] unexpected delivery event: %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("[KafkaClient] delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	}
}
