// Package kafka публикует доменные события в Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// Writer - подмножество kafka.Writer, которое нужно продюсеру.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher публикует событие с ключом партиционирования.
type Publisher interface {
	Publish(ctx context.Context, key string, value any) error
	Close() error
}

type Producer struct {
	writer Writer
}

// NewProducer создаёт продюсер для списка брокеров и топика.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: &skafka.Writer{
		Addr:                   skafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &skafka.Hash{},
		RequiredAcks:           skafka.RequireOne,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}}
}

func NewProducerWithWriter(w Writer) *Producer {
	return &Producer{writer: w}
}

// Publish сериализует value в JSON. Сообщения с одинаковым ключом попадают в одну партицию.
func (p *Producer) Publish(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kafka: сериализация события: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, skafka.Message{Key: []byte(key), Value: b}); err != nil {
		return fmt.Errorf("kafka: запись события: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NoopPublisher используется, когда брокеры не настроены.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }
