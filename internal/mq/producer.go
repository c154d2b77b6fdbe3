package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the producer needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Producer publishes catalog events on a single channel. amqp channels are not
// safe for concurrent publishes, so Publish holds a lock.
type Producer struct {
	mu    sync.Mutex
	ch    Channel
	queue string
}

func NewProducer(conn *amqp.Connection) (*Producer, error) {
	ch, err := NewChannel(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to open producer channel: %w", err)
	}
	return NewProducerWithChannel(ch, CatalogRatingRefreshQueue), nil
}

func NewProducerWithChannel(ch Channel, queue string) *Producer {
	return &Producer{ch: ch, queue: queue}
}

func (p *Producer) Publish(ctx context.Context, event CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return SendImmediateMessage(ctx, p.ch, p.queue, event)
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.Close()
}

func SendImmediateMessage(ctx context.Context, ch Channel, queueName string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(
		ctx,
		"",
		queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to queue %s: %w", queueName, err)
	}

	return nil
}
