package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/coaster-review/internal/mq"
	"github.com/qs-lzh/coaster-review/internal/service/domain"
)

// RatingWorkflow re-warms cached ratings after catalog writes.
type RatingWorkflow struct {
	ratingService domain.RatingService
	logger        *zap.Logger
}

func NewRatingWorkflow(ratingService domain.RatingService, logger *zap.Logger) *RatingWorkflow {
	return &RatingWorkflow{
		ratingService: ratingService,
		logger:        logger,
	}
}

func (w *RatingWorkflow) Start(ctx context.Context, mqConn *amqp.Connection) error {
	return w.ConsumeRatingRefresh(ctx, mqConn)
}

func (w *RatingWorkflow) ConsumeRatingRefresh(ctx context.Context, conn *amqp.Connection) error {
	ch, err := mq.NewChannel(conn)
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(mq.CatalogRatingRefreshQueue, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return err
	}

	go func() {
		defer ch.Close()
		w.Run(ctx, msgs)
	}()

	return nil
}

// Run handles deliveries one at a time until msgs is closed or ctx is done.
func (w *RatingWorkflow) Run(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := w.handleRatingRefresh(ctx, msg); err != nil {
				w.logger.Warn("failed to handle rating refresh", zap.Error(err))
			}
		}
	}
}

func (w *RatingWorkflow) handleRatingRefresh(ctx context.Context, msg amqp.Delivery) error {
	var event mq.CatalogEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		msg.Nack(false, false)
		return fmt.Errorf("malformed catalog event: %w", err)
	}
	if !event.Kind.Valid() {
		msg.Nack(false, false)
		return fmt.Errorf("unknown catalog event kind %q", event.Kind)
	}

	if err := w.ratingService.Refresh(ctx, event); err != nil {
		msg.Nack(false, true)
		return err
	}

	msg.Ack(false)

	return nil
}
