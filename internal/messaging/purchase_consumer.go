package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kayceejenz/mtop/internal/model"
)

// Confirmer credits a confirmed purchase.
type Confirmer interface {
	Confirm(ctx context.Context, accountID, txRef string, likeAmount int) (*model.PurchaseResult, error)
}

// Action is what to do with a delivery after handling it.
type Action int

const (
	Ack     Action = iota // processed or permanently rejected
	Requeue               // transient failure, try again later
	Drop                  // unreadable, never retry
)

func (a Action) String() string {
	switch a {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	case Drop:
		return "drop"
	}
	return "unknown"
}

// PurchaseConsumer reads confirmed-payment events from a RabbitMQ queue and
// credits them through the purchase service. Redelivered events are safe: the
// service dedupes on the transaction hash.
type PurchaseConsumer struct {
	url       string
	queue     string
	confirmer Confirmer
	prefetch  int
	logger    zerolog.Logger

	// OnOutcome, when set, is called with the outcome label of each event.
	OnOutcome func(outcome string)
}

func NewPurchaseConsumer(url, queue string, confirmer Confirmer) *PurchaseConsumer {
	return &PurchaseConsumer{
		url:       url,
		queue:     queue,
		confirmer: confirmer,
		prefetch:  16,
		logger:    log.With().Str("component", "purchase-consumer").Str("queue", queue).Logger(),
	}
}

// Start consumes until ctx is cancelled, reconnecting after broker errors.
func (c *PurchaseConsumer) Start(ctx context.Context) {
	c.logger.Info().Msg("starting")
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			c.logger.Info().Msg("stopping (context cancelled)")
			return
		}
		c.logger.Error().Err(err).Msg("consumer error, reconnecting in 5s")
		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
			c.logger.Info().Msg("stopping (context cancelled)")
			return
		}
	}
}

func (c *PurchaseConsumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	c.logger.Info().Msg("waiting for messages")

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr := <-closed:
			if amqpErr == nil {
				return errors.New("connection closed")
			}
			return amqpErr
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.settle(d, c.Handle(ctx, d.Body))
		}
	}
}

func (c *PurchaseConsumer) settle(d amqp.Delivery, action Action) {
	var err error
	switch action {
	case Ack:
		err = d.Ack(false)
	case Requeue:
		err = d.Nack(false, true)
	case Drop:
		err = d.Nack(false, false)
	}
	if err != nil {
		c.logger.Error().Err(err).Str("action", action.String()).Msg("settle delivery failed")
	}
}

// Handle processes one event body and decides how to settle it. Client-caused
// rejections are acked so they are not redelivered; infrastructure failures
// are requeued.
func (c *PurchaseConsumer) Handle(ctx context.Context, body []byte) Action {
	var evt model.PurchaseEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		c.logger.Warn().Err(err).Msg("malformed purchase event")
		c.outcome("malformed")
		return Drop
	}

	res, err := c.confirmer.Confirm(ctx, evt.PayerAccountID, evt.TxRef, evt.Amount)
	switch {
	case err == nil && res.Duplicate:
		c.logger.Info().Str("tx_ref", evt.TxRef).Msg("duplicate purchase event")
		c.outcome("duplicate")
		return Ack
	case err == nil:
		c.logger.Info().Str("tx_ref", evt.TxRef).Int("likes", evt.Amount).Msg("purchase credited")
		c.outcome("credited")
		return Ack
	case errors.Is(err, model.ErrUpstreamUnavailable):
		c.logger.Error().Err(err).Str("tx_ref", evt.TxRef).Msg("purchase confirm failed, requeueing")
		c.outcome("retry")
		return Requeue
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrNotFound):
		c.logger.Warn().Err(err).Str("tx_ref", evt.TxRef).Msg("purchase event rejected")
		c.outcome("rejected")
		return Ack
	default:
		c.logger.Error().Err(err).Str("tx_ref", evt.TxRef).Msg("purchase confirm failed, requeueing")
		c.outcome("retry")
		return Requeue
	}
}

func (c *PurchaseConsumer) outcome(label string) {
	if c.OnOutcome != nil {
		c.OnOutcome(label)
	}
}
