package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// Routing keys published by the storefront.
const (
	RKProductCreated = "catalog.product.created"
	RKCartUpdated    = "cart.updated"
	RKCartCleared    = "cart.cleared"
)

type Envelope struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Rabbit publishes JSON envelopes to a topic exchange. A nil *Rabbit is a
// valid publisher that drops everything, so services run without a broker.
type Rabbit struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewRabbit(url, exchange string) (*Rabbit, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Rabbit{conn: conn, ch: ch, exchange: exchange}, nil
}

func (r *Rabbit) Publish(ctx context.Context, key string, payload any) error {
	if r == nil || r.ch == nil {
		return nil
	}
	body, err := Encode(key, payload, time.Now().UTC())
	if err != nil {
		return err
	}
	log.Debug().Str("key", key).Msg("publish event")
	return r.ch.PublishWithContext(ctx, r.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Timestamp:   time.Now(),
	})
}

func (r *Rabbit) Close() {
	if r == nil {
		return
	}
	if r.ch != nil {
		_ = r.ch.Close()
	}
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

func Encode(key string, payload any, at time.Time) ([]byte, error) {
	return json.Marshal(Envelope{
		ID:        uuid.NewString(),
		Type:      key,
		Timestamp: at,
		Payload:   payload,
	})
}
