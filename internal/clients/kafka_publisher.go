package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/order-service/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultOrderEventsTopic = "order-events"
	EventTypeOrderConfirmed = "order_confirmed"
)

// OrderConfirmedEvent is the Kafka payload for a confirmed order.
type OrderConfirmedEvent struct {
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	ProductID  string    `json:"product_id"`
	Quantity   int       `json:"quantity"`
	TotalPrice string    `json:"total_price"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessageWriter is the subset of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits order confirmations as events, keyed by order id.
type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

func NewKafkaPublisher(topic string, timeout time.Duration, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultOrderEventsTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return NewKafkaPublisherWithWriter(w, timeout)
}

func NewKafkaPublisherWithWriter(w MessageWriter, timeout time.Duration) *KafkaPublisher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &KafkaPublisher{writer: w, timeout: timeout}
}

func (p *KafkaPublisher) Notify(ctx context.Context, order domain.Order) error {
	msg, err := orderConfirmedMessage(order)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNotificationFailed, err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(publishCtx, msg); err != nil {
		return fmt.Errorf("%w: publish order %s: %w", domain.ErrNotificationFailed, order.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func orderConfirmedMessage(order domain.Order) (kafka.Message, error) {
	payload, err := json.Marshal(OrderConfirmedEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		ProductID:  order.ProductID,
		Quantity:   order.Quantity,
		TotalPrice: order.TotalPrice.String(),
		Status:     order.Status.String(),
		Message:    ConfirmationMessage(order.ID),
		CreatedAt:  order.CreatedAt,
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal order event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(order.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderConfirmed)},
		},
	}, nil
}
