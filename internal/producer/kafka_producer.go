package producer

import (
	"context"
	"encoding/json"
	"time"

	"storefront-service/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter: то, что нужно от kafka.Writer (подменяется в тестах)
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type OrderEventProducer struct {
	writer MessageWriter
	log    *zap.Logger
}

var _ service.EventBus = (*OrderEventProducer)(nil)

func NewOrderEventProducer(brokers []string, topic string, log *zap.Logger) *OrderEventProducer {
	return NewOrderEventProducerWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}, log)
}

func NewOrderEventProducerWithWriter(w MessageWriter, log *zap.Logger) *OrderEventProducer {
	return &OrderEventProducer{writer: w, log: log}
}

func (p *OrderEventProducer) PublishOrderCreated(ctx context.Context, e service.OrderCreatedEvent) error {
	return p.send(ctx, e.OrderNumber, e.Type, e)
}

func (p *OrderEventProducer) PublishOrderStatusChanged(ctx context.Context, e service.OrderStatusChangedEvent) error {
	return p.send(ctx, e.OrderNumber, e.Type, e)
}

// Ключом служит номер заказа: все события одного заказа попадают в одну партицию
func (p *OrderEventProducer) send(ctx context.Context, key, eventType string, payload any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	})
	if err != nil {
		return err
	}
	p.log.Debug("order event published", zap.String("type", eventType), zap.String("order_number", key))
	return nil
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}

// LogEventBus используется, когда Kafka не настроена: события только логируются
type LogEventBus struct {
	log *zap.Logger
}

var _ service.EventBus = (*LogEventBus)(nil)

func NewLogEventBus(log *zap.Logger) *LogEventBus { return &LogEventBus{log: log} }

func (b *LogEventBus) PublishOrderCreated(_ context.Context, e service.OrderCreatedEvent) error {
	b.log.Info("order created",
		zap.Uint("order_id", e.OrderID),
		zap.String("order_number", e.OrderNumber),
		zap.String("total_amount", e.TotalAmount.StringFixed(2)),
		zap.Int("items", len(e.Items)),
	)
	return nil
}

func (b *LogEventBus) PublishOrderStatusChanged(_ context.Context, e service.OrderStatusChangedEvent) error {
	b.log.Info("order status changed",
		zap.String("order_number", e.OrderNumber),
		zap.String("order_status", string(e.OrderStatus)),
		zap.String("payment_status", string(e.PaymentStatus)),
	)
	return nil
}
