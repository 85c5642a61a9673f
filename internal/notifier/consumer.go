package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"storefront-service/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ErrSkip: событие корректное, но письмо отправлять некому
var ErrSkip = errors.New("notification skipped")

const readRetryDelay = time.Second

// MessageReader: то, что нужно от kafka.Reader (подменяется в тестах)
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type OrderEventConsumer struct {
	reader     MessageReader
	sender     Sender
	log        *zap.Logger
	retryDelay time.Duration
}

func NewOrderEventConsumer(brokers []string, groupID, topic string, sender Sender, log *zap.Logger) *OrderEventConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return NewOrderEventConsumerWithReader(r, sender, log)
}

func NewOrderEventConsumerWithReader(r MessageReader, sender Sender, log *zap.Logger) *OrderEventConsumer {
	return &OrderEventConsumer{reader: r, sender: sender, log: log, retryDelay: readRetryDelay}
}

func (c *OrderEventConsumer) Run(ctx context.Context) error {
	c.log.Info("kafka consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			// отмена, дедлайн или закрытый reader: читать больше нечего
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				c.log.Info("kafka consumer stopped", zap.Error(err))
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}
		c.handle(m.Value)
	}
}

func (c *OrderEventConsumer) handle(value []byte) {
	n, err := BuildNotification(value)
	if errors.Is(err, ErrSkip) {
		c.log.Debug("event without recipient", zap.ByteString("value", value))
		return
	}
	if err != nil {
		c.log.Error("decode order event", zap.ByteString("value", value), zap.Error(err))
		return
	}
	if err := c.sender.Send(*n); err != nil {
		c.log.Error("send email failed", zap.String("to", n.To), zap.String("template", n.Template), zap.Error(err))
		return
	}
	c.log.Info("email sent", zap.String("to", n.To), zap.String("template", n.Template))
}

func (c *OrderEventConsumer) Close() error { return c.reader.Close() }

// BuildNotification превращает событие заказа в письмо покупателю
func BuildNotification(value []byte) (*Notification, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(value, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case service.EventOrderCreated:
		var e service.OrderCreatedEvent
		if err := json.Unmarshal(value, &e); err != nil {
			return nil, err
		}
		if e.CustomerEmail == "" {
			return nil, ErrSkip
		}
		items := make([]map[string]any, 0, len(e.Items))
		for _, it := range e.Items {
			items = append(items, map[string]any{
				"Name":     it.ProductName,
				"Quantity": it.Quantity,
				"Price":    it.Price.StringFixed(2),
				"Total":    it.Total.StringFixed(2),
			})
		}
		return &Notification{
			To:       e.CustomerEmail,
			Subject:  fmt.Sprintf("Order %s received", e.OrderNumber),
			Template: "order_created",
			Data: map[string]any{
				"OrderNumber":   e.OrderNumber,
				"CustomerName":  e.CustomerName,
				"PaymentMethod": string(e.PaymentMethod),
				"TotalAmount":   e.TotalAmount.StringFixed(2),
				"Items":         items,
			},
		}, nil

	case service.EventOrderStatusChanged:
		var e service.OrderStatusChangedEvent
		if err := json.Unmarshal(value, &e); err != nil {
			return nil, err
		}
		if e.CustomerEmail == "" {
			return nil, ErrSkip
		}
		return &Notification{
			To:       e.CustomerEmail,
			Subject:  fmt.Sprintf("Order %s: %s", e.OrderNumber, e.OrderStatus),
			Template: "order_status_changed",
			Data: map[string]any{
				"OrderNumber":   e.OrderNumber,
				"CustomerName":  e.CustomerName,
				"OrderStatus":   string(e.OrderStatus),
				"PaymentStatus": string(e.PaymentStatus),
				"StatusChanged": e.OrderStatus != e.PreviousOrderStatus,
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown event type %q", head.Type)
	}
}
