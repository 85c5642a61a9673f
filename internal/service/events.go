package service

import (
	"context"
	"time"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderItemEvent struct {
	ProductID   *uint           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

type OrderCreatedEvent struct {
	Type          string               `json:"type"`
	OrderID       uint                 `json:"order_id"`
	OrderNumber   string               `json:"order_number"`
	CustomerName  string               `json:"customer_name"`
	CustomerEmail string               `json:"customer_email,omitempty"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Items         []OrderItemEvent     `json:"items"`
	CreatedAt     time.Time            `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	Type                  string               `json:"type"`
	OrderID               uint                 `json:"order_id"`
	OrderNumber           string               `json:"order_number"`
	CustomerName          string               `json:"customer_name"`
	CustomerEmail         string               `json:"customer_email,omitempty"`
	OrderStatus           models.OrderStatus   `json:"order_status"`
	PaymentStatus         models.PaymentStatus `json:"payment_status"`
	PreviousOrderStatus   models.OrderStatus   `json:"previous_order_status"`
	PreviousPaymentStatus models.PaymentStatus `json:"previous_payment_status"`
	ChangedBy             string               `json:"changed_by,omitempty"`
	ChangedAt             time.Time            `json:"changed_at"`
}

type EventBus interface {
	PublishOrderCreated(ctx context.Context, e OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, e OrderStatusChangedEvent) error
}

func newOrderCreatedEvent(o *models.Order) OrderCreatedEvent {
	items := make([]OrderItemEvent, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemEvent{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Total:       it.Total,
		})
	}
	return OrderCreatedEvent{
		Type:          EventOrderCreated,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: deref(o.CustomerEmail),
		PaymentMethod: o.PaymentMethod,
		TotalAmount:   o.TotalAmount,
		Items:         items,
		CreatedAt:     o.CreatedAt,
	}
}

func newStatusChangedEvent(before, after *models.Order, by string, at time.Time) OrderStatusChangedEvent {
	return OrderStatusChangedEvent{
		Type:                  EventOrderStatusChanged,
		OrderID:               after.ID,
		OrderNumber:           after.OrderNumber,
		CustomerName:          after.CustomerName,
		CustomerEmail:         deref(after.CustomerEmail),
		OrderStatus:           after.OrderStatus,
		PaymentStatus:         after.PaymentStatus,
		PreviousOrderStatus:   before.OrderStatus,
		PreviousPaymentStatus: before.PaymentStatus,
		ChangedBy:             by,
		ChangedAt:             at,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
