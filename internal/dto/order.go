package dto

import (
	"storefront-service/internal/models"
	"storefront-service/internal/service"

	"github.com/shopspring/decimal"
)

type CreateOrderItemRequest struct {
	ProductID     uint             `json:"product_id" example:"12"`
	ProductName   string           `json:"product_name" example:"Ceramic mug"`
	ProductNameAr *string          `json:"product_name_ar,omitempty"`
	Quantity      int              `json:"quantity" example:"2"`
	Price         *decimal.Decimal `json:"price,omitempty" swaggertype:"string" example:"8.00"`
	Total         *decimal.Decimal `json:"total,omitempty" swaggertype:"string" example:"16.00"`
}

type CreateOrderRequest struct {
	CustomerName       string                   `json:"customer_name" example:"Sara Haddad"`
	CustomerEmail      *string                  `json:"customer_email,omitempty" example:"sara@example.com"`
	CustomerPhone      string                   `json:"customer_phone" example:"+961 70 000 000"`
	ShippingAddress    string                   `json:"shipping_address" example:"Hamra St. 12"`
	ShippingCity       *string                  `json:"shipping_city,omitempty" example:"Beirut"`
	ShippingPostalCode *string                  `json:"shipping_postal_code,omitempty"`
	PaymentMethod      string                   `json:"payment_method" example:"cash_on_delivery"`
	Items              []CreateOrderItemRequest `json:"items"`
	TotalAmount        *decimal.Decimal         `json:"total_amount,omitempty" swaggertype:"string" example:"16.00"`
	Notes              *string                  `json:"notes,omitempty"`
}

type CreateOrderResponse struct {
	OrderID     uint   `json:"order_id" example:"42"`
	OrderNumber string `json:"order_number" example:"ORD-1717171717171-7K2QZ"`
	Message     string `json:"message" example:"Order created successfully"`
}

type UpdateOrderStatusRequest struct {
	OrderStatus   *string `json:"order_status,omitempty" example:"processing"`
	PaymentStatus *string `json:"payment_status,omitempty" example:"paid"`
}

type UpdateOrderStatusResponse struct {
	Message string             `json:"message" example:"Order updated successfully"`
	Order   AdminOrderResponse `json:"order"`
}

// AdminOrderResponse: заказ для админки вместе с допустимыми следующими статусами
type AdminOrderResponse struct {
	*models.Order
	NextOrderStatuses   []models.OrderStatus   `json:"next_order_statuses"`
	NextPaymentStatuses []models.PaymentStatus `json:"next_payment_statuses"`
	Terminal            bool                   `json:"terminal"`
}

func NewAdminOrderResponse(o *models.Order) AdminOrderResponse {
	return AdminOrderResponse{
		Order:               o,
		NextOrderStatuses:   service.NextOrderStatuses(o.OrderStatus),
		NextPaymentStatuses: service.NextPaymentStatuses(o.PaymentStatus),
		Terminal:            service.IsTerminalOrderStatus(o.OrderStatus),
	}
}

type OrderListResponse struct {
	Orders []*models.Order `json:"orders"`
	Total  int64           `json:"total"`
}

type OrderItemsResponse struct {
	Items []models.OrderItem `json:"items"`
}
