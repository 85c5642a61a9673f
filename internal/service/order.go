package service

import (
	"context"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"

	"github.com/shopspring/decimal"
)

type CreateOrderItem struct {
	ProductID     uint             `json:"product_id" validate:"required"`
	ProductName   string           `json:"product_name"`
	ProductNameAr *string          `json:"product_name_ar"`
	Quantity      int              `json:"quantity" validate:"gt=0"`
	Price         *decimal.Decimal `json:"price"` // цена, которую видел клиент; сверяется с текущей
	Total         *decimal.Decimal `json:"total"`
}

type CreateOrderInput struct {
	CustomerName       string               `json:"customer_name" validate:"required,max=200"`
	CustomerEmail      *string              `json:"customer_email" validate:"omitempty,email,max=254"`
	CustomerPhone      string               `json:"customer_phone" validate:"required,max=50"`
	ShippingAddress    string               `json:"shipping_address" validate:"required,max=500"`
	ShippingCity       *string              `json:"shipping_city" validate:"omitempty,max=100"`
	ShippingPostalCode *string              `json:"shipping_postal_code" validate:"omitempty,max=20"`
	PaymentMethod      models.PaymentMethod `json:"payment_method" validate:"required,oneof=cash_on_delivery wishmoney"`
	Items              []CreateOrderItem    `json:"items" validate:"required,min=1,dive"`
	TotalAmount        *decimal.Decimal     `json:"total_amount"`
	Notes              *string              `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateStatusInput struct {
	OrderStatus   *models.OrderStatus
	PaymentStatus *models.PaymentStatus
}

type ListFilter = repository.OrderListFilter

type StatsSummary = repository.StatsSummary

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	TrackOrder(ctx context.Context, orderNumber string) (*models.Order, error)
	ListOrderItems(ctx context.Context, id uint) ([]models.OrderItem, error)
	ListOrders(ctx context.Context, f ListFilter) ([]*models.Order, int64, error)
	UpdateStatus(ctx context.Context, id uint, in UpdateStatusInput) (*models.Order, error)
	StatsSummary(ctx context.Context) (*StatsSummary, error)
}
