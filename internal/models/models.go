package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статус заказа хранится строкой, допустимые значения закреплены CHECK-ограничением
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

var PaymentStatuses = []PaymentStatus{PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed}

type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMethodWishmoney      PaymentMethod = "wishmoney"
)

type Product struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	Name               string           `gorm:"type:text;not null" json:"name"`
	NameAr             *string          `gorm:"type:text" json:"name_ar"`
	Description        *string          `gorm:"type:text" json:"description"`
	DescriptionAr      *string          `gorm:"type:text" json:"description_ar"`
	Price              decimal.Decimal  `gorm:"type:numeric(12,2);not null;check:chk_products_price_non_negative,price >= 0" json:"price"`
	DiscountPrice      *decimal.Decimal `gorm:"type:numeric(12,2)" json:"discount_price"`
	DiscountPercentage *decimal.Decimal `gorm:"type:numeric(5,2)" json:"discount_percentage"`
	Image              *string          `gorm:"type:text" json:"image"`
	CategoryID         *uint            `gorm:"index" json:"category_id"`
	InStock            bool             `gorm:"not null" json:"in_stock"` // без default: gorm пропускает false при наличии default

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

type Order struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	OrderNumber        string          `gorm:"type:varchar(64);not null;uniqueIndex:ux_orders_order_number" json:"order_number"`
	CustomerName       string          `gorm:"type:text;not null" json:"customer_name"`
	CustomerEmail      *string         `gorm:"type:text" json:"customer_email"`
	CustomerPhone      string          `gorm:"type:text;not null" json:"customer_phone"`
	ShippingAddress    string          `gorm:"type:text;not null" json:"shipping_address"`
	ShippingCity       *string         `gorm:"type:text" json:"shipping_city"`
	ShippingPostalCode *string         `gorm:"type:text" json:"shipping_postal_code"`
	PaymentMethod      PaymentMethod   `gorm:"type:varchar(32);not null;check:chk_orders_payment_method,payment_method IN ('cash_on_delivery','wishmoney')" json:"payment_method"`
	PaymentStatus      PaymentStatus   `gorm:"type:varchar(16);not null;default:'pending';index;check:chk_orders_payment_status,payment_status IN ('pending','paid','failed')" json:"payment_status"`
	OrderStatus        OrderStatus     `gorm:"type:varchar(16);not null;default:'pending';index;check:chk_orders_order_status,order_status IN ('pending','processing','shipped','delivered','cancelled')" json:"order_status"`
	TotalAmount        decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_orders_total_amount_non_negative,total_amount >= 0" json:"total_amount"`
	Notes              *string         `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	// заполняется только списком заказов (подзапрос COUNT)
	ItemCount int64 `gorm:"->;-:migration" json:"item_count,omitempty"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderID       uint            `gorm:"not null;index" json:"order_id"`
	ProductID     *uint           `gorm:"index" json:"product_id"`
	ProductName   string          `gorm:"type:text;not null" json:"product_name"`
	ProductNameAr *string         `gorm:"type:text" json:"product_name_ar"`
	Quantity      int             `gorm:"not null;check:chk_order_items_quantity_positive,quantity > 0" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_order_items_price_non_negative,price >= 0" json:"price"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null;check:chk_order_items_total_non_negative,total >= 0" json:"total"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// текущая картинка товара, подтягивается LEFT JOIN при чтении
	ProductImage *string `gorm:"->;-:migration" json:"product_image,omitempty"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL" json:"-"`
}

func (OrderItem) TableName() string { return "order_items" }

type Role string

const RoleAdmin Role = "admin"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_users_username" json:"username"`
	Password  string    `gorm:"type:text;not null" json:"-"` // bcrypt hash
	Role      Role      `gorm:"type:varchar(16);not null;default:'admin'" json:"role"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "users" }
