package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type OrderListFilter struct {
	Status        *models.OrderStatus
	PaymentStatus *models.PaymentStatus
	Query         string // номер заказа, имя или телефон покупателя
	Limit         int
	Offset        int
}

// StatusUpdate: частичное обновление, nil-поля не трогаются
type StatusUpdate struct {
	OrderStatus   *models.OrderStatus
	PaymentStatus *models.PaymentStatus
}

type StatsSummary struct {
	TotalOrders      int64           `json:"total_orders"`
	PendingOrders    int64           `json:"pending_orders"`
	ProcessingOrders int64           `json:"processing_orders"`
	ShippedOrders    int64           `json:"shipped_orders"`
	DeliveredOrders  int64           `json:"delivered_orders"`
	CancelledOrders  int64           `json:"cancelled_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	PaidRevenue      decimal.Decimal `json:"paid_revenue"`
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.Order) error
	CreateWithItems(ctx context.Context, o *models.Order, items []models.OrderItem) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Order, error)
	GetByOrderNumber(ctx context.Context, number string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uint, upd StatusUpdate, at time.Time) (bool, error)
	List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error)
	StatsSummary(ctx context.Context) (*StatsSummary, error)

	WithTx(ctx context.Context, fn func(txRepo OrderRepo, txItems OrderItemRepo) error) error
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateOrderNumber
	}
	return err
}

// CreateWithItems пишет заказ и все позиции одной транзакцией: заказ без позиций не может остаться в базе.
func (r *orderRepo) CreateWithItems(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	return r.WithTx(ctx, func(txOrders OrderRepo, txItems OrderItemRepo) error {
		if err := txOrders.Create(ctx, o); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = o.ID
		}
		if err := txItems.BulkCreate(ctx, items); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}

		sum, err := txItems.SumByOrder(ctx, o.ID)
		if err != nil {
			return fmt.Errorf("sum order items: %w", err)
		}
		if !sum.Round(2).Equal(o.TotalAmount.Round(2)) {
			return fmt.Errorf("order total %s does not match items sum %s", o.TotalAmount, sum)
		}

		o.Items = items
		return nil
	})
}

func (r *orderRepo) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	return r.getWithItems(ctx, "id = ?", id)
}

func (r *orderRepo) GetByOrderNumber(ctx context.Context, number string) (*models.Order, error) {
	return r.getWithItems(ctx, "order_number = ?", number)
}

func (r *orderRepo) getWithItems(ctx context.Context, query string, arg any) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Where(query, arg).First(&ord).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := (&orderItemRepo{db: r.db}).GetByOrderID(ctx, ord.ID)
	if err != nil {
		return nil, err
	}
	ord.Items = items
	return &ord, nil
}

// GetByIDForUpdate блокирует строку заказа до конца транзакции (в sqlite блокировка не нужна и пропускается драйвером).
func (r *orderRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var ord models.Order
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint, upd StatusUpdate, at time.Time) (bool, error) {
	fields := map[string]any{"updated_at": at}
	if upd.OrderStatus != nil {
		fields["order_status"] = *upd.OrderStatus
	}
	if upd.PaymentStatus != nil {
		fields["payment_status"] = *upd.PaymentStatus
	}

	tx := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]*models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})

	if f.Status != nil {
		q = q.Where("order_status = ?", *f.Status)
	}
	if f.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *f.PaymentStatus)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(lower(order_number) LIKE ? OR lower(customer_name) LIKE ? OR customer_phone LIKE ?)", like, like, "%"+s+"%")
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []*models.Order
	err := q.Select("orders.*, (SELECT COUNT(*) FROM order_items WHERE order_items.order_id = orders.id) AS item_count").
		Order("orders.created_at DESC").
		Order("orders.id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&list).Error
	return list, total, err
}

func (r *orderRepo) StatsSummary(ctx context.Context) (*StatsSummary, error) {
	var s StatsSummary
	err := r.db.WithContext(ctx).Model(&models.Order{}).Select(`
COUNT(*) AS total_orders,
COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS pending_orders,
COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS processing_orders,
COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS shipped_orders,
COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS delivered_orders,
COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS cancelled_orders,
COALESCE(SUM(total_amount), 0) AS total_revenue,
COALESCE(SUM(CASE WHEN payment_status = ? THEN total_amount ELSE 0 END), 0) AS paid_revenue`,
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
		models.PaymentStatusPaid,
	).Scan(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *orderRepo) WithTx(ctx context.Context, fn func(txRepo OrderRepo, txItems OrderItemRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderRepo{db: tx}, &orderItemRepo{db: tx})
	})
}
