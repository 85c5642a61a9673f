package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/pricing"
	"storefront-service/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxOrderNumberAttempts = 5

// допустимое расхождение между ценой клиента и пересчитанной на сервере
var priceEpsilon = decimal.RequireFromString("0.01")

type orderService struct {
	orders   repository.OrderRepo
	products ProductCatalog
	events   EventBus
	numbers  OrderNumberGenerator
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*orderService)

func WithClock(now func() time.Time) Option {
	return func(s *orderService) { s.now = now }
}

func WithOrderNumberGenerator(g OrderNumberGenerator) Option {
	return func(s *orderService) { s.numbers = g }
}

// NewOrderService собирает оркестратор оформления заказа. При events == nil публикация отключена.
func NewOrderService(orders repository.OrderRepo, products ProductCatalog, events EventBus, log *zap.Logger, opts ...Option) OrderService {
	s := &orderService{
		orders:   orders,
		products: products,
		events:   events,
		numbers:  GenerateOrderNumber,
		validate: newValidator(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	normalizeCreateInput(&in)
	if err := s.validateCreateInput(in); err != nil {
		return nil, err
	}

	now := s.now()
	lines, total, err := s.priceItems(ctx, in.Items, now)
	if err != nil {
		return nil, err
	}
	if in.TotalAmount != nil && !withinEpsilon(*in.TotalAmount, total) {
		return nil, fmt.Errorf("%w: total_amount submitted %s, current %s", ErrPriceMismatch, in.TotalAmount.StringFixed(2), total.StringFixed(2))
	}

	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		number, err := s.numbers(now)
		if err != nil {
			return nil, err
		}

		order := &models.Order{
			OrderNumber:        number,
			CustomerName:       in.CustomerName,
			CustomerEmail:      in.CustomerEmail,
			CustomerPhone:      in.CustomerPhone,
			ShippingAddress:    in.ShippingAddress,
			ShippingCity:       in.ShippingCity,
			ShippingPostalCode: in.ShippingPostalCode,
			PaymentMethod:      in.PaymentMethod,
			PaymentStatus:      models.PaymentStatusPending,
			OrderStatus:        models.OrderStatusPending,
			TotalAmount:        total,
			Notes:              in.Notes,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		items := make([]models.OrderItem, len(lines))
		copy(items, lines)

		err = s.orders.CreateWithItems(ctx, order, items)
		if errors.Is(err, repository.ErrDuplicateOrderNumber) {
			s.log.Warn("order number collision, retrying", zap.String("order_number", number), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}

		s.log.Info("order created",
			zap.Uint("order_id", order.ID),
			zap.String("order_number", order.OrderNumber),
			zap.Int("items", len(order.Items)),
			zap.String("total_amount", order.TotalAmount.StringFixed(2)),
		)

		if s.events != nil {
			if err := s.events.PublishOrderCreated(ctx, newOrderCreatedEvent(order)); err != nil {
				s.log.Error("publish order created", zap.String("order_number", order.OrderNumber), zap.Error(err))
			}
		}
		return order, nil
	}

	return nil, ErrOrderNumberExhausted
}

func normalizeCreateInput(in *CreateOrderInput) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	in.PaymentMethod = models.PaymentMethod(strings.TrimSpace(string(in.PaymentMethod)))
	in.CustomerEmail = trimOptional(in.CustomerEmail)
	in.ShippingCity = trimOptional(in.ShippingCity)
	in.ShippingPostalCode = trimOptional(in.ShippingPostalCode)
	in.Notes = trimOptional(in.Notes)
	for i := range in.Items {
		in.Items[i].ProductName = strings.TrimSpace(in.Items[i].ProductName)
		in.Items[i].ProductNameAr = trimOptional(in.Items[i].ProductNameAr)
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func (s *orderService) validateCreateInput(in CreateOrderInput) error {
	return structViolations(s.validate, in, "Invalid order data")
}

// structViolations переводит ошибки validator в ValidationError с путями полей
func structViolations(v *validator.Validate, in any, invalidMsg string) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Message: invalidMsg}
	}

	missing := false
	fields := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = true
		}
		fields = append(fields, FieldViolation{
			Field:   fieldPath(fe.Namespace()),
			Message: violationMessage(fe),
			Tag:     fe.Tag(),
		})
	}

	msg := invalidMsg
	if missing {
		msg = "Missing required fields"
	}
	return &ValidationError{Message: msg, Fields: fields}
}

// "CreateOrderInput.items[0].quantity" -> "items[0].quantity"
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return "must contain at least " + fe.Param() + " item(s)"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

// priceItems перечитывает товары и заново считает цены: клиентским суммам не доверяем.
func (s *orderService) priceItems(ctx context.Context, items []CreateOrderItem, now time.Time) ([]models.OrderItem, decimal.Decimal, error) {
	ids := make([]uint, 0, len(items))
	seen := make(map[uint]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	products, err := s.products.BatchGetByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var (
		lines   = make([]models.OrderItem, 0, len(items))
		total   = decimal.Zero
		missing []FieldViolation
	)
	for i, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			missing = append(missing, FieldViolation{
				Field:   fmt.Sprintf("items[%d].product_id", i),
				Message: ErrProductNotFound.Error(),
				Tag:     "exists",
			})
			continue
		}

		price := pricing.ResolveProduct(p).DisplayPrice.Round(2)
		lineTotal := price.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)

		if it.Price != nil && !withinEpsilon(*it.Price, price) {
			return nil, decimal.Zero, fmt.Errorf("%w: items[%d].price submitted %s, current %s", ErrPriceMismatch, i, it.Price.StringFixed(2), price.StringFixed(2))
		}
		if it.Total != nil && !withinEpsilon(*it.Total, lineTotal) {
			return nil, decimal.Zero, fmt.Errorf("%w: items[%d].total submitted %s, current %s", ErrPriceMismatch, i, it.Total.StringFixed(2), lineTotal.StringFixed(2))
		}

		name := p.Name
		if name == "" {
			name = it.ProductName
		}
		nameAr := p.NameAr
		if nameAr == nil {
			nameAr = it.ProductNameAr
		}
		pid := p.ID

		lines = append(lines, models.OrderItem{
			ProductID:     &pid,
			ProductName:   name,
			ProductNameAr: nameAr,
			Quantity:      it.Quantity,
			Price:         price,
			Total:         lineTotal,
			CreatedAt:     now,
		})
		total = total.Add(lineTotal)
	}

	if len(missing) > 0 {
		return nil, decimal.Zero, &ValidationError{Message: "Unknown products in cart", Fields: missing}
	}
	return lines, total, nil
}

func withinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(priceEpsilon)
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	ord, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) TrackOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, ErrOrderNotFound
	}
	ord, err := s.orders.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *orderService) ListOrderItems(ctx context.Context, id uint) ([]models.OrderItem, error) {
	ord, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return ord.Items, nil
}

func (s *orderService) ListOrders(ctx context.Context, f ListFilter) ([]*models.Order, int64, error) {
	if f.Status != nil && !IsValidOrderStatus(*f.Status) {
		return nil, 0, &ValidationError{Message: "Invalid filter", Fields: []FieldViolation{{Field: "status", Message: "unknown order status", Tag: "oneof"}}}
	}
	if f.PaymentStatus != nil && !IsValidPaymentStatus(*f.PaymentStatus) {
		return nil, 0, &ValidationError{Message: "Invalid filter", Fields: []FieldViolation{{Field: "payment_status", Message: "unknown payment status", Tag: "oneof"}}}
	}
	return s.orders.List(ctx, f)
}

func (s *orderService) UpdateStatus(ctx context.Context, id uint, in UpdateStatusInput) (*models.Order, error) {
	if in.OrderStatus == nil && in.PaymentStatus == nil {
		return nil, &ValidationError{Message: "No updates provided"}
	}

	var fields []FieldViolation
	if in.OrderStatus != nil && !IsValidOrderStatus(*in.OrderStatus) {
		fields = append(fields, FieldViolation{Field: "order_status", Message: "unknown order status", Tag: "oneof"})
	}
	if in.PaymentStatus != nil && !IsValidPaymentStatus(*in.PaymentStatus) {
		fields = append(fields, FieldViolation{Field: "payment_status", Message: "unknown payment status", Tag: "oneof"})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "Invalid status", Fields: fields}
	}

	var before models.Order
	now := s.now()
	err := s.orders.WithTx(ctx, func(tx repository.OrderRepo, _ repository.OrderItemRepo) error {
		cur, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrOrderNotFound
		}
		before = *cur

		if err := checkTransition(cur, in); err != nil {
			return err
		}

		updated, err := tx.UpdateStatus(ctx, id, repository.StatusUpdate{
			OrderStatus:   in.OrderStatus,
			PaymentStatus: in.PaymentStatus,
		}, now)
		if err != nil {
			return err
		}
		if !updated {
			return ErrOrderNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	after, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := before.OrderStatus != after.OrderStatus || before.PaymentStatus != after.PaymentStatus
	if changed {
		s.log.Info("order status updated",
			zap.Uint("order_id", id),
			zap.String("order_status", string(after.OrderStatus)),
			zap.String("payment_status", string(after.PaymentStatus)),
			zap.String("changed_by", changedBy(ctx)),
		)
		if s.events != nil {
			if err := s.events.PublishOrderStatusChanged(ctx, newStatusChangedEvent(&before, after, changedBy(ctx), now)); err != nil {
				s.log.Error("publish order status changed", zap.Uint("order_id", id), zap.Error(err))
			}
		}
	}
	return after, nil
}

func (s *orderService) StatsSummary(ctx context.Context) (*StatsSummary, error) {
	return s.orders.StatsSummary(ctx)
}
