package service

import (
	"context"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/pricing"
	"storefront-service/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var maxDiscountPercentage = decimal.NewFromInt(100)

// PricedProduct: товар витрины вместе с вычисленной ценой
type PricedProduct struct {
	models.Product
	Pricing pricing.Result `json:"pricing"`
}

// ProductInput: карточка товара из админки. Update заменяет все поля, кроме
// Image: nil оставляет текущую картинку.
type ProductInput struct {
	Name               string           `json:"name" validate:"required,max=255"`
	NameAr             *string          `json:"name_ar" validate:"omitempty,max=255"`
	Description        *string          `json:"description"`
	DescriptionAr      *string          `json:"description_ar"`
	Price              *decimal.Decimal `json:"price"`
	DiscountPrice      *decimal.Decimal `json:"discount_price"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	Image              *string          `json:"image" validate:"omitempty,max=1000"`
	CategoryID         *uint            `json:"category_id"`
	InStock            *bool            `json:"in_stock"`
}

type ProductService struct {
	store    ProductStore
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

// NewProductService: store обслуживает и витрину, и запись из админки,
// поэтому запись через кэширующий store сбрасывает его записи.
func NewProductService(store ProductStore, log *zap.Logger) *ProductService {
	return &ProductService{
		store:    store,
		validate: newValidator(),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) List(ctx context.Context, f repository.ProductListFilter) ([]PricedProduct, int64, error) {
	list, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PricedProduct, 0, len(list))
	for _, p := range list {
		out = append(out, PricedProduct{Product: p, Pricing: pricing.ResolveProduct(p)})
	}
	return out, total, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*PricedProduct, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return &PricedProduct{Product: *p, Pricing: pricing.ResolveProduct(*p)}, nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*PricedProduct, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.Product{
		Name:               in.Name,
		NameAr:             in.NameAr,
		Description:        in.Description,
		DescriptionAr:      in.DescriptionAr,
		Price:              *in.Price,
		DiscountPrice:      in.DiscountPrice,
		DiscountPercentage: in.DiscountPercentage,
		Image:              in.Image,
		CategoryID:         in.CategoryID,
		InStock:            *in.InStock,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}

	s.log.Info("product created", zap.Uint("product_id", p.ID), zap.String("price", p.Price.StringFixed(2)))
	return &PricedProduct{Product: *p, Pricing: pricing.ResolveProduct(*p)}, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*PricedProduct, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	cur, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, ErrProductNotFound
	}

	fields := map[string]any{
		"name":                in.Name,
		"name_ar":             strOrNil(in.NameAr),
		"description":         strOrNil(in.Description),
		"description_ar":      strOrNil(in.DescriptionAr),
		"price":               *in.Price,
		"discount_price":      decOrNil(in.DiscountPrice),
		"discount_percentage": decOrNil(in.DiscountPercentage),
		"category_id":         uintOrNil(in.CategoryID),
		"in_stock":            *in.InStock,
		"updated_at":          s.now(),
	}
	if in.Image != nil {
		fields["image"] = *in.Image
	}
	if err := s.store.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	s.log.Info("product updated",
		zap.Uint("product_id", id),
		zap.String("price_before", cur.Price.StringFixed(2)),
		zap.String("price", in.Price.StringFixed(2)),
	)
	return s.Get(ctx, id)
}

// validateInput проверяет карточку и приводит её к сохраняемому виду:
// пустые переводы берутся из основного языка, in_stock по умолчанию true,
// скидочная цена вне (0, price) отбрасывается.
func (s *ProductService) validateInput(in *ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := structViolations(s.validate, *in, "Invalid product data"); err != nil {
		return err
	}

	if in.Price == nil {
		return &ValidationError{Message: "Missing required fields", Fields: []FieldViolation{
			{Field: "price", Message: "is required", Tag: "required"},
		}}
	}

	var fields []FieldViolation
	if in.Price.IsNegative() {
		fields = append(fields, FieldViolation{Field: "price", Message: "must not be negative", Tag: "gte"})
	}
	if d := in.DiscountPercentage; d != nil && (d.IsNegative() || d.GreaterThan(maxDiscountPercentage)) {
		fields = append(fields, FieldViolation{Field: "discount_percentage", Message: "must be between 0 and 100", Tag: "range"})
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "Invalid product data", Fields: fields}
	}

	if d := in.DiscountPrice; d != nil && (!d.IsPositive() || !d.LessThan(*in.Price)) {
		in.DiscountPrice = nil
	}
	if d := in.DiscountPercentage; d != nil && d.IsZero() {
		in.DiscountPercentage = nil
	}
	in.NameAr = trimOptional(in.NameAr)
	if in.NameAr == nil {
		name := in.Name
		in.NameAr = &name
	}
	in.Description = trimOptional(in.Description)
	in.DescriptionAr = trimOptional(in.DescriptionAr)
	if in.DescriptionAr == nil {
		in.DescriptionAr = in.Description
	}
	in.Image = trimOptional(in.Image)
	if in.InStock == nil {
		inStock := true
		in.InStock = &inStock
	}
	return nil
}

func strOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func decOrNil(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return *d
}

func uintOrNil(u *uint) any {
	if u == nil {
		return nil
	}
	return *u
}
