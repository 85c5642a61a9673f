package service

import (
	"context"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// ProductCatalog: чтение товаров. Оформление заказа получает некэшированный репозиторий,
// витрина может читать через кэш.
type ProductCatalog interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	List(ctx context.Context, f repository.ProductListFilter) ([]models.Product, int64, error)
	BatchGetByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
}

type UserRepo interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type Claims struct {
	UserID   uint
	Username string
	Role     string
	Exp      time.Time
}

type TokenProvider interface {
	SignAccess(ctx context.Context, userID uint, username, role string, ttl time.Duration) (string, time.Time, error)
	ParseAndValidateAccess(ctx context.Context, token string) (*Claims, error)
}

// ProductStore: каталог плюс запись карточек из админки
type ProductStore interface {
	ProductCatalog
	Create(ctx context.Context, p *models.Product) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
}
