package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicateOrderNumber: номер заказа уже занят (UNIQUE на orders.order_number)
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

type Repository struct {
	DB         *gorm.DB
	Orders     OrderRepo
	OrderItems OrderItemRepo
	Products   ProductRepo
	Users      UserRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:         db,
		Orders:     NewOrderRepo(db),
		OrderItems: NewOrderItemRepo(db),
		Products:   NewProductRepo(db),
		Users:      NewUserRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }
