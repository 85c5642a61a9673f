package dto

import (
	"storefront-service/internal/service"

	"github.com/shopspring/decimal"
)

type ProductListResponse struct {
	Products []service.PricedProduct `json:"products"`
	Total    int64                   `json:"total"`
}

// ProductRequest: цены принимаются строкой или числом
type ProductRequest struct {
	Name               string           `json:"name" example:"Silk Scarf"`
	NameAr             *string          `json:"name_ar,omitempty"`
	Description        *string          `json:"description,omitempty" example:"Hand-rolled edges"`
	DescriptionAr      *string          `json:"description_ar,omitempty"`
	Price              *decimal.Decimal `json:"price" swaggertype:"string" example:"50.00"`
	DiscountPrice      *decimal.Decimal `json:"discount_price,omitempty" swaggertype:"string" example:"40.00"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty" swaggertype:"string" example:"10"`
	Image              *string          `json:"image,omitempty" example:"/uploads/scarf.jpg"`
	CategoryID         *uint            `json:"category_id,omitempty" example:"3"`
	InStock            *bool            `json:"in_stock,omitempty" example:"true"`
}

func (r ProductRequest) ToInput() service.ProductInput {
	return service.ProductInput{
		Name:               r.Name,
		NameAr:             r.NameAr,
		Description:        r.Description,
		DescriptionAr:      r.DescriptionAr,
		Price:              r.Price,
		DiscountPrice:      r.DiscountPrice,
		DiscountPercentage: r.DiscountPercentage,
		Image:              r.Image,
		CategoryID:         r.CategoryID,
		InStock:            r.InStock,
	}
}

type ProductResponse struct {
	Message string                 `json:"message" example:"Product created successfully"`
	Product *service.PricedProduct `json:"product"`
}
