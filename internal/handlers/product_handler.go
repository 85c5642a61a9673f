package handlers

import (
	"net/http"
	"strconv"

	"storefront-service/internal/dto"
	"storefront-service/internal/repository"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products *service.ProductService
	log      *zap.Logger
}

func NewProductHandler(products *service.ProductService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

// List godoc
// @Summary Каталог товаров
// @Description Товары с вычисленной ценой (скидка, исходная цена, процент)
// @Tags products
// @Produce json
// @Param q query string false "Поиск по названию"
// @Param category_id query int false "Категория"
// @Param in_stock query bool false "Только в наличии"
// @Param limit query int false "Лимит"
// @Param offset query int false "Смещение"
// @Success 200 {object} dto.ProductListResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Router /api/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		queryError(c, "limit")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		queryError(c, "offset")
		return
	}

	f := repository.ProductListFilter{Query: c.Query("q"), Limit: limit, Offset: offset}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			queryError(c, "category_id")
			return
		}
		cid := uint(id)
		f.CategoryID = &cid
	}
	if raw := c.Query("in_stock"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid query parameter", []dto.FieldError{
				{Field: "in_stock", Message: "must be a boolean", Tag: "boolean"},
			}))
			return
		}
		f.InStock = &b
	}

	list, total, err := h.products.List(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductListResponse{Products: list, Total: total})
}

// Get godoc
// @Summary Товар по ID
// @Tags products
// @Produce json
// @Param id path int true "ID товара"
// @Success 200 {object} service.PricedProduct
// @Failure 404 {object} dto.NotFoundErrorResponse "Товар не найден"
// @Router /api/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create godoc
// @Summary Новый товар (админ)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body dto.ProductRequest true "Карточка товара"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, h.log, err)
		return
	}

	p, err := h.products.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ProductResponse{Message: "Product created successfully", Product: p})
}

// Update godoc
// @Summary Изменение товара (админ)
// @Description Заменяет карточку целиком; без image картинка остаётся прежней
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID товара"
// @Param product body dto.ProductRequest true "Карточка товара"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Товар не найден"
// @Router /api/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, h.log, err)
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProductResponse{Message: "Product updated successfully", Product: p})
}
