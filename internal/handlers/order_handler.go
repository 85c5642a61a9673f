package handlers

import (
	"net/http"
	"strings"

	"storefront-service/internal/dto"
	"storefront-service/internal/models"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

// Create godoc
// @Summary Оформление заказа
// @Description Проверяет корзину, пересчитывает цены по каталогу и сохраняет заказ вместе с позициями
// @Tags orders
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderRequest true "Данные заказа"
// @Success 201 {object} dto.CreateOrderResponse
// @Failure 400 {object} dto.ValidationErrorResponse "Неверные данные"
// @Failure 409 {object} dto.ConflictErrorResponse "Цены изменились"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, h.log, err)
		return
	}

	in := service.CreateOrderInput{
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.ShippingCity,
		ShippingPostalCode: req.ShippingPostalCode,
		PaymentMethod:      models.PaymentMethod(strings.TrimSpace(req.PaymentMethod)),
		TotalAmount:        req.TotalAmount,
		Notes:              req.Notes,
		Items:              make([]service.CreateOrderItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.CreateOrderItem{
			ProductID:     it.ProductID,
			ProductName:   it.ProductName,
			ProductNameAr: it.ProductNameAr,
			Quantity:      it.Quantity,
			Price:         it.Price,
			Total:         it.Total,
		})
	}

	ord, err := h.orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateOrderResponse{
		OrderID:     ord.ID,
		OrderNumber: ord.OrderNumber,
		Message:     "Order created successfully",
	})
}

// Track godoc
// @Summary Отслеживание заказа
// @Description Публичный просмотр заказа по номеру
// @Tags orders
// @Produce json
// @Param orderNumber path string true "Номер заказа"
// @Success 200 {object} models.Order
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Failure 500 {object} dto.InternalErrorResponse "Внутренняя ошибка"
// @Router /api/orders/track/{orderNumber} [get]
func (h *OrderHandler) Track(c *gin.Context) {
	ord, err := h.orders.TrackOrder(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

// Items godoc
// @Summary Позиции заказа
// @Tags orders
// @Produce json
// @Param id path int true "ID заказа"
// @Success 200 {object} dto.OrderItemsResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Router /api/orders/{id}/items [get]
func (h *OrderHandler) Items(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	items, err := h.orders.ListOrderItems(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	if items == nil {
		items = []models.OrderItem{}
	}
	c.JSON(http.StatusOK, dto.OrderItemsResponse{Items: items})
}

// List godoc
// @Summary Список заказов (админ)
// @Description Новые сверху, с количеством позиций
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Статус заказа"
// @Param payment_status query string false "Статус оплаты"
// @Param q query string false "Поиск по номеру, имени, телефону"
// @Param limit query int false "Лимит (по умолчанию 50, максимум 200)"
// @Param offset query int false "Смещение"
// @Success 200 {object} dto.OrderListResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Router /api/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
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

	f := service.ListFilter{Query: c.Query("q"), Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		st := models.OrderStatus(s)
		f.Status = &st
	}
	if s := c.Query("payment_status"); s != "" {
		ps := models.PaymentStatus(s)
		f.PaymentStatus = &ps
	}

	orders, total, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{Orders: orders, Total: total})
}

// Get godoc
// @Summary Заказ по ID (админ)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заказа"
// @Success 200 {object} dto.AdminOrderResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Router /api/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ord, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAdminOrderResponse(ord))
}

// UpdateStatus godoc
// @Summary Смена статуса заказа (админ)
// @Description Частичное обновление order_status и/или payment_status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заказа"
// @Param status body dto.UpdateOrderStatusRequest true "Новые статусы"
// @Success 200 {object} dto.UpdateOrderStatusResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Заказ не найден"
// @Failure 409 {object} dto.ConflictErrorResponse "Недопустимый переход"
// @Router /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequestBody(c, h.log, err)
		return
	}

	// пустая строка равносильна отсутствию поля
	var in service.UpdateStatusInput
	if v := trimmedOrNil(req.OrderStatus); v != nil {
		st := models.OrderStatus(*v)
		in.OrderStatus = &st
	}
	if v := trimmedOrNil(req.PaymentStatus); v != nil {
		ps := models.PaymentStatus(*v)
		in.PaymentStatus = &ps
	}

	ord, err := h.orders.UpdateStatus(c.Request.Context(), id, in)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.UpdateOrderStatusResponse{Message: "Order updated successfully", Order: dto.NewAdminOrderResponse(ord)})
}

// Stats godoc
// @Summary Сводка по заказам (админ)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repository.StatsSummary
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/orders/stats/summary [get]
func (h *OrderHandler) Stats(c *gin.Context) {
	st, err := h.orders.StatsSummary(c.Request.Context())
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
