package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"storefront-service/internal/dto"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeServiceError: единое место сопоставления ошибок сервиса и HTTP-статусов
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]dto.FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, dto.FieldError{Field: f.Field, Message: f.Message, Tag: f.Tag})
		}
		log.Warn("validation failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError(verr.Message, fields))
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("Order not found"))
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("Product not found"))
	case errors.Is(err, service.ErrPriceMismatch):
		log.Warn("price mismatch", zap.Error(err))
		resp := dto.NewConflictError("Prices have changed, please review your cart")
		resp.Details = err.Error()
		c.JSON(http.StatusConflict, resp)
	case errors.Is(err, service.ErrInvalidTransition):
		log.Warn("invalid status transition", zap.Error(err))
		resp := dto.NewConflictError("Status transition not allowed")
		resp.Details = err.Error()
		c.JSON(http.StatusConflict, resp)
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("Invalid credentials"))
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("admin role required"))
	default:
		log.Error("internal error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

func badRequestBody(c *gin.Context, log *zap.Logger, err error) {
	log.Warn("invalid request body", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid id", []dto.FieldError{
			{Field: name, Message: "must be a positive integer", Tag: "gt"},
		}))
		return 0, false
	}
	return uint(id), true
}

// queryInt: пустое значение → def; мусор → ошибка
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func queryError(c *gin.Context, field string) {
	c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid query parameter", []dto.FieldError{
		{Field: field, Message: "must be an integer", Tag: "numeric"},
	}))
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
