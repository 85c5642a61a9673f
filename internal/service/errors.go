package service

import (
	"errors"
	"strings"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrOrderNotFound        = errors.New("order not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrPriceMismatch        = errors.New("submitted price does not match current price")
	ErrInvalidTransition    = errors.New("status transition not allowed")
	ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
)

type FieldViolation struct {
	Field   string
	Message string
	Tag     string
}

// ValidationError: ошибка входных данных, errors.Is(err, ErrValidation) == true
type ValidationError struct {
	Message string
	Fields  []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
