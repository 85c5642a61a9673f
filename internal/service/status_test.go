package service

import (
	"errors"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrder(t *testing.T) {
	const (
		pending    = models.OrderStatusPending
		processing = models.OrderStatusProcessing
		shipped    = models.OrderStatusShipped
		delivered  = models.OrderStatusDelivered
		cancelled  = models.OrderStatusCancelled
	)
	tests := []struct {
		from, to models.OrderStatus
		want     bool
	}{
		{pending, processing, true},
		{pending, shipped, true},
		{pending, delivered, true},
		{pending, cancelled, true},
		{processing, shipped, true},
		{processing, cancelled, true},
		{processing, pending, false},
		{shipped, delivered, true},
		{shipped, cancelled, true},
		{shipped, processing, false},
		{delivered, cancelled, false},
		{delivered, pending, false},
		{cancelled, pending, false},
		{cancelled, processing, false},
		{pending, pending, true},
		{delivered, delivered, true},
		{cancelled, cancelled, true},
		{pending, "lost", false},
		{"lost", "lost", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanTransitionOrder(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCanTransitionPayment(t *testing.T) {
	assert.True(t, CanTransitionPayment(models.PaymentStatusPending, models.PaymentStatusPaid))
	assert.True(t, CanTransitionPayment(models.PaymentStatusPending, models.PaymentStatusFailed))
	assert.True(t, CanTransitionPayment(models.PaymentStatusFailed, models.PaymentStatusPaid))
	assert.True(t, CanTransitionPayment(models.PaymentStatusPaid, models.PaymentStatusPaid))
	assert.False(t, CanTransitionPayment(models.PaymentStatusPaid, models.PaymentStatusPending))
	assert.False(t, CanTransitionPayment(models.PaymentStatusPaid, models.PaymentStatusFailed))
	assert.False(t, CanTransitionPayment(models.PaymentStatusFailed, models.PaymentStatusPending))
}

func TestTerminalAndNext(t *testing.T) {
	assert.True(t, IsTerminalOrderStatus(models.OrderStatusDelivered))
	assert.True(t, IsTerminalOrderStatus(models.OrderStatusCancelled))
	assert.False(t, IsTerminalOrderStatus(models.OrderStatusShipped))
	assert.False(t, IsTerminalOrderStatus("lost"))

	next := NextOrderStatuses(models.OrderStatusShipped)
	assert.ElementsMatch(t, []models.OrderStatus{models.OrderStatusDelivered, models.OrderStatusCancelled}, next)
	next[0] = "mutated"
	assert.NotContains(t, NextOrderStatuses(models.OrderStatusShipped), models.OrderStatus("mutated"))

	assert.Empty(t, NextPaymentStatuses(models.PaymentStatusPaid))
}

func TestCheckTransition(t *testing.T) {
	cur := &models.Order{OrderStatus: models.OrderStatusDelivered, PaymentStatus: models.PaymentStatusPending}

	paid := models.PaymentStatusPaid
	assert.NoError(t, checkTransition(cur, UpdateStatusInput{PaymentStatus: &paid}))

	back := models.OrderStatusProcessing
	err := checkTransition(cur, UpdateStatusInput{OrderStatus: &back, PaymentStatus: &paid})
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestIsValidEnums(t *testing.T) {
	assert.True(t, IsValidOrderStatus(models.OrderStatusShipped))
	assert.False(t, IsValidPaymentStatus("refunded"))
}
