package service

import (
	"fmt"
	"slices"

	"storefront-service/internal/models"
)

// Заказ движется только вперёд; cancelled доступен из любого нетерминального статуса.
var orderStateTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusProcessing, models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusShipped:    {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:  {},
	models.OrderStatusCancelled:  {},
}

// Оплата: pending → paid | failed, повторная попытка failed → paid.
var paymentStateTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusPending: {models.PaymentStatusPaid, models.PaymentStatusFailed},
	models.PaymentStatusFailed:  {models.PaymentStatusPaid},
	models.PaymentStatusPaid:    {},
}

func IsValidOrderStatus(s models.OrderStatus) bool {
	return slices.Contains(models.OrderStatuses, s)
}

func IsValidPaymentStatus(s models.PaymentStatus) bool {
	return slices.Contains(models.PaymentStatuses, s)
}

// CanTransitionOrder reports whether an order may move from one status to
// another. Re-applying the current status is allowed.
func CanTransitionOrder(from, to models.OrderStatus) bool {
	if from == to {
		return IsValidOrderStatus(to)
	}
	return slices.Contains(orderStateTransitions[from], to)
}

func CanTransitionPayment(from, to models.PaymentStatus) bool {
	if from == to {
		return IsValidPaymentStatus(to)
	}
	return slices.Contains(paymentStateTransitions[from], to)
}

func NextOrderStatuses(from models.OrderStatus) []models.OrderStatus {
	return slices.Clone(orderStateTransitions[from])
}

func NextPaymentStatuses(from models.PaymentStatus) []models.PaymentStatus {
	return slices.Clone(paymentStateTransitions[from])
}

func IsTerminalOrderStatus(s models.OrderStatus) bool {
	next, ok := orderStateTransitions[s]
	return ok && len(next) == 0
}

func checkTransition(cur *models.Order, in UpdateStatusInput) error {
	if in.OrderStatus != nil && !CanTransitionOrder(cur.OrderStatus, *in.OrderStatus) {
		return fmt.Errorf("%w: order_status %s -> %s", ErrInvalidTransition, cur.OrderStatus, *in.OrderStatus)
	}
	if in.PaymentStatus != nil && !CanTransitionPayment(cur.PaymentStatus, *in.PaymentStatus) {
		return fmt.Errorf("%w: payment_status %s -> %s", ErrInvalidTransition, cur.PaymentStatus, *in.PaymentStatus)
	}
	return nil
}
