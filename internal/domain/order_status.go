package domain

import "fmt"

var validNextStatus = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

var validNextPayment = map[string][]string{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusFailed:  {PaymentStatusPending, PaymentStatusPaid},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

func IsValidOrderStatus(s string) bool {
	return contains(OrderStatuses, s)
}

func IsValidPaymentStatus(s string) bool {
	return contains(PaymentStatuses, s)
}

// ValidateOrderTransition returns ErrInvalidTransition unless from -> to is an allowed move.
func ValidateOrderTransition(from, to string) error {
	if !contains(validNextStatus[from], to) {
		return fmt.Errorf("%w: order %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func ValidatePaymentTransition(from, to string) error {
	if !contains(validNextPayment[from], to) {
		return fmt.Errorf("%w: payment %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// IsCancellable reports whether an order in this status can still be cancelled.
func IsCancellable(status string) bool {
	return status == OrderStatusPending || status == OrderStatusConfirmed
}

func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}
