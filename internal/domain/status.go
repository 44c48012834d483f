package domain

import "strings"

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderCompleted, OrderDelivered, OrderCancelled},
}

var orderStatusLabels = map[OrderStatus]string{
	OrderPending:    "Pending",
	OrderProcessing: "Processing",
	OrderCompleted:  "Completed",
	OrderDelivered:  "Delivered",
	OrderCancelled:  "Cancelled",
}

// ParseOrderStatus returns the status for a given label (case-insensitive).
func ParseOrderStatus(label string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(label)))
	_, ok := orderStatusLabels[status]
	return status, ok
}

// Label returns a human-readable label for the status.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

// IsRevenue reports whether orders in this status count as sales.
func (s OrderStatus) IsRevenue() bool {
	return s == OrderCompleted || s == OrderDelivered
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PaymentMethod is one of the fixed payment options at checkout
type PaymentMethod string

const (
	PaymentCOD        PaymentMethod = "cod"
	PaymentCard       PaymentMethod = "card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
)

// ParsePaymentMethod validates a payment method; empty defaults to cash on delivery.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return PaymentCOD, true
	case PaymentCOD, PaymentCard, PaymentUPI, PaymentNetBanking:
		return m, true
	}
	return "", false
}

// PrescriptionStatus is the review state of a prescription
type PrescriptionStatus string

const (
	PrescriptionPending  PrescriptionStatus = "pending"
	PrescriptionApproved PrescriptionStatus = "approved"
	PrescriptionRejected PrescriptionStatus = "rejected"
)

// NotificationType is the fixed set of notification kinds
type NotificationType string

const (
	NotificationNewOrder             NotificationType = "new_order"
	NotificationOrderStatus          NotificationType = "order_status"
	NotificationLowStock             NotificationType = "low_stock"
	NotificationExpiringSoon         NotificationType = "expiring_soon"
	NotificationPrescriptionUploaded NotificationType = "prescription_uploaded"
	NotificationPrescriptionQuoted   NotificationType = "prescription_quoted"
	NotificationPrescriptionApproved NotificationType = "prescription_approved"
	NotificationPrescriptionRejected NotificationType = "prescription_rejected"
	NotificationSystem               NotificationType = "system"
)
