package domain

import "time"

// EventType represents a billing event consumed from the broker
type EventType string

const (
	EventPaymentOverdue   EventType = "billing.payment.overdue"
	EventContactRequested EventType = "billing.contact.requested"
)

// BillingEvent is emitted by the financial system when a client payment
// becomes overdue or a contact request is registered. The consumer turns it
// into a templated send through the same delivery pipeline as the API.
type BillingEvent struct {
	Type      EventType `json:"type"`
	Recipient Recipient `json:"recipient"`
	Subject   string    `json:"subject"`
	Template  string    `json:"template"`
	Timestamp time.Time `json:"timestamp"`
}
