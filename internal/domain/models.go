package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SendStatus represents the outcome of a delivery attempt
type SendStatus string

const (
	SendStatusSent   SendStatus = "sent"
	SendStatusFailed SendStatus = "failed"
)

// SendSource identifies which entry point produced a send
type SendSource string

const (
	SendSourceSingle SendSource = "single"
	SendSourceBulk   SendSource = "bulk"
	SendSourceEvent  SendSource = "event"
)

// EmailLog records one delivery attempt for auditing and statistics
type EmailLog struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MessageID string             `json:"message_id" bson:"message_id"`
	Recipient string             `json:"recipient" bson:"recipient"`
	Subject   string             `json:"subject" bson:"subject"`
	Template  string             `json:"template" bson:"template"`
	Status    SendStatus         `json:"status" bson:"status"`
	Source    SendSource         `json:"source" bson:"source"`
	Error     string             `json:"error,omitempty" bson:"error,omitempty"`
	SentAt    *time.Time         `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
