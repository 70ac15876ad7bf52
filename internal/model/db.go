package model

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderFailed     OrderStatus = "failed"
	OrderRefunded   OrderStatus = "refunded"
)

// Terminal reports whether no further automatic transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderFailed || s == OrderRefunded
}

type OrderType string

const (
	OrderTypeConsultation OrderType = "consultation"
	OrderTypeProduct      OrderType = "product"
)

type PaymentMethod string

const (
	MethodStripe PaymentMethod = "stripe"
	MethodPaypal PaymentMethod = "paypal"
)

type Customer struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Name      string `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID            string        `gorm:"primaryKey;size:64;not null"`
	CustomerID    string        `gorm:"size:64;index;not null"`
	Type          OrderType     `gorm:"size:32;not null"`
	Amount        int64         `gorm:"not null"` // minor currency units, fixed at creation
	Currency      string        `gorm:"size:8;not null"`
	Status        OrderStatus   `gorm:"size:32;index;not null"`
	PaymentMethod PaymentMethod `gorm:"size:32;not null"`

	// Exactly one of these is set, matching PaymentMethod.
	StripePaymentIntentID string `gorm:"size:128;index"`
	PaypalOrderID         string `gorm:"size:128;index"`
	PaypalCaptureID       string `gorm:"size:128"`

	Metadata  string `gorm:"type:text"` // serialized OrderMetadata
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ConsultationStatus string

const (
	ConsultationPending   ConsultationStatus = "pending"
	ConsultationCompleted ConsultationStatus = "completed"
	ConsultationFailed    ConsultationStatus = "failed"
)

type Consultation struct {
	ID          string             `gorm:"primaryKey;size:64;not null"`
	OrderID     string             `gorm:"size:64;uniqueIndex;not null"`
	CustomerID  string             `gorm:"size:64;index;not null"`
	Type        string             `gorm:"size:32;not null"` // basic, detailed, comprehensive
	BirthDate   string             `gorm:"size:32;not null"`
	BirthTime   string             `gorm:"size:16"`
	BirthPlace  string             `gorm:"size:255;not null"`
	Questions   string             `gorm:"type:text;not null"`
	AIResult    string             `gorm:"type:text"`
	Status      ConsultationStatus `gorm:"size:32;index;not null"`
	GeneratedAt *time.Time
	EmailSentAt *time.Time
	CreatedAt   time.Time
}

// PaymentLog is append-only. Duplicate rows for a replayed provider event are
// acceptable; the log is the audit trail, not a state source.
type PaymentLog struct {
	ID              string `gorm:"primaryKey;size:64;not null"`
	OrderID         string `gorm:"size:64;index"` // empty when the event matched no order
	ProviderEventID string `gorm:"size:128;index"`
	EventType       string `gorm:"size:64;not null"`
	Status          string `gorm:"size:32;not null"`
	Data            string `gorm:"type:text"`
	CreatedAt       time.Time
}

const (
	EmailPending = "pending"
	EmailSent    = "sent"
	EmailFailed  = "failed"
)

// EmailLog is append-only, one row per send attempt.
type EmailLog struct {
	ID             string `gorm:"primaryKey;size:64;not null"`
	ConsultationID string `gorm:"size:64;index"`
	Recipient      string `gorm:"size:255;not null"`
	Subject        string `gorm:"size:255;not null"`
	Status         string `gorm:"size:32;not null"`
	Error          string `gorm:"type:text"`
	SentAt         *time.Time
	CreatedAt      time.Time
}
