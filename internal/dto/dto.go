package dto

import (
	"crystalenergy-backend/internal/catalog"
	"crystalenergy-backend/internal/model"
)

type CreatePaymentRequest struct {
	Amount        int64               `json:"amount"` // minor units
	Currency      string              `json:"currency"`
	CustomerEmail string              `json:"customerEmail"`
	CustomerName  string              `json:"customerName"`
	OrderType     model.OrderType     `json:"orderType"`
	Metadata      model.OrderMetadata `json:"metadata"`
}

type StripeIntentResponse struct {
	Success         bool   `json:"success"`
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	OrderID         string `json:"orderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

type PaypalOrderResponse struct {
	Success       bool   `json:"success"`
	PaypalOrderID string `json:"paypalOrderId"`
	ApprovalURL   string `json:"approvalUrl"`
	OrderID       string `json:"orderId"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
}

type ConfirmStripeRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

type ConfirmResponse struct {
	Success   bool            `json:"success"`
	OrderID   string          `json:"orderId,omitempty"`
	Status    string          `json:"status"`
	OrderType model.OrderType `json:"orderType,omitempty"`
	Message   string          `json:"message,omitempty"`
}

type CaptureResponse struct {
	Success   bool            `json:"success"`
	OrderID   string          `json:"orderId"`
	CaptureID string          `json:"captureId"`
	Status    string          `json:"status"`
	OrderType model.OrderType `json:"orderType"`
}

type OrderStatusResponse struct {
	Success  bool              `json:"success"`
	OrderID  string            `json:"orderId"`
	Status   model.OrderStatus `json:"status"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
}

type PaymentMethodInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

type ConsultationRequest struct {
	OrderID          string `json:"orderId"`
	CustomerID       string `json:"customerId"`
	ConsultationType string `json:"consultationType"`
	BirthDate        string `json:"birthDate"`
	BirthTime        string `json:"birthTime"`
	BirthPlace       string `json:"birthPlace"`
	Questions        string `json:"questions"`
}

type ConsultationResponse struct {
	Success        bool   `json:"success"`
	ConsultationID string `json:"consultationId"`
	Result         string `json:"result,omitempty"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	Message        string `json:"message,omitempty"`
}

type ConsultationType struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"` // cents
	Duration    string   `json:"duration"`
	Features    []string `json:"features"`
	Popular     bool     `json:"popular,omitempty"`
}

type PurchaseRequest struct {
	Items           []catalog.LineItem    `json:"items"`
	CustomerEmail   string                `json:"customerEmail"`
	CustomerName    string                `json:"customerName"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   model.PaymentMethod   `json:"paymentMethod"`
}

type CalculateTotalRequest struct {
	Items           []catalog.LineItem     `json:"items"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress"`
}
