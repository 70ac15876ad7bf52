package model

import (
	"encoding/json"
	"fmt"
)

// OrderMetadata is a tagged variant: exactly one branch is set, matching the
// order type. It is serialized opaquely into Order.Metadata and decoded back
// through this schema at the boundary.
type OrderMetadata struct {
	Consultation *ConsultationMetadata `json:"consultation,omitempty"`
	Product      *ProductMetadata      `json:"product,omitempty"`
}

type ConsultationMetadata struct {
	ConsultationType string `json:"consultationType"`
}

type ProductMetadata struct {
	Items           []CartItem      `json:"items"`
	Subtotal        int64           `json:"subtotal"`
	Shipping        int64           `json:"shipping"`
	Tax             int64           `json:"tax"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
}

type CartItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"` // minor units
	Quantity  int64  `json:"quantity"`
}

type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func (m OrderMetadata) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal order metadata: %w", err)
	}
	return string(b), nil
}

func DecodeOrderMetadata(raw string) (OrderMetadata, error) {
	var m OrderMetadata
	if raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return m, fmt.Errorf("decode order metadata: %w", err)
	}
	return m, nil
}
