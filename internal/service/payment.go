package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"

	"crystalenergy-backend/internal/adapter"
	"crystalenergy-backend/internal/client"
	"crystalenergy-backend/internal/dto"
	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"
	"crystalenergy-backend/internal/payment"
	"crystalenergy-backend/internal/reconcile"
	"crystalenergy-backend/internal/repository"
)

var supportedCurrencies = map[string]bool{"usd": true, "eur": true, "gbp": true}

type PaymentService struct {
	stripeClient  client.StripeClient
	paypalClient  client.PaypalClient
	stripeAdapter *adapter.StripeAdapter
	paypalAdapter *adapter.PaypalAdapter
	engine        *reconcile.Engine

	customers   repository.CustomerRepository
	orders      repository.OrderRepository
	paymentLogs repository.PaymentLogRepository

	stripeEnabled bool
	paypalEnabled bool
}

func NewPaymentService(
	stripeClient client.StripeClient,
	paypalClient client.PaypalClient,
	engine *reconcile.Engine,
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	paymentLogs repository.PaymentLogRepository,
	stripeEnabled, paypalEnabled bool,
) *PaymentService {
	return &PaymentService{
		stripeClient:  stripeClient,
		paypalClient:  paypalClient,
		stripeAdapter: adapter.NewStripeAdapter(stripeClient),
		paypalAdapter: adapter.NewPaypalAdapter(paypalClient),
		engine:        engine,
		customers:     customers,
		orders:        orders,
		paymentLogs:   paymentLogs,
		stripeEnabled: stripeEnabled,
		paypalEnabled: paypalEnabled,
	}
}

// CreateStripeIntent opens a pending order and a matching Stripe payment
// intent. Our order id rides in the intent metadata so webhook events can be
// correlated back even when the intent id was never persisted.
func (s *PaymentService) CreateStripeIntent(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.StripeIntentResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	customer, err := s.customers.Upsert(ctx, &model.Customer{
		ID:    uuid.NewString(),
		Email: req.CustomerEmail,
		Name:  req.CustomerName,
	})
	if err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	currency := strings.ToLower(req.Currency)

	intent, err := s.stripeClient.CreatePaymentIntent(ctx, &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(currency),
		Metadata: map[string]string{
			"customerName":  req.CustomerName,
			"customerEmail": req.CustomerEmail,
			"orderType":     string(req.OrderType),
			"orderId":       orderID,
		},
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create payment intent: %v", errs.ErrProviderUnavailable, err)
	}

	encoded, err := req.Metadata.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: encode order metadata: %v", errs.ErrValidation, err)
	}

	order := &model.Order{
		ID:                    orderID,
		CustomerID:            customer.ID,
		Type:                  req.OrderType,
		Amount:                req.Amount,
		Currency:              currency,
		Status:                model.OrderPending,
		PaymentMethod:         model.MethodStripe,
		StripePaymentIntentID: intent.ID,
		Metadata:              encoded,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.appendLog(ctx, orderID, intent.ID, "payment_intent.created", "pending", "")

	return &dto.StripeIntentResponse{
		Success:         true,
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		OrderID:         orderID,
		Amount:          req.Amount,
		Currency:        currency,
	}, nil
}

// CreatePaypalOrder opens a pending order backed by a PayPal checkout order.
func (s *PaymentService) CreatePaypalOrder(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaypalOrderResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	customer, err := s.customers.Upsert(ctx, &model.Customer{
		ID:    uuid.NewString(),
		Email: req.CustomerEmail,
		Name:  req.CustomerName,
	})
	if err != nil {
		return nil, err
	}

	orderID := uuid.NewString()
	description := "Crystal Purchase - " + req.CustomerName
	if req.OrderType == model.OrderTypeConsultation {
		description = "Feng Shui Consultation - " + req.CustomerName
	}

	result, err := s.paypalClient.CreateOrder(ctx, client.CreatePaypalOrderInput{
		Amount:      req.Amount,
		Currency:    strings.ToUpper(req.Currency),
		Description: description,
		CustomID:    orderID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create paypal order: %v", errs.ErrProviderUnavailable, err)
	}

	encoded, err := req.Metadata.Encode()
	if err != nil {
		return nil, fmt.Errorf("%w: encode order metadata: %v", errs.ErrValidation, err)
	}

	order := &model.Order{
		ID:            orderID,
		CustomerID:    customer.ID,
		Type:          req.OrderType,
		Amount:        req.Amount,
		Currency:      strings.ToLower(req.Currency),
		Status:        model.OrderPending,
		PaymentMethod: model.MethodPaypal,
		PaypalOrderID: result.OrderID,
		Metadata:      encoded,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.appendLog(ctx, orderID, result.OrderID, "paypal_order.created", "pending", "")

	return &dto.PaypalOrderResponse{
		Success:       true,
		PaypalOrderID: result.OrderID,
		ApprovalURL:   result.ApproveURL,
		OrderID:       orderID,
		Amount:        req.Amount,
		Currency:      strings.ToUpper(req.Currency),
	}, nil
}

// CapturePaypalOrder captures an approved PayPal order and reconciles the
// result. A failed capture feeds a failed event through the same engine so
// the order ends up in a consistent state either way.
func (s *PaymentService) CapturePaypalOrder(ctx context.Context, paypalOrderID string) (*dto.CaptureResponse, error) {
	order, err := s.orders.FindByProviderRef(ctx, payment.ProviderPaypal, paypalOrderID)
	if err != nil {
		return nil, err
	}

	capture, err := s.paypalClient.CaptureOrder(ctx, paypalOrderID)
	if err != nil {
		applyErr := s.engine.Apply(ctx, payment.Event{
			Provider:    payment.ProviderPaypal,
			Outcome:     payment.OutcomeFailed,
			ProviderRef: paypalOrderID,
			EventType:   "paypal_payment.capture_failed",
		})
		if applyErr != nil {
			log.Printf("reconcile failed capture for order %s: %v", order.ID, applyErr)
		}
		return nil, fmt.Errorf("%w: capture paypal order: %v", errs.ErrProviderUnavailable, err)
	}

	if err := s.orders.SetPaypalCapture(ctx, order.ID, capture.CaptureID); err != nil {
		return nil, err
	}

	if err := s.engine.Apply(ctx, payment.Event{
		Provider:    payment.ProviderPaypal,
		Outcome:     payment.OutcomeSucceeded,
		ProviderRef: paypalOrderID,
		EventType:   "paypal_payment.captured",
	}); err != nil {
		return nil, err
	}

	return &dto.CaptureResponse{
		Success:   true,
		OrderID:   order.ID,
		CaptureID: capture.CaptureID,
		Status:    capture.Status,
		OrderType: order.Type,
	}, nil
}

// ConfirmStripePayment polls the intent and reconciles its current state.
// The webhook normally gets there first; the engine makes the second
// application a no-op.
func (s *PaymentService) ConfirmStripePayment(ctx context.Context, req *dto.ConfirmStripeRequest) (*dto.ConfirmResponse, error) {
	if req.PaymentIntentID == "" {
		return nil, fmt.Errorf("%w: payment intent id is required", errs.ErrValidation)
	}

	intent, err := s.stripeClient.GetPaymentIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve payment intent: %v", errs.ErrProviderUnavailable, err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return &dto.ConfirmResponse{
			Success: false,
			Status:  string(intent.Status),
			Message: "Payment not completed",
		}, nil
	}

	if err := s.engine.Apply(ctx, payment.Event{
		Provider:      payment.ProviderStripe,
		Outcome:       payment.OutcomeSucceeded,
		ProviderRef:   intent.ID,
		CorrelationID: intent.Metadata["orderId"],
		EventType:     "payment_intent.succeeded",
	}); err != nil {
		return nil, err
	}

	return &dto.ConfirmResponse{
		Success:   true,
		OrderID:   intent.Metadata["orderId"],
		Status:    string(intent.Status),
		OrderType: model.OrderType(intent.Metadata["orderType"]),
	}, nil
}

func (s *PaymentService) OrderStatus(ctx context.Context, orderID string) (*dto.OrderStatusResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &dto.OrderStatusResponse{
		Success:  true,
		OrderID:  order.ID,
		Status:   order.Status,
		Amount:   order.Amount,
		Currency: order.Currency,
	}, nil
}

func (s *PaymentService) Methods() []dto.PaymentMethodInfo {
	return []dto.PaymentMethodInfo{
		{
			ID:          "stripe",
			Name:        "Credit/Debit Card",
			Description: "Pay with Visa, Mastercard, American Express",
			Enabled:     s.stripeEnabled,
		},
		{
			ID:          "paypal",
			Name:        "PayPal",
			Description: "Pay with your PayPal account",
			Enabled:     s.paypalEnabled,
		},
	}
}

// HandleStripeWebhook verifies, normalizes and reconciles a Stripe delivery.
// Event types outside the reconciled set are acknowledged with an audit row
// only.
func (s *PaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	ev, err := s.stripeAdapter.Normalize(payload, sigHeader)
	if err != nil {
		return err
	}
	if ev == nil {
		s.logUnhandledDelivery(ctx, payload, "type")
		return nil
	}
	return s.engine.Apply(ctx, *ev)
}

// HandlePaypalWebhook does the same for PayPal deliveries.
func (s *PaymentService) HandlePaypalWebhook(ctx context.Context, headers http.Header, body []byte) error {
	ev, err := s.paypalAdapter.Normalize(ctx, headers, body)
	if err != nil {
		return err
	}
	if ev == nil {
		s.logUnhandledDelivery(ctx, body, "event_type")
		return nil
	}
	return s.engine.Apply(ctx, *ev)
}

// logUnhandledDelivery keeps an audit row for webhook types outside the
// reconciled set. typeField names the provider's event-type JSON key.
func (s *PaymentService) logUnhandledDelivery(ctx context.Context, payload []byte, typeField string) {
	var envelope map[string]json.RawMessage
	var eventID, eventType string
	if err := json.Unmarshal(payload, &envelope); err == nil {
		_ = json.Unmarshal(envelope["id"], &eventID)
		_ = json.Unmarshal(envelope[typeField], &eventType)
	}
	s.appendLog(ctx, "", eventID, eventType, "ignored", string(payload))
}

func (s *PaymentService) validateCreateRequest(req *dto.CreatePaymentRequest) error {
	if req.Amount < 50 {
		return fmt.Errorf("%w: amount must be at least 50 minor units", errs.ErrValidation)
	}
	if req.Currency == "" {
		req.Currency = "usd"
	}
	if !supportedCurrencies[strings.ToLower(req.Currency)] {
		return fmt.Errorf("%w: invalid currency %q", errs.ErrValidation, req.Currency)
	}
	switch req.OrderType {
	case model.OrderTypeConsultation, model.OrderTypeProduct:
	default:
		return fmt.Errorf("%w: order type must be consultation or product", errs.ErrValidation)
	}
	return validateCustomer(req.CustomerEmail, req.CustomerName)
}

func validateCustomer(email, name string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: valid email is required", errs.ErrValidation)
	}
	if len(name) < 2 {
		return fmt.Errorf("%w: customer name is required", errs.ErrValidation)
	}
	return nil
}

func (s *PaymentService) appendLog(ctx context.Context, orderID, providerEventID, eventType, status, data string) {
	if err := s.paymentLogs.Append(ctx, &model.PaymentLog{
		ID:              uuid.NewString(),
		OrderID:         orderID,
		ProviderEventID: providerEventID,
		EventType:       eventType,
		Status:          status,
		Data:            data,
	}); err != nil {
		log.Printf("append payment log for order %s: %v", orderID, err)
	}
}
