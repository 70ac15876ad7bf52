package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"crystalenergy-backend/internal/service"
)

// Provider webhook payloads are small; anything past this is not a payment
// event.
const maxWebhookBody = 64 << 10

type WebhookHandler struct {
	paymentService *service.PaymentService
}

func NewWebhookHandler(paymentService *service.PaymentService) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

func (h *WebhookHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(http.MaxBytesReader(nil, c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	sigHeader := c.Request().Header.Get("Stripe-Signature")
	if err := h.paymentService.HandleStripeWebhook(ctx, body, sigHeader); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

func (h *WebhookHandler) PaypalWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(http.MaxBytesReader(nil, c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.paymentService.HandlePaypalWebhook(ctx, c.Request().Header, body); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
