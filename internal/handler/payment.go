package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crystalenergy-backend/internal/dto"
	"crystalenergy-backend/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) CreateStripeIntent(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.paymentService.CreateStripeIntent(ctx, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) ConfirmStripePayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmStripeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.paymentService.ConfirmStripePayment(ctx, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CreatePaypalOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.paymentService.CreatePaypalOrder(ctx, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CapturePaypalOrder(c echo.Context) error {
	ctx := c.Request().Context()

	paypalOrderID := c.Param("paypalOrderID")
	if paypalOrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing paypal order id")
	}

	resp, err := h.paymentService.CapturePaypalOrder(ctx, paypalOrderID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) OrderStatus(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.paymentService.OrderStatus(ctx, c.Param("orderID"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) Methods(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"methods": h.paymentService.Methods(),
	})
}
