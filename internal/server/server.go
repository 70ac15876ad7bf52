package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/handler"
	"crystalenergy-backend/internal/service"
)

type Server struct {
	echo                *echo.Echo
	paymentHandler      *handler.PaymentHandler
	webhookHandler      *handler.WebhookHandler
	consultationHandler *handler.ConsultationHandler
	productHandler      *handler.ProductHandler
}

func NewServer(
	paymentService *service.PaymentService,
	consultationService *service.ConsultationService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))

	s := &Server{
		echo:                e,
		paymentHandler:      handler.NewPaymentHandler(paymentService),
		webhookHandler:      handler.NewWebhookHandler(paymentService),
		consultationHandler: handler.NewConsultationHandler(consultationService),
		productHandler:      handler.NewProductHandler(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- payments --------
	payments := api.Group("/payments")
	payments.POST("/stripe/create-intent", s.paymentHandler.CreateStripeIntent)
	payments.POST("/stripe/confirm", s.paymentHandler.ConfirmStripePayment)
	payments.POST("/paypal/create-order", s.paymentHandler.CreatePaypalOrder)
	payments.POST("/paypal/capture/:paypalOrderID", s.paymentHandler.CapturePaypalOrder)
	payments.GET("/status/:orderID", s.paymentHandler.OrderStatus)
	payments.GET("/methods", s.paymentHandler.Methods)

	// -------- provider webhooks --------
	webhooks := api.Group("/webhooks")
	webhooks.POST("/stripe", s.webhookHandler.StripeWebhook)
	webhooks.POST("/paypal", s.webhookHandler.PaypalWebhook)

	// -------- consultations --------
	consultations := api.Group("/consultations")
	consultations.POST("/generate", s.consultationHandler.Generate)
	consultations.GET("/types/pricing", s.consultationHandler.TypesPricing)
	consultations.GET("/:consultationID", s.consultationHandler.Get)

	// -------- products --------
	products := api.Group("/products")
	products.GET("", s.productHandler.List)
	products.POST("/calculate-total", s.productHandler.CalculateTotal)
	products.POST("/purchase", s.productHandler.Purchase)
	products.GET("/categories/list", s.productHandler.Categories)
	products.GET("/search/:query", s.productHandler.Search)
	products.GET("/:productID", s.productHandler.Get)
}

// errorHandler maps the error taxonomy onto HTTP statuses. Verification
// failures answer 400 so the provider retries the delivery later.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = c.JSON(httpErr.Code, map[string]interface{}{"error": httpErr.Message})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrVerificationFailed):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrProviderUnavailable):
		status = http.StatusServiceUnavailable
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		c.Logger().Error(err)
		message = "internal server error"
	}
	_ = c.JSON(status, map[string]interface{}{"error": message})
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
