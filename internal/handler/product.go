package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crystalenergy-backend/internal/catalog"
	"crystalenergy-backend/internal/dto"
	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"
)

type ProductHandler struct{}

func NewProductHandler() *ProductHandler {
	return &ProductHandler{}
}

func (h *ProductHandler) List(c echo.Context) error {
	products := catalog.List(catalog.Filter{
		Category:     c.QueryParam("category"),
		FeaturedOnly: c.QueryParam("featured") == "true",
		InStockOnly:  c.QueryParam("inStock") == "true",
	})
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"products": products,
		"total":    len(products),
	})
}

func (h *ProductHandler) Get(c echo.Context) error {
	product, ok := catalog.FindByID(c.Param("productID"))
	if !ok {
		return errs.ErrNotFound
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"product": product,
	})
}

func (h *ProductHandler) CalculateTotal(c echo.Context) error {
	var req dto.CalculateTotalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	calculation, err := catalog.Calculate(req.Items, req.ShippingAddress)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"calculation": calculation,
	})
}

// Purchase prices the cart and hands back the payment request the client
// should submit to the payment endpoints. No order exists until payment
// creation.
func (h *ProductHandler) Purchase(c echo.Context) error {
	var req dto.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := validatePurchase(&req); err != nil {
		return err
	}

	calculation, err := catalog.Calculate(req.Items, &req.ShippingAddress)
	if err != nil {
		return err
	}

	orderData := dto.CreatePaymentRequest{
		Amount:        calculation.Total,
		Currency:      calculation.Currency,
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		OrderType:     model.OrderTypeProduct,
		Metadata: model.OrderMetadata{
			Product: &model.ProductMetadata{
				Items:           calculation.Items,
				Subtotal:        calculation.Subtotal,
				Shipping:        calculation.Shipping,
				Tax:             calculation.Tax,
				ShippingAddress: req.ShippingAddress,
			},
		},
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Use payment endpoints to complete purchase",
		"orderData":   orderData,
		"calculation": calculation,
	})
}

func (h *ProductHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": catalog.Categories(),
	})
}

func (h *ProductHandler) Search(c echo.Context) error {
	query := c.Param("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing search query")
	}
	results := catalog.Search(query)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"query":    query,
		"products": results,
		"total":    len(results),
	})
}

func validatePurchase(req *dto.PurchaseRequest) error {
	if len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one item is required")
	}
	a := req.ShippingAddress
	if len(a.Street) < 5 || len(a.City) < 2 || len(a.PostalCode) < 3 || len(a.Country) < 2 {
		return echo.NewHTTPError(http.StatusBadRequest, "complete shipping address is required")
	}
	return nil
}
