package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"crystalenergy-backend/internal/dto"
	"crystalenergy-backend/internal/service"
)

type ConsultationHandler struct {
	consultationService *service.ConsultationService
}

func NewConsultationHandler(consultationService *service.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{consultationService: consultationService}
}

func (h *ConsultationHandler) Generate(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConsultationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.consultationService.Generate(ctx, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ConsultationHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	consultation, err := h.consultationService.Get(ctx, c.Param("consultationID"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"consultation": map[string]interface{}{
			"id":          consultation.ID,
			"type":        consultation.Type,
			"result":      consultation.AIResult,
			"status":      consultation.Status,
			"createdAt":   consultation.CreatedAt,
			"generatedAt": consultation.GeneratedAt,
		},
	})
}

func (h *ConsultationHandler) TypesPricing(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":           true,
		"consultationTypes": h.consultationService.TypesPricing(),
	})
}
