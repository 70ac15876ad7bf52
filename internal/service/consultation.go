package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/google/uuid"

	"crystalenergy-backend/internal/client"
	"crystalenergy-backend/internal/dto"
	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"
	"crystalenergy-backend/internal/repository"
)

var birthTimePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

type ConsultationService struct {
	consultations repository.ConsultationRepository
	orders        repository.OrderRepository
	openai        client.OpenAIClient
}

func NewConsultationService(
	consultations repository.ConsultationRepository,
	orders repository.OrderRepository,
	openai client.OpenAIClient,
) *ConsultationService {
	return &ConsultationService{
		consultations: consultations,
		orders:        orders,
		openai:        openai,
	}
}

// Generate records the consultation request against its order and produces
// the reading immediately. Calling it again for the same order returns the
// stored result instead of generating twice.
func (s *ConsultationService) Generate(ctx context.Context, req *dto.ConsultationRequest) (*dto.ConsultationResponse, error) {
	if err := validateConsultationRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.orders.FindByID(ctx, req.OrderID); err != nil {
		return nil, err
	}

	existing, err := s.consultations.FindByOrderID(ctx, req.OrderID)
	switch {
	case err == nil:
		if existing.Status != model.ConsultationCompleted {
			if err := s.generateAndStore(ctx, existing); err != nil {
				return nil, err
			}
			existing, err = s.consultations.FindByID(ctx, existing.ID)
			if err != nil {
				return nil, err
			}
		}
		return &dto.ConsultationResponse{
			Success:        true,
			ConsultationID: existing.ID,
			Result:         existing.AIResult,
			Type:           existing.Type,
			Status:         string(existing.Status),
			Message:        "Consultation generated successfully",
		}, nil
	case errors.Is(err, errs.ErrNotFound):
		// first request for this order, fall through to create
	default:
		return nil, err
	}

	consultation := &model.Consultation{
		ID:         uuid.NewString(),
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		Type:       req.ConsultationType,
		BirthDate:  req.BirthDate,
		BirthTime:  req.BirthTime,
		BirthPlace: req.BirthPlace,
		Questions:  req.Questions,
		Status:     model.ConsultationPending,
	}
	if err := s.consultations.Create(ctx, consultation); err != nil {
		return nil, err
	}
	if err := s.generateAndStore(ctx, consultation); err != nil {
		return nil, err
	}

	return &dto.ConsultationResponse{
		Success:        true,
		ConsultationID: consultation.ID,
		Result:         consultation.AIResult,
		Type:           consultation.Type,
		Status:         string(model.ConsultationCompleted),
		Message:        "Consultation generated successfully",
	}, nil
}

func (s *ConsultationService) Get(ctx context.Context, id string) (*model.Consultation, error) {
	return s.consultations.FindByID(ctx, id)
}

// GenerateForOrder is the completion fan-out hook. It generates the pending
// consultation attached to the order, if one exists. An order without a
// consultation row yet is fine; the generate endpoint handles it later.
func (s *ConsultationService) GenerateForOrder(ctx context.Context, order *model.Order) error {
	consultation, err := s.consultations.FindByOrderID(ctx, order.ID)
	if errors.Is(err, errs.ErrNotFound) {
		log.Printf("no consultation recorded yet for order %s, skipping generation", order.ID)
		return nil
	}
	if err != nil {
		return err
	}
	if consultation.Status == model.ConsultationCompleted {
		return nil
	}
	return s.generateAndStore(ctx, consultation)
}

func (s *ConsultationService) generateAndStore(ctx context.Context, c *model.Consultation) error {
	c.AIResult = s.generate(ctx, c)

	updated, err := s.consultations.SetResult(ctx, c.ID, c.AIResult)
	if err != nil {
		return err
	}
	if !updated {
		log.Printf("consultation %s already generated, keeping stored result", c.ID)
	}
	return nil
}

func (s *ConsultationService) generate(ctx context.Context, c *model.Consultation) string {
	if !s.openai.Configured() {
		log.Printf("openai not configured, using fallback consultation for %s", c.ID)
		return fallbackConsultation(c)
	}

	maxTokens, ok := consultationMaxTokens[c.Type]
	if !ok {
		maxTokens = consultationMaxTokens["basic"]
	}

	start := time.Now()
	content, err := s.openai.Complete(ctx, consultationSystemPrompt, consultationPrompt(c), maxTokens)
	if err != nil {
		log.Printf("openai completion failed for consultation %s after %s: %v, using fallback", c.ID, time.Since(start), err)
		return fallbackConsultation(c)
	}
	log.Printf("generated consultation %s via openai in %s", c.ID, time.Since(start))
	return content
}

// TypesPricing lists the purchasable consultation tiers.
func (s *ConsultationService) TypesPricing() []dto.ConsultationType {
	return []dto.ConsultationType{
		{
			ID:          "basic",
			Name:        "Basic Reading",
			Description: "Essential feng shui guidance and crystal recommendations",
			Price:       299,
			Duration:    "15-20 minutes",
			Features: []string{
				"Personal element analysis",
				"Lucky colors and directions",
				"Basic crystal recommendations",
				"Home arrangement tips",
			},
		},
		{
			ID:          "detailed",
			Name:        "Detailed Analysis",
			Description: "Comprehensive feng shui consultation with BaZi analysis",
			Price:       599,
			Duration:    "30-45 minutes",
			Features: []string{
				"Complete BaZi four pillars analysis",
				"Annual feng shui forecast",
				"Detailed home/office guidance",
				"Specific crystal placements",
				"Career and relationship advice",
			},
			Popular: true,
		},
		{
			ID:          "comprehensive",
			Name:        "Master Consultation",
			Description: "Complete life transformation guide with ongoing support",
			Price:       799,
			Duration:    "60+ minutes",
			Features: []string{
				"Full life feng shui blueprint",
				"Room-by-room detailed guidance",
				"Monthly feng shui calendar",
				"Advanced crystal programming",
				"Wealth and health optimization",
				"Emergency feng shui solutions",
			},
		},
	}
}

func validateConsultationRequest(req *dto.ConsultationRequest) error {
	if _, err := uuid.Parse(req.OrderID); err != nil {
		return fmt.Errorf("%w: valid order id is required", errs.ErrValidation)
	}
	if _, err := uuid.Parse(req.CustomerID); err != nil {
		return fmt.Errorf("%w: valid customer id is required", errs.ErrValidation)
	}
	switch req.ConsultationType {
	case "basic", "detailed", "comprehensive":
	default:
		return fmt.Errorf("%w: invalid consultation type %q", errs.ErrValidation, req.ConsultationType)
	}
	if _, err := time.Parse("2006-01-02", req.BirthDate); err != nil {
		return fmt.Errorf("%w: valid birth date is required", errs.ErrValidation)
	}
	if req.BirthTime != "" && !birthTimePattern.MatchString(req.BirthTime) {
		return fmt.Errorf("%w: valid time format required (HH:MM)", errs.ErrValidation)
	}
	if len(req.BirthPlace) < 2 {
		return fmt.Errorf("%w: birth place is required", errs.ErrValidation)
	}
	if len(req.Questions) < 10 {
		return fmt.Errorf("%w: specific questions are required (minimum 10 characters)", errs.ErrValidation)
	}
	return nil
}
