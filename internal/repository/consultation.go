package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"

	"gorm.io/gorm"
)

type ConsultationRepository interface {
	Create(ctx context.Context, consultation *model.Consultation) error
	FindByID(ctx context.Context, id string) (*model.Consultation, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Consultation, error)

	// SetResult stores the generated content and marks the consultation
	// completed. Guarded so a replayed trigger cannot overwrite a result.
	SetResult(ctx context.Context, id, aiResult string) (bool, error)

	MarkEmailSent(ctx context.Context, id string) error
}

type consultationRepoImpl struct {
	db *gorm.DB
}

func NewConsultationRepository(db *gorm.DB) ConsultationRepository {
	return &consultationRepoImpl{db: db}
}

func (r *consultationRepoImpl) Create(ctx context.Context, consultation *model.Consultation) error {
	if err := r.db.WithContext(ctx).Create(consultation).Error; err != nil {
		return fmt.Errorf("%w: create consultation: %v", errs.ErrPersistence, err)
	}
	return nil
}

func (r *consultationRepoImpl) FindByID(ctx context.Context, id string) (*model.Consultation, error) {
	var consultation model.Consultation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: consultation %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: find consultation: %v", errs.ErrPersistence, err)
	}
	return &consultation, nil
}

func (r *consultationRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Consultation, error) {
	var consultation model.Consultation
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no consultation for order %s", errs.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: find consultation by order: %v", errs.ErrPersistence, err)
	}
	return &consultation, nil
}

func (r *consultationRepoImpl) SetResult(ctx context.Context, id, aiResult string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&model.Consultation{}).
		Where("id = ? AND status <> ?", id, model.ConsultationCompleted).
		Updates(map[string]interface{}{
			"ai_result":    aiResult,
			"status":       model.ConsultationCompleted,
			"generated_at": now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("%w: set consultation result: %v", errs.ErrPersistence, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *consultationRepoImpl) MarkEmailSent(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&model.Consultation{}).
		Where("id = ?", id).
		Update("email_sent_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("%w: mark consultation email sent: %v", errs.ErrPersistence, err)
	}
	return nil
}
