package repository

import (
	"context"
	"fmt"

	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"

	"gorm.io/gorm"
)

// Payment and email logs are write-once. There are no update or delete
// methods on purpose.

type PaymentLogRepository interface {
	Append(ctx context.Context, entry *model.PaymentLog) error
}

type EmailLogRepository interface {
	Append(ctx context.Context, entry *model.EmailLog) error
}

type paymentLogRepoImpl struct {
	db *gorm.DB
}

func NewPaymentLogRepository(db *gorm.DB) PaymentLogRepository {
	return &paymentLogRepoImpl{db: db}
}

func (r *paymentLogRepoImpl) Append(ctx context.Context, entry *model.PaymentLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("%w: append payment log: %v", errs.ErrPersistence, err)
	}
	return nil
}

type emailLogRepoImpl struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) EmailLogRepository {
	return &emailLogRepoImpl{db: db}
}

func (r *emailLogRepoImpl) Append(ctx context.Context, entry *model.EmailLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("%w: append email log: %v", errs.ErrPersistence, err)
	}
	return nil
}
