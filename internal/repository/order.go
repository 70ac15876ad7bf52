package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"
	"crystalenergy-backend/internal/payment"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByProviderRef(ctx context.Context, provider payment.Provider, ref string) (*model.Order, error)

	// TransitionStatus is the compare-and-set update the engine serializes
	// per-order transitions on: the row moves to `to` only if its current
	// status is one of `from`. Returns whether a row actually changed.
	TransitionStatus(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus) (bool, error)

	SetPaypalCapture(ctx context.Context, id, captureID string) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{db: db}
}

func (r *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("%w: create order: %v", errs.ErrPersistence, err)
	}
	return nil
}

func (r *orderRepoImpl) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: find order: %v", errs.ErrPersistence, err)
	}
	return &order, nil
}

func (r *orderRepoImpl) FindByProviderRef(ctx context.Context, provider payment.Provider, ref string) (*model.Order, error) {
	column := "stripe_payment_intent_id"
	if provider == payment.ProviderPaypal {
		column = "paypal_order_id"
	}

	var order model.Order
	err := r.db.WithContext(ctx).
		Where(column+" = ?", ref).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no order for %s ref %s", errs.ErrNotFound, provider, ref)
		}
		return nil, fmt.Errorf("%w: find order by provider ref: %v", errs.ErrPersistence, err)
	}
	return &order, nil
}

func (r *orderRepoImpl) TransitionStatus(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("%w: transition order %s to %s: %v", errs.ErrPersistence, id, to, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) SetPaypalCapture(ctx context.Context, id, captureID string) error {
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"paypal_capture_id": captureID,
			"updated_at":        time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("%w: set capture id on order %s: %v", errs.ErrPersistence, id, err)
	}
	return nil
}
