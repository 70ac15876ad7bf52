package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	// Upsert creates the customer on first payment attempt; a repeat attempt
	// with the same email reuses the existing row and refreshes the name.
	Upsert(ctx context.Context, customer *model.Customer) (*model.Customer, error)
	FindByID(ctx context.Context, id string) (*model.Customer, error)
}

type customerRepoImpl struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepoImpl{db: db}
}

func (r *customerRepoImpl) Upsert(ctx context.Context, customer *model.Customer) (*model.Customer, error) {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"name":       customer.Name,
			"updated_at": time.Now(),
		}),
	}).Create(customer).Error
	if err != nil {
		return nil, fmt.Errorf("%w: upsert customer: %v", errs.ErrPersistence, err)
	}

	// The conflict path keeps the original row id, so read it back by email.
	var stored model.Customer
	if err := r.db.WithContext(ctx).Where("email = ?", customer.Email).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("%w: reload customer: %v", errs.ErrPersistence, err)
	}
	return &stored, nil
}

func (r *customerRepoImpl) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", errs.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: find customer: %v", errs.ErrPersistence, err)
	}
	return &customer, nil
}
