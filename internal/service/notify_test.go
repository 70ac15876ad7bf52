package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crystalenergy-backend/internal/config"
	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"
)

type fakeCustomerRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.Customer
	byEmail map[string]*model.Customer
}

func newFakeCustomerRepo(customers ...*model.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{byID: map[string]*model.Customer{}, byEmail: map[string]*model.Customer{}}
	for _, c := range customers {
		r.byID[c.ID] = c
		r.byEmail[c.Email] = c
	}
	return r
}

func (r *fakeCustomerRepo) Upsert(_ context.Context, c *model.Customer) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byEmail[c.Email]; ok {
		existing.Name = c.Name
		return existing, nil
	}
	cp := *c
	r.byID[c.ID] = &cp
	r.byEmail[c.Email] = &cp
	return &cp, nil
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id string) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type fakeEmailLogRepo struct {
	mu      sync.Mutex
	entries []*model.EmailLog
}

func (r *fakeEmailLogRepo) Append(_ context.Context, entry *model.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func completedConsultationOrder(t *testing.T) (*model.Order, *model.Customer, *fakeConsultationRepo) {
	t.Helper()
	customer := &model.Customer{ID: uuid.NewString(), Email: "mei@example.com", Name: "Mei Chen"}
	order := &model.Order{
		ID:         uuid.NewString(),
		CustomerID: customer.ID,
		Type:       model.OrderTypeConsultation,
		Amount:     299,
		Currency:   "usd",
		Status:     model.OrderCompleted,
	}
	consultations := newFakeConsultationRepo()
	require.NoError(t, consultations.Create(context.Background(), &model.Consultation{
		ID:       uuid.NewString(),
		OrderID:  order.ID,
		Type:     "basic",
		AIResult: "Your personal reading.",
		Status:   model.ConsultationCompleted,
	}))
	return order, customer, consultations
}

func TestNotifyOrderCompleted_ConsultationDemoMode(t *testing.T) {
	order, customer, consultations := completedConsultationOrder(t)
	logs := &fakeEmailLogRepo{}
	// no credentials configured: demo mode counts as delivered
	n := NewEmailNotifier(config.Email{}, "http://localhost:3000",
		newFakeCustomerRepo(customer), consultations, logs)

	n.NotifyOrderCompleted(context.Background(), order)

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, model.EmailSent, entry.Status)
	assert.Equal(t, "mei@example.com", entry.Recipient)
	assert.Equal(t, consultationReadySubject, entry.Subject)
	assert.NotNil(t, entry.SentAt)

	stored, err := consultations.FindByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.EmailSentAt)
}

func TestNotifyOrderCompleted_MissingResultLogsFailure(t *testing.T) {
	order, customer, _ := completedConsultationOrder(t)
	consultations := newFakeConsultationRepo()
	require.NoError(t, consultations.Create(context.Background(), &model.Consultation{
		ID:      uuid.NewString(),
		OrderID: order.ID,
		Type:    "basic",
		Status:  model.ConsultationPending,
	}))
	logs := &fakeEmailLogRepo{}
	n := NewEmailNotifier(config.Email{}, "http://localhost:3000",
		newFakeCustomerRepo(customer), consultations, logs)

	n.NotifyOrderCompleted(context.Background(), order)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, model.EmailFailed, logs.entries[0].Status)
	assert.NotEmpty(t, logs.entries[0].Error)
}

func TestNotifyOrderCompleted_ProductOrder(t *testing.T) {
	customer := &model.Customer{ID: uuid.NewString(), Email: "mei@example.com", Name: "Mei Chen"}
	meta := model.OrderMetadata{Product: &model.ProductMetadata{
		Subtotal: 4500,
		Shipping: 1000,
		Tax:      383,
		ShippingAddress: model.ShippingAddress{
			Street: "123 Harmony Lane", City: "Portland", PostalCode: "97201", Country: "USA",
		},
	}}
	encoded, err := meta.Encode()
	require.NoError(t, err)

	order := &model.Order{
		ID:         uuid.NewString(),
		CustomerID: customer.ID,
		Type:       model.OrderTypeProduct,
		Amount:     5883,
		Currency:   "usd",
		Status:     model.OrderCompleted,
		Metadata:   encoded,
	}
	logs := &fakeEmailLogRepo{}
	n := NewEmailNotifier(config.Email{}, "http://localhost:3000",
		newFakeCustomerRepo(customer), newFakeConsultationRepo(), logs)

	n.NotifyOrderCompleted(context.Background(), order)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, model.EmailSent, logs.entries[0].Status)
	assert.Equal(t, orderConfirmationSubject, logs.entries[0].Subject)
}

func TestNotifyOrderCompleted_UnknownCustomerIsSwallowed(t *testing.T) {
	order := &model.Order{ID: uuid.NewString(), CustomerID: "missing", Type: model.OrderTypeConsultation}
	logs := &fakeEmailLogRepo{}
	n := NewEmailNotifier(config.Email{}, "http://localhost:3000",
		newFakeCustomerRepo(), newFakeConsultationRepo(), logs)

	n.NotifyOrderCompleted(context.Background(), order)

	assert.Empty(t, logs.entries)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "2.99", formatMoney(299))
	assert.Equal(t, "45.00", formatMoney(4500))
	assert.Equal(t, "0.50", formatMoney(50))
}
