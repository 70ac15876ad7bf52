package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crystalenergy-backend/internal/dto"
	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"
	"crystalenergy-backend/internal/payment"
)

type fakeConsultationRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.Consultation
	create int
}

func newFakeConsultationRepo() *fakeConsultationRepo {
	return &fakeConsultationRepo{byID: map[string]*model.Consultation{}}
}

func (r *fakeConsultationRepo) Create(_ context.Context, c *model.Consultation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.create++
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *fakeConsultationRepo) FindByID(_ context.Context, id string) (*model.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeConsultationRepo) FindByOrderID(_ context.Context, orderID string) (*model.Consultation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.OrderID == orderID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeConsultationRepo) SetResult(_ context.Context, id, aiResult string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return false, errs.ErrNotFound
	}
	if c.Status == model.ConsultationCompleted {
		return false, nil
	}
	now := time.Now()
	c.AIResult = aiResult
	c.Status = model.ConsultationCompleted
	c.GeneratedAt = &now
	return true, nil
}

func (r *fakeConsultationRepo) MarkEmailSent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	now := time.Now()
	c.EmailSentAt = &now
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order
}

func newFakeOrderRepo(orders ...*model.Order) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: map[string]*model.Order{}}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindByProviderRef(_ context.Context, provider payment.Provider, ref string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if (provider == payment.ProviderStripe && o.StripePaymentIntentID == ref) ||
			(provider == payment.ProviderPaypal && o.PaypalOrderID == ref) {
			cp := *o
			return &cp, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (r *fakeOrderRepo) TransitionStatus(_ context.Context, id string, from []model.OrderStatus, to model.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return false, errs.ErrNotFound
	}
	for _, f := range from {
		if o.Status == f {
			o.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) SetPaypalCapture(_ context.Context, id, captureID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return errs.ErrNotFound
	}
	o.PaypalCaptureID = captureID
	return nil
}

type fakeOpenAI struct {
	configured bool
	response   string
	err        error
	calls      int
}

func (f *fakeOpenAI) Configured() bool { return f.configured }

func (f *fakeOpenAI) Complete(_ context.Context, _, _ string, _ int) (string, error) {
	f.calls++
	return f.response, f.err
}

func newConsultationRequest(orderID string) *dto.ConsultationRequest {
	return &dto.ConsultationRequest{
		OrderID:          orderID,
		CustomerID:       uuid.NewString(),
		ConsultationType: "basic",
		BirthDate:        "1990-05-15",
		BirthTime:        "14:30",
		BirthPlace:       "Shanghai, China",
		Questions:        "How can I improve my career luck this year?",
	}
}

func TestGenerate_UsesOpenAIResult(t *testing.T) {
	orderID := uuid.NewString()
	orders := newFakeOrderRepo(&model.Order{ID: orderID, Type: model.OrderTypeConsultation, Status: model.OrderPending})
	consultations := newFakeConsultationRepo()
	ai := &fakeOpenAI{configured: true, response: "Your reading: strong water element."}

	svc := NewConsultationService(consultations, orders, ai)

	resp, err := svc.Generate(context.Background(), newConsultationRequest(orderID))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "Your reading: strong water element.", resp.Result)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 1, ai.calls)

	stored, err := consultations.FindByID(context.Background(), resp.ConsultationID)
	require.NoError(t, err)
	assert.Equal(t, model.ConsultationCompleted, stored.Status)
	assert.NotNil(t, stored.GeneratedAt)
}

func TestGenerate_FallsBackWhenOpenAIFails(t *testing.T) {
	orderID := uuid.NewString()
	orders := newFakeOrderRepo(&model.Order{ID: orderID, Type: model.OrderTypeConsultation, Status: model.OrderPending})
	consultations := newFakeConsultationRepo()
	ai := &fakeOpenAI{configured: true, err: errors.New("upstream 500")}

	svc := NewConsultationService(consultations, orders, ai)

	resp, err := svc.Generate(context.Background(), newConsultationRequest(orderID))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Result)
	assert.Equal(t, "completed", resp.Status)
}

func TestGenerate_FallsBackWhenUnconfigured(t *testing.T) {
	orderID := uuid.NewString()
	orders := newFakeOrderRepo(&model.Order{ID: orderID, Type: model.OrderTypeConsultation, Status: model.OrderPending})
	consultations := newFakeConsultationRepo()
	ai := &fakeOpenAI{configured: false}

	svc := NewConsultationService(consultations, orders, ai)

	resp, err := svc.Generate(context.Background(), newConsultationRequest(orderID))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Result)
	assert.Zero(t, ai.calls)
}

func TestGenerate_RepeatReturnsStoredResult(t *testing.T) {
	orderID := uuid.NewString()
	orders := newFakeOrderRepo(&model.Order{ID: orderID, Type: model.OrderTypeConsultation, Status: model.OrderPending})
	consultations := newFakeConsultationRepo()
	ai := &fakeOpenAI{configured: true, response: "First reading."}

	svc := NewConsultationService(consultations, orders, ai)

	first, err := svc.Generate(context.Background(), newConsultationRequest(orderID))
	require.NoError(t, err)

	ai.response = "Second reading."
	second, err := svc.Generate(context.Background(), newConsultationRequest(orderID))
	require.NoError(t, err)

	assert.Equal(t, first.ConsultationID, second.ConsultationID)
	assert.Equal(t, "First reading.", second.Result)
	assert.Equal(t, 1, consultations.create)
	assert.Equal(t, 1, ai.calls)
}

func TestGenerate_UnknownOrder(t *testing.T) {
	svc := NewConsultationService(newFakeConsultationRepo(), newFakeOrderRepo(), &fakeOpenAI{})

	_, err := svc.Generate(context.Background(), newConsultationRequest(uuid.NewString()))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestGenerate_Validation(t *testing.T) {
	svc := NewConsultationService(newFakeConsultationRepo(), newFakeOrderRepo(), &fakeOpenAI{})

	tests := []struct {
		name   string
		mutate func(*dto.ConsultationRequest)
	}{
		{"bad order id", func(r *dto.ConsultationRequest) { r.OrderID = "not-a-uuid" }},
		{"bad customer id", func(r *dto.ConsultationRequest) { r.CustomerID = "nope" }},
		{"bad type", func(r *dto.ConsultationRequest) { r.ConsultationType = "premium" }},
		{"bad birth date", func(r *dto.ConsultationRequest) { r.BirthDate = "May 15 1990" }},
		{"bad birth time", func(r *dto.ConsultationRequest) { r.BirthTime = "25:99" }},
		{"missing birth place", func(r *dto.ConsultationRequest) { r.BirthPlace = "" }},
		{"questions too short", func(r *dto.ConsultationRequest) { r.Questions = "luck?" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newConsultationRequest(uuid.NewString())
			tt.mutate(req)
			_, err := svc.Generate(context.Background(), req)
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestGenerateForOrder_Idempotent(t *testing.T) {
	orderID := uuid.NewString()
	order := &model.Order{ID: orderID, Type: model.OrderTypeConsultation, Status: model.OrderCompleted}
	consultations := newFakeConsultationRepo()
	require.NoError(t, consultations.Create(context.Background(), &model.Consultation{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		Type:       "basic",
		BirthDate:  "1990-05-15",
		BirthPlace: "Shanghai, China",
		Questions:  "How can I improve my career luck?",
		Status:     model.ConsultationPending,
	}))
	ai := &fakeOpenAI{configured: true, response: "Reading."}

	svc := NewConsultationService(consultations, newFakeOrderRepo(order), ai)

	require.NoError(t, svc.GenerateForOrder(context.Background(), order))
	require.NoError(t, svc.GenerateForOrder(context.Background(), order))

	assert.Equal(t, 1, ai.calls)
}

func TestGenerateForOrder_NoConsultationYet(t *testing.T) {
	order := &model.Order{ID: uuid.NewString(), Type: model.OrderTypeConsultation, Status: model.OrderCompleted}
	svc := NewConsultationService(newFakeConsultationRepo(), newFakeOrderRepo(order), &fakeOpenAI{})

	assert.NoError(t, svc.GenerateForOrder(context.Background(), order))
}

func TestFallbackConsultation_NonEmptyPerType(t *testing.T) {
	for _, typ := range []string{"basic", "detailed", "comprehensive"} {
		c := &model.Consultation{
			Type:       typ,
			BirthDate:  "1990-05-15",
			BirthPlace: "Shanghai, China",
			Questions:  "How can I improve my career luck this year?",
		}
		content := fallbackConsultation(c)
		assert.NotEmpty(t, content, typ)
		assert.Contains(t, content, "1990-05-15")
	}
}

func TestTypesPricing(t *testing.T) {
	svc := NewConsultationService(newFakeConsultationRepo(), newFakeOrderRepo(), &fakeOpenAI{})

	types := svc.TypesPricing()
	require.Len(t, types, 3)
	assert.Equal(t, int64(299), types[0].Price)
	assert.Equal(t, int64(599), types[1].Price)
	assert.Equal(t, int64(799), types[2].Price)
	assert.True(t, types[1].Popular)
}
