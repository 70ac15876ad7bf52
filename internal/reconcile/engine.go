// Package reconcile owns the order lifecycle. It maps canonical payment
// events onto the order status state machine, tolerating duplicate and
// out-of-order delivery, and fans out to the consultation generator and the
// notifier exactly once per completion.
package reconcile

import (
	"context"
	"errors"
	"log"
	"time"

	"crystalenergy-backend/internal/errs"
	"crystalenergy-backend/internal/model"
	"crystalenergy-backend/internal/payment"

	"github.com/google/uuid"
)

// Log row statuses beyond the order statuses themselves.
const (
	logStatusIgnored     = "ignored"
	logStatusUnmatched   = "unmatched"
	logStatusNeedsReview = "needs_review"
)

type OrderStore interface {
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByProviderRef(ctx context.Context, provider payment.Provider, ref string) (*model.Order, error)
	TransitionStatus(ctx context.Context, id string, from []model.OrderStatus, to model.OrderStatus) (bool, error)
}

type PaymentLogStore interface {
	Append(ctx context.Context, entry *model.PaymentLog) error
}

// Generator produces consultation content for a paid order. It must be
// idempotent; the engine additionally gates it on the actual status edge.
type Generator interface {
	GenerateForOrder(ctx context.Context, order *model.Order) error
}

// Notifier is best-effort: it records its own outcome and never propagates
// failure into payment correctness.
type Notifier interface {
	NotifyOrderCompleted(ctx context.Context, order *model.Order)
}

type Engine struct {
	orders    OrderStore
	logs      PaymentLogStore
	generator Generator
	notifier  Notifier

	dispatch func(ctx context.Context, f func(context.Context))
}

type Option func(*Engine)

// WithAsyncFanOut runs completion side effects detached from the caller's
// request context, so webhook acknowledgements are not held up by the LLM or
// SMTP. The timeout bounds the detached work.
func WithAsyncFanOut(timeout time.Duration) Option {
	return func(e *Engine) {
		e.dispatch = func(_ context.Context, f func(context.Context)) {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				f(ctx)
			}()
		}
	}
}

func NewEngine(orders OrderStore, logs PaymentLogStore, generator Generator, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		orders:    orders,
		logs:      logs,
		generator: generator,
		notifier:  notifier,
		dispatch: func(ctx context.Context, f func(context.Context)) {
			f(ctx)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply resolves the event to an order and advances the state machine:
//
//	current     | succeeded  processing  failed/canceled  disputed
//	pending     | completed  processing  failed           -
//	processing  | completed  no-op       failed           -
//	completed   | no-op      ignored     ignored          flag for review
//	failed      | ignored    ignored     no-op            ignored
//
// Once completed, nothing moves the order backward. Every event appends an
// audit log row, replays included. An event that matches no order is logged
// with an empty order id and acknowledged, so the provider stops retrying.
func (e *Engine) Apply(ctx context.Context, ev payment.Event) error {
	order, err := e.resolve(ctx, ev)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return e.appendLog(ctx, "", ev, logStatusUnmatched)
		}
		return err
	}

	switch ev.Outcome {
	case payment.OutcomeSucceeded:
		transitioned, err := e.orders.TransitionStatus(ctx, order.ID,
			[]model.OrderStatus{model.OrderPending, model.OrderProcessing}, model.OrderCompleted)
		if err != nil {
			return err
		}
		logStatus := string(model.OrderCompleted)
		if !transitioned {
			logStatus = logStatusIgnored
		}
		if err := e.appendLog(ctx, order.ID, ev, logStatus); err != nil {
			return err
		}
		if transitioned {
			e.fanOut(ctx, order)
		}
		return nil

	case payment.OutcomeProcessing:
		if _, err := e.orders.TransitionStatus(ctx, order.ID,
			[]model.OrderStatus{model.OrderPending}, model.OrderProcessing); err != nil {
			return err
		}
		return e.appendLog(ctx, order.ID, ev, string(model.OrderProcessing))

	case payment.OutcomeFailed, payment.OutcomeCanceled:
		transitioned, err := e.orders.TransitionStatus(ctx, order.ID,
			[]model.OrderStatus{model.OrderPending, model.OrderProcessing}, model.OrderFailed)
		if err != nil {
			return err
		}
		logStatus := string(model.OrderFailed)
		if !transitioned {
			// A late failure after success must not regress the order.
			logStatus = logStatusIgnored
		}
		return e.appendLog(ctx, order.ID, ev, logStatus)

	case payment.OutcomeDisputed:
		// No automatic transition; flag for manual review.
		return e.appendLog(ctx, order.ID, ev, logStatusNeedsReview)
	}

	return e.appendLog(ctx, order.ID, ev, logStatusIgnored)
}

func (e *Engine) resolve(ctx context.Context, ev payment.Event) (*model.Order, error) {
	if ev.ProviderRef != "" {
		order, err := e.orders.FindByProviderRef(ctx, ev.Provider, ev.ProviderRef)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return nil, err
		}
	}
	if ev.CorrelationID != "" {
		return e.orders.FindByID(ctx, ev.CorrelationID)
	}
	return nil, errs.ErrNotFound
}

// fanOut runs only on the edge into completed, never on the completed →
// completed no-op, which is what makes the triggers fire exactly once per
// order no matter how often the success event is redelivered.
func (e *Engine) fanOut(ctx context.Context, order *model.Order) {
	e.dispatch(ctx, func(ctx context.Context) {
		if order.Type == model.OrderTypeConsultation {
			if err := e.generator.GenerateForOrder(ctx, order); err != nil {
				log.Printf("consultation generation for order %s: %v", order.ID, err)
			}
		}
		e.notifier.NotifyOrderCompleted(ctx, order)
	})
}

func (e *Engine) appendLog(ctx context.Context, orderID string, ev payment.Event, status string) error {
	return e.logs.Append(ctx, &model.PaymentLog{
		ID:              uuid.NewString(),
		OrderID:         orderID,
		ProviderEventID: ev.ProviderEventID,
		EventType:       ev.EventType,
		Status:          status,
		Data:            string(ev.Raw),
	})
}
