package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/playforge/gamekit/pkg/apiclient"
	"github.com/playforge/gamekit/pkg/logger"
)

// plansTimeout bounds the plan listing so a slow backend cannot stall a
// pricing page indefinitely.
const plansTimeout = 8 * time.Second

// Source lists purchasable plans. Both the live Service and the static
// catalog implement it, so tools can render plans offline.
type Source interface {
	Plans(ctx context.Context) ([]Plan, error)
}

// Service talks to the platform billing endpoints. Calls are not retried:
// a failed purchase step must surface, never silently repeat.
type Service struct {
	api *apiclient.Client
	log *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to a discard logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a billing service on top of the backend API client.
func New(api *apiclient.Client, opts ...Option) *Service {
	s := &Service{api: api, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plans lists the purchasable plans.
func (s *Service) Plans(ctx context.Context) ([]Plan, error) {
	var plans []Plan
	if err := s.api.Get(ctx, "/api/plans/", &plans, apiclient.WithTimeout(plansTimeout)); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return plans, nil
}

// CreatePaymentIntent starts a purchase of the given plan and returns the
// processor handle needed to confirm it.
func (s *Service) CreatePaymentIntent(ctx context.Context, planID int) (PaymentIntent, error) {
	var intent PaymentIntent
	err := s.api.Post(ctx, "/api/create-payment-intent/", map[string]int{"plan_id": planID}, &intent)
	if err != nil {
		return PaymentIntent{}, fmt.Errorf("create payment intent: %w", err)
	}
	return intent, nil
}

// ConfirmPayment completes a started purchase.
func (s *Service) ConfirmPayment(ctx context.Context, intentID string, planID int) error {
	err := s.api.Post(ctx, "/api/confirm-payment/", map[string]any{
		"intent_id": intentID,
		"plan_id":   planID,
	}, nil)
	if err != nil {
		return fmt.Errorf("confirm payment: %w", err)
	}
	return nil
}

// UserSubscription returns the caller's subscription, or ErrNoSubscription
// when none exists.
func (s *Service) UserSubscription(ctx context.Context) (Subscription, error) {
	var sub Subscription
	err := s.api.Get(ctx, "/api/user-subscription/", &sub)
	if err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return Subscription{}, ErrNoSubscription
		}
		return Subscription{}, fmt.Errorf("fetch subscription: %w", err)
	}
	return sub, nil
}

// ChangePlan moves the caller's subscription to another plan.
func (s *Service) ChangePlan(ctx context.Context, planID int) error {
	if err := s.api.Post(ctx, "/api/change-plan/", map[string]int{"plan_id": planID}, nil); err != nil {
		return fmt.Errorf("change plan: %w", err)
	}
	return nil
}

// Purchases lists a user's payment history.
func (s *Service) Purchases(ctx context.Context, userID string) ([]Purchase, error) {
	var purchases []Purchase
	if err := s.api.Get(ctx, "/api/users/"+userID+"/payments/", &purchases); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}
