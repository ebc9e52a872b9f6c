package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playforge/gamekit/pkg/apiclient"
	"github.com/playforge/gamekit/pkg/logger"
	"github.com/playforge/gamekit/svc/billing"
)

// Service exposes the admin analytics endpoints. The backend enforces the
// admin requirement; this client just surfaces its refusals.
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

// New creates an analytics service on top of the backend API client.
func New(api *apiclient.Client, opts ...Option) *Service {
	s := &Service{api: api, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revenue is the platform-wide revenue summary.
type Revenue struct {
	Total   billing.Money  `json:"total"`
	Monthly []MonthRevenue `json:"monthly"`
}

// MonthRevenue is one month's revenue figure.
type MonthRevenue struct {
	Month  string        `json:"month"`
	Amount billing.Money `json:"amount"`
}

// PlanStats is the subscriber and revenue share of one plan.
type PlanStats struct {
	PlanName    string        `json:"plan_name"`
	Subscribers int           `json:"subscribers"`
	Revenue     billing.Money `json:"revenue"`
}

// ActivityPoint is one day's user activity.
type ActivityPoint struct {
	Date        string `json:"date"`
	ActiveUsers int    `json:"active_users"`
	NewSignups  int    `json:"new_signups"`
}

// HostingCost is one recurring infrastructure cost entry.
type HostingCost struct {
	ID          int           `json:"id,omitempty"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Monthly     billing.Money `json:"monthly"`
	CreatedAt   time.Time     `json:"created_at,omitempty"`
}

// Revenue fetches the revenue summary.
func (s *Service) Revenue(ctx context.Context) (Revenue, error) {
	var r Revenue
	if err := s.api.Get(ctx, "/api/analytics/revenue/", &r); err != nil {
		return Revenue{}, fmt.Errorf("fetch revenue: %w", err)
	}
	return r, nil
}

// PlanBreakdown fetches per-plan subscriber and revenue numbers.
func (s *Service) PlanBreakdown(ctx context.Context) ([]PlanStats, error) {
	var stats []PlanStats
	if err := s.api.Get(ctx, "/api/analytics/plan-breakdown/", &stats); err != nil {
		return nil, fmt.Errorf("fetch plan breakdown: %w", err)
	}
	return stats, nil
}

// UserActivity fetches the daily activity series.
func (s *Service) UserActivity(ctx context.Context) ([]ActivityPoint, error) {
	var points []ActivityPoint
	if err := s.api.Get(ctx, "/api/analytics/user-activity/", &points); err != nil {
		return nil, fmt.Errorf("fetch user activity: %w", err)
	}
	return points, nil
}

// HostingCosts lists the recorded hosting cost entries.
func (s *Service) HostingCosts(ctx context.Context) ([]HostingCost, error) {
	var costs []HostingCost
	if err := s.api.Get(ctx, "/api/hosting-costs/", &costs); err != nil {
		return nil, fmt.Errorf("list hosting costs: %w", err)
	}
	return costs, nil
}

// AddHostingCost records a new hosting cost entry and returns it with the
// backend-assigned id.
func (s *Service) AddHostingCost(ctx context.Context, c HostingCost) (HostingCost, error) {
	var created HostingCost
	if err := s.api.Post(ctx, "/api/hosting-costs/", c, &created); err != nil {
		return HostingCost{}, fmt.Errorf("add hosting cost: %w", err)
	}
	return created, nil
}

// DeleteHostingCost removes a hosting cost entry.
func (s *Service) DeleteHostingCost(ctx context.Context, id int) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/api/hosting-costs/%d/", id)); err != nil {
		return fmt.Errorf("delete hosting cost: %w", err)
	}
	return nil
}
