package billing

import (
	"fmt"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount in a named ISO 4217 currency.
type Money struct {
	Amount   float64 `json:"amount" yaml:"amount"`
	Currency string  `json:"currency" yaml:"currency"`
}

// String renders the amount with its currency symbol, falling back to a
// plain "amount code" form for unknown currency codes.
func (m Money) String() string {
	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%v", currency.NarrowSymbol(unit.Amount(m.Amount)))
}

// Plan is one purchasable subscription tier.
type Plan struct {
	ID        int      `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Price     Money    `json:"price" yaml:"price"`
	Interval  string   `json:"interval" yaml:"interval"`
	Features  []string `json:"features" yaml:"features"`
	TrialDays int      `json:"trial_days" yaml:"trial_days"`
}

// SubscriptionStatus is the lifecycle state of a user subscription.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusCanceled SubscriptionStatus = "canceled"
	StatusTrial    SubscriptionStatus = "trial"
)

// Subscription is the caller's current plan membership.
type Subscription struct {
	PlanID      int                `json:"plan_id"`
	PlanName    string             `json:"plan_name"`
	Status      SubscriptionStatus `json:"status"`
	StartDate   time.Time          `json:"start_date"`
	RenewalDate *time.Time         `json:"renewal_date,omitempty"`
	EndDate     *time.Time         `json:"end_date,omitempty"`
}

// Active reports whether the subscription currently grants access.
func (s Subscription) Active() bool {
	return s.Status == StatusActive || s.Status == StatusTrial
}

// PaymentIntent is the handle the payment processor hands back for a
// started purchase. The processor itself stays opaque to this package.
type PaymentIntent struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
}

// Purchase is one historical payment of a user.
type Purchase struct {
	ID        int       `json:"id"`
	PlanName  string    `json:"plan_name"`
	Amount    Money     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
