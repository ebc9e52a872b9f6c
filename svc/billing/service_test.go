package billing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playforge/gamekit/pkg/apiclient"
	"github.com/playforge/gamekit/svc/billing"
)

func newService(t *testing.T, handler http.Handler) *billing.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: 10 * time.Second})
	return billing.New(api)
}

func TestService_Plans(t *testing.T) {
	t.Parallel()

	t.Run("lists plans", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/plans/", r.URL.Path)
			json.NewEncoder(w).Encode([]billing.Plan{
				{ID: 1, Name: "Starter", Price: billing.Money{Amount: 9.99, Currency: "USD"}, Interval: "month"},
				{ID: 2, Name: "Pro", Price: billing.Money{Amount: 24.99, Currency: "USD"}, Interval: "month",
					Features: []string{"cloud saves", "priority queue"}, TrialDays: 14},
			})
		}))

		plans, err := svc.Plans(context.Background())
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, "Pro", plans[1].Name)
		assert.Equal(t, 14, plans[1].TrialDays)
	})

	t.Run("slow backend is cut off", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Minute):
			case <-r.Context().Done():
			}
		}))

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, err := svc.Plans(ctx)
		require.Error(t, err)
	})
}

func TestService_Purchase(t *testing.T) {
	t.Parallel()

	t.Run("intent and confirmation round-trip", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/create-payment-intent/":
				var body map[string]int
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, 2, body["plan_id"])
				json.NewEncoder(w).Encode(billing.PaymentIntent{IntentID: "pi_1", ClientSecret: "cs_1"})
			case "/api/confirm-payment/":
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "pi_1", body["intent_id"])
				w.WriteHeader(http.StatusNoContent)
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}))

		intent, err := svc.CreatePaymentIntent(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, "cs_1", intent.ClientSecret)

		require.NoError(t, svc.ConfirmPayment(context.Background(), intent.IntentID, 2))
	})

	t.Run("declined confirmation surfaces the backend message", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
			json.NewEncoder(w).Encode(map[string]string{"error": "card declined"})
		}))

		err := svc.ConfirmPayment(context.Background(), "pi_1", 2)
		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "card declined", apiErr.Message)
	})
}

func TestService_UserSubscription(t *testing.T) {
	t.Parallel()

	t.Run("returns the active subscription", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(billing.Subscription{
				PlanID: 2, PlanName: "Pro", Status: billing.StatusActive,
				StartDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			})
		}))

		sub, err := svc.UserSubscription(context.Background())
		require.NoError(t, err)
		assert.True(t, sub.Active())
		assert.Equal(t, "Pro", sub.PlanName)
	})

	t.Run("missing subscription maps to the sentinel", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "not found"})
		}))

		_, err := svc.UserSubscription(context.Background())
		require.ErrorIs(t, err, billing.ErrNoSubscription)
	})
}

func TestService_Purchases(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/u-1/payments/", r.URL.Path)
		json.NewEncoder(w).Encode([]billing.Purchase{
			{ID: 7, PlanName: "Pro", Amount: billing.Money{Amount: 24.99, Currency: "USD"}, Status: "succeeded"},
		})
	}))

	purchases, err := svc.Purchases(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, "succeeded", purchases[0].Status)
}
