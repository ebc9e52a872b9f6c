package analytics_test

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
	"github.com/playforge/gamekit/svc/analytics"
	"github.com/playforge/gamekit/svc/billing"
)

func newService(t *testing.T, handler http.Handler) *analytics.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	api := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: 10 * time.Second})
	return analytics.New(api)
}

func TestService_Revenue(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/analytics/revenue/", r.URL.Path)
		json.NewEncoder(w).Encode(analytics.Revenue{
			Total: billing.Money{Amount: 1240.50, Currency: "USD"},
			Monthly: []analytics.MonthRevenue{
				{Month: "2026-07", Amount: billing.Money{Amount: 620, Currency: "USD"}},
			},
		})
	}))

	r, err := svc.Revenue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1240.50, r.Total.Amount)
	require.Len(t, r.Monthly, 1)
	assert.Equal(t, "2026-07", r.Monthly[0].Month)
}

func TestService_PlanBreakdown(t *testing.T) {
	t.Parallel()

	t.Run("decodes stats", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]analytics.PlanStats{
				{PlanName: "Pro", Subscribers: 42, Revenue: billing.Money{Amount: 1049.58, Currency: "USD"}},
			})
		}))

		stats, err := svc.PlanBreakdown(context.Background())
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.Equal(t, 42, stats[0].Subscribers)
	})

	t.Run("non-admin refusal surfaces", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"detail": "admin required"})
		}))

		_, err := svc.PlanBreakdown(context.Background())
		var apiErr *apiclient.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
	})
}

func TestService_HostingCosts(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode([]analytics.HostingCost{{ID: 1, Name: "game servers"}})
		case r.Method == http.MethodPost:
			var c analytics.HostingCost
			require.NoError(t, json.NewDecoder(r.Body).Decode(&c))
			c.ID = 2
			json.NewEncoder(w).Encode(c)
		case r.Method == http.MethodDelete:
			require.Equal(t, "/api/hosting-costs/2/", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	}))

	costs, err := svc.HostingCosts(context.Background())
	require.NoError(t, err)
	require.Len(t, costs, 1)

	created, err := svc.AddHostingCost(context.Background(), analytics.HostingCost{
		Name:    "cdn",
		Monthly: billing.Money{Amount: 80, Currency: "USD"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)

	require.NoError(t, svc.DeleteHostingCost(context.Background(), 2))
}

func TestService_Chart(t *testing.T) {
	t.Parallel()

	png := []byte{0x89, 'P', 'N', 'G'}

	t.Run("fetches the named chart", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/plan-distribution-chart/", r.URL.Path)
			w.Header().Set("Content-Type", "image/png")
			w.Write(png)
		}))

		raw, err := svc.Chart(context.Background(), analytics.ChartPlanDistribution)
		require.NoError(t, err)
		assert.Equal(t, png, raw)
	})

	t.Run("unknown kind is rejected locally", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))

		_, err := svc.Chart(context.Background(), "sparkline")
		require.Error(t, err)
	})
}

func TestService_PDFReport(t *testing.T) {
	t.Parallel()

	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate-pdf-report/", r.URL.Path)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.7"))
	}))

	raw, err := svc.PDFReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(raw))
}
