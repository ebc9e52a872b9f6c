package gamekit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playforge/gamekit"
	"github.com/playforge/gamekit/pkg/apiclient"
	"github.com/playforge/gamekit/pkg/provider"
	"github.com/playforge/gamekit/svc/auth"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PROVIDER_URL", "https://baas.example.com")
	t.Setenv("PROVIDER_ANON_KEY", "anon-key")
	t.Setenv("API_BASE_URL", "https://api.example.com")

	cfg, err := gamekit.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://baas.example.com", cfg.Provider.URL)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	cfg := gamekit.Config{
		Provider: provider.Config{URL: "https://baas.example.com", AnonKey: "anon-key"},
		API:      apiclient.Config{BaseURL: "https://api.example.com"},
	}
	client := gamekit.NewClient(cfg, gamekit.WithRegisterer(prometheus.NewRegistry()))
	t.Cleanup(client.Close)

	require.NotNil(t, client.Provider)
	require.NotNil(t, client.Auth)
	require.NotNil(t, client.Billing)
	require.NotNil(t, client.Analytics)
	require.NotNil(t, client.Tracking)

	// Chat requires a signed-in user.
	_, err := client.Chat()
	assert.ErrorIs(t, err, auth.ErrNotAuthenticated)
}

func TestNewClient_AnonymousPlanBrowsing(t *testing.T) {
	t.Parallel()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/plans/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":1,"name":"Starter","price":{"amount":9.99,"currency":"USD"},"interval":"month"}]`))
	}))
	defer api.Close()

	cfg := gamekit.Config{
		Provider: provider.Config{URL: "https://baas.example.com", AnonKey: "anon-key"},
		API:      apiclient.Config{BaseURL: api.URL, Timeout: 5 * time.Second},
	}
	client := gamekit.NewClient(cfg, gamekit.WithRegisterer(prometheus.NewRegistry()))
	t.Cleanup(client.Close)

	// No session exists; plan browsing still works without credentials.
	plans, err := client.Billing.Plans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "Starter", plans[0].Name)
}
