package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is the narrow interface GameKit services use to report
// operational counters. The zero-dependency Noop implementation keeps
// metrics opt-in.
type Recorder interface {
	RecordAuthOperation(op string, success bool)
	RecordProfileCache(hit bool)
	RecordAPIRequest(endpoint string, status int)
	RecordRealtimeEvent(table string)
}

// Collector implements Recorder on top of Prometheus counters.
type Collector struct {
	authOps       *prometheus.CounterVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	apiRequests   *prometheus.CounterVec
	realtimeEvent *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on the
// given registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamekit_auth_operations_total",
			Help: "Auth operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamekit_profile_cache_hits_total",
			Help: "Profile cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gamekit_profile_cache_misses_total",
			Help: "Profile cache misses.",
		}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamekit_api_requests_total",
			Help: "Platform REST API requests by endpoint and status code.",
		}, []string{"endpoint", "status_code"}),
		realtimeEvent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gamekit_realtime_events_total",
			Help: "Realtime change events received, by table.",
		}, []string{"table"}),
	}

	reg.MustRegister(c.authOps, c.cacheHits, c.cacheMisses, c.apiRequests, c.realtimeEvent)
	return c
}

func (c *Collector) RecordAuthOperation(op string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	c.authOps.WithLabelValues(op, outcome).Inc()
}

func (c *Collector) RecordProfileCache(hit bool) {
	if hit {
		c.cacheHits.Inc()
		return
	}
	c.cacheMisses.Inc()
}

func (c *Collector) RecordAPIRequest(endpoint string, status int) {
	c.apiRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func (c *Collector) RecordRealtimeEvent(table string) {
	c.realtimeEvent.WithLabelValues(table).Inc()
}

// Noop discards every recording.
type Noop struct{}

func (Noop) RecordAuthOperation(string, bool) {}
func (Noop) RecordProfileCache(bool)          {}
func (Noop) RecordAPIRequest(string, int)     {}
func (Noop) RecordRealtimeEvent(string)       {}
