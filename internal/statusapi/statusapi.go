// Package statusapi implements the node's admin/status HTTP surface: a
// supplemented feature adapted from cmd/coordinator/main.go's
// http.ServeMux + graceful-shutdown server, re-pointed at this node's own
// health/info/stats instead of cluster membership, plus a Prometheus
// /metrics endpoint.
package statusapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dirvine/saorsa-node/internal/hybrid"
)

// Metrics are the Prometheus counters/gauges the status server exposes,
// built with the same Registerer-based constructor shape used across the
// examples' metrics packages.
type Metrics struct {
	primaryHits   prometheus.Counter
	legacyHits    prometheus.Counter
	misses        prometheus.Counter
	migrations    prometheus.Counter
	primaryWrites prometheus.Counter
}

// NewMetrics registers the node's counters against registerer.
func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		primaryHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "saorsa_node",
			Name:      "primary_hits_total",
			Help:      "Reads satisfied by the primary network.",
		}),
		legacyHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "saorsa_node",
			Name:      "legacy_hits_total",
			Help:      "Reads satisfied by legacy fallback.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "saorsa_node",
			Name:      "misses_total",
			Help:      "Reads satisfied by neither network.",
		}),
		migrations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "saorsa_node",
			Name:      "migrations_total",
			Help:      "Legacy-fallback reads re-published to primary.",
		}),
		primaryWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "saorsa_node",
			Name:      "primary_writes_total",
			Help:      "Writes accepted by the primary client.",
		}),
	}
	for _, c := range []prometheus.Counter{m.primaryHits, m.legacyHits, m.misses, m.migrations, m.primaryWrites} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// sync pulls the router's current snapshot into the registered counters.
// Prometheus counters only move forward, so this adds the delta since the
// last sync rather than setting an absolute value.
func (m *Metrics) sync(prevStats, stats hybrid.Stats) {
	m.primaryHits.Add(float64(stats.PrimaryHits - prevStats.PrimaryHits))
	m.legacyHits.Add(float64(stats.LegacyHits - prevStats.LegacyHits))
	m.misses.Add(float64(stats.Misses - prevStats.Misses))
	m.migrations.Add(float64(stats.Migrations - prevStats.Migrations))
	m.primaryWrites.Add(float64(stats.PrimaryWrites - prevStats.PrimaryWrites))
}

// Router is the subset of *hybrid.Router the status server reads stats
// from.
type Router interface {
	Stats() hybrid.Stats
}

// Server is the admin/status HTTP server.
type Server struct {
	router    Router
	metrics   *Metrics
	registry  *prometheus.Registry
	startedAt time.Time
	version   string
	srv       *http.Server

	statsMu   sync.Mutex
	prevStats hybrid.Stats
}

// New builds a Server exposing router's stats on /stats, liveness on
// /health, build info on /info, and Prometheus metrics on /metrics.
func New(addr string, router Router, version string) (*Server, error) {
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    router,
		metrics:   metrics,
		registry:  registry,
		startedAt: time.Now(),
		version:   version,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/info", s.handleInfo)
	mux.HandleFunc("/stats", s.handleStats)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// ListenAndServe starts the server. It blocks until Shutdown is called.
func (s *Server) ListenAndServe() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server, bounded by ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	resp := struct {
		Version   string `json:"version"`
		UptimeSec int64  `json:"uptime_seconds"`
	}{
		Version:   s.version,
		UptimeSec: int64(time.Since(s.startedAt).Seconds()),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	// The read of router.Stats() and the sync/update of prevStats must be
	// one atomic step: without the lock held across both, two concurrent
	// scrapes can interleave so a stale snapshot is synced after a newer
	// one, and the uint64 delta wraps around to a huge value that inflates
	// the counter.
	s.statsMu.Lock()
	stats := s.router.Stats()
	s.metrics.sync(s.prevStats, stats)
	s.prevStats = stats
	s.statsMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
