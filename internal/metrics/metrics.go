// Package metrics exports simulation counters to Prometheus.
//
// Metrics:
//   - episodes_total{policy,outcome}: counter
//   - steps_total{policy}: counter
//   - episode_kills{policy}, episode_reward{policy}, episode_survival_seconds{policy}: histograms
//   - upgrades_chosen_total{upgrade}: counter
//   - revives_total: counter
//   - zombies_alive, difficulty: gauges for the most recent step
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Zordux/Last-Vector/internal/sim"
)

// Namespace prefixes every metric name.
const Namespace = "lastvector"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	episodes *prometheus.CounterVec
	steps    *prometheus.CounterVec
	kills    *prometheus.HistogramVec
	reward   *prometheus.HistogramVec
	survival *prometheus.HistogramVec
	upgrades *prometheus.CounterVec
	revives  prometheus.Counter

	zombiesAlive prometheus.Gauge
	difficulty   prometheus.Gauge
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		episodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "episodes_total",
			Help:      "Finished episodes by outcome.",
		}, []string{"policy", "outcome"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "steps_total",
			Help:      "Environment steps taken.",
		}, []string{"policy"}),
		kills: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "episode_kills",
			Help:      "Zombies killed per episode.",
			Buckets:   []float64{0, 5, 10, 25, 50, 100, 200, 400, 800},
		}, []string{"policy"}),
		reward: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "episode_reward",
			Help:      "Total shaped reward per episode.",
			Buckets:   []float64{-100, -25, -5, 0, 5, 25, 100, 250, 500, 1000},
		}, []string{"policy"}),
		survival: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "episode_survival_seconds",
			Help:      "Simulated seconds survived per episode.",
			Buckets:   []float64{10, 30, 60, 90, 120, 180, 240, 300, 600},
		}, []string{"policy"}),
		upgrades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "upgrades_chosen_total",
			Help:      "Upgrades applied, by upgrade.",
		}, []string{"upgrade"}),
		revives: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "revives_total",
			Help:      "Second wind activations.",
		}),
		zombiesAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "zombies_alive",
			Help:      "Zombies alive after the most recent step.",
		}),
		difficulty: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "difficulty",
			Help:      "Difficulty scalar after the most recent step.",
		}),
	}

	m.registry.MustRegister(
		m.episodes, m.steps, m.kills, m.reward, m.survival,
		m.upgrades, m.revives, m.zombiesAlive, m.difficulty,
	)
	return m
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveStep records one environment step.
func (m *Metrics) ObserveStep(policy string, info sim.Info) {
	m.steps.WithLabelValues(policy).Inc()
	m.zombiesAlive.Set(float64(info.ZombiesAlive))
	m.difficulty.Set(info.Difficulty)
	if info.Picked {
		m.upgrades.WithLabelValues(info.Selected.String()).Inc()
	}
	if info.Revived {
		m.revives.Inc()
	}
}

// ObserveEpisode records a finished episode.
func (m *Metrics) ObserveEpisode(policy, outcome string, kills int, reward, seconds float64) {
	m.episodes.WithLabelValues(policy, outcome).Inc()
	m.kills.WithLabelValues(policy).Observe(float64(kills))
	m.reward.WithLabelValues(policy).Observe(reward)
	m.survival.WithLabelValues(policy).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *log.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
