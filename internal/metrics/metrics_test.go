package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zordux/Last-Vector/internal/sim"
)

func TestObserveStep(t *testing.T) {
	m := New()

	m.ObserveStep("heuristic", sim.Info{ZombiesAlive: 4, Difficulty: 0.5})
	m.ObserveStep("heuristic", sim.Info{
		ZombiesAlive: 6,
		Difficulty:   0.75,
		Picked:       true,
		Selected:     sim.UpgradeBigShot,
		Revived:      true,
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.steps.WithLabelValues("heuristic")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.zombiesAlive))
	assert.Equal(t, 0.75, testutil.ToFloat64(m.difficulty))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upgrades.WithLabelValues(sim.UpgradeBigShot.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.revives))
}

func TestObserveStepIgnoresUnpickedSelection(t *testing.T) {
	m := New()
	m.ObserveStep("idle", sim.Info{Selected: sim.UpgradeCardio})

	assert.Equal(t, 0, testutil.CollectAndCount(m.upgrades))
}

func TestObserveEpisode(t *testing.T) {
	m := New()
	m.ObserveEpisode("random", "died", 12, 30.5, 61)
	m.ObserveEpisode("random", "truncated", 40, 120, 180)
	m.ObserveEpisode("idle", "died", 0, -3, 9)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.episodes.WithLabelValues("random", "died")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.episodes.WithLabelValues("random", "truncated")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.episodes))
	assert.Equal(t, 2, testutil.CollectAndCount(m.kills))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveEpisode("heuristic", "died", 3, 1, 20)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `lastvector_episodes_total{outcome="died",policy="heuristic"} 1`)
	assert.Contains(t, body, "lastvector_episode_kills_bucket")
	assert.Contains(t, body, "lastvector_episode_survival_seconds_sum")
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveStep("idle", sim.Info{})

	assert.Equal(t, 1.0, testutil.ToFloat64(a.steps.WithLabelValues("idle")))
	assert.Equal(t, 0, testutil.CollectAndCount(b.steps))
}

func TestServeStopsOnCancel(t *testing.T) {
	// Reserve a free port, then hand it to Serve.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, addr, log.New(io.Discard)) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + addr + "/metrics")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.Contains(string(body), "lastvector_"), "no metrics in response")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}
