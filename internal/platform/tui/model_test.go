package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zordux/Last-Vector/internal/config"
	"github.com/Zordux/Last-Vector/internal/core"
	"github.com/Zordux/Last-Vector/internal/sim"
	"github.com/Zordux/Last-Vector/internal/storage"
)

// scriptPolicy always returns the same action and counts its calls.
type scriptPolicy struct {
	action sim.Action
	acts   int
	seed   uint64
}

func (p *scriptPolicy) ID() string        { return "script" }
func (p *scriptPolicy) Title() string     { return "Script" }
func (p *scriptPolicy) Reset(seed uint64) { p.seed = seed }

func (p *scriptPolicy) Act(ctx context.Context, obs []float32) (sim.Action, error) {
	p.acts++
	return p.action, nil
}

func openFieldConfig() config.SimConfig {
	cfg := config.DefaultSimConfig()
	cfg.Arena.Obstacles = nil
	return cfg
}

func newTestModel(t *testing.T, cfg config.SimConfig, opts Options) Model {
	t.Helper()
	engine, err := sim.New(cfg, sim.WithRunMode(sim.RunModeRendered))
	if err != nil {
		t.Fatalf("sim.New() error = %v", err)
	}
	rc := core.RuntimeConfig{ScreenW: 120, ScreenH: 40, TickRate: 60, Seed: 7}
	return NewModel(engine, rc, opts)
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func ticks(t *testing.T, m Model, n int) Model {
	t.Helper()
	for range n {
		m = send(t, m, TickMsg(time.Now()))
	}
	return m
}

func TestModelStartsEpisodeWithSeed(t *testing.T) {
	m := newTestModel(t, openFieldConfig(), Options{})

	w := m.Engine().Snapshot()
	if w.Seed != 7 {
		t.Errorf("seed = %d, want 7", w.Seed)
	}
	if w.Tick != 0 {
		t.Errorf("tick = %d, want 0", w.Tick)
	}
}

func TestModelHumanMovesPlayer(t *testing.T) {
	m := newTestModel(t, openFieldConfig(), Options{})
	start := m.Engine().Snapshot().Player.Pos

	m = send(t, m, runes('d'))
	m = ticks(t, m, 5)

	w := m.Engine().Snapshot()
	if w.Tick != 5 {
		t.Fatalf("tick = %d, want 5", w.Tick)
	}
	if w.Player.Pos.X <= start.X {
		t.Errorf("player x = %.2f, want > %.2f", w.Player.Pos.X, start.X)
	}
}

func TestModelPolicyDrives(t *testing.T) {
	p := &scriptPolicy{action: sim.NoOp()}
	m := newTestModel(t, openFieldConfig(), Options{Policy: p})

	if p.seed != 7 {
		t.Errorf("policy reset with seed %d, want 7", p.seed)
	}

	// Movement keys are ignored while a policy drives.
	m = send(t, m, runes('d'))
	m = ticks(t, m, 3)

	if p.acts != 3 {
		t.Errorf("policy acted %d times, want 3", p.acts)
	}
	if got := m.Engine().Snapshot().Tick; got != 3 {
		t.Errorf("tick = %d, want 3", got)
	}
}

func TestModelPauseHoldsSimulation(t *testing.T) {
	m := newTestModel(t, openFieldConfig(), Options{})

	m = send(t, m, runes('p'))
	if !m.Paused() {
		t.Fatal("expected paused")
	}
	m = ticks(t, m, 4)
	if got := m.Engine().Snapshot().Tick; got != 0 {
		t.Errorf("tick while paused = %d, want 0", got)
	}

	m = send(t, m, runes('p'))
	m = ticks(t, m, 2)
	if got := m.Engine().Snapshot().Tick; got != 2 {
		t.Errorf("tick after resume = %d, want 2", got)
	}
}

func TestModelHumanChoosesUpgrade(t *testing.T) {
	cfg := openFieldConfig()
	cfg.Upgrades.IntervalSeconds = 0.05

	m := newTestModel(t, cfg, Options{})
	for i := 0; i < 30 && m.Engine().Phase() != sim.PhaseChoosingUpgrade; i++ {
		m = ticks(t, m, 1)
	}
	if m.Engine().Phase() != sim.PhaseChoosingUpgrade {
		t.Fatal("never reached an upgrade choice")
	}
	if !strings.Contains(m.View(), "CHOOSE AN UPGRADE") {
		t.Error("offer panel not drawn")
	}

	// Waiting does not pick anything.
	m = ticks(t, m, 3)
	if m.Engine().Phase() != sim.PhaseChoosingUpgrade {
		t.Fatal("choice resolved without input")
	}

	offered := m.Engine().Snapshot().Offer[1]
	m = send(t, m, runes('2'))
	m = ticks(t, m, 1)

	w := m.Engine().Snapshot()
	if w.Phase == sim.PhaseChoosingUpgrade {
		t.Fatal("still choosing after pressing 2")
	}
	if w.Upgrades.Level(offered) != 1 {
		t.Errorf("level of %s = %d, want 1", offered, w.Upgrades.Level(offered))
	}
}

func TestModelQuitSavesAbortedEpisode(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "episodes.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer store.Close()

	m := newTestModel(t, openFieldConfig(), Options{Store: store, Preset: "normal"})
	m = ticks(t, m, 10)

	next, cmd := m.Update(runes('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if got := next.(Model).View(); got != "" {
		t.Errorf("View after quit = %q, want empty", got)
	}

	eps, err := store.RecentEpisodes(5)
	if err != nil {
		t.Fatalf("RecentEpisodes() error = %v", err)
	}
	if len(eps) != 1 {
		t.Fatalf("stored %d episodes, want 1", len(eps))
	}
	ep := eps[0]
	if ep.Policy != HumanPolicyID || ep.Outcome != storage.OutcomeAborted {
		t.Errorf("stored %s/%s, want %s/%s", ep.Policy, ep.Outcome, HumanPolicyID, storage.OutcomeAborted)
	}
	if ep.Ticks != 10 || ep.Seed != 7 || ep.Difficulty != "normal" {
		t.Errorf("stored ticks=%d seed=%d difficulty=%q", ep.Ticks, ep.Seed, ep.Difficulty)
	}
}

func TestModelEndsOnTruncation(t *testing.T) {
	cfg := openFieldConfig()
	cfg.Episode.LimitSeconds = 0.1 // 6 ticks

	p := &scriptPolicy{action: sim.NoOp()}
	m := newTestModel(t, cfg, Options{Policy: p})
	m = ticks(t, m, 10)

	if !m.Ended() {
		t.Fatal("expected episode to end")
	}
	if got := m.Engine().Snapshot().Tick; got != 6 {
		t.Errorf("tick = %d, want 6", got)
	}
	if !strings.Contains(m.View(), "TIME UP") {
		t.Error("end banner missing")
	}

	// Enter starts a fresh episode.
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Ended() || m.Engine().Snapshot().Tick != 0 {
		t.Error("restart did not reset the episode")
	}
}

func TestModelViewTooSmall(t *testing.T) {
	m := newTestModel(t, openFieldConfig(), Options{})
	m = send(t, m, tea.WindowSizeMsg{Width: 20, Height: 8})

	if !strings.Contains(m.View(), "terminal too small") {
		t.Error("expected size warning")
	}
}

func TestModelEpisodeSummary(t *testing.T) {
	p := &scriptPolicy{action: sim.NoOp()}
	m := newTestModel(t, openFieldConfig(), Options{Policy: p})
	m = ticks(t, m, 4)

	ep := m.Episode()
	if ep.Policy != "script" {
		t.Errorf("policy = %q, want script", ep.Policy)
	}
	if ep.Outcome != storage.OutcomeAborted {
		t.Errorf("outcome of running episode = %q, want aborted", ep.Outcome)
	}
	if ep.Digest != m.Engine().Digest() {
		t.Error("digest does not match engine")
	}
}
