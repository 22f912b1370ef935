package runner

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zordux/Last-Vector/internal/config"
	"github.com/Zordux/Last-Vector/internal/metrics"
	"github.com/Zordux/Last-Vector/internal/replay"
	"github.com/Zordux/Last-Vector/internal/sim"
	"github.com/Zordux/Last-Vector/internal/storage"
)

// passivePolicy never answers upgrade offers and fails after failAfter
// calls when failAfter > 0.
type passivePolicy struct {
	calls     int
	failAfter int
	shoot     bool
}

var errBroken = errors.New("broken pipe")

func (p *passivePolicy) ID() string        { return "passive" }
func (p *passivePolicy) Title() string     { return "Passive" }
func (p *passivePolicy) Reset(seed uint64) {}

func (p *passivePolicy) Act(ctx context.Context, obs []float32) (sim.Action, error) {
	p.calls++
	if p.failAfter > 0 && p.calls > p.failAfter {
		return sim.Action{}, errBroken
	}
	a := sim.NoOp()
	a.Shoot = p.shoot
	a.AimX = 1
	return a, nil
}

func shortConfig() config.SimConfig {
	cfg := config.DefaultSimConfig()
	cfg.Episode.LimitSeconds = 2
	return cfg
}

func TestEpisodeTruncates(t *testing.T) {
	r, err := New(shortConfig(), Options{Policy: &passivePolicy{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := r.Episode(context.Background(), 11)
	if err != nil {
		t.Fatalf("Episode() error = %v", err)
	}
	if res.Terminated {
		t.Skip("player died inside two seconds")
	}
	if !res.Truncated || res.Outcome != storage.OutcomeTruncated {
		t.Errorf("outcome = %q truncated=%t, want truncated", res.Outcome, res.Truncated)
	}
	if res.Ticks != 120 {
		t.Errorf("ticks = %d, want 120", res.Ticks)
	}
	if got := res.String(); !strings.HasPrefix(got, "seed=11 ticks=120 kills=") || !strings.HasSuffix(got, "dead=false") {
		t.Errorf("String() = %q", got)
	}
}

func TestNewRequiresPolicy(t *testing.T) {
	if _, err := New(shortConfig(), Options{}); err == nil {
		t.Error("expected error without a policy")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := shortConfig()
	cfg.Arena.TickRate = 0
	_, err := New(cfg, Options{Policy: &passivePolicy{}})
	if !errors.Is(err, sim.ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestAutoPickAnswersOffers(t *testing.T) {
	cfg := shortConfig()
	cfg.Upgrades.IntervalSeconds = 0.5

	r, err := New(cfg, Options{Policy: &passivePolicy{}, AutoPick: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := r.Episode(context.Background(), 3)
	if err != nil {
		t.Fatalf("Episode() error = %v", err)
	}
	if res.Info.UpgradesChosen == 0 {
		t.Error("expected auto-picked upgrades")
	}
}

func TestUnansweredOfferStillEnds(t *testing.T) {
	cfg := shortConfig()
	cfg.Upgrades.IntervalSeconds = 0.5

	r, err := New(cfg, Options{Policy: &passivePolicy{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := r.Episode(context.Background(), 3)
	if err != nil {
		t.Fatalf("Episode() error = %v", err)
	}
	if !res.Truncated {
		t.Error("expected the step cap to truncate")
	}
	if res.Steps != cfg.EpisodeTicks() {
		t.Errorf("steps = %d, want %d", res.Steps, cfg.EpisodeTicks())
	}
	if res.Ticks >= res.Steps {
		t.Errorf("ticks = %d should stall below steps = %d", res.Ticks, res.Steps)
	}
}

func TestEpisodePersistsAndCounts(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer store.Close()
	m := metrics.New()

	r, err := New(shortConfig(), Options{
		Policy:  &passivePolicy{shoot: true},
		Store:   store,
		Metrics: m,
		Preset:  "easy",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var results []Result
	if err := r.Run(context.Background(), 100, 2, func(res Result) { results = append(results, res) }); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 2 || results[1].Seed != 101 {
		t.Fatalf("results = %+v", results)
	}

	ep, err := store.EpisodeByID(results[0].EpisodeID)
	if err != nil || ep == nil {
		t.Fatalf("EpisodeByID() = %v, %v", ep, err)
	}
	if ep.Policy != "passive" || ep.Seed != 100 || ep.Difficulty != "easy" {
		t.Errorf("stored %+v", ep)
	}
	if ep.Ticks != results[0].Ticks || ep.Kills != results[0].Kills {
		t.Errorf("stored ticks/kills %d/%d, want %d/%d", ep.Ticks, ep.Kills, results[0].Ticks, results[0].Kills)
	}
	if ep.ShotsFired == 0 {
		t.Error("expected shots to be stored")
	}

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == metrics.Namespace+"_episodes_total" {
			found = true
		}
	}
	if !found {
		t.Error("episodes_total not exported")
	}
}

func TestRecordedEpisodeVerifies(t *testing.T) {
	cfg := shortConfig()
	config.ApplySimPreset(&cfg, config.DifficultyHard)

	r, err := New(cfg, Options{Policy: &passivePolicy{shoot: true}, Record: true, AutoPick: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	res, err := r.Episode(context.Background(), 77)
	if err != nil {
		t.Fatalf("Episode() error = %v", err)
	}
	if res.Replay == nil {
		t.Fatal("no replay recorded")
	}
	if uint64(len(res.Replay.Actions)) != res.Steps {
		t.Errorf("recorded %d actions, want %d", len(res.Replay.Actions), res.Steps)
	}

	e, err := res.Replay.Engine()
	if err != nil {
		t.Fatalf("Engine() error = %v", err)
	}
	got, err := replay.Verify(e, res.Replay)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got.Ticks != res.Ticks || got.Kills != res.Kills {
		t.Errorf("verified ticks/kills %d/%d, want %d/%d", got.Ticks, got.Kills, res.Ticks, res.Kills)
	}
}

func TestPolicyErrorAborts(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	defer store.Close()

	r, err := New(shortConfig(), Options{Policy: &passivePolicy{failAfter: 10}, Store: store})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	res, err := r.Episode(context.Background(), 5)
	if !errors.Is(err, errBroken) {
		t.Fatalf("Episode() error = %v, want wrapped errBroken", err)
	}
	if res.Outcome != storage.OutcomeAborted || res.Ticks != 10 {
		t.Errorf("outcome=%q ticks=%d, want aborted after 10", res.Outcome, res.Ticks)
	}

	eps, err := store.RecentEpisodes(5)
	if err != nil || len(eps) != 1 || eps[0].Outcome != storage.OutcomeAborted {
		t.Errorf("stored %+v, %v", eps, err)
	}

	// Run stops at the first failing episode.
	calls := 0
	err = r.Run(context.Background(), 1, 3, func(Result) { calls++ })
	if err == nil || calls != 1 {
		t.Errorf("Run() = %v after %d episodes, want error after 1", err, calls)
	}
}

func TestCancelledContextAborts(t *testing.T) {
	r, err := New(shortConfig(), Options{Policy: &passivePolicy{}})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := r.Episode(ctx, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Episode() error = %v, want context.Canceled", err)
	}
	if res.Outcome != storage.OutcomeAborted || res.Ticks != 0 {
		t.Errorf("outcome=%q ticks=%d", res.Outcome, res.Ticks)
	}
}
