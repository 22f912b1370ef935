package sim

import (
	"testing"

	"github.com/Zordux/Last-Vector/internal/config"
)

func TestEnvCapsStalledEpisode(t *testing.T) {
	cfg := config.DefaultSimConfig()
	cfg.Episode.LimitSeconds = 1
	noSpawns(&cfg)

	env, err := NewEnv(cfg)
	if err != nil {
		t.Fatalf("NewEnv() error: %v", err)
	}
	env.Reset(3)

	// Park the engine in the choosing phase and never answer.
	env.engine.world.UpgradeClock = cfg.Upgrades.IntervalSeconds
	env.Step(NoOp())

	var res StepResult
	for i := 1; i < 60; i++ {
		res = env.Step(NoOp())
		if i < 59 && res.Truncated {
			t.Fatalf("truncated after %d steps", env.Steps())
		}
	}
	if !res.Truncated || !env.Done() {
		t.Errorf("truncated=%v done=%v after %d steps, want both true", res.Truncated, env.Done(), env.Steps())
	}
	if env.Engine().Phase() != PhaseChoosingUpgrade {
		t.Errorf("phase = %v, want choosing", env.Engine().Phase())
	}

	env.Reset(3)
	if env.Done() || env.Steps() != 0 {
		t.Error("Reset did not clear the step counter")
	}
}

func TestEnvStepValues(t *testing.T) {
	env, err := NewEnv(config.DefaultSimConfig())
	if err != nil {
		t.Fatalf("NewEnv() error: %v", err)
	}
	env.Reset(1)

	res := env.StepValues([]float64{0, 0, 1, 0, 1})
	if res.Info.ShotsFired != 1 {
		t.Errorf("shots fired = %d, want 1", res.Info.ShotsFired)
	}
	if env.ObservationDim() != ObservationDim() || env.ActionDim() != ActionDim() {
		t.Error("env dimensions disagree with package dimensions")
	}
}

func TestNewEnvRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultSimConfig()
	cfg.Player.Radius = -1
	if _, err := NewEnv(cfg); err == nil {
		t.Error("NewEnv() accepted an invalid config")
	}
}

func TestInfoScalars(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Reset(1)
	res := e.Step(NoOp())

	s := res.Info.Scalars()
	for _, key := range []string{
		"kills", "damage_taken", "shots_fired", "shots_hit", "accuracy",
		"damage_dealt", "is_choosing_upgrade", "difficulty", "zombies_alive",
		"nearest_zombie_distance", "episode_time_s",
	} {
		if _, ok := s[key]; !ok {
			t.Errorf("scalar %q missing", key)
		}
	}
	if s["selected_upgrade"] != -1 {
		t.Errorf("selected_upgrade = %v without a pick, want -1", s["selected_upgrade"])
	}
	if s["accuracy"] != 0 {
		t.Errorf("accuracy = %v with no shots, want 0", s["accuracy"])
	}
}
