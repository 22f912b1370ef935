package heuristic

import (
	"context"
	"testing"

	"github.com/Zordux/Last-Vector/internal/config"
	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/sim"
)

func TestHeuristicFightsBack(t *testing.T) {
	e, err := sim.New(config.DefaultSimConfig())
	if err != nil {
		t.Fatalf("sim.New() error: %v", err)
	}
	p := New()
	obs := e.Reset(1)
	p.Reset(1)

	choosingStreak := 0
	for i := 0; i < 1800; i++ {
		a, err := p.Act(context.Background(), obs)
		if err != nil {
			t.Fatalf("Act() error: %v", err)
		}
		res := e.Step(a)
		obs = res.Observation

		if res.Info.Choosing {
			choosingStreak++
			if choosingStreak > 1 {
				t.Fatal("policy left an upgrade offer unanswered")
			}
		} else {
			choosingStreak = 0
		}
		if res.Terminated {
			break
		}
	}

	info := e.Snapshot().Stats
	if info.ShotsFired == 0 {
		t.Fatal("heuristic never fired")
	}
	if info.Kills == 0 {
		t.Errorf("heuristic scored no kills in %d shots", info.ShotsFired)
	}
}

func TestHeuristicAimsAtNearestZombie(t *testing.T) {
	obs := make([]float32, sim.ObservationDim())
	for i := 0; i < sim.RayCount; i++ {
		obs[sim.PlayerFeatures+sim.ZombieSlots*sim.ZombieFeatures+i*sim.RayChannels] = 1
	}
	obs[5] = 1 // full stamina
	obs[6] = 1 // full magazine
	// Slot 0: zombie straight up and close.
	obs[sim.PlayerFeatures+0] = 0
	obs[sim.PlayerFeatures+1] = -0.05
	obs[sim.PlayerFeatures+2] = 0.09
	for slot := 1; slot < sim.ZombieSlots; slot++ {
		obs[sim.PlayerFeatures+slot*sim.ZombieFeatures+2] = 1
	}

	a, _ := New().Act(context.Background(), obs)
	if !a.Shoot {
		t.Error("did not shoot at a visible zombie")
	}
	if a.AimX != 0 || a.AimY >= 0 {
		t.Errorf("aim = (%v, %v), want straight up", a.AimX, a.AimY)
	}
	if a.MoveY <= 0 {
		t.Errorf("move y = %v, want backing away downward", a.MoveY)
	}
	if !a.Sprint {
		t.Error("did not sprint away from a zombie inside panic range")
	}
	if a.UpgradeChoice != sim.NoChoice {
		t.Errorf("choice = %d while playing", a.UpgradeChoice)
	}
}

func TestHeuristicSkipsMaxedUpgrade(t *testing.T) {
	obs := make([]float32, sim.ObservationDim())
	scalars := sim.PlayerFeatures + sim.ZombieSlots*sim.ZombieFeatures + sim.RayCount*sim.RayChannels
	obs[scalars+1] = 1
	encode := func(id sim.UpgradeID) float32 {
		return float32((float64(id) + 0.5) / float64(sim.UpgradeCount))
	}
	obs[scalars+2] = encode(sim.UpgradeSecondWind)
	obs[scalars+3] = encode(sim.UpgradeCardio)
	obs[scalars+4] = encode(sim.UpgradeBigShot)
	obs[scalars+5+int(sim.UpgradeSecondWind)] = 1

	a, _ := New().Act(context.Background(), obs)
	if a.UpgradeChoice != 1 {
		t.Errorf("choice = %d, want 1", a.UpgradeChoice)
	}
}

func TestRegistered(t *testing.T) {
	p, err := registry.Create("heuristic")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if p.ID() != "heuristic" {
		t.Errorf("ID() = %q", p.ID())
	}
}
