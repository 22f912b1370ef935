// Package runner plays headless episodes: a policy drives a sim.Env at
// full speed, and each finished episode is logged, persisted, counted and
// optionally recorded for replay.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/Zordux/Last-Vector/internal/config"
	"github.com/Zordux/Last-Vector/internal/metrics"
	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/replay"
	"github.com/Zordux/Last-Vector/internal/sim"
	"github.com/Zordux/Last-Vector/internal/storage"
)

// Options configures a Runner. Only Policy is required.
type Options struct {
	Policy   registry.Policy
	Store    *storage.Store   // nil skips persistence
	Metrics  *metrics.Metrics // nil skips metrics
	Logger   *log.Logger      // nil discards logs
	Preset   string           // Difficulty preset name, stored with episodes
	Record   bool             // Attach a replay record to every result
	AutoPick bool             // Answer an unanswered upgrade offer with slot 0
}

// Result summarizes one episode.
type Result struct {
	Seed       uint64
	Ticks      uint64
	Steps      uint64
	Kills      int
	Seconds    float64
	Reward     float64
	Terminated bool
	Truncated  bool
	Outcome    string
	EpisodeID  string         // Storage id, empty without a store
	Replay     *replay.Record // nil unless Options.Record is set
	Info       sim.Info       // Info of the final step
}

// String formats the one-line episode summary.
func (r Result) String() string {
	return fmt.Sprintf("seed=%d ticks=%d kills=%d dead=%t", r.Seed, r.Ticks, r.Kills, r.Terminated)
}

// Runner plays episodes with one policy on one environment.
// It is not safe for concurrent use.
type Runner struct {
	cfg    config.SimConfig
	env    *sim.Env
	opts   Options
	logger *log.Logger
}

// New builds the environment for cfg.
func New(cfg config.SimConfig, opts Options) (*Runner, error) {
	if opts.Policy == nil {
		return nil, errors.New("runner: no policy")
	}
	env, err := sim.NewEnv(cfg, sim.WithRunMode(sim.RunModeHeadless))
	if err != nil {
		return nil, fmt.Errorf("runner: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{cfg: cfg, env: env, opts: opts, logger: logger}, nil
}

// Env exposes the environment, mainly for tests.
func (r *Runner) Env() *sim.Env {
	return r.env
}

// Episode plays one episode from seed to termination or truncation.
// A policy error or a cancelled ctx ends the episode as aborted; the
// partial result is still saved and returned with the error.
func (r *Runner) Episode(ctx context.Context, seed uint64) (Result, error) {
	policy := r.opts.Policy
	obs := r.env.Reset(seed)
	policy.Reset(seed)

	var rec *replay.Recorder
	if r.opts.Record {
		var err error
		if rec, err = replay.NewRecorder(r.cfg, seed, r.opts.Preset, policy.ID()); err != nil {
			return Result{Seed: seed}, err
		}
	}

	res := Result{Seed: seed}
	var runErr error
	for !r.env.Done() {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		a, err := policy.Act(ctx, obs)
		if err != nil {
			runErr = fmt.Errorf("runner: policy %s: %w", policy.ID(), err)
			break
		}
		if r.opts.AutoPick && r.env.Engine().Phase() == sim.PhaseChoosingUpgrade && a.UpgradeChoice < 0 {
			a.UpgradeChoice = 0
		}
		if rec != nil {
			rec.Add(a)
		}

		step := r.env.Step(a)
		obs = step.Observation
		res.Reward += step.Reward
		res.Terminated = step.Terminated
		res.Truncated = step.Truncated
		res.Info = step.Info

		if r.opts.Metrics != nil {
			r.opts.Metrics.ObserveStep(policy.ID(), step.Info)
		}
	}

	r.finish(&res, rec, runErr)
	return res, runErr
}

// finish fills the summary and hands it to storage, metrics and the log.
func (r *Runner) finish(res *Result, rec *replay.Recorder, runErr error) {
	e := r.env.Engine()
	w := e.Snapshot()
	res.Ticks = w.Tick
	res.Steps = r.env.Steps()
	res.Kills = w.Stats.Kills
	res.Seconds = w.Elapsed

	switch {
	case runErr != nil:
		res.Outcome = storage.OutcomeAborted
	case res.Terminated:
		res.Outcome = storage.OutcomeDied
	default:
		res.Outcome = storage.OutcomeTruncated
	}

	if rec != nil {
		res.Replay = rec.Finish(e)
	}

	policy := r.opts.Policy.ID()
	if r.opts.Metrics != nil {
		r.opts.Metrics.ObserveEpisode(policy, res.Outcome, res.Kills, res.Reward, res.Seconds)
	}

	if r.opts.Store != nil {
		chosen := 0
		for _, lvl := range w.Upgrades.Levels {
			chosen += lvl
		}
		id, err := r.opts.Store.SaveEpisode(storage.Episode{
			Seed:        res.Seed,
			Policy:      policy,
			Difficulty:  r.opts.Preset,
			Ticks:       res.Ticks,
			Seconds:     res.Seconds,
			Kills:       res.Kills,
			DamageTaken: w.Stats.DamageTaken,
			DamageDealt: w.Stats.DamageDealt,
			ShotsFired:  w.Stats.ShotsFired,
			ShotsHit:    w.Stats.ShotsHit,
			Upgrades:    chosen,
			Reward:      res.Reward,
			Outcome:     res.Outcome,
			Digest:      e.Digest(),
		})
		if err != nil {
			r.logger.Warn("could not save episode", "error", err)
		}
		res.EpisodeID = id
	}

	r.logger.Info("episode finished",
		"policy", policy,
		"seed", res.Seed,
		"ticks", res.Ticks,
		"kills", res.Kills,
		"reward", fmt.Sprintf("%.2f", res.Reward),
		"outcome", res.Outcome,
	)
}

// Run plays count episodes with seeds seed, seed+1, ... and calls each
// with every result. It stops at the first error.
func (r *Runner) Run(ctx context.Context, seed uint64, count int, each func(Result)) error {
	for i := 0; i < count; i++ {
		res, err := r.Episode(ctx, seed+uint64(i))
		if each != nil {
			each(res)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
