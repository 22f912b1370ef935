package sim

import "github.com/Zordux/Last-Vector/internal/config"

// Env is the training-facing wrapper around an Engine. Besides the engine's
// own tick-based truncation it caps the number of Step calls per episode,
// so an agent that never answers an upgrade offer still reaches the end.
type Env struct {
	engine   *Engine
	maxSteps uint64
	steps    uint64
	done     bool
}

// NewEnv builds an engine from cfg and wraps it.
func NewEnv(cfg config.SimConfig, opts ...Option) (*Env, error) {
	e, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Env{engine: e, maxSteps: e.EpisodeTicks()}, nil
}

// Reset starts a new episode.
func (v *Env) Reset(seed uint64) []float32 {
	v.steps = 0
	v.done = false
	return v.engine.Reset(seed)
}

// Step advances the episode. Truncated is also set once the call count
// reaches the episode tick limit.
func (v *Env) Step(a Action) StepResult {
	res := v.engine.Step(a)
	v.steps++
	if v.steps >= v.maxSteps {
		res.Truncated = true
	}
	v.done = res.Terminated || res.Truncated
	return res
}

// StepValues parses a flat action vector and steps with it.
func (v *Env) StepValues(values []float64) StepResult {
	return v.Step(ParseAction(values))
}

// Done reports whether the last step ended the episode.
func (v *Env) Done() bool {
	return v.done
}

// Steps returns the number of Step calls since the last reset.
func (v *Env) Steps() uint64 {
	return v.steps
}

// Engine returns the wrapped engine for read-only access.
func (v *Env) Engine() *Engine {
	return v.engine
}

// ObservationDim returns the observation length.
func (v *Env) ObservationDim() int {
	return ObservationDim()
}

// ActionDim returns the action length.
func (v *Env) ActionDim() int {
	return ActionDim()
}
