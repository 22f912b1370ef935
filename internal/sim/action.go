package sim

import (
	"math"

	"github.com/Zordux/Last-Vector/internal/core"
)

// NoChoice is the upgrade choice meaning "nothing selected".
const NoChoice = -1

// Action is one tick of agent input.
type Action struct {
	MoveX, MoveY  float64 // Movement intent, each in [-1, 1]
	AimX, AimY    float64 // Aim direction, each in [-1, 1]
	Shoot         bool
	Sprint        bool
	Reload        bool
	UpgradeChoice int // Offer slot 0-2, or NoChoice
}

// NoOp returns an action that does nothing and selects no upgrade.
func NoOp() Action {
	return Action{UpgradeChoice: NoChoice}
}

// ActionDim returns the length of the flat action vector.
func ActionDim() int {
	return 8
}

// ParseAction builds an action from a flat vector laid out as
// [move_x, move_y, aim_x, aim_y, shoot, sprint, reload, upgrade_choice].
//
// Short vectors are padded with zeros and a missing choice, extra values
// are ignored, non-finite values read as zero, axes are clamped, flags
// are set at 0.5 or above, and the choice is rounded into {-1, 0, 1, 2}.
func ParseAction(values []float64) Action {
	var v [8]float64
	v[7] = NoChoice
	for i := 0; i < len(values) && i < len(v); i++ {
		v[i] = finiteOr(values[i], 0)
	}

	return Action{
		MoveX:         core.ClampF(v[0], -1, 1),
		MoveY:         core.ClampF(v[1], -1, 1),
		AimX:          core.ClampF(v[2], -1, 1),
		AimY:          core.ClampF(v[3], -1, 1),
		Shoot:         v[4] >= 0.5,
		Sprint:        v[5] >= 0.5,
		Reload:        v[6] >= 0.5,
		UpgradeChoice: parseChoice(v[7]),
	}
}

// ParseAction32 is ParseAction for float32 vectors.
func ParseAction32(values []float32) Action {
	wide := make([]float64, len(values))
	for i, x := range values {
		wide[i] = float64(x)
	}
	return ParseAction(wide)
}

func parseChoice(x float64) int {
	if x < -0.5 {
		return NoChoice
	}
	return int(math.Round(core.ClampF(x, 0, 2)))
}

// Sanitized returns a copy with axes clamped, non-finite axes zeroed and
// out-of-range choices replaced by NoChoice.
func (a Action) Sanitized() Action {
	a.MoveX = core.ClampF(finiteOr(a.MoveX, 0), -1, 1)
	a.MoveY = core.ClampF(finiteOr(a.MoveY, 0), -1, 1)
	a.AimX = core.ClampF(finiteOr(a.AimX, 0), -1, 1)
	a.AimY = core.ClampF(finiteOr(a.AimY, 0), -1, 1)
	if a.UpgradeChoice < 0 || a.UpgradeChoice > 2 {
		a.UpgradeChoice = NoChoice
	}
	return a
}

// Values returns the flat vector form of a.
func (a Action) Values() [8]float64 {
	return [8]float64{
		a.MoveX, a.MoveY, a.AimX, a.AimY,
		boolValue(a.Shoot), boolValue(a.Sprint), boolValue(a.Reload),
		float64(a.UpgradeChoice),
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func finiteOr(x, fallback float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fallback
	}
	return x
}
