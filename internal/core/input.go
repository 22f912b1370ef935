package core

// Intent represents a semantic player intent, abstracted from physical key presses.
// The viewer maps keys to intents and intents to a simulation action.
type Intent int

const (
	IntentNone Intent = iota
	IntentMoveUp
	IntentMoveDown
	IntentMoveLeft
	IntentMoveRight
	IntentAimUp
	IntentAimDown
	IntentAimLeft
	IntentAimRight
	IntentShoot
	IntentSprint
	IntentReload
	IntentChoose1
	IntentChoose2
	IntentChoose3
	IntentPause
	IntentRestart
	IntentQuit
)

// String returns a human-readable name for the intent.
func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "None"
	case IntentMoveUp:
		return "MoveUp"
	case IntentMoveDown:
		return "MoveDown"
	case IntentMoveLeft:
		return "MoveLeft"
	case IntentMoveRight:
		return "MoveRight"
	case IntentAimUp:
		return "AimUp"
	case IntentAimDown:
		return "AimDown"
	case IntentAimLeft:
		return "AimLeft"
	case IntentAimRight:
		return "AimRight"
	case IntentShoot:
		return "Shoot"
	case IntentSprint:
		return "Sprint"
	case IntentReload:
		return "Reload"
	case IntentChoose1:
		return "Choose1"
	case IntentChoose2:
		return "Choose2"
	case IntentChoose3:
		return "Choose3"
	case IntentPause:
		return "Pause"
	case IntentRestart:
		return "Restart"
	case IntentQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// InputFrame tracks which intents are currently held.
//
// Terminals report key presses but not releases, so a press holds its
// intent for a number of ticks and key repeat refreshes the hold. Tick
// counts the holds down once per simulation tick.
type InputFrame struct {
	held map[Intent]int
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{held: make(map[Intent]int)}
}

// Press holds an intent for the given number of ticks (minimum one).
// A shorter press never shortens an existing hold.
func (f *InputFrame) Press(i Intent, ticks int) {
	if f.held == nil {
		f.held = make(map[Intent]int)
	}
	if ticks < 1 {
		ticks = 1
	}
	if f.held[i] < ticks {
		f.held[i] = ticks
	}
}

// Set holds an intent for a single tick.
func (f *InputFrame) Set(i Intent) {
	f.Press(i, 1)
}

// Release drops an intent immediately.
func (f *InputFrame) Release(i Intent) {
	delete(f.held, i)
}

// Has returns true if the intent is held this tick.
func (f InputFrame) Has(i Intent) bool {
	return f.held[i] > 0
}

// Tick counts every hold down by one and drops expired holds.
func (f *InputFrame) Tick() {
	for k, v := range f.held {
		if v <= 1 {
			delete(f.held, k)
			continue
		}
		f.held[k] = v - 1
	}
}

// Clear drops all held intents.
func (f *InputFrame) Clear() {
	for k := range f.held {
		delete(f.held, k)
	}
}

// Axis returns -1, 0 or 1 from a pair of opposing intents.
func (f InputFrame) Axis(neg, pos Intent) float64 {
	v := 0.0
	if f.Has(neg) {
		v -= 1
	}
	if f.Has(pos) {
		v += 1
	}
	return v
}
