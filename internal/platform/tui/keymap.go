package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Zordux/Last-Vector/internal/core"
)

// Hold lengths in ticks. Terminals send no key-up events, so a press
// holds its intent until key repeat refreshes it or the hold runs out.
const (
	moveHoldTicks  = 9
	aimHoldTicks   = 4
	shootHoldTicks = 6
)

// ArenaKeyMap defines the key bindings for the arena viewer.
type ArenaKeyMap struct {
	MoveUp       key.Binding
	MoveDown     key.Binding
	MoveLeft     key.Binding
	MoveRight    key.Binding
	AimUp        key.Binding
	AimDown      key.Binding
	AimLeft      key.Binding
	AimRight     key.Binding
	Shoot        key.Binding
	SprintToggle key.Binding
	Reload       key.Binding
	Choose1      key.Binding
	Choose2      key.Binding
	Choose3      key.Binding
	Pause        key.Binding
	Restart      key.Binding
	Screenshot   key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ArenaKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.MoveUp, k.AimUp, k.Shoot, k.SprintToggle, k.Reload, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ArenaKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.MoveUp, k.MoveDown, k.MoveLeft, k.MoveRight},
		{k.AimUp, k.AimDown, k.AimLeft, k.AimRight},
		{k.Shoot, k.SprintToggle, k.Reload},
		{k.Choose1, k.Choose2, k.Choose3},
		{k.Pause, k.Restart, k.Screenshot, k.Help, k.Quit},
	}
}

// DefaultArenaKeyMap returns default key bindings.
func DefaultArenaKeyMap() ArenaKeyMap {
	return ArenaKeyMap{
		MoveUp: key.NewBinding(
			key.WithKeys("w", "W"),
			key.WithHelp("wasd", "move"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "move down"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("a", "A"),
			key.WithHelp("a", "move left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("d", "D"),
			key.WithHelp("d", "move right"),
		),
		AimUp: key.NewBinding(
			key.WithKeys("up", "i"),
			key.WithHelp("arrows", "aim"),
		),
		AimDown: key.NewBinding(
			key.WithKeys("down", "k"),
			key.WithHelp("down/k", "aim down"),
		),
		AimLeft: key.NewBinding(
			key.WithKeys("left", "j"),
			key.WithHelp("left/j", "aim left"),
		),
		AimRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "aim right"),
		),
		Shoot: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "shoot"),
		),
		SprintToggle: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "sprint"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Choose1: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "upgrade 1"),
		),
		Choose2: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "upgrade 2"),
		),
		Choose3: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "upgrade 3"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p", "esc"),
			key.WithHelp("p", "pause"),
		),
		Restart: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "new episode"),
		),
		Screenshot: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "screenshot"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyMapper translates Bubble Tea key messages to held intents.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	keys ArenaKeyMap
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{keys: DefaultArenaKeyMap()}
}

// Keys returns the bindings, for the help view.
func (km *KeyMapper) Keys() ArenaKeyMap {
	return km.keys
}

// MapKey translates a key message to an intent and how long to hold it.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (intent core.Intent, hold int) {
	k := km.keys
	switch {
	case key.Matches(msg, k.Quit):
		return core.IntentQuit, 1
	case key.Matches(msg, k.MoveUp):
		return core.IntentMoveUp, moveHoldTicks
	case key.Matches(msg, k.MoveDown):
		return core.IntentMoveDown, moveHoldTicks
	case key.Matches(msg, k.MoveLeft):
		return core.IntentMoveLeft, moveHoldTicks
	case key.Matches(msg, k.MoveRight):
		return core.IntentMoveRight, moveHoldTicks
	case key.Matches(msg, k.AimUp):
		return core.IntentAimUp, aimHoldTicks
	case key.Matches(msg, k.AimDown):
		return core.IntentAimDown, aimHoldTicks
	case key.Matches(msg, k.AimLeft):
		return core.IntentAimLeft, aimHoldTicks
	case key.Matches(msg, k.AimRight):
		return core.IntentAimRight, aimHoldTicks
	case key.Matches(msg, k.Shoot):
		return core.IntentShoot, shootHoldTicks
	case key.Matches(msg, k.SprintToggle):
		return core.IntentSprint, 1
	case key.Matches(msg, k.Reload):
		return core.IntentReload, 1
	case key.Matches(msg, k.Choose1):
		return core.IntentChoose1, 1
	case key.Matches(msg, k.Choose2):
		return core.IntentChoose2, 1
	case key.Matches(msg, k.Choose3):
		return core.IntentChoose3, 1
	case key.Matches(msg, k.Pause):
		return core.IntentPause, 1
	case key.Matches(msg, k.Restart):
		return core.IntentRestart, 1
	}
	return core.IntentNone, 0
}

// opposite pairs each direction with the one it cancels.
var opposite = map[core.Intent]core.Intent{
	core.IntentMoveUp:    core.IntentMoveDown,
	core.IntentMoveDown:  core.IntentMoveUp,
	core.IntentMoveLeft:  core.IntentMoveRight,
	core.IntentMoveRight: core.IntentMoveLeft,
	core.IntentAimUp:     core.IntentAimDown,
	core.IntentAimDown:   core.IntentAimUp,
	core.IntentAimLeft:   core.IntentAimRight,
	core.IntentAimRight:  core.IntentAimLeft,
}

// MapKeyToFrame updates an input frame based on a key message.
// A direction drops the still-held opposite one, so reversing is immediate.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	intent, hold := km.MapKey(msg)
	if intent == core.IntentQuit {
		return true
	}
	if intent != core.IntentNone {
		if o, ok := opposite[intent]; ok {
			frame.Release(o)
		}
		frame.Press(intent, hold)
	}
	return false
}
