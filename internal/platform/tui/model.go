package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Zordux/Last-Vector/internal/core"
	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/sim"
	"github.com/Zordux/Last-Vector/internal/storage"
)

// HumanPolicyID is stored as the policy of keyboard-played episodes.
const HumanPolicyID = "human"

// policyTimeout bounds one remote or built-in policy decision.
const policyTimeout = 2 * time.Second

// Minimum terminal size for drawing the arena.
const (
	minScreenW = 40
	minScreenH = 12
)

// Options configures a viewer.
type Options struct {
	Policy registry.Policy // nil lets the keyboard drive the survivor
	Store  *storage.Store  // nil disables episode persistence
	Preset string          // Difficulty preset name, stored with episodes
}

// Model is the Bubble Tea model for the arena viewer.
type Model struct {
	engine *sim.Engine
	policy registry.Policy
	store  *storage.Store
	preset string
	config core.RuntimeConfig
	screen *core.Screen
	keys   *KeyMapper
	help   help.Model
	input  core.InputFrame

	seed   uint64
	obs    []float32
	aim    core.Vec2
	sprint bool
	reward float64
	frame  uint64
	err    error
	status string

	paused   bool
	ended    bool
	outcome  string
	saved    bool
	quitting bool
}

// NewModel creates a viewer over engine and starts the first episode.
func NewModel(engine *sim.Engine, cfg core.RuntimeConfig, opts Options) Model {
	if cfg.TickRate <= 0 {
		cfg.TickRate = engine.Config().Arena.TickRate
	}

	m := Model{
		engine: engine,
		policy: opts.Policy,
		store:  opts.Store,
		preset: opts.Preset,
		config: cfg,
		screen: core.NewScreen(cfg.ScreenW, cfg.ScreenH-1),
		keys:   NewKeyMapper(),
		help:   help.New(),
		input:  core.NewInputFrame(),
	}
	m.help.Width = cfg.ScreenW
	m.reset(cfg.Seed)
	return m
}

// reset starts a new episode. Seed 0 picks one from the clock.
func (m *Model) reset(seed uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	m.seed = seed
	m.obs = m.engine.Reset(seed)
	if m.policy != nil {
		m.policy.Reset(seed)
	}
	m.aim = core.V(1, 0)
	m.sprint = false
	m.reward = 0
	m.err = nil
	m.paused = false
	m.ended = false
	m.outcome = ""
	m.saved = false
	m.input.Clear()
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height-1)
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys.Keys()

	switch {
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.Screenshot):
		m.saveScreenshot()
		return m, nil
	case key.Matches(msg, keys.Pause):
		if !m.ended {
			m.paused = !m.paused
		}
		return m, nil
	case key.Matches(msg, keys.SprintToggle):
		m.sprint = !m.sprint
		return m, nil
	case key.Matches(msg, keys.Restart):
		if m.ended {
			m.reset(0)
		}
		return m, nil
	}

	if m.keys.MapKeyToFrame(msg, &m.input) {
		if !m.ended && m.engine.Snapshot().Tick > 0 {
			m.finish(storage.OutcomeAborted)
		}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleTick advances the simulation by one step.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	m.frame++
	if m.paused || m.ended {
		return m, tickCmd(m.config.TickRate)
	}

	a, err := m.nextAction()
	if err != nil {
		m.err = err
		m.finish(storage.OutcomeAborted)
		return m, tickCmd(m.config.TickRate)
	}

	res := m.engine.Step(a)
	m.obs = res.Observation
	m.reward += res.Reward
	m.input.Tick()

	switch {
	case res.Terminated:
		m.finish(storage.OutcomeDied)
	case res.Truncated:
		m.finish(storage.OutcomeTruncated)
	}

	return m, tickCmd(m.config.TickRate)
}

// nextAction asks the policy, or reads the held keys.
func (m *Model) nextAction() (sim.Action, error) {
	if m.policy != nil {
		ctx, cancel := context.WithTimeout(context.Background(), policyTimeout)
		defer cancel()
		a, err := m.policy.Act(ctx, m.obs)
		if err != nil {
			return sim.NoOp(), fmt.Errorf("policy %s: %w", m.policy.ID(), err)
		}
		if aim := core.V(a.AimX, a.AimY); aim.LenSq() > 0 {
			m.aim = aim
		}
		return a, nil
	}

	in := m.input
	a := sim.NoOp()
	a.MoveX = in.Axis(core.IntentMoveLeft, core.IntentMoveRight)
	a.MoveY = in.Axis(core.IntentMoveUp, core.IntentMoveDown)

	if aim := core.V(in.Axis(core.IntentAimLeft, core.IntentAimRight), in.Axis(core.IntentAimUp, core.IntentAimDown)); aim.LenSq() > 0 {
		m.aim = aim.Normalize()
	}
	a.AimX, a.AimY = m.aim.X, m.aim.Y

	a.Shoot = in.Has(core.IntentShoot)
	a.Sprint = m.sprint
	a.Reload = in.Has(core.IntentReload)

	switch {
	case in.Has(core.IntentChoose1):
		a.UpgradeChoice = 0
	case in.Has(core.IntentChoose2):
		a.UpgradeChoice = 1
	case in.Has(core.IntentChoose3):
		a.UpgradeChoice = 2
	}
	return a, nil
}

// finish ends the episode and saves it once.
func (m *Model) finish(outcome string) {
	m.ended = true
	m.outcome = outcome
	if m.saved || m.store == nil {
		return
	}
	m.saved = true
	//nolint:errcheck // Best-effort save, the viewer continues regardless
	m.store.SaveEpisode(m.Episode())
}

// Episode summarizes the current episode for storage.
func (m Model) Episode() storage.Episode {
	w := m.engine.Snapshot()
	policy := HumanPolicyID
	if m.policy != nil {
		policy = m.policy.ID()
	}
	outcome := m.outcome
	if outcome == "" {
		outcome = storage.OutcomeAborted
	}
	chosen := 0
	for _, lvl := range w.Upgrades.Levels {
		chosen += lvl
	}
	return storage.Episode{
		Seed:        m.seed,
		Policy:      policy,
		Difficulty:  m.preset,
		Ticks:       w.Tick,
		Seconds:     w.Elapsed,
		Kills:       w.Stats.Kills,
		DamageTaken: w.Stats.DamageTaken,
		DamageDealt: w.Stats.DamageDealt,
		ShotsFired:  w.Stats.ShotsFired,
		ShotsHit:    w.Stats.ShotsHit,
		Upgrades:    chosen,
		Reward:      m.reward,
		Outcome:     outcome,
		Digest:      m.engine.Digest(),
	}
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.render()

	home, err := os.UserHomeDir()
	if err != nil {
		m.status = "screenshot failed"
		return
	}
	dir := filepath.Join(home, ".lastvector", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("lastvector_%s.txt", timestamp))

	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.status = "screenshot failed"
		return
	}
	m.status = "saved " + path
}

func (m Model) label() string {
	if m.policy == nil {
		return fmt.Sprintf("HUMAN  seed %d", m.seed)
	}
	return "AI: " + m.policy.Title()
}

// render draws the current frame into the screen buffer.
func (m Model) render() {
	s := m.screen
	s.Clear()

	if s.Width() < minScreenW || s.Height() < minScreenH {
		s.DrawTextColored(0, 0, fmt.Sprintf("terminal too small (need %dx%d)", minScreenW, minScreenH+1), core.ColorBrightRed)
		return
	}

	w := m.engine.Snapshot()
	cfg := m.engine.Config()

	DrawHUD(s, 0, w, m.label())
	pr := Projection{
		Area:   core.NewRect(1, 2, s.Width()-2, s.Height()-3),
		Width:  cfg.Arena.Width,
		Height: cfg.Arena.Height,
	}
	DrawArena(s, pr, Scene{
		World:      w,
		RingRadius: m.engine.RingRadius(),
		Aim:        m.aim,
		Frame:      m.frame,
	})

	switch {
	case m.ended:
		DrawBanner(s, m.endTitle(), m.summary(w), core.ColorBrightRed)
	case m.paused:
		DrawBanner(s, "PAUSED", []string{"p: resume   q: quit"}, core.ColorHUD)
	case w.Phase == sim.PhaseChoosingUpgrade && m.policy == nil:
		DrawOffer(s, w, m.engine.Catalog())
	}
}

func (m Model) endTitle() string {
	switch m.outcome {
	case storage.OutcomeDied:
		return "YOU DIED"
	case storage.OutcomeTruncated:
		return "TIME UP"
	default:
		return "STOPPED"
	}
}

func (m Model) summary(w sim.World) []string {
	lines := []string{
		fmt.Sprintf("Kills     %d", w.Stats.Kills),
		fmt.Sprintf("Survived  %s", clock(w.Elapsed)),
		fmt.Sprintf("Accuracy  %.0f%%", w.Stats.Accuracy()*100),
		fmt.Sprintf("Reward    %.1f", m.reward),
		fmt.Sprintf("Seed      %d", m.seed),
	}
	if m.err != nil {
		lines = append(lines, "", "error: "+m.err.Error())
	}
	return append(lines, "", "enter: new episode   q: quit")
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.render()

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	footer := m.help.View(m.keys.Keys())
	if m.status != "" {
		footer = m.status
	}
	return RenderScreen(m.screen) + "\n" + helpStyle.Render(footer)
}

// Engine returns the simulated engine.
func (m Model) Engine() *sim.Engine {
	return m.engine
}

// Ended reports whether the current episode is over.
func (m Model) Ended() bool {
	return m.ended
}

// Paused reports whether the viewer is paused.
func (m Model) Paused() bool {
	return m.paused
}

// Run starts the Bubble Tea program with the given engine.
func Run(engine *sim.Engine, cfg core.RuntimeConfig, opts Options) error {
	model := NewModel(engine, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
