package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zordux/Last-Vector/internal/core"
	"github.com/Zordux/Last-Vector/internal/platform/tui"
	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/sim"
)

var (
	flagPlayPolicy string
	flagPlayAgent  string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play or spectate in the terminal",
	Long: `Open the arena in the terminal. Without --policy you play with the
keyboard; with --policy or --agent you watch that policy play.

Controls:
  W/A/S/D      - Move (capital S toggles sprint)
  Arrows/IJKL  - Aim
  Space        - Shoot
  R            - Reload
  1/2/3        - Choose an upgrade
  P/Esc        - Pause
  Enter        - New episode (after it ends)
  Ctrl+S       - Save a text screenshot
  Q/Ctrl+C     - Quit

Difficulty options:
  easy   - More health and a slower ramp
  normal - Default pacing from level 0
  hard   - Starts at level 1 with a faster ramp and less ammo
  fixed  - No progression, stays at the config's initial level

Examples:
  lastvector play
  lastvector play --difficulty hard --seed 7
  lastvector play --policy heuristic
  lastvector play --agent localhost:7777`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayPolicy, "policy", "", "Built-in policy to spectate (empty = play yourself)")
	playCmd.Flags().StringVar(&flagPlayAgent, "agent", "", "Remote agent address to spectate")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("play needs an interactive terminal; use 'lastvector run' for headless episodes")
	}

	cfg, preset, err := loadSimConfig()
	if err != nil {
		return err
	}

	var policy registry.Policy
	if flagPlayPolicy != "" || flagPlayAgent != "" {
		p, release, err := resolvePolicy(cmd.Context(), flagPlayPolicy, flagPlayAgent)
		if err != nil {
			return err
		}
		defer release()
		policy = p
	}

	engine, err := sim.New(cfg, sim.WithRunMode(sim.RunModeRendered))
	if err != nil {
		return err
	}

	rc := core.DefaultConfig()
	if w, h, termErr := term.GetSize(fd); termErr == nil {
		rc.ScreenW = w
		rc.ScreenH = h
	}
	rc.TickRate = cfg.Arena.TickRate
	rc.Seed = flagSeed

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	return tui.Run(engine, rc, tui.Options{
		Policy: policy,
		Store:  store,
		Preset: preset,
	})
}
