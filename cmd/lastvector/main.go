// lastvector runs the Last-Vector zombie survival environment.
//
// Usage:
//
//	lastvector list               - List built-in policies
//	lastvector run                - Play headless episodes with a policy
//	lastvector play               - Play (or watch a policy) in the terminal
//	lastvector serve              - Start SSH server for remote viewing
//	lastvector runs               - Browse stored episodes
//	lastvector replay <file>      - Verify a recorded episode
//	lastvector agent              - Serve a policy over the agent protocol
//
// Global flags:
//
//	--seed <value>        - RNG seed (0 = random based on time)
//	--db <path>           - Database path (default: ~/.lastvector/episodes.db)
//	--config <path>       - Simulation config YAML
//	--difficulty <preset> - easy, normal, hard or fixed
//	--log-level <level>   - debug, info, warn or error
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Zordux/Last-Vector/internal/agent"
	"github.com/Zordux/Last-Vector/internal/config"
	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/storage"

	// Import policies to register them
	_ "github.com/Zordux/Last-Vector/internal/policies/heuristic"
	_ "github.com/Zordux/Last-Vector/internal/policies/idle"
	_ "github.com/Zordux/Last-Vector/internal/policies/random"
)

var (
	// Global flags
	flagSeed       uint64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "lastvector",
})

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lastvector",
	Short: "Last-Vector - a deterministic zombie survival environment",
	Long: `Last-Vector is a top-down zombie survival arena built as a
reinforcement learning environment. One survivor moves, aims, shoots and
picks upgrades while waves of zombies close in.

Available commands:
  list     - Show built-in policies
  run      - Play headless episodes at full speed
  play     - Play or spectate in the terminal
  serve    - Start SSH server for remote viewing
  runs     - Browse stored episode results
  replay   - Verify a recorded episode
  agent    - Serve a policy to remote clients

Examples:
  lastvector run --policy heuristic --episodes 10
  lastvector play
  lastvector play --policy heuristic --difficulty hard
  lastvector agent --listen :7777 --policy random
  lastvector run --agent localhost:7777`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.lastvector/episodes.db", "Path to episodes database (empty disables storage)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to simulation config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(agentCmd)
}

// loadSimConfig loads the config and applies the difficulty preset.
func loadSimConfig() (config.SimConfig, string, error) {
	preset, err := config.ParsePreset(flagDifficulty)
	if err != nil {
		return config.SimConfig{}, "", err
	}
	cfg, err := config.LoadSim(flagConfig)
	if err != nil {
		return config.SimConfig{}, "", err
	}
	config.ApplySimPreset(&cfg, preset)
	if err := cfg.Validate(); err != nil {
		return config.SimConfig{}, "", err
	}
	return cfg, string(preset), nil
}

// seedOrClock returns --seed, or a time-based seed when it is 0.
func seedOrClock() uint64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return uint64(time.Now().UnixNano())
}

// openStore opens the episodes database. A failure is logged and the
// command continues without storage.
func openStore() *storage.Store {
	if flagDBPath == "" {
		return nil
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open episodes database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

// resolvePolicy returns a built-in policy, or a remote one when agentAddr
// is set. The returned func releases it.
func resolvePolicy(ctx context.Context, id, agentAddr string) (registry.Policy, func(), error) {
	if agentAddr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := agent.Dial(dialCtx, agentAddr, agent.WithClientLogger(logger.WithPrefix("agent")))
		if err != nil {
			return nil, nil, err
		}
		return client, func() { client.Close() }, nil
	}

	p, err := registry.Create(id)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (run 'lastvector list' to see available policies)", err)
	}
	return p, func() {}, nil
}
