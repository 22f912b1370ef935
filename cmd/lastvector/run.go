package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Zordux/Last-Vector/internal/metrics"
	"github.com/Zordux/Last-Vector/internal/replay"
	"github.com/Zordux/Last-Vector/internal/runner"
)

var (
	flagRunPolicy   string
	flagRunAgent    string
	flagRunEpisodes int
	flagMetricsAddr string
	flagRecordDir   string
	flagAutoPick    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play headless episodes with a policy",
	Long: `Play episodes as fast as possible and print one summary line per
episode. Episode N uses seed --seed + N.

Results are stored in the episodes database. With --record every episode
is also written as a replay file that 'lastvector replay' can verify.

Examples:
  lastvector run
  lastvector run --policy random --episodes 20 --seed 42
  lastvector run --agent localhost:7777 --episodes 5
  lastvector run --metrics-addr :9100 --episodes 1000
  lastvector run --record ./replays --difficulty hard`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagRunPolicy, "policy", "heuristic", "Built-in policy id")
	runCmd.Flags().StringVar(&flagRunAgent, "agent", "", "Remote agent address (host:port); overrides --policy")
	runCmd.Flags().IntVarP(&flagRunEpisodes, "episodes", "n", 1, "Number of episodes")
	runCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	runCmd.Flags().StringVar(&flagRecordDir, "record", "", "Directory to write replay files to")
	runCmd.Flags().BoolVar(&flagAutoPick, "auto-pick", true, "Pick the first upgrade when the policy leaves an offer open")
}

func runRun(cmd *cobra.Command, _ []string) error {
	if flagRunEpisodes < 1 {
		return errors.New("--episodes must be at least 1")
	}

	cfg, preset, err := loadSimConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, release, err := resolvePolicy(ctx, flagRunPolicy, flagRunAgent)
	if err != nil {
		return err
	}
	defer release()

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	var m *metrics.Metrics
	if flagMetricsAddr != "" {
		m = metrics.New()
		go func() {
			if err := m.Serve(ctx, flagMetricsAddr, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	if flagRecordDir != "" {
		if err := os.MkdirAll(flagRecordDir, 0o755); err != nil {
			return fmt.Errorf("cannot create replay directory: %w", err)
		}
	}

	r, err := runner.New(cfg, runner.Options{
		Policy:   policy,
		Store:    store,
		Metrics:  m,
		Logger:   logger.WithPrefix("run"),
		Preset:   preset,
		Record:   flagRecordDir != "",
		AutoPick: flagAutoPick,
	})
	if err != nil {
		return err
	}

	logger.Debug("starting run", "policy", policy.ID(), "episodes", flagRunEpisodes, "preset", preset)

	var episodes, kills, deaths int
	runErr := r.Run(ctx, seedOrClock(), flagRunEpisodes, func(res runner.Result) {
		episodes++
		kills += res.Kills
		if res.Terminated {
			deaths++
		}
		fmt.Println(res)

		if res.Replay != nil {
			path := filepath.Join(flagRecordDir, fmt.Sprintf("lastvector_%d.lvr", res.Seed))
			if err := replay.SaveFile(path, res.Replay); err != nil {
				logger.Warn("could not save replay", "path", path, "error", err)
				return
			}
			logger.Info("replay saved", "path", path)
		}
	})

	if episodes > 1 {
		fmt.Printf("episodes=%d deaths=%d mean_kills=%.2f\n", episodes, deaths, float64(kills)/float64(episodes))
	}
	return runErr
}
