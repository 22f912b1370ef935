package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zordux/Last-Vector/internal/replay"
	"github.com/Zordux/Last-Vector/internal/sim"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Verify a recorded episode",
	Long: `Re-simulate a replay file written by 'lastvector run --record' and
check that it reaches the recorded final state. The replay carries its own
config, so --config and --difficulty are ignored.

Examples:
  lastvector replay ./replays/lastvector_42.lvr`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func runReplay(_ *cobra.Command, args []string) error {
	rec, err := replay.LoadFile(args[0])
	if err != nil {
		return err
	}

	engine, err := rec.Engine(sim.WithRunMode(sim.RunModeHeadless))
	if err != nil {
		return err
	}

	fmt.Printf("policy=%s preset=%q seed=%d actions=%d recorded=%s\n",
		rec.Policy, rec.Preset, rec.Seed, len(rec.Actions), rec.Recorded.Format("2006-01-02 15:04:05"))

	res, err := replay.Verify(engine, rec)
	if err != nil {
		return err
	}

	fmt.Printf("ok: ticks=%d kills=%d dead=%t digest=%016x duration=%s\n",
		res.Ticks, res.Kills, res.Terminated, res.Digest, rec.Duration(engine.Config().Arena.TickRate))
	return nil
}
