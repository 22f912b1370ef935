package main

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zordux/Last-Vector/internal/core"
	"github.com/Zordux/Last-Vector/internal/platform/tui"
	"github.com/Zordux/Last-Vector/internal/storage"
)

var (
	flagRunsPolicy string
	flagRunsLimit  int
	flagRunsRecent bool
	flagRunsPlain  bool
	flagRunsClear  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse stored episode results",
	Long: `Show stored episodes and per-policy statistics.

In a terminal this opens an interactive browser. With --plain, or when
output is redirected, it prints the top episodes and a stats summary.

Examples:
  lastvector runs
  lastvector runs --plain --policy heuristic
  lastvector runs --plain --recent --limit 50
  lastvector runs --clear --policy random`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&flagRunsPolicy, "policy", "", "Only this policy (plain output and --clear)")
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 10, "Number of episodes to print")
	runsCmd.Flags().BoolVar(&flagRunsRecent, "recent", false, "Print the most recent episodes instead of the best")
	runsCmd.Flags().BoolVar(&flagRunsPlain, "plain", false, "Print instead of opening the browser")
	runsCmd.Flags().BoolVar(&flagRunsClear, "clear", false, "Delete stored episodes (all, or --policy only)")
}

func runRuns(_ *cobra.Command, _ []string) error {
	if flagDBPath == "" {
		return errors.New("runs needs a database; set --db")
	}
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagRunsClear {
		if err := store.ClearEpisodes(flagRunsPolicy); err != nil {
			return err
		}
		logger.Info("episodes cleared", "policy", flagRunsPolicy)
		return nil
	}

	fd := int(os.Stdout.Fd())
	if !flagRunsPlain && term.IsTerminal(fd) {
		rc := core.DefaultConfig()
		if w, h, termErr := term.GetSize(fd); termErr == nil {
			rc.ScreenW, rc.ScreenH = w, h
		}
		return tui.RunRuns(store, rc.ScreenW, rc.ScreenH)
	}

	return printRuns(store)
}

func printRuns(store *storage.Store) error {
	var (
		episodes []storage.Episode
		err      error
		title    string
	)
	if flagRunsRecent {
		title = "Recent episodes"
		episodes, err = store.RecentEpisodes(flagRunsLimit)
	} else {
		title = "Top episodes"
		episodes, err = store.TopEpisodes(flagRunsPolicy, flagRunsLimit)
	}
	if err != nil {
		return err
	}

	if flagRunsPolicy != "" {
		title += " - " + flagRunsPolicy
	}
	fmt.Println(title)
	fmt.Println()

	if len(episodes) == 0 {
		fmt.Println("No episodes recorded yet.")
		fmt.Println()
		fmt.Println("Run 'lastvector run' to record some!")
		return nil
	}

	fmt.Printf("  %-4s  %-12s  %-6s  %-6s  %-5s  %-8s  %-9s  %s\n", "Rank", "Policy", "Kills", "Time", "Acc", "Reward", "End", "Date")
	fmt.Printf("  %-4s  %-12s  %-6s  %-6s  %-5s  %-8s  %-9s  %s\n", "----", "------", "-----", "----", "---", "------", "---", "----")
	for i, ep := range episodes {
		fmt.Printf("  %-4d  %-12s  %-6d  %-6s  %-5s  %-8.1f  %-9s  %s\n",
			i+1, ep.Policy, ep.Kills, formatSeconds(ep.Seconds),
			fmt.Sprintf("%.0f%%", ep.Accuracy()*100), ep.Reward, ep.Outcome,
			ep.CreatedAt.Format("2006-01-02 15:04"))
	}

	all, err := store.GetAllPolicyStats()
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		if flagRunsPolicy == "" || id == flagRunsPolicy {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	fmt.Println()
	fmt.Printf("  %-12s  %-8s  %-6s  %-5s  %-10s  %-11s  %s\n", "Policy", "Episodes", "Deaths", "Best", "Mean kills", "Mean reward", "Mean time")
	for _, id := range ids {
		st := all[id]
		fmt.Printf("  %-12s  %-8d  %-6d  %-5d  %-10.1f  %-11.1f  %s\n",
			st.Policy, st.Episodes, st.Deaths, st.BestKills, st.MeanKills, st.MeanReward, formatSeconds(st.MeanSeconds))
	}
	return nil
}

func formatSeconds(s float64) string {
	total := int(s)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
