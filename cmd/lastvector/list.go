package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zordux/Last-Vector/internal/registry"
	"github.com/Zordux/Last-Vector/internal/sim"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in policies",
	Long:  `Shows every policy registered in the binary, plus the observation and action sizes a remote agent must use.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	policies := registry.List()

	if len(policies) == 0 {
		fmt.Println("No policies available.")
		return
	}

	fmt.Println("Available policies:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, p := range policies {
		if len(p.ID) > maxIDLen {
			maxIDLen = len(p.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")

	for _, p := range policies {
		fmt.Printf("  %-*s  %s\n", maxIDLen, p.ID, p.Title)
	}

	fmt.Println()
	fmt.Printf("Observation size: %d floats, action size: %d floats.\n", sim.ObservationDim(), sim.ActionDim())
	fmt.Println("Run 'lastvector run --policy <id>' to play headless episodes.")
}
