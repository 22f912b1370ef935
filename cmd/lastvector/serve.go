package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zordux/Last-Vector/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagServePolicy string
	flagInteractive bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Last-Vector SSH server",
	Long: `Start an SSH server that shows the arena to anyone who connects.

By default every connection spectates its own episode of --policy. With
--interactive each user plays with the keyboard instead. All episodes are
stored in the server's database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.lastvector/host_key

Examples:
  lastvector serve                         # Spectate the heuristic on :23234
  lastvector serve --policy random         # Spectate another policy
  lastvector serve --interactive --ssh :2222

Users can connect with:
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagServePolicy, "policy", "heuristic", "Policy spectators watch")
	serveCmd.Flags().BoolVar(&flagInteractive, "interactive", false, "Let each SSH user play instead of spectating")
}

func runServe(cmd *cobra.Command, _ []string) error {
	simCfg, preset, err := loadSimConfig()
	if err != nil {
		return err
	}

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		DBPath:      flagDBPath,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		Policy:      flagServePolicy,
		Interactive: flagInteractive,
		Sim:         simCfg,
		Preset:      preset,
	}

	server, err := tui.NewSSHServer(cfg, logger.WithPrefix("ssh"))
	if err != nil {
		return fmt.Errorf("cannot create server: %w", err)
	}

	fmt.Printf("Starting Last-Vector SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe(cmd.Context())
}
