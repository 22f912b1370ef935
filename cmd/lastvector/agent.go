package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Zordux/Last-Vector/internal/agent"
	"github.com/Zordux/Last-Vector/internal/registry"
)

var (
	flagAgentListen string
	flagAgentPolicy string
	flagAgentModel  string
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Serve a policy over the agent protocol",
	Long: `Listen for agent protocol clients and answer their observations with a
built-in policy. Each connection gets a fresh policy instance.

The protocol is newline-delimited JSON over TCP:
  client: {"type":"hello"}          server: {"type":"hello","model":"<name>"}
  client: {"obs":[96 floats]}       server: {"action":[8 floats]}

Examples:
  lastvector agent --listen :7777 --policy heuristic
  lastvector run --agent localhost:7777`,
	RunE: runAgent,
}

func init() {
	agentCmd.Flags().StringVar(&flagAgentListen, "listen", ":7777", "TCP address to listen on")
	agentCmd.Flags().StringVar(&flagAgentPolicy, "policy", "heuristic", "Built-in policy to serve")
	agentCmd.Flags().StringVar(&flagAgentModel, "model", "", "Model name sent in the hello (default: policy id)")
}

func runAgent(cmd *cobra.Command, _ []string) error {
	if !registry.Exists(flagAgentPolicy) {
		return fmt.Errorf("unknown policy %q (run 'lastvector list' to see available policies)", flagAgentPolicy)
	}

	opts := []agent.ServerOption{agent.WithServerLogger(logger.WithPrefix("agent-server"))}
	if flagAgentModel != "" {
		opts = append(opts, agent.WithModelName(flagAgentModel))
	}
	id := flagAgentPolicy
	srv := agent.NewServer(func() registry.Policy {
		p, _ := registry.Create(id)
		return p
	}, opts...)

	ln, err := net.Listen("tcp", flagAgentListen)
	if err != nil {
		return fmt.Errorf("cannot listen: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving policy", "address", ln.Addr().String(), "policy", id, "model", srv.Model())
	return srv.Serve(ctx, ln)
}
