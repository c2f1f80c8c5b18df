package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostline"
	"github.com/aretw0/hostline/internal/logging"
	"github.com/aretw0/hostline/pkg/adapters/mcp"
	"github.com/aretw0/hostline/pkg/domain"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the state machine, the prompt catalog, the call classifier and the
knowledge base as MCP tools.

Supported transports:
- stdio (default): standard input/output, for local agent hosts.
- sse: Server-Sent Events over HTTP, for remote agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, logging.FormatText)
		if err != nil {
			return err
		}
		eng, err := a.engine(cmd.Context(), domain.LifecycleHooks{})
		if err != nil {
			return err
		}
		graph, err := eng.Graph()
		if err != nil {
			return err
		}
		srv := mcp.NewServer(eng, hostline.Version,
			mcp.WithLogger(a.logger),
			mcp.WithKnowledge(a.kb),
			mcp.WithGraph(&graph),
		)

		switch transport, _ := cmd.Flags().GetString("transport"); transport {
		case "stdio":
			// stdout carries JSON-RPC.
			log.SetOutput(os.Stderr)
			a.logger.Info("starting mcp server (stdio)")
			return srv.ServeStdio()
		case "sse":
			port, _ := cmd.Flags().GetInt("port")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ServeSSE(ctx, fmt.Sprintf(":%d", port), fmt.Sprintf("http://localhost:%d", port))
		default:
			return fmt.Errorf("unknown transport %q: use stdio or sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "transport protocol: stdio or sse")
	mcpCmd.Flags().Int("port", 8081, "port to listen on (sse only)")
}
