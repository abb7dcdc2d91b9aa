package main

import (
	"log"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/zephyrtronium/calculator/internal/mcpserver"
	"github.com/zephyrtronium/calculator/internal/metrics"
	"github.com/zephyrtronium/calculator/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Serves the calculator as an MCP server on standard input and output.
Agents can evaluate expressions and press keys on named sessions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		// Keep stray log output off the JSON-RPC stream.
		log.SetOutput(os.Stderr)

		rec := metrics.New()
		sessions := session.NewManager(
			session.WithLogger(logger),
			session.WithHooks(rec.Hooks()),
			session.WithMaxSessions(cfg.MaxSessions),
		)
		srv := mcpserver.NewServer(sessions, version,
			mcpserver.WithLogger(logger),
			mcpserver.WithMetrics(rec),
		)

		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" && cfg.MetricsPath != "" {
			mux := http.NewServeMux()
			mux.Handle(cfg.MetricsPath, rec.Handler())
			go func() {
				logger.Info("serving metrics", "addr", addr, "path", cfg.MetricsPath)
				if err := http.ListenAndServe(addr, mux); err != nil {
					logger.Error("metrics server failed", "error", err)
				}
			}()
		}
		logger.Info("starting calculator MCP server (stdio)")
		if err := srv.ServeStdio(); err != nil {
			logger.Error("MCP server failed", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("metrics-addr", "", "Address to serve Prometheus metrics on (disabled if empty)")
}
