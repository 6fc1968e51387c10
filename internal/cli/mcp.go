package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/groupmute/groupmute/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the mute tools over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// stdout carries the protocol
		a, err := newApp(cfg, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := mcpserver.NewServer(a.repos.Preferences, a.usecases.Blocking, a.usecases.MuteLog, Version)
		a.log.Component("mcp").Info("MCP server started", "db", cfg.Store.DBPath)
		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
