package commands

import (
	"fmt"

	"taskboard/internal/config"
	"taskboard/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.ServerPort = port
		}

		s, err := server.Init(cfg)
		if err != nil {
			return fmt.Errorf("server initialization failed: %w", err)
		}
		s.Run()
		return nil
	},
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides SERVER_PORT)")
}
