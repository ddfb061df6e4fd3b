package commands

import (
	"taskboard/internal/config"
	"taskboard/internal/repository"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply move journal migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, err := repository.Open(cfg)
		if err != nil {
			return err
		}
		return repository.Migrate(cfg, db)
	},
}
