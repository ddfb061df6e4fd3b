package repository

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"taskboard/internal/config"
	"taskboard/internal/model"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate brings the journal schema up to date. Postgres uses the versioned
// SQL migrations; mysql and sqlite are auto-migrated from the model.
func Migrate(cfg *config.Config, db *gorm.DB) error {
	switch cfg.DBDriver {
	case "postgres":
		src, err := iofs.New(migrationsFS, "migrations")
		if err != nil {
			return fmt.Errorf("load migrations: %w", err)
		}
		m, err := migrate.NewWithSourceInstance("iofs", src, cfg.MigrateURL())
		if err != nil {
			return fmt.Errorf("init migrations: %w", err)
		}
		defer m.Close()
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", err)
		}
	case "mysql", "sqlite":
		if db == nil {
			return ErrJournalDisabled
		}
		if err := db.AutoMigrate(&model.MoveRecord{}); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	default:
		return ErrJournalDisabled
	}
	log.Println("✅ Journal schema is up to date")
	return nil
}
