package repository

import (
	"fmt"
	"log"

	"taskboard/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the journal database named by the config. The "none"
// driver returns a nil DB and no error: the journal is then disabled.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
	case "mysql":
		db, err = gorm.Open(mysql.Open(cfg.MySQLDSN()), gormCfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DBPath), gormCfg)
	case "none", "":
		log.Println("⚠️  DB_DRIVER=none, move journal disabled")
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	log.Printf("✅ Connected to %s database", cfg.DBDriver)
	return db, nil
}
