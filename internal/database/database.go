package database

import (
	"database/sql"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"pebble/internal/config"
	"pebble/internal/model"
	"pebble/internal/repository"
)

// Open connects to the SQL backend selected in the config. It returns an
// error for the memory backend, which has no database.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Println("✅ Connected to postgres")
		return db, nil
	case config.BackendSQLite:
		db, err := OpenSQLite(cfg.SQLitePath, gormCfg)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Opened sqlite database %s", cfg.SQLitePath)
		return db, nil
	default:
		return nil, fmt.Errorf("backend %q has no SQL database", cfg.StoreBackend)
	}
}

// OpenSQLite opens a SQLite database through the pure-Go modernc driver with
// foreign keys enforced. path may be ":memory:".
func OpenSQLite(path string, gormCfg *gorm.Config) (*gorm.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// ":memory:" databases and pragmas are per connection.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	db, err := gorm.Open(sqlite.Dialector{Conn: conn}, gormCfg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return db, nil
}

// AutoMigrate creates the schema from the gorm models. Used for SQLite,
// where the postgres migration files do not apply.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Project{}, &model.Label{}, &model.Issue{})
}

// Repositories wires the gorm repositories over db.
func Repositories(db *gorm.DB) repository.Repositories {
	return repository.Repositories{
		Users:    repository.NewUserRepository(db),
		Projects: repository.NewProjectRepository(db),
		Labels:   repository.NewLabelRepository(db),
		Issues:   repository.NewIssueRepository(db),
	}
}
