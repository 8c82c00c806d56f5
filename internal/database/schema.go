package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"dishswap/internal/config"
	"dishswap/internal/middleware"
	"dishswap/internal/models"

	"gorm.io/gorm"
)

// ErrSchemaMissing is returned when manual schema mode finds tables that were never created.
var ErrSchemaMissing = errors.New("database schema is missing")

// SchemaStatus describes what ApplySchema would do against a database.
type SchemaStatus struct {
	Mode            string
	Environment     string
	WillAutoMigrate bool
	MissingTables   []string
}

// PersistentModels lists every model stored in the SQL backend.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Recipe{},
		&models.Comment{},
		&models.Favorite{},
	}
}

// ApplySchema migrates the database in auto mode. In manual mode it only checks
// that every table exists, so a production deploy without `migrate up` fails at startup.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	status, err := GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return err
	}

	if status.WillAutoMigrate {
		middleware.Logger.Info("Running GORM AutoMigrate",
			slog.String("mode", status.Mode), slog.String("env", status.Environment))
		if err := Migrate(db.WithContext(ctx)); err != nil {
			return err
		}
		middleware.Logger.Info("Database migration completed")
		return nil
	}

	if len(status.MissingTables) > 0 {
		return fmt.Errorf("%w: tables %s not found; run `go run ./cmd/migrate up` or set DB_SCHEMA_MODE=auto",
			ErrSchemaMissing, strings.Join(status.MissingTables, ", "))
	}
	return nil
}

// GetSchemaStatus reports the configured mode and the tables not yet created.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	mode := cfg.SchemaMode()
	switch mode {
	case config.SchemaModeAuto, config.SchemaModeManual:
	default:
		return nil, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}

	status := &SchemaStatus{
		Mode:            mode,
		Environment:     cfg.Env,
		WillAutoMigrate: mode == config.SchemaModeAuto,
	}

	migrator := db.WithContext(ctx).Migrator()
	for _, m := range PersistentModels() {
		if migrator.HasTable(m) {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, fmt.Errorf("parse model: %w", err)
		}
		status.MissingTables = append(status.MissingTables, stmt.Schema.Table)
	}
	return status, nil
}
