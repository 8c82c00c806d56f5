// Command migrate creates or inspects the SQL schema.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"dishswap/internal/config"
	"dishswap/internal/database"
	"dishswap/internal/middleware"
)

func main() {
	flag.Parse()
	if err := run(context.Background(), flag.Args(), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status>")
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	middleware.InitLogger(cfg.Env, cfg.LogLevel)
	if cfg.DBDriver == config.DriverMongo {
		return fmt.Errorf("DB_DRIVER=mongo has no SQL schema; indexes are created at startup")
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "up":
		if err := database.Migrate(db.WithContext(ctx)); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "schema up to date")
	case "status":
		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		_, _ = fmt.Fprintf(out, "mode=%s env=%s auto_migrate=%t missing=%d\n",
			status.Mode, status.Environment, status.WillAutoMigrate, len(status.MissingTables))
		for _, table := range status.MissingTables {
			_, _ = fmt.Fprintf(out, "missing: %s\n", table)
		}
	default:
		return usage()
	}
	return nil
}
