package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ms-records/internal/config"
	"ms-records/internal/database"
	"ms-records/internal/database/migrations"
	"ms-records/internal/logger"
)

func main() {
	command := flag.String("cmd", "up", "migration command: up, down, to, force, version")
	version := flag.Int("version", -1, "target version for to and force")
	verbose := flag.Bool("verbose", false, "log every migration step")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	ctx := context.Background()
	pool, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open database: %v", err))
	}
	defer pool.Close()

	opts := migrations.DefaultOptions()
	opts.Verbose = *verbose
	runner := migrations.NewRunner(pool, opts, log)
	defer runner.Close()

	if err := run(ctx, runner, *command, *version); err != nil {
		log.Fatal("MIGRATION", err.Error())
	}

	v, dirty, ok, err := runner.Version()
	switch {
	case err != nil:
		log.Fatal("MIGRATION", err.Error())
	case !ok:
		log.Info("MIGRATION", "No migrations applied")
	default:
		log.Info("MIGRATION", fmt.Sprintf("Schema version %d (dirty=%t)", v, dirty))
	}
}

func run(ctx context.Context, runner *migrations.Runner, command string, version int) error {
	switch command {
	case "up":
		return runner.Run(ctx)
	case "down":
		return runner.MigrateDown()
	case "to":
		if version < 0 {
			return fmt.Errorf("-version is required for %q", command)
		}
		return runner.MigrateTo(uint(version))
	case "force":
		if version < 0 {
			return fmt.Errorf("-version is required for %q", command)
		}
		return runner.Force(version)
	case "version":
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
