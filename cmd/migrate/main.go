package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/config"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/logger"
	"github.com/TaimoorByteNinja/CRM-sub004/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// command is one migrate subcommand. Commands without a migrator only touch
// the migrations directory.
type command struct {
	args    int // required positional arguments after the command name
	usage   string
	offline func(dir string, args []string, log *zap.Logger) error
	online  func(m *migration.Migrator, args []string, log *zap.Logger) error
}

var commands = map[string]command{
	"up": {
		online: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Up() },
	},
	"down": {
		online: func(m *migration.Migrator, _ []string, _ *zap.Logger) error { return m.Down() },
	},
	"step": {
		args:  1,
		usage: "migrate step <n>",
		online: func(m *migration.Migrator, args []string, _ *zap.Logger) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		},
	},
	"version": {
		online: func(m *migration.Migrator, _ []string, log *zap.Logger) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if version == 0 {
				log.Info("No migrations applied")
				return nil
			}
			log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
			return nil
		},
	},
	"force": {
		args:  1,
		usage: "migrate force <version>",
		online: func(m *migration.Migrator, args []string, log *zap.Logger) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version number %q", args[0])
			}
			log.Warn("Forcing migration version - use with caution!")
			return m.Force(version)
		},
	},
	"create": {
		args:  1,
		usage: "migrate create <name>",
		offline: func(dir string, args []string, log *zap.Logger) error {
			mf, err := migration.CreateMigration(dir, args[0])
			if err != nil {
				return err
			}
			log.Info("Migration created successfully",
				zap.Uint("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	},
	"list": {
		offline: func(dir string, _ []string, log *zap.Logger) error {
			migrations, err := migration.ListMigrations(dir)
			if err != nil {
				return err
			}
			log.Info("Available migrations", zap.Int("count", len(migrations)))
			for _, m := range migrations {
				fmt.Printf("  %06d  %s\n", m.Version, m.Name)
			}
			return nil
		},
	},
}

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	name, args := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	if len(args) < cmd.args {
		log.Fatal("Missing argument", zap.String("usage", cmd.usage))
	}

	dir, err := resolveMigrationsPath(migrationsPath)
	if err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}
	log.Info("Migration CLI started", zap.String("command", name), zap.String("migrations_path", dir))

	if cmd.offline != nil {
		if err := cmd.offline(dir, args, log); err != nil {
			log.Fatal("Migration command failed", zap.String("command", name), zap.Error(err))
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	m, err := migration.New(db, dir, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	if err := cmd.online(m, args, log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", name), zap.Error(err))
	}
}

// resolveMigrationsPath falls back to ./migrations, then to the directory
// two levels above the executable
func resolveMigrationsPath(path string) (string, error) {
	if path != "" {
		return filepath.Abs(path)
	}
	if _, err := os.Stat(defaultMigrationsPath); err == nil {
		return filepath.Abs(defaultMigrationsPath)
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}
	return filepath.Abs(defaultMigrationsPath)
}

func printUsage() {
	fmt.Println(`Party Ledger Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  create <name>         Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Database settings come from config.toml or LEDGER_DATABASE_* variables.`)
}
