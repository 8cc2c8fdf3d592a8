package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"

	"github.com/polkiloo/storefront/internal/logger"
	"github.com/polkiloo/storefront/internal/storage/postgres"
)

type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Close() (error, error)
}

var newMigrator = func(dsn string) (migrator, error) {
	return postgres.NewMigrator(dsn)
}

func main() {
	log := logger.New()
	if err := run(os.Args[1:], os.Getenv, os.Stderr, log); err != nil {
		log.Error("migrate failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(args []string, getenv func(string) string, usage io.Writer, log *slog.Logger) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(usage)
	dsn := fs.String("d", getenv("DATABASE_URI"), "database connection string")
	fs.Usage = func() {
		fmt.Fprintln(usage, "usage: migrate [-d dsn] up|down|steps N|version")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dsn == "" {
		return errors.New("database uri is required")
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	m, err := newMigrator(*dsn)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	switch cmd := fs.Arg(0); cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		n, convErr := strconv.Atoi(fs.Arg(1))
		if convErr != nil || n == 0 {
			return fmt.Errorf("steps requires a non-zero integer, got %q", fs.Arg(1))
		}
		err = m.Steps(n)
	case "version":
		version, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			log.Info("no migrations applied")
			return nil
		}
		if verr != nil {
			return verr
		}
		log.Info("schema version", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
		return nil
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("schema is up to date")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("migration finished", slog.String("command", fs.Arg(0)))
	return nil
}
