package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/scott-cotton/cli"

	"github.com/lucasefe/dbmap/introspect"
	"github.com/lucasefe/dbmap/mapping"
	"github.com/lucasefe/dbmap/schema"
)

const (
	defaultDatabaseURL = "DATABASE_URL"
	version            = "1.0.0"
)

const usageText = `dbmap - inspect how Go types map onto PostgreSQL tables

Usage:
  dbmap columns [--url <url>] <table>...           Print the column registry of the tables
  dbmap check --config <file> [--url <url>] <table>...
                                                   Check a mapping config against the tables
  dbmap version                                    Show version

Tables are joined in the order given: with the choose-first policy a shared
column name resolves to the first table that has it.

Environment variables:
  DATABASE_URL    PostgreSQL connection URL, used when --url is not given

Examples:
  dbmap columns films directors
  dbmap columns --policy throw --schema catalog films
  dbmap check --config dbmap.yaml --type Film films directors`

// Root returns the root command for dbmap.
func Root() *cli.Command {
	return cli.NewCommand("dbmap").
		WithSynopsis("dbmap - inspect how Go types map onto PostgreSQL tables").
		WithDescription(usageText).
		WithSubs(
			ColumnsCommand(),
			CheckCommand(),
			VersionCommand(),
		)
}

// VersionCommand returns the version subcommand.
func VersionCommand() *cli.Command {
	return cli.NewCommand("version").
		WithSynopsis("version - Show version").
		WithRun(func(cc *cli.Context, args []string) error {
			fmt.Fprintf(cc.Out, "dbmap version %s\n", version)
			return nil
		})
}

// source holds the flags shared by commands that introspect tables.
type source struct {
	URL     string
	Schema  string
	Policy  string
	Verbose bool
}

func (s source) databaseURL() (string, error) {
	if s.URL != "" {
		return s.URL, nil
	}
	if url := os.Getenv(defaultDatabaseURL); url != "" {
		return url, nil
	}
	return "", fmt.Errorf("%w: database URL is required; provide --url or set %s", cli.ErrUsage, defaultDatabaseURL)
}

func (s source) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if s.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// registry introspects the named tables and indexes their columns.
func (s source) registry(logger *slog.Logger, names []string) (*mapping.Registry, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one table is required", cli.ErrUsage)
	}
	policy, err := mapping.ParseDuplicatePolicy(s.Policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cli.ErrUsage, err)
	}
	url, err := s.databaseURL()
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	opts := []introspect.Option{}
	if s.Schema != "" {
		opts = append(opts, introspect.WithSchemas(splitList(s.Schema)...))
	}
	tables, err := introspect.Tables(ctx, db, names, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect tables: %w", err)
	}
	logger.Debug("introspected tables", "tables", strings.Join(names, ","), "policy", policy)

	return newRegistry(tables, policy)
}

func newRegistry(tables []schema.Table, policy mapping.DuplicatePolicy) (*mapping.Registry, error) {
	r, err := mapping.NewRegistry(tables, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to index columns: %w", err)
	}
	return r, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
