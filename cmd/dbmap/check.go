package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/lucasefe/dbmap/mapping"
)

type checkConfig struct {
	*cli.Command
	Config  string `cli:"name=config aliases=c desc='YAML mapping config file'"`
	Type    string `cli:"name=type aliases=t desc='check only this type (default: all types in the file)'"`
	URL     string `cli:"name=url desc='PostgreSQL connection URL (default: $DATABASE_URL)'"`
	Schema  string `cli:"name=schema aliases=s desc='comma-separated schemas to search (default: public)'"`
	Policy  string `cli:"name=policy aliases=p desc='duplicate column policy: choose-first or throw' default=choose-first"`
	Verbose bool   `cli:"name=verbose aliases=v desc='log debug output to stderr'"`
}

// CheckCommand returns the check subcommand.
func CheckCommand() *cli.Command {
	cfg := &checkConfig{Policy: "choose-first"}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "check").
		WithSynopsis("check --config <file> [--type <name>] <table>... - Check a mapping config").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *checkConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Config == "" {
		return fmt.Errorf("%w: --config is required", cli.ErrUsage)
	}

	cf, err := mapping.LoadConfigFile(cfg.Config)
	if err != nil {
		return err
	}

	src := source{URL: cfg.URL, Schema: cfg.Schema, Policy: cfg.Policy, Verbose: cfg.Verbose}
	logger := src.logger(os.Stderr)
	r, err := src.registry(logger, args)
	if err != nil {
		return err
	}

	problems, err := checkConfigFile(cf, r, cfg.Type, logger)
	if err != nil {
		return err
	}
	for _, p := range problems {
		fmt.Fprintln(cc.Out, p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d unknown columns in %s", len(problems), cfg.Config)
	}
	fmt.Fprintf(cc.Out, "%s: ok\n", cfg.Config)
	return nil
}

// checkConfigFile reports every column a mapping names that the registry
// cannot resolve, one line per column.
func checkConfigFile(cf *mapping.ConfigFile, r *mapping.Registry, only string, logger *slog.Logger) ([]string, error) {
	names := cf.Names()
	if only != "" {
		if _, err := cf.Config(only); err != nil {
			return nil, err
		}
		names = []string{only}
	}

	var problems []string
	for _, name := range names {
		if _, err := cf.Config(name); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		cols := cf.ReferencedColumns(name)
		logger.Debug("checking mapping", "type", name, "columns", len(cols))
		for _, col := range cols {
			if _, ok := r.Lookup(col); !ok {
				problems = append(problems, fmt.Sprintf("%s: unknown column %q (tables: %v)", name, col, r.TableNames()))
			}
		}
	}
	return problems, nil
}
