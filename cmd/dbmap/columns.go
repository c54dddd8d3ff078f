package main

import (
	"fmt"
	"os"

	"github.com/scott-cotton/cli"

	"github.com/lucasefe/dbmap/generator"
)

type columnsConfig struct {
	*cli.Command
	URL     string `cli:"name=url desc='PostgreSQL connection URL (default: $DATABASE_URL)'"`
	Schema  string `cli:"name=schema aliases=s desc='comma-separated schemas to search (default: public)'"`
	Policy  string `cli:"name=policy aliases=p desc='duplicate column policy: choose-first or throw' default=choose-first"`
	Verbose bool   `cli:"name=verbose aliases=v desc='log debug output to stderr'"`
}

// ColumnsCommand returns the columns subcommand.
func ColumnsCommand() *cli.Command {
	cfg := &columnsConfig{Policy: "choose-first"}
	opts, _ := cli.StructOpts(cfg)
	return cli.NewCommandAt(&cfg.Command, "columns").
		WithSynopsis("columns [--url <url>] [--policy <policy>] <table>... - Print the column registry").
		WithOpts(opts...).
		WithRun(cfg.run)
}

func (cfg *columnsConfig) run(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}

	src := source{URL: cfg.URL, Schema: cfg.Schema, Policy: cfg.Policy, Verbose: cfg.Verbose}
	r, err := src.registry(src.logger(os.Stderr), args)
	if err != nil {
		return err
	}

	out, err := generator.GenerateRegistry(r)
	if err != nil {
		return fmt.Errorf("failed to render registry: %w", err)
	}
	_, err = cc.Out.Write(out)
	return err
}
