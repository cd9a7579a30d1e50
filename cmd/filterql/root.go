package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugr-lab/filterql"
	"github.com/hugr-lab/filterql/internal/config"
	"github.com/hugr-lab/filterql/schema"
)

// app carries the loaded configuration between the root and subcommands.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	var configPath string

	root := &cobra.Command{
		Use:   "filterql",
		Short: "Compile query filter strings into SQL",
		Long: `filterql compiles human-written filter strings such as

  name = "Pasta Bake" AND (rating >= 4 OR tags.slug CONTAINS ALL [quick, easy])

into SQL predicates over the entities of a YAML schema file.

Settings are read from flags, FILTERQL_* environment variables and
filterql.yaml (working directory or user config directory).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, configPath)
			if err != nil {
				return err
			}
			logger, err := cfg.Log.Logger()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: filterql.yaml)")
	flags.String("schema", "", "YAML schema file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("schema", flags.Lookup("schema"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(
		newParseCmd(a),
		newSQLCmd(a),
		newEntitiesCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) registry() (*schema.Registry, error) {
	if a.cfg.Schema == "" {
		return nil, fmt.Errorf("no schema file: set --schema or %s_SCHEMA", config.EnvPrefix)
	}
	return schema.LoadFile(a.cfg.Schema)
}

func (a *app) engine() (*filterql.Engine, error) {
	reg, err := a.registry()
	if err != nil {
		return nil, err
	}
	return filterql.NewEngine(reg, filterql.EngineOptions{
		Limits:    a.cfg.Filter.Limits(),
		Overrides: a.cfg.Filter.Overrides,
		Logger:    a.logger,
	})
}
