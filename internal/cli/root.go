// Package cli implements the cadnorm command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cadnorm/internal/config"
	"cadnorm/internal/dialect"
	"cadnorm/internal/engine"
	"cadnorm/internal/logger"
	"cadnorm/internal/plan"
	"cadnorm/internal/registry"
)

// app holds what every command needs once flags and config are resolved.
type app struct {
	cfgFile string

	cfg     config.Config
	log     *logger.Logger
	reg     *registry.Registry
	catalog *dialect.Catalog
	engine  *engine.Engine
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cadnorm",
		Short: "Standardize CAD/RMS incident exports",
		Long: `cadnorm maps vendor CAD/RMS exports onto one canonical incident schema.
It recognizes known export dialects, auto-maps unknown layouts, normalizes
dates, times and coordinates, derives response intervals and checks the
result against the needs of a downstream tool.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./cadnorm.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.Bool("dev", false, "human-readable logs")
	pf.StringP("output", "o", config.OutputJSON, "output format: json, yaml, text")
	pf.StringP("tool", "t", config.DefaultTool, "tool profile to standardize for")
	pf.Int("min-score", plan.DefaultMinScore, "scored auto-mapping threshold")
	pf.Int("suggestions", plan.DefaultConfig().MaxSuggestions, "suggestions per unmapped field")
	pf.Bool("extra", true, "pass unmapped columns through")
	pf.IntP("workers", "w", 4, "files processed concurrently")

	root.AddCommand(
		a.fieldsCmd(),
		a.profilesCmd(),
		a.detectCmd(),
		a.suggestCmd(),
		a.applyCmd(),
		a.validateCmd(),
		a.checkCmd(),
		a.watchCmd(),
	)

	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logger())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	a.reg = registry.Default()

	a.catalog, err = dialect.Default(a.reg)
	if err != nil {
		return fmt.Errorf("load dialect catalog: %w", err)
	}

	a.engine = engine.New(a.reg, a.catalog,
		engine.WithLogger(log),
		engine.WithResolution(cfg.Resolution()),
		engine.WithExtra(cfg.Extra),
	)

	return nil
}
