// Package cli implements the inventory command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/abgdnv/inventory/internal/app"
	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/pkg/bootstrap"
	"github.com/spf13/cobra"
)

var version = "dev"

// shell carries what the subcommands share once the root has loaded configuration.
type shell struct {
	configFile string
	storePath  string
	backend    string

	cfg    *config.Config
	logger *slog.Logger
	deps   *app.Dependencies
}

// NewRootCmd builds the inventory command tree. Operator output goes to out, logs to errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	sh := &shell{}

	rootCmd := &cobra.Command{
		Use:   "inventory",
		Short: "Track products in a local inventory file",
		Long: `inventory keeps a list of products, each with a unique ID, a name,
a quantity and a price, and saves the whole list to a single file after every change.

Examples:
  inventory add --id A1 --name Widget --quantity 10 --price 2.50
  inventory list
  inventory find a1
  inventory serve`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return sh.init(cmd)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVarP(&sh.configFile, "config", "c", "",
		"config file (default: ./config.yaml when present)")
	rootCmd.PersistentFlags().StringVarP(&sh.storePath, "store", "s", "",
		"inventory file, overrides store.path")
	rootCmd.PersistentFlags().StringVarP(&sh.backend, "backend", "b", "",
		"store backend: file or sqlite, overrides store.backend")

	rootCmd.AddCommand(
		newAddCmd(sh),
		newListCmd(sh),
		newFindCmd(sh),
		newServeCmd(sh),
	)
	return rootCmd
}

// init loads configuration, builds the logger and restores the registry.
func (sh *shell) init(cmd *cobra.Command) error {
	cfg, err := config.Load(sh.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Path = sh.storePath
	}
	if cmd.Flags().Changed("backend") {
		cfg.Store.Backend = sh.backend
	}
	if err := cfg.Store.Validate(); err != nil {
		return fmt.Errorf("invalid store settings: %w", err)
	}
	sh.cfg = cfg

	sh.logger = bootstrap.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	sh.logger.DebugContext(cmd.Context(), "Configuration loaded", "config", cfg.String())

	deps, err := app.SetupDependencies(cmd.Context(), cfg, sh.logger)
	if err != nil {
		return err
	}
	sh.deps = deps
	return nil
}
