package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bizflow/pkg/version"
)

type cliFlags struct {
	configPath string
	port       int
	dbPath     string
	verbose    bool
}

// NewRootCommand builds the bizflow command tree. Running the root without a subcommand serves.
func NewRootCommand() *cobra.Command {
	var flags cliFlags

	root := &cobra.Command{
		Use:           "bizflow",
		Short:         "Business dashboard with invoices, proposals and client onboarding",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, flags)
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().IntVar(&flags.port, "port", 0, "HTTP port (overrides config and PORT)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db-path", "", "SQLite file; empty string keeps data in memory")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, flags)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "bizflow", version.Version())
			return err
		},
	})
	return root
}

// resolveConfig loads the config file and applies the flags the user set explicitly.
func resolveConfig(cmd *cobra.Command, flags cliFlags) (Config, error) {
	cfg, err := Load(flags.configPath)
	if err != nil {
		return Config{}, err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = flags.port
	}
	if cmd.Flags().Changed("db-path") {
		cfg.Database.Path = flags.dbPath
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serve(cmd *cobra.Command, flags cliFlags) error {
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}
	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := Run(cmd.Context(), cfg, logger); err != nil {
		logger.Error("application stopped with error", zap.Error(err))
		return err
	}
	return nil
}
