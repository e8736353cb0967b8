package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/smrelease/internal/config"
	"github.com/Iron-Ham/smrelease/internal/errors"
	"github.com/Iron-Ham/smrelease/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "smrelease",
	Short: "Publish bundler output as a Sentry release",
	Long: `smrelease creates a release on a Sentry-compatible error tracking service,
uploads the JavaScript files and sourcemaps a bundler emitted as release
artifacts, and optionally deletes the sourcemaps afterwards so they are never
deployed.

Emitted assets are read from the manifest the bundler writes after a build.`,
	SilenceUsage: true,
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as watch.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/smrelease/config.yaml)")
	rootCmd.PersistentFlags().StringP("manifest", "m", "", "asset manifest written by the bundler (default dist/manifest.json)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-dir", "", "write logs to smrelease.log in this directory instead of stderr")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("upload.manifest", rootCmd.PersistentFlags().Lookup("manifest"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.dir", rootCmd.PersistentFlags().Lookup("log-dir"))
}

func initConfig() {
	// .env must be in the environment before viper reads it
	if err := config.LoadDotEnv("."); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/smrelease")
		viper.AddConfigPath(".")
	}

	// e.g. SMRELEASE_UPLOAD_CONCURRENCY for upload.concurrency, plus the
	// SENTRY_* variables other Sentry tooling reads
	config.BindEnv()

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newLogger creates the structured logger described by cfg.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.NewLogger(cfg.Logging.Dir, logging.ParseLevel(cfg.Logging.Level))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}
	return logger, nil
}
