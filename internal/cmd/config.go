package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/smrelease/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create smrelease configuration",
	Long: `View or create smrelease configuration.

Without arguments, displays the effective configuration.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/smrelease/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	out := cmd.OutOrStdout()
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults and environment)")
	}
	return writeConfig(out, cfg)
}

// writeConfig prints cfg as YAML with the auth token masked.
func writeConfig(w io.Writer, cfg *config.Config) error {
	shown := *cfg
	shown.Sentry.AuthToken = maskToken(cfg.Sentry.AuthToken)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&shown); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// maskToken keeps the last four characters of long tokens.
func maskToken(token string) string {
	switch {
	case token == "":
		return ""
	case len(token) <= 8:
		return strings.Repeat("*", len(token))
	default:
		return strings.Repeat("*", 8) + token[len(token)-4:]
	}
}

const configHeader = `# smrelease configuration
#
# Every key can also be set with an SMRELEASE_ environment variable, e.g.
# SMRELEASE_UPLOAD_CONCURRENCY=4. The auth token, organization, project, URL
# and release version are additionally read from SENTRY_AUTH_TOKEN,
# SENTRY_ORG, SENTRY_PROJECT, SENTRY_URL and SENTRY_RELEASE.
#
# Prefer the environment for sentry.auth_token over storing it here.

`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configFile := config.ConfigFile()
	if err := initConfigFile(configFile); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize smrelease's behavior.")
	return nil
}

// initConfigFile writes the default configuration to path. An existing file
// is never overwritten.
func initConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	body, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(configHeader), body...), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Config search order:")
	fmt.Fprintf(out, "  1. %s\n", configFile)
	fmt.Fprintln(out, "  2. $HOME/.config/smrelease/config.yaml")
	fmt.Fprintln(out, "  3. ./config.yaml (current directory)")
	return nil
}
