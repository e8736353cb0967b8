package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete smrelease configuration
type Config struct {
	Sentry  SentryConfig  `mapstructure:"sentry" yaml:"sentry"`
	Release ReleaseConfig `mapstructure:"release" yaml:"release"`
	Upload  UploadConfig  `mapstructure:"upload" yaml:"upload"`
	Cleanup CleanupConfig `mapstructure:"cleanup" yaml:"cleanup"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
}

// SentryConfig identifies the tracking service and the project releases
// belong to
type SentryConfig struct {
	// AuthToken is the API token used as a bearer credential.
	// Also read from SENTRY_AUTH_TOKEN.
	AuthToken string `mapstructure:"auth_token" yaml:"auth_token"`
	// Organization is the organization slug (SENTRY_ORG)
	Organization string `mapstructure:"organization" yaml:"organization"`
	// Project is the project slug (SENTRY_PROJECT)
	Project string `mapstructure:"project" yaml:"project"`
	// URL is the API root for self-hosted installations (default: https://sentry.io)
	URL string `mapstructure:"url" yaml:"url"`
}

// ReleaseConfig names the release being published
type ReleaseConfig struct {
	// Version is the release version string (SENTRY_RELEASE)
	Version string `mapstructure:"version" yaml:"version"`
}

// UploadConfig controls which build output is uploaded and how
type UploadConfig struct {
	// Manifest is the asset manifest written by the bundler (default: "dist/manifest.json")
	Manifest string `mapstructure:"manifest" yaml:"manifest"`
	// Concurrency is the maximum number of uploads in flight (0 = unbounded)
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	// URLPrefix is prepended to every uploaded file name, e.g. "~/static"
	URLPrefix string `mapstructure:"url_prefix" yaml:"url_prefix"`
	// StripPrefix is removed from the start of output names before URLPrefix is applied
	StripPrefix string `mapstructure:"strip_prefix" yaml:"strip_prefix"`
}

// CleanupConfig controls the post-build cleanup step
type CleanupConfig struct {
	// DeleteSourcemaps removes every emitted sourcemap once the build is done (default: false)
	DeleteSourcemaps bool `mapstructure:"delete_sourcemaps" yaml:"delete_sourcemaps"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is the directory that receives smrelease.log. Empty logs to stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// OutputConfig controls human-readable command output
type OutputConfig struct {
	// Color enables styled output when stdout is a terminal (default: true)
	Color bool `mapstructure:"color" yaml:"color"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Sentry: SentryConfig{
			URL: "https://sentry.io",
		},
		Upload: UploadConfig{
			Manifest:    "dist/manifest.json",
			Concurrency: 0, // Unbounded
		},
		Cleanup: CleanupConfig{
			DeleteSourcemaps: false,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Color: true,
		},
	}
}

// envAliases maps config keys to the conventional Sentry environment
// variables accepted in addition to SMRELEASE_*.
var envAliases = map[string]string{
	"sentry.auth_token":   "SENTRY_AUTH_TOKEN",
	"sentry.organization": "SENTRY_ORG",
	"sentry.project":      "SENTRY_PROJECT",
	"sentry.url":          "SENTRY_URL",
	"release.version":     "SENTRY_RELEASE",
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Sentry defaults
	viper.SetDefault("sentry.auth_token", defaults.Sentry.AuthToken)
	viper.SetDefault("sentry.organization", defaults.Sentry.Organization)
	viper.SetDefault("sentry.project", defaults.Sentry.Project)
	viper.SetDefault("sentry.url", defaults.Sentry.URL)

	// Release defaults
	viper.SetDefault("release.version", defaults.Release.Version)

	// Upload defaults
	viper.SetDefault("upload.manifest", defaults.Upload.Manifest)
	viper.SetDefault("upload.concurrency", defaults.Upload.Concurrency)
	viper.SetDefault("upload.url_prefix", defaults.Upload.URLPrefix)
	viper.SetDefault("upload.strip_prefix", defaults.Upload.StripPrefix)

	// Cleanup defaults
	viper.SetDefault("cleanup.delete_sourcemaps", defaults.Cleanup.DeleteSourcemaps)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)

	// Output defaults
	viper.SetDefault("output.color", defaults.Output.Color)
}

// BindEnv wires SMRELEASE_* variables for every key, e.g.
// SMRELEASE_UPLOAD_CONCURRENCY for upload.concurrency, and the conventional
// SENTRY_* aliases. The SMRELEASE_ form wins when both are set.
func BindEnv() {
	viper.SetEnvPrefix("SMRELEASE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	for key, alias := range envAliases {
		prefixed := "SMRELEASE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = viper.BindEnv(key, prefixed, alias)
	}
}

// LoadDotEnv loads a .env file from dir into the process environment.
// Variables that are already set are left untouched; a missing file is not
// an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// loaded values do not validate
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// FilenameTransform returns the transform described by UploadConfig, or nil
// when neither prefix option is set.
func (u UploadConfig) FilenameTransform() func(string) string {
	if u.URLPrefix == "" && u.StripPrefix == "" {
		return nil
	}
	strip, prefix := u.StripPrefix, strings.TrimRight(u.URLPrefix, "/")
	return func(name string) string {
		name = strings.TrimPrefix(name, strip)
		if prefix == "" {
			return name
		}
		return prefix + "/" + strings.TrimLeft(name, "/")
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "smrelease")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smrelease"
	}
	return filepath.Join(home, ".config", "smrelease")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
