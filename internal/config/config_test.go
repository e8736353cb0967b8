package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Sentry.URL != "https://sentry.io" {
		t.Errorf("Sentry.URL = %q, want %q", cfg.Sentry.URL, "https://sentry.io")
	}
	if cfg.Sentry.AuthToken != "" {
		t.Error("Sentry.AuthToken should be empty by default")
	}
	if cfg.Upload.Manifest != "dist/manifest.json" {
		t.Errorf("Upload.Manifest = %q, want %q", cfg.Upload.Manifest, "dist/manifest.json")
	}
	if cfg.Upload.Concurrency != 0 {
		t.Errorf("Upload.Concurrency = %d, want 0 (unbounded)", cfg.Upload.Concurrency)
	}
	if cfg.Cleanup.DeleteSourcemaps {
		t.Error("Cleanup.DeleteSourcemaps should be false by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if !cfg.Output.Color {
		t.Error("Output.Color should be true by default")
	}
}

func TestUploadConfig_FilenameTransform(t *testing.T) {
	tests := []struct {
		name  string
		cfg   UploadConfig
		input string
		want  string
		isNil bool
	}{
		{name: "no prefixes", cfg: UploadConfig{}, isNil: true},
		{name: "url prefix", cfg: UploadConfig{URLPrefix: "~/static"}, input: "app.js", want: "~/static/app.js"},
		{name: "url prefix with trailing slash", cfg: UploadConfig{URLPrefix: "~/static/"}, input: "app.js", want: "~/static/app.js"},
		{name: "strip prefix", cfg: UploadConfig{StripPrefix: "dist/"}, input: "dist/app.js", want: "app.js"},
		{name: "strip then prefix", cfg: UploadConfig{StripPrefix: "dist", URLPrefix: "~"}, input: "dist/app.js.map", want: "~/app.js.map"},
		{name: "strip prefix absent", cfg: UploadConfig{StripPrefix: "build/"}, input: "app.js", want: "app.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := tt.cfg.FilenameTransform()
			if tt.isNil {
				if fn != nil {
					t.Error("FilenameTransform() should be nil when no prefix is configured")
				}
				return
			}
			if fn == nil {
				t.Fatal("FilenameTransform() returned nil")
			}
			if got := fn(tt.input); got != tt.want {
				t.Errorf("transform(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got, want := ConfigDir(), "/custom/config/smrelease"; got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, _ := os.UserHomeDir()
		if got, want := ConfigDir(), filepath.Join(home, ".config", "smrelease"); got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := ConfigFile(), "/custom/config/smrelease/config.yaml"; got != want {
		t.Errorf("ConfigFile() = %q, want %q", got, want)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "prefixed variables",
			env: map[string]string{
				"SMRELEASE_UPLOAD_CONCURRENCY":        "4",
				"SMRELEASE_CLEANUP_DELETE_SOURCEMAPS": "true",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Upload.Concurrency != 4 {
					t.Errorf("Upload.Concurrency = %d, want 4", cfg.Upload.Concurrency)
				}
				if !cfg.Cleanup.DeleteSourcemaps {
					t.Error("Cleanup.DeleteSourcemaps = false, want true")
				}
			},
		},
		{
			name: "sentry aliases",
			env: map[string]string{
				"SENTRY_AUTH_TOKEN": "tok",
				"SENTRY_ORG":        "acme",
				"SENTRY_PROJECT":    "web",
				"SENTRY_RELEASE":    "1.2.3",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Sentry.AuthToken != "tok" || cfg.Sentry.Organization != "acme" || cfg.Sentry.Project != "web" {
					t.Errorf("Sentry = %+v, want tok/acme/web", cfg.Sentry)
				}
				if cfg.Release.Version != "1.2.3" {
					t.Errorf("Release.Version = %q, want 1.2.3", cfg.Release.Version)
				}
			},
		},
		{
			name: "prefixed form wins over alias",
			env: map[string]string{
				"SENTRY_ORG":                    "alias",
				"SMRELEASE_SENTRY_ORGANIZATION": "prefixed",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Sentry.Organization != "prefixed" {
					t.Errorf("Sentry.Organization = %q, want %q", cfg.Sentry.Organization, "prefixed")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			SetDefaults()
			BindEnv()

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()
	viper.Set("upload.concurrency", -1)

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should reject a negative concurrency")
	}
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("Load() error type = %T, want ValidationErrors", err)
	}
	if len(errs) != 1 || errs[0].Field != "upload.concurrency" {
		t.Errorf("Load() errors = %v, want one upload.concurrency error", errs)
	}

	if cfg := Get(); cfg.Upload.Concurrency != 0 {
		t.Errorf("Get() should fall back to defaults, got concurrency %d", cfg.Upload.Concurrency)
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadDotEnv(t.TempDir()); err != nil {
			t.Errorf("LoadDotEnv() error = %v", err)
		}
	})

	t.Run("loads unset variables only", func(t *testing.T) {
		dir := t.TempDir()
		content := "SMRELEASE_DOTENV_A=from-file\nSMRELEASE_DOTENV_B=from-file\n"
		if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("SMRELEASE_DOTENV_B", "from-env")
		t.Setenv("SMRELEASE_DOTENV_A", "")
		_ = os.Unsetenv("SMRELEASE_DOTENV_A")

		if err := LoadDotEnv(dir); err != nil {
			t.Fatalf("LoadDotEnv() error = %v", err)
		}
		if got := os.Getenv("SMRELEASE_DOTENV_A"); got != "from-file" {
			t.Errorf("SMRELEASE_DOTENV_A = %q, want %q", got, "from-file")
		}
		if got := os.Getenv("SMRELEASE_DOTENV_B"); got != "from-env" {
			t.Errorf("SMRELEASE_DOTENV_B = %q, want %q", got, "from-env")
		}
	})
}
