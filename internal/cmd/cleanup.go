package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/smrelease/internal/build"
	"github.com/Iron-Ham/smrelease/internal/cleanup"
	"github.com/Iron-Ham/smrelease/internal/config"
	"github.com/Iron-Ham/smrelease/internal/errors"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete the sourcemaps listed in the manifest",
	Long: `Delete every *.map asset listed in the manifest without contacting the
tracking service. Other files are never touched.

The first file that cannot be deleted stops the pass.`,
	RunE: runCleanup,
}

var cleanupDryRun bool

func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "list the sourcemaps that would be deleted")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return cleanupManifest(afero.NewOsFs(), cfg.Upload.Manifest, cleanupDryRun, newPrinter(cmd.OutOrStdout(), cfg.Output.Color))
}

func cleanupManifest(fs afero.Fs, manifestPath string, dryRun bool, out *printer) error {
	manifest, err := build.LoadManifest(fs, manifestPath)
	if err != nil {
		return err
	}

	if dryRun {
		plan := cleanup.Plan(manifest)
		for _, path := range plan {
			out.printf("  %s %s\n", out.render(mutedStyle, "would delete"), path)
		}
		out.printf("%d sourcemap(s) would be deleted\n", len(plan))
		return nil
	}

	removed, err := cleanup.Sourcemaps(fs, manifest)
	for _, path := range removed {
		out.printf("  %s %s\n", out.render(mutedStyle, "-"), path)
	}
	if err != nil {
		out.failure(err)
		return err
	}
	out.printf("%s %d sourcemap(s) deleted\n", out.render(successStyle, "✓"), len(removed))
	return nil
}
