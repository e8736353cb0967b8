package cmd

import (
	"context"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/smrelease/internal/config"
	"github.com/Iron-Ham/smrelease/internal/errors"
	"github.com/Iron-Ham/smrelease/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Upload again every time the manifest changes",
	Long: `Watch the manifest written by a bundler running in watch mode and run the
upload command each time it settles after a change.

A failed cycle is reported and watching continues. Stop with Ctrl+C.`,
	RunE: runWatch,
}

var (
	watchDebounce time.Duration
	watchNow      bool
)

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before a change is handled")
	watchCmd.Flags().BoolVar(&watchNow, "now", false, "upload once immediately before waiting for changes")
	watchCmd.Flags().StringP("release", "r", "", "release version")
	watchCmd.Flags().IntP("concurrency", "j", 0, "maximum uploads in flight (0 = unbounded)")
	watchCmd.Flags().Bool("delete-sourcemaps", false, "delete sourcemaps once uploaded")
	watchCmd.Flags().String("url-prefix", "", "prefix for uploaded file names, e.g. ~/static")
	watchCmd.Flags().String("strip-prefix", "", "prefix removed from asset names before url-prefix is applied")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	// The upload flags share keys with the upload command, so bind them only
	// when this command runs.
	bindUploadFlags(cmd)

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	// Fail fast on a configuration that can never upload
	if err := pluginOptions(cfg).Validate(); err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout(), cfg.Output.Color)
	fs := afero.NewOsFs()
	opts := []watch.Option{watch.WithDebounce(watchDebounce), watch.WithLogger(logger.WithPhase("watch"))}
	if watchNow {
		opts = append(opts, watch.WithInitialRun())
	}

	w, err := watch.New(cfg.Upload.Manifest, func(ctx context.Context) error {
		return uploadOnce(ctx, cfg, fs, logger, out)
	}, opts...)
	if err != nil {
		return errors.Wrapf(err, "watch %s", cfg.Upload.Manifest)
	}

	out.printf("Watching %s\n", out.render(mutedStyle, w.Path()))
	return w.Run(cmd.Context())
}
