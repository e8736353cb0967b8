package cmd

import (
	"context"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/smrelease/internal/build"
	"github.com/Iron-Ham/smrelease/internal/config"
	"github.com/Iron-Ham/smrelease/internal/errors"
	"github.com/Iron-Ham/smrelease/internal/logging"
	"github.com/Iron-Ham/smrelease/internal/release"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Create the release and upload scripts and sourcemaps",
	Long: `Create the configured release and upload every *.js and *.map asset listed
in the manifest as a release file.

Release creation always finishes before the first upload. If it fails nothing
is uploaded. When cleanup.delete_sourcemaps is enabled the sourcemaps are
deleted after the uploads succeed.

Required settings (flags, config file or environment):
  sentry.auth_token    SENTRY_AUTH_TOKEN
  sentry.organization  SENTRY_ORG
  sentry.project       SENTRY_PROJECT
  release.version      SENTRY_RELEASE`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringP("release", "r", "", "release version")
	uploadCmd.Flags().IntP("concurrency", "j", 0, "maximum uploads in flight (0 = unbounded)")
	uploadCmd.Flags().Bool("delete-sourcemaps", false, "delete sourcemaps once uploaded")
	uploadCmd.Flags().String("url-prefix", "", "prefix for uploaded file names, e.g. ~/static")
	uploadCmd.Flags().String("strip-prefix", "", "prefix removed from asset names before url-prefix is applied")
	bindUploadFlags(uploadCmd)
	rootCmd.AddCommand(uploadCmd)
}

// bindUploadFlags binds the upload flags of c to their config keys.
func bindUploadFlags(c *cobra.Command) {
	_ = viper.BindPFlag("release.version", c.Flags().Lookup("release"))
	_ = viper.BindPFlag("upload.concurrency", c.Flags().Lookup("concurrency"))
	_ = viper.BindPFlag("cleanup.delete_sourcemaps", c.Flags().Lookup("delete-sourcemaps"))
	_ = viper.BindPFlag("upload.url_prefix", c.Flags().Lookup("url-prefix"))
	_ = viper.BindPFlag("upload.strip_prefix", c.Flags().Lookup("strip-prefix"))
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	return uploadOnce(cmd.Context(), cfg, afero.NewOsFs(), logger, newPrinter(cmd.OutOrStdout(), cfg.Output.Color))
}

// pluginOptions maps the loaded configuration onto release options.
func pluginOptions(cfg *config.Config) release.Options {
	return release.Options{
		AuthToken:         cfg.Sentry.AuthToken,
		Organization:      cfg.Sentry.Organization,
		Project:           cfg.Sentry.Project,
		Version:           cfg.Release.Version,
		URL:               cfg.Sentry.URL,
		DeleteSourcemaps:  cfg.Cleanup.DeleteSourcemaps,
		FilenameTransform: cfg.Upload.FilenameTransform(),
		UploadConcurrency: cfg.Upload.Concurrency,
	}
}

// uploadOnce runs one full build cycle against the manifest. The after-emit
// hook (release and uploads) fires once per compilation, in manifest order,
// and the first failure ends the cycle. The done hook (cleanup) fires only
// after every compilation was uploaded.
func uploadOnce(ctx context.Context, cfg *config.Config, fs afero.Fs, logger *logging.Logger, out *printer) error {
	p, err := release.New(pluginOptions(cfg), release.WithFs(fs), release.WithLogger(logger))
	if err != nil {
		out.failure(err)
		return err
	}

	manifest, err := build.LoadManifest(fs, cfg.Upload.Manifest)
	if err != nil {
		out.failure(err)
		return err
	}

	hooks := build.NewHooks()
	p.Apply(hooks)

	var summaries []release.Summary
	for _, c := range manifest.Compilations() {
		err = hooks.EmitAfterEmit(ctx, c)
		summaries = append(summaries, p.LastSummary())
		if err != nil {
			break
		}
	}
	if err == nil {
		err = hooks.EmitDone(ctx, manifest)
		if len(summaries) > 0 {
			summaries[len(summaries)-1] = p.LastSummary()
		}
	}

	for i, s := range summaries {
		var cycleErr error
		if i == len(summaries)-1 {
			cycleErr = err
		}
		out.summary(s, cycleErr)
	}
	out.failure(err)
	return err
}
