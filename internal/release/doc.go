// Package release publishes a build's JavaScript and sourcemaps as release
// artifacts on a Sentry-compatible tracking service.
//
// A Plugin is attached to a build through Apply. After the build emits its
// assets the plugin creates the release and then uploads every selected
// artifact through a concurrency-limited dispatcher. Release creation always
// completes before the first upload starts; if it fails nothing is uploaded.
// When the build reports that it is done the plugin optionally deletes the
// emitted sourcemaps.
//
// # Usage
//
//	p, err := release.New(release.Options{
//	    AuthToken:         token,
//	    Organization:      "acme",
//	    Project:           "web",
//	    Version:           "1.2.3",
//	    UploadConcurrency: 4,
//	    DeleteSourcemaps:  true,
//	})
//	if err != nil {
//	    return err // *errors.ConfigurationError
//	}
//	p.Apply(hooks)
package release
