// Package cleanup removes emitted sourcemaps once a build has finished, so
// they are published to the tracking service but never deployed.
package cleanup

import (
	"github.com/spf13/afero"

	"github.com/Iron-Ham/smrelease/internal/artifact"
	"github.com/Iron-Ham/smrelease/internal/build"
	"github.com/Iron-Ham/smrelease/internal/errors"
)

// Plan returns the on-disk path of every sourcemap recorded in stats, across
// all compilations, in emission order. A path shared by several
// compilations is listed once.
func Plan(stats build.Stats) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, c := range stats.Compilations() {
		for _, src := range artifact.Sourcemaps(c.Assets()) {
			if seen[src.Path] {
				continue
			}
			seen[src.Path] = true
			paths = append(paths, src.Path)
		}
	}
	return paths
}

// Sourcemaps deletes every path returned by Plan. It stops at the first
// failure and returns it as a *errors.CleanupError together with the paths
// already removed. No path outside the plan is touched.
func Sourcemaps(fs afero.Fs, stats build.Stats) ([]string, error) {
	plan := Plan(stats)
	removed := make([]string, 0, len(plan))
	for _, path := range plan {
		if err := fs.Remove(path); err != nil {
			return removed, errors.NewCleanupError("delete sourcemap", err).WithPath(path)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
