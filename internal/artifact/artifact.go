// Package artifact selects the emitted outputs that belong in a release:
// compiled scripts and their sourcemaps.
package artifact

import (
	"regexp"

	"github.com/Iron-Ham/smrelease/internal/build"
)

var (
	// ScriptPattern matches compiled script output names.
	ScriptPattern = regexp.MustCompile(`\.js$`)
	// SourcemapPattern matches sourcemap output names.
	SourcemapPattern = regexp.MustCompile(`\.map$`)
)

// Source is one selected artifact: its output name and absolute path on disk.
type Source struct {
	Name string
	Path string
}

// IsScript reports whether name is a compiled script.
func IsScript(name string) bool {
	return ScriptPattern.MatchString(name)
}

// IsSourcemap reports whether name is a sourcemap.
func IsSourcemap(name string) bool {
	return SourcemapPattern.MatchString(name)
}

// Select returns every script or sourcemap asset, in input order.
// Other assets are dropped. Repeated names keep their first occurrence.
func Select(assets build.Assets) []Source {
	return filter(assets, func(name string) bool {
		return IsScript(name) || IsSourcemap(name)
	})
}

// Sourcemaps returns only the sourcemap assets, in input order.
func Sourcemaps(assets build.Assets) []Source {
	return filter(assets, IsSourcemap)
}

func filter(assets build.Assets, keep func(string) bool) []Source {
	sources := make([]Source, 0, len(assets))
	seen := make(map[string]bool, len(assets))
	for _, asset := range assets {
		if seen[asset.Name] || !keep(asset.Name) {
			continue
		}
		seen[asset.Name] = true
		sources = append(sources, Source{Name: asset.Name, Path: asset.ExistsAt})
	}
	return sources
}
