package build

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Manifest is the asset manifest a bundler writes after emitting. It is read
// as YAML, so JSON manifests load too.
//
//	outputPath: /srv/app/dist
//	assets:
//	  app.js: {}
//	  app.js.map:
//	    existsAt: /srv/app/dist/app.js.map
//	  vendor.css: dist/vendor.css
//
// A multi-compilation build lists its compilations instead:
//
//	compilations:
//	  - outputPath: dist/client
//	    assets: {client.js: {}}
//	  - outputPath: dist/server
//	    assets: {server.js: {}}
//
// Key order inside each assets mapping is preserved.
type Manifest struct {
	Path         string
	compilations []StaticCompilation
}

type manifestFile struct {
	OutputPath   string         `yaml:"outputPath"`
	Assets       yaml.Node      `yaml:"assets"`
	Compilations []manifestFile `yaml:"compilations"`
}

// LoadManifest reads and parses the manifest at path. Relative asset paths are
// resolved against the compilation's outputPath, which itself is resolved
// against the manifest's directory.
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var raw manifestFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	m := &Manifest{Path: path}

	files := raw.Compilations
	if len(files) == 0 {
		files = []manifestFile{raw}
	}
	for i, f := range files {
		assets, err := parseAssets(&f.Assets, resolve(base, f.OutputPath))
		if err != nil {
			return nil, fmt.Errorf("manifest %s: compilation %d: %w", path, i, err)
		}
		m.compilations = append(m.compilations, StaticCompilation(assets))
	}
	return m, nil
}

// Compilations implements Stats.
func (m *Manifest) Compilations() []Compilation {
	out := make([]Compilation, len(m.compilations))
	for i, c := range m.compilations {
		out[i] = c
	}
	return out
}

func parseAssets(node *yaml.Node, outputPath string) (Assets, error) {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("assets must be a mapping (line %d)", node.Line)
	}

	assets := make(Assets, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		name := key.Value
		if seen[name] {
			return nil, fmt.Errorf("duplicate asset %q (line %d)", name, key.Line)
		}
		seen[name] = true

		existsAt, err := assetPath(value)
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", name, err)
		}
		if existsAt == "" {
			existsAt = name
		}
		assets = append(assets, Asset{Name: name, ExistsAt: resolve(outputPath, existsAt)})
	}
	return assets, nil
}

func assetPath(value *yaml.Node) (string, error) {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return "", nil
		}
		return value.Value, nil
	case yaml.MappingNode:
		var v struct {
			ExistsAt string `yaml:"existsAt"`
		}
		if err := value.Decode(&v); err != nil {
			return "", err
		}
		return v.ExistsAt, nil
	default:
		return "", fmt.Errorf("unsupported value (line %d)", value.Line)
	}
}

func resolve(base, p string) string {
	if p == "" {
		return base
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}
