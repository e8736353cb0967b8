// Package build models the host bundler as seen by the release plugin: the
// assets a compilation emitted, the stats of a finished build, and the two
// hooks the plugin taps.
package build

import (
	"context"
	"fmt"
	"sync"
)

// Asset is one emitted output. ExistsAt is the realized filesystem path.
type Asset struct {
	Name     string `yaml:"name" json:"name"`
	ExistsAt string `yaml:"existsAt" json:"existsAt"`
}

// Assets is the ordered asset map of a compilation. Order is the order the
// bundler reported outputs in and is preserved through selection.
type Assets []Asset

// Lookup returns the asset with the given output name.
func (a Assets) Lookup(name string) (Asset, bool) {
	for _, asset := range a {
		if asset.Name == name {
			return asset, true
		}
	}
	return Asset{}, false
}

// Names returns the output names in order.
func (a Assets) Names() []string {
	names := make([]string, len(a))
	for i, asset := range a {
		names[i] = asset.Name
	}
	return names
}

// Compilation is the result of one compilation pass.
type Compilation interface {
	Assets() Assets
}

// Stats describes a finished build, which may span several compilations.
type Stats interface {
	Compilations() []Compilation
}

// StaticCompilation is a Compilation backed by a fixed asset list.
type StaticCompilation Assets

// Assets implements Compilation.
func (c StaticCompilation) Assets() Assets {
	return Assets(c)
}

// StaticStats is a Stats backed by a fixed list of compilations.
type StaticStats []Compilation

// Compilations implements Stats.
func (s StaticStats) Compilations() []Compilation {
	return s
}

// NewStats wraps compilations into a Stats value.
func NewStats(compilations ...Compilation) StaticStats {
	return StaticStats(compilations)
}

// AfterEmitFunc runs once per compilation after its assets are on disk.
// A returned error fails the build step.
type AfterEmitFunc func(ctx context.Context, c Compilation) error

// DoneFunc runs once per full build.
type DoneFunc func(ctx context.Context, s Stats) error

// Compiler is the hook surface a plugin taps.
type Compiler interface {
	TapAfterEmit(name string, fn AfterEmitFunc)
	TapDone(name string, fn DoneFunc)
}

type tap[F any] struct {
	name string
	fn   F
}

// Hooks is an in-process Compiler. Taps run sequentially in registration
// order and the first failing tap stops the hook.
type Hooks struct {
	mu        sync.Mutex
	afterEmit []tap[AfterEmitFunc]
	done      []tap[DoneFunc]
}

// NewHooks creates an empty hook set.
func NewHooks() *Hooks {
	return &Hooks{}
}

// TapAfterEmit implements Compiler.
func (h *Hooks) TapAfterEmit(name string, fn AfterEmitFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.afterEmit = append(h.afterEmit, tap[AfterEmitFunc]{name: name, fn: fn})
}

// TapDone implements Compiler.
func (h *Hooks) TapDone(name string, fn DoneFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done = append(h.done, tap[DoneFunc]{name: name, fn: fn})
}

// EmitAfterEmit fires the after-emit hook for one compilation.
func (h *Hooks) EmitAfterEmit(ctx context.Context, c Compilation) error {
	h.mu.Lock()
	taps := append([]tap[AfterEmitFunc](nil), h.afterEmit...)
	h.mu.Unlock()

	for _, t := range taps {
		if err := t.fn(ctx, c); err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
	}
	return nil
}

// EmitDone fires the done hook for a full build.
func (h *Hooks) EmitDone(ctx context.Context, s Stats) error {
	h.mu.Lock()
	taps := append([]tap[DoneFunc](nil), h.done...)
	h.mu.Unlock()

	for _, t := range taps {
		if err := t.fn(ctx, s); err != nil {
			return fmt.Errorf("%s: %w", t.name, err)
		}
	}
	return nil
}
