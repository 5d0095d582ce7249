// Package hooks holds the extension points of the block pipeline: filters
// that produce the ordered template directory list and filters that mutate a
// render context before it reaches the template engine.
package hooks

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/goliatone/go-blockgen/pkg/block"
)

// DefaultDirectory is the template directory used when no filter changes it.
const DefaultDirectory = "views/blocks"

// DirectoryFilter receives the current directory list and returns the next
// one. Order is significant: render lookups walk the final list front to back.
type DirectoryFilter func(dirs []string) []string

// DataFilter mutates a render context before classes are joined and the
// template is rendered. Returning an error aborts the render.
type DataFilter func(ctx context.Context, data *block.RenderContext) error

// Hooks stores registered filters. The zero value is ready to use.
type Hooks struct {
	mu          sync.RWMutex
	directories []DirectoryFilter
	global      []DataFilter
	data        map[string][]DataFilter
}

// New returns an empty hook registry.
func New() *Hooks {
	return &Hooks{}
}

// AddDirectoryFilter appends fn to the directory filter chain.
func (h *Hooks) AddDirectoryFilter(fn DirectoryFilter) {
	if h == nil || fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.directories = append(h.directories, fn)
}

// AppendDirectories is a convenience filter that adds dirs after the current
// list, so they are searched last.
func (h *Hooks) AppendDirectories(dirs ...string) {
	extra := append([]string(nil), dirs...)
	h.AddDirectoryFilter(func(current []string) []string {
		return append(current, extra...)
	})
}

// PrependDirectories adds dirs before the current list, so they win lookups.
func (h *Hooks) PrependDirectories(dirs ...string) {
	extra := append([]string(nil), dirs...)
	h.AddDirectoryFilter(func(current []string) []string {
		return append(append([]string(nil), extra...), current...)
	})
}

// Directories runs the filter chain over defaults and returns the cleaned,
// de-duplicated result. Without defaults DefaultDirectory seeds the chain.
func (h *Hooks) Directories(defaults ...string) []string {
	dirs := append([]string(nil), defaults...)
	if len(dirs) == 0 {
		dirs = []string{DefaultDirectory}
	}

	if h != nil {
		h.mu.RLock()
		filters := append([]DirectoryFilter(nil), h.directories...)
		h.mu.RUnlock()
		for _, fn := range filters {
			dirs = fn(dirs)
		}
	}

	return normalizeDirectories(dirs)
}

// AddDataFilter registers fn for blocks with the given slug.
func (h *Hooks) AddDataFilter(slug string, fn DataFilter) {
	trimmed := strings.TrimSpace(slug)
	if h == nil || fn == nil || trimmed == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.data == nil {
		h.data = make(map[string][]DataFilter)
	}
	h.data[trimmed] = append(h.data[trimmed], fn)
}

// AddGlobalDataFilter registers fn for every block. Global filters run before
// slug specific ones.
func (h *Hooks) AddGlobalDataFilter(fn DataFilter) {
	if h == nil || fn == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.global = append(h.global, fn)
}

// ApplyData runs the global filters and then the filters registered for
// slug, in registration order.
func (h *Hooks) ApplyData(ctx context.Context, slug string, data *block.RenderContext) error {
	if h == nil || data == nil {
		return nil
	}
	h.mu.RLock()
	filters := append([]DataFilter(nil), h.global...)
	filters = append(filters, h.data[slug]...)
	h.mu.RUnlock()

	for _, fn := range filters {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, data); err != nil {
			return fmt.Errorf("hooks: data filter for %q: %w", slug, err)
		}
	}
	return nil
}

func normalizeDirectories(dirs []string) []string {
	out := make([]string, 0, len(dirs))
	seen := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		clean := strings.Trim(strings.TrimSpace(dir), "/")
		if clean == "" {
			continue
		}
		// fs.FS paths must be clean and may not leave the theme root.
		clean = path.Clean(clean)
		if clean == ".." || strings.HasPrefix(clean, "../") {
			continue
		}
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
