package render

import (
	"io/fs"
	"log/slog"

	"github.com/goliatone/go-blockgen/pkg/hooks"
	"github.com/goliatone/go-blockgen/pkg/render/template"
)

// Option customises the renderer configuration.
type Option func(*Renderer)

// WithFS sets the theme filesystem used to locate templates. It also backs
// the default engine when WithEngine is not supplied.
func WithFS(fsys fs.FS) Option {
	return func(r *Renderer) {
		r.fsys = fsys
	}
}

// WithEngine injects the template engine.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(r *Renderer) {
		r.engine = engine
	}
}

// WithDirectories sets the default template directories, in lookup order.
// Directory filters registered on the hooks run on top of them.
func WithDirectories(dirs ...string) Option {
	return func(r *Renderer) {
		r.directories = append([]string(nil), dirs...)
	}
}

// WithExtension sets the template extension (".twig" by default).
func WithExtension(ext string) Option {
	return func(r *Renderer) {
		if ext != "" {
			r.extension = ext
		}
	}
}

// WithNamespace sets the prefix stripped from host block names.
func WithNamespace(namespace string) Option {
	return func(r *Renderer) {
		r.namespace = namespace
	}
}

// WithHooks supplies directory and data filters.
func WithHooks(h *hooks.Hooks) Option {
	return func(r *Renderer) {
		r.hooks = h
	}
}

// WithLookup supplies registered configs merged into every render context.
func WithLookup(lookup Lookup) Option {
	return func(r *Renderer) {
		r.lookup = lookup
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDebug enables render context dumps and missing template warnings.
func WithDebug(debug bool) Option {
	return func(r *Renderer) {
		r.debug = debug
	}
}
