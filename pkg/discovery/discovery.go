// Package discovery walks the template directories of a theme, extracts the
// header comment of every block template and registers a block config for
// each template that declares a title.
package discovery

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/goliatone/go-blockgen/pkg/block"
	"github.com/goliatone/go-blockgen/pkg/header"
	"github.com/goliatone/go-blockgen/pkg/hooks"
	"github.com/goliatone/go-blockgen/pkg/registry"
)

// Skip reasons reported in Result.
const (
	ReasonMissingTitle  = "missing title"
	ReasonUnreadable    = "unreadable template"
	ReasonNotRegistered = "registration failed"
)

// ErrNoRegistrar is returned by New when no registrar is configured.
var ErrNoRegistrar = errors.New("discovery: registrar is required")

// Skip records a template that was found but not registered.
type Skip struct {
	Slug   string
	Path   string
	Reason string
	Err    error
}

// Result summarises one discovery pass.
type Result struct {
	Registered []string
	Skipped    []Skip
}

// Option customises a Discoverer.
type Option func(*Discoverer)

// WithFS sets the theme filesystem.
func WithFS(fsys fs.FS) Option {
	return func(d *Discoverer) {
		d.fsys = fsys
	}
}

// WithDirectories sets the default template directories.
func WithDirectories(dirs ...string) Option {
	return func(d *Discoverer) {
		d.directories = append([]string(nil), dirs...)
	}
}

// WithExtension sets the template extension.
func WithExtension(ext string) Option {
	return func(d *Discoverer) {
		if ext != "" {
			d.extension = ext
		}
	}
}

// WithHooks supplies directory filters.
func WithHooks(h *hooks.Hooks) Option {
	return func(d *Discoverer) {
		d.hooks = h
	}
}

// WithRegistrar sets the registration target.
func WithRegistrar(r registry.Registrar) Option {
	return func(d *Discoverer) {
		d.registrar = r
	}
}

// WithAssetResolver routes enqueued asset paths through resolver.
func WithAssetResolver(resolver block.AssetResolver) Option {
	return func(d *Discoverer) {
		d.assets = resolver
	}
}

// WithRenderCallback sets the callback stored on every registered config.
func WithRenderCallback(fn block.RenderFunc) Option {
	return func(d *Discoverer) {
		d.callback = fn
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Discoverer) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDebug enables warnings for templates missing a title or category.
func WithDebug(debug bool) Option {
	return func(d *Discoverer) {
		d.debug = debug
	}
}

// Discoverer registers blocks found in template directories.
type Discoverer struct {
	fsys        fs.FS
	directories []string
	extension   string
	hooks       *hooks.Hooks
	registrar   registry.Registrar
	assets      block.AssetResolver
	callback    block.RenderFunc
	logger      *slog.Logger
	debug       bool
}

// New constructs a Discoverer.
func New(options ...Option) (*Discoverer, error) {
	d := &Discoverer{
		extension: ".twig",
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(d)
	}
	if d.fsys == nil {
		return nil, errors.New("discovery: theme filesystem is required")
	}
	if d.registrar == nil {
		return nil, ErrNoRegistrar
	}
	return d, nil
}

// Directories returns the template directories in the order they are walked.
func (d *Discoverer) Directories() []string {
	return d.hooks.Directories(d.directories...)
}

// Discover walks every template directory and registers each titled block.
// Problems with individual templates are recorded in the Result and never
// stop the pass; only context cancellation is returned as an error.
func (d *Discoverer) Discover(ctx context.Context) (Result, error) {
	var result Result
	if ctx == nil {
		return result, errors.New("discovery: context is required")
	}

	for _, dir := range d.Directories() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entries, err := fs.ReadDir(d.fsys, dir)
		if err != nil {
			d.logger.Debug("template directory unavailable", "directory", dir, "error", err)
			continue
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if entry.IsDir() {
				continue
			}
			slug, ok := d.slug(entry.Name())
			if !ok {
				continue
			}
			d.discoverTemplate(ctx, dir, slug, &result)
		}
	}

	return result, nil
}

func (d *Discoverer) discoverTemplate(ctx context.Context, dir, slug string, result *Result) {
	file := path.Join(dir, slug+d.extension)
	info, err := fs.Stat(d.fsys, file)
	if err != nil || !info.Mode().IsRegular() {
		return
	}

	set, err := header.ExtractFile(d.fsys, file)
	if err != nil {
		d.logger.Debug("template unreadable", "file", file, "error", err)
		result.Skipped = append(result.Skipped, Skip{Slug: slug, Path: file, Reason: ReasonUnreadable, Err: err})
		return
	}

	if !set.Has(header.Title) {
		d.warn("This block needs a title", file)
	}
	if !set.Has(header.Category) {
		d.warn("This block needs a category", file)
	}
	if !set.Has(header.Title) {
		result.Skipped = append(result.Skipped, Skip{Slug: slug, Path: file, Reason: ReasonMissingTitle})
		return
	}

	cfg := block.FromHeaders(slug, set,
		block.WithAssetResolver(d.assets),
		block.WithRenderCallback(d.callback),
	)
	if err := d.registrar.Register(ctx, cfg); err != nil {
		d.warn("block registration failed", file, "block", slug, "error", err)
		result.Skipped = append(result.Skipped, Skip{Slug: slug, Path: file, Reason: ReasonNotRegistered, Err: err})
		return
	}

	d.logger.Debug("block registered", "block", slug, "file", file)
	result.Registered = append(result.Registered, slug)
}

// warn emits diagnostics only in debug mode, matching the host debug flag.
func (d *Discoverer) warn(msg, file string, attrs ...any) {
	if !d.debug {
		return
	}
	d.logger.Warn(msg, append([]any{"file", file}, attrs...)...)
}

func (d *Discoverer) slug(filename string) (string, bool) {
	if !strings.HasSuffix(filename, d.extension) {
		return "", false
	}
	slug := strings.TrimSuffix(filename, d.extension)
	if slug == "" {
		return "", false
	}
	return slug, true
}
