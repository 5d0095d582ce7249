// Package render implements the block render callback: it turns a host
// render request into a render context, lets data filters adjust it and hands
// it to the template engine using the first template found across the
// configured directories.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/goliatone/go-blockgen/pkg/block"
	"github.com/goliatone/go-blockgen/pkg/hooks"
	"github.com/goliatone/go-blockgen/pkg/render/template"
	"github.com/goliatone/go-blockgen/pkg/render/template/gotemplate"
)

// ErrNoFilesystem is returned by New when no theme filesystem is configured.
var ErrNoFilesystem = errors.New("render: theme filesystem is required")

// Lookup resolves registered block configs by slug.
type Lookup interface {
	Get(name string) (block.Config, error)
}

// Renderer renders block instances through a TemplateRenderer.
type Renderer struct {
	fsys        fs.FS
	engine      template.TemplateRenderer
	directories []string
	extension   string
	namespace   string
	hooks       *hooks.Hooks
	lookup      Lookup
	logger      *slog.Logger
	debug       bool
}

// New constructs a Renderer. Without WithEngine a pongo2 engine is built over
// the theme filesystem.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		extension: gotemplate.DefaultExtension,
		namespace: block.DefaultNamespace,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.fsys == nil {
		return nil, ErrNoFilesystem
	}
	if r.engine == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(r.fsys), gotemplate.WithExtension(r.extension))
		if err != nil {
			return nil, fmt.Errorf("render: build engine: %w", err)
		}
		r.engine = engine
	}
	return r, nil
}

// Directories returns the template directories in lookup order.
func (r *Renderer) Directories() []string {
	return r.hooks.Directories(r.directories...)
}

// Locate returns the first existing `<dir>/<slug><ext>` across Directories.
// The search order is the directory order; later matches are never used.
func (r *Renderer) Locate(slug string) (string, bool) {
	if !validSlug(slug) {
		return "", false
	}
	for _, dir := range r.Directories() {
		candidate := path.Join(dir, slug+r.extension)
		info, err := fs.Stat(r.fsys, candidate)
		if err != nil || info.IsDir() {
			continue
		}
		return candidate, true
	}
	return "", false
}

// Context builds the render context for req and runs the data filters.
func (r *Renderer) Context(ctx context.Context, req block.RenderRequest) (block.RenderContext, error) {
	slug := block.SlugFromName(req.Block.Name, r.namespace)

	var cfg block.Config
	if r.lookup != nil {
		if registered, err := r.lookup.Get(slug); err == nil {
			cfg = registered
		}
	}

	data := block.NewRenderContext(cfg, slug, req)
	if err := r.hooks.ApplyData(ctx, slug, &data); err != nil {
		return block.RenderContext{}, fmt.Errorf("render: %w", err)
	}
	return data, nil
}

// Render renders req into the returned string and every writer in out. When
// no template exists for the block the output is empty and no error is
// returned.
func (r *Renderer) Render(ctx context.Context, req block.RenderRequest, out ...io.Writer) (string, error) {
	if ctx == nil {
		return "", errors.New("render: context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := r.Context(ctx, req)
	if err != nil {
		return "", err
	}

	view, ok := r.Locate(data.Slug)
	if !ok {
		if r.debug {
			r.logger.Warn("block template not found",
				"slug", data.Slug,
				"directories", r.Directories(),
			)
		}
		return "", nil
	}

	payload := data.TemplateData()
	if r.debug {
		r.logger.Debug("rendering block", "slug", data.Slug, "view", view, "block", payload)
	}

	rendered, err := r.engine.RenderTemplate(view, map[string]any{"block": payload}, out...)
	if err != nil {
		return "", fmt.Errorf("render: block %q: %w", data.Slug, err)
	}
	return rendered, nil
}

// Callback exposes Render as the callback stored on registered configs.
func (r *Renderer) Callback() block.RenderFunc {
	return r.Render
}

func validSlug(slug string) bool {
	if slug == "" || slug == "." || slug == ".." {
		return false
	}
	return !strings.ContainsAny(slug, `/\`)
}
