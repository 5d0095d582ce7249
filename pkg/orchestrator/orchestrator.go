package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/goliatone/go-blockgen/pkg/assets"
	"github.com/goliatone/go-blockgen/pkg/block"
	"github.com/goliatone/go-blockgen/pkg/config"
	"github.com/goliatone/go-blockgen/pkg/discovery"
	"github.com/goliatone/go-blockgen/pkg/hooks"
	"github.com/goliatone/go-blockgen/pkg/registry"
	"github.com/goliatone/go-blockgen/pkg/render"
	"github.com/goliatone/go-blockgen/pkg/render/template"
	"github.com/goliatone/go-blockgen/pkg/render/template/gotemplate"
)

// ErrUnknownEngine reports a Config.Engine value with no matching engine.
var ErrUnknownEngine = errors.New("orchestrator: unknown template engine")

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithConfig replaces the default configuration. Empty fields keep their
// defaults.
func WithConfig(cfg config.Config) Option {
	return func(o *Orchestrator) {
		o.cfg = cfg
	}
}

// WithFS supplies the theme filesystem. Without it the orchestrator reads
// from config.Root on disk.
func WithFS(fsys fs.FS) Option {
	return func(o *Orchestrator) {
		o.fsys = fsys
	}
}

// WithLogger sets the structured logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithHooks injects a pre-populated hook registry.
func WithHooks(h *hooks.Hooks) Option {
	return func(o *Orchestrator) {
		o.hooks = h
	}
}

// WithRegistry injects the block registry used for lookups at render time.
func WithRegistry(reg *registry.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = reg
	}
}

// WithRegistrar forwards every registration to an external host registrar
// after it has been stored in the local registry.
func WithRegistrar(r registry.Registrar) Option {
	return func(o *Orchestrator) {
		o.external = r
	}
}

// WithEngine injects the template engine used by the renderer. It takes
// precedence over Config.Engine.
func WithEngine(engine template.TemplateRenderer) Option {
	return func(o *Orchestrator) {
		o.engine = engine
	}
}

// Orchestrator owns the block pipeline for one theme.
type Orchestrator struct {
	cfg      config.Config
	fsys     fs.FS
	logger   *slog.Logger
	hooks    *hooks.Hooks
	registry *registry.Registry
	external registry.Registrar
	engine   template.TemplateRenderer

	renderer      *render.Renderer
	discoverer    *discovery.Discoverer
	initialiseErr error
}

// New constructs an Orchestrator. Construction errors are reported by
// Discover and Render, and by Err.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg: config.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	o.cfg = o.cfg.WithDefaults()
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.hooks == nil {
		o.hooks = hooks.New()
	}
	if o.registry == nil {
		o.registry = registry.New()
	}
	if o.fsys == nil {
		o.fsys = os.DirFS(o.cfg.Root)
	}
	if o.engine == nil {
		engine, err := newEngine(o.cfg, o.fsys)
		if err != nil {
			o.initialiseErr = err
			return
		}
		o.engine = engine
	}

	renderer, err := render.New(
		render.WithFS(o.fsys),
		render.WithEngine(o.engine),
		render.WithDirectories(o.cfg.Directories...),
		render.WithExtension(o.cfg.Extension),
		render.WithNamespace(o.cfg.Namespace),
		render.WithHooks(o.hooks),
		render.WithLookup(o.registry),
		render.WithLogger(o.logger),
		render.WithDebug(o.cfg.Debug),
	)
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: renderer: %w", err)
		return
	}
	o.renderer = renderer

	discoverer, err := discovery.New(
		discovery.WithFS(o.fsys),
		discovery.WithDirectories(o.cfg.Directories...),
		discovery.WithExtension(o.cfg.Extension),
		discovery.WithHooks(o.hooks),
		discovery.WithRegistrar(registry.RegistrarFunc(o.register)),
		discovery.WithAssetResolver(assets.NewResolver(o.fsys, assets.WithDistDir(o.cfg.DistDir))),
		discovery.WithRenderCallback(renderer.Callback()),
		discovery.WithLogger(o.logger),
		discovery.WithDebug(o.cfg.Debug),
	)
	if err != nil {
		o.initialiseErr = fmt.Errorf("orchestrator: discovery: %w", err)
		return
	}
	o.discoverer = discoverer
}

func newEngine(cfg config.Config, fsys fs.FS) (template.TemplateRenderer, error) {
	options := []gotemplate.Option{
		gotemplate.WithFS(fsys),
		gotemplate.WithExtension(cfg.Extension),
	}
	switch cfg.Engine {
	case config.EnginePongo2:
		engine, err := gotemplate.New(options...)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: engine: %w", err)
		}
		return engine, nil
	case config.EngineGoTemplate:
		engine, err := gotemplate.NewGoTemplate(options...)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: engine: %w", err)
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}
}

func (o *Orchestrator) register(ctx context.Context, cfg block.Config) error {
	if err := o.registry.Register(ctx, cfg); err != nil {
		return err
	}
	if o.external == nil {
		return nil
	}
	return o.external.Register(ctx, cfg)
}

// Err reports construction failures.
func (o *Orchestrator) Err() error {
	return o.initialiseErr
}

// Discover registers every titled block template found in the configured
// directories.
func (o *Orchestrator) Discover(ctx context.Context) (discovery.Result, error) {
	if ctx == nil {
		return discovery.Result{}, errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return discovery.Result{}, err
	}
	result, err := o.discoverer.Discover(ctx)
	if err != nil {
		return result, err
	}
	o.logger.Info("blocks discovered",
		"registered", len(result.Registered),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// Render renders a block instance.
func (o *Orchestrator) Render(ctx context.Context, req block.RenderRequest, out ...io.Writer) (string, error) {
	if err := o.initialiseErr; err != nil {
		return "", err
	}
	return o.renderer.Render(ctx, req, out...)
}

// Config returns the effective configuration.
func (o *Orchestrator) Config() config.Config {
	return o.cfg
}

// Registry returns the local block registry.
func (o *Orchestrator) Registry() *registry.Registry {
	return o.registry
}

// Hooks returns the hook registry so callers can add filters.
func (o *Orchestrator) Hooks() *hooks.Hooks {
	return o.hooks
}

// Renderer returns the configured renderer, nil when construction failed.
func (o *Orchestrator) Renderer() *render.Renderer {
	return o.renderer
}
