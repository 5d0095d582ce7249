package block

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/goliatone/go-blockgen/pkg/header"
)

// RenderFunc renders a block instance. Discovery wires it into every Config
// so hosts can call back into the renderer that matches the registration.
type RenderFunc func(ctx context.Context, req RenderRequest, out ...io.Writer) (string, error)

// AssetResolver maps an asset path declared in a header to the path that
// should be enqueued.
type AssetResolver interface {
	Resolve(asset string) string
}

var (
	// ErrMissingName is returned by Validate when the block has no slug.
	ErrMissingName = errors.New("block: name is required")
	// ErrMissingTitle is returned by Validate when the Title header is empty.
	ErrMissingTitle = errors.New("block: title is required")
)

// Config is the registration object submitted to a block registry.
type Config struct {
	Name           string     `json:"name"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Category       string     `json:"category"`
	Icon           string     `json:"icon"`
	Keywords       []string   `json:"keywords"`
	Mode           string     `json:"mode"`
	Align          string     `json:"align"`
	EnqueueStyle   string     `json:"enqueue_style"`
	EnqueueScript  string     `json:"enqueue_script"`
	EnqueueAssets  string     `json:"enqueue_assets"`
	Example        Example    `json:"example"`
	PostTypes      []string   `json:"post_types,omitempty"`
	Supports       *Supports  `json:"supports,omitempty"`
	RenderCallback RenderFunc `json:"-"`
}

// Example carries the attributes used by editor previews.
type Example struct {
	Attributes map[string]any `json:"attributes"`
}

// DefaultExample renders examples in preview mode.
func DefaultExample() Example {
	return Example{Attributes: map[string]any{"mode": "preview"}}
}

// Validate reports whether the config can be registered.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(c.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

// BuildOption customises FromHeaders.
type BuildOption func(*buildConfig)

type buildConfig struct {
	assets   AssetResolver
	callback RenderFunc
}

// WithAssetResolver routes EnqueueStyle and EnqueueScript through resolver.
func WithAssetResolver(resolver AssetResolver) BuildOption {
	return func(cfg *buildConfig) {
		cfg.assets = resolver
	}
}

// WithRenderCallback sets the render callback stored on the Config.
func WithRenderCallback(fn RenderFunc) BuildOption {
	return func(cfg *buildConfig) {
		cfg.callback = fn
	}
}

// FromHeaders derives a Config from extracted template headers. slug becomes
// the block name. Keywords and post types split on single spaces and supports
// flags are only set when their header is present.
func FromHeaders(slug string, set header.Set, options ...BuildOption) Config {
	cfg := &buildConfig{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	keywords := set.List(header.Keywords)
	if keywords == nil {
		keywords = []string{}
	}

	out := Config{
		Name:           slug,
		Title:          set.Get(header.Title),
		Description:    set.Get(header.Description),
		Category:       set.Get(header.Category),
		Icon:           normalizeIcon(set.Get(header.Icon)),
		Keywords:       keywords,
		Mode:           set.Get(header.Mode),
		Align:          set.Get(header.Align),
		EnqueueStyle:   resolveAsset(cfg.assets, set.Get(header.EnqueueStyle)),
		EnqueueScript:  resolveAsset(cfg.assets, set.Get(header.EnqueueScript)),
		EnqueueAssets:  set.Get(header.EnqueueAssets),
		Example:        DefaultExample(),
		PostTypes:      set.List(header.PostTypes),
		Supports:       supportsFromHeaders(set),
		RenderCallback: cfg.callback,
	}
	return out
}

func resolveAsset(resolver AssetResolver, asset string) string {
	if resolver == nil || asset == "" {
		return asset
	}
	return resolver.Resolve(asset)
}

func normalizeIcon(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "<") {
		return trimmed
	}
	return sanitizeIconMarkup(trimmed)
}
