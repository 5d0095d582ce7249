// Package blockgen discovers block templates, registers a block per template
// and renders them. The root package re-exports the common entry points; the
// pipeline lives under pkg/.
package blockgen

import (
	"context"
	"io"

	"github.com/goliatone/go-blockgen/pkg/block"
	"github.com/goliatone/go-blockgen/pkg/discovery"
	"github.com/goliatone/go-blockgen/pkg/header"
	"github.com/goliatone/go-blockgen/pkg/orchestrator"
)

// BlockConfig is the registration object produced for each template.
type BlockConfig = block.Config

// RenderRequest is the input of a block render callback.
type RenderRequest = block.RenderRequest

// RenderContext is the data exposed to templates as `block`.
type RenderContext = block.RenderContext

// Headers is the set of header values extracted from a template.
type Headers = header.Set

// DiscoveryResult lists registered and skipped templates.
type DiscoveryResult = discovery.Result

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// ExtractHeaders reads the header comment of template content.
func ExtractHeaders(content []byte) Headers {
	return header.Extract(content)
}

// Discover builds an orchestrator and registers every block template it finds.
// The orchestrator is returned so callers can render or inspect the registry.
func Discover(ctx context.Context, options ...orchestrator.Option) (*orchestrator.Orchestrator, DiscoveryResult, error) {
	gen := orchestrator.New(options...)
	result, err := gen.Discover(ctx)
	if err != nil {
		return nil, result, err
	}
	return gen, result, nil
}

// Render discovers blocks and renders a single request. Long-lived callers
// should keep the orchestrator from Discover instead.
func Render(ctx context.Context, req RenderRequest, out io.Writer, options ...orchestrator.Option) (string, error) {
	gen, _, err := Discover(ctx, options...)
	if err != nil {
		return "", err
	}
	if out == nil {
		return gen.Render(ctx, req)
	}
	return gen.Render(ctx, req, out)
}

// BlockInstance returns the host instance for slug under the default
// namespace.
func BlockInstance(slug string) block.Instance {
	return block.Instance{Name: block.DefaultNamespace + "/" + slug}
}
