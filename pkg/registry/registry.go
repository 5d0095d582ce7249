// Package registry provides an in-memory block registry. It stands in for the
// host registration service so discovered blocks can be listed, looked up and
// rendered by the CLI, the preview server and tests.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-blockgen/pkg/block"
)

var (
	// ErrDuplicate is returned when a block name is registered twice.
	ErrDuplicate = errors.New("registry: block already registered")
	// ErrNotFound is returned by Get for unknown block names.
	ErrNotFound = errors.New("registry: block not found")
)

// Registrar accepts block registrations. Hosts with their own registration
// API implement it to receive discovered blocks.
type Registrar interface {
	Register(ctx context.Context, cfg block.Config) error
}

// RegistrarFunc adapts a function to the Registrar interface.
type RegistrarFunc func(ctx context.Context, cfg block.Config) error

// Register calls f.
func (f RegistrarFunc) Register(ctx context.Context, cfg block.Config) error {
	return f(ctx, cfg)
}

// Registry stores block configs by name, guarding against duplicates.
type Registry struct {
	mu     sync.RWMutex
	blocks map[string]block.Config
}

var _ Registrar = (*Registry)(nil)

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		blocks: make(map[string]block.Config),
	}
}

// Register validates cfg and stores it under cfg.Name.
func (r *Registry) Register(ctx context.Context, cfg block.Config) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blocks[cfg.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicate, cfg.Name)
	}
	r.blocks[cfg.Name] = cfg
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(cfg block.Config) {
	if err := r.Register(context.Background(), cfg); err != nil {
		panic(err)
	}
}

// Get retrieves a block config by name.
func (r *Registry) Get(name string) (block.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cfg, ok := r.blocks[name]
	if !ok {
		return block.Config{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return cfg, nil
}

// MustGet panics if the block is missing.
func (r *Registry) MustGet(name string) block.Config {
	cfg, err := r.Get(name)
	if err != nil {
		panic(err)
	}
	return cfg
}

// List returns the sorted block names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.blocks))
	for name := range r.blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Configs returns every registered config sorted by name.
func (r *Registry) Configs() []block.Config {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]block.Config, 0, len(names))
	for _, name := range names {
		if cfg, ok := r.blocks[name]; ok {
			out = append(out, cfg)
		}
	}
	return out
}

// Has reports whether a block is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.blocks[name]
	return ok
}

// Len reports the number of registered blocks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blocks)
}
