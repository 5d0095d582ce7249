// Package assets resolves block asset paths, preferring built files from a
// distribution directory when they exist.
package assets

import (
	"io/fs"
	"path"
	"strings"
)

// DefaultDistDir is the directory checked for built asset variants.
const DefaultDistDir = "dist"

// Option customises a Resolver.
type Option func(*Resolver)

// WithDistDir overrides the distribution directory. Empty values are ignored.
func WithDistDir(dir string) Option {
	return func(r *Resolver) {
		trimmed := strings.Trim(strings.TrimSpace(dir), "/")
		if trimmed == "" {
			return
		}
		r.distDir = trimmed
	}
}

// Resolver maps asset paths declared in block headers to the path that
// should be enqueued.
type Resolver struct {
	fsys    fs.FS
	distDir string
}

// NewResolver builds a resolver over the theme filesystem. A nil filesystem
// produces a resolver that returns every path unchanged.
func NewResolver(fsys fs.FS, options ...Option) *Resolver {
	r := &Resolver{
		fsys:    fsys,
		distDir: DefaultDistDir,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Resolve returns `<distDir>/<asset>` when that file exists, otherwise asset
// unchanged. URLs and empty values pass through.
func (r *Resolver) Resolve(asset string) string {
	trimmed := strings.TrimSpace(asset)
	if r == nil || r.fsys == nil || trimmed == "" || isRemote(trimmed) {
		return asset
	}

	clean := strings.TrimPrefix(path.Clean("/"+trimmed), "/")
	if clean == "" || strings.HasPrefix(clean, r.distDir+"/") {
		return asset
	}

	candidate := path.Join(r.distDir, clean)
	info, err := fs.Stat(r.fsys, candidate)
	if err != nil || info.IsDir() {
		return asset
	}
	return candidate
}

// DistDir reports the configured distribution directory.
func (r *Resolver) DistDir() string {
	if r == nil {
		return DefaultDistDir
	}
	return r.distDir
}

func isRemote(asset string) bool {
	return strings.HasPrefix(asset, "http://") ||
		strings.HasPrefix(asset, "https://") ||
		strings.HasPrefix(asset, "//")
}
