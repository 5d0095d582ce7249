package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-blockgen/pkg/render/template"
)

var _ template.TemplateRenderer = (*gotemplatepkg.Engine)(nil)

// NewGoTemplate builds a go-template engine from the same options as New.
// Templates are read through a filesystem that drops Twig comments, so block
// headers parse the same way on both engines. WithGoTemplateOptions values are
// applied last and may override the defaults.
func NewGoTemplate(options ...Option) (*gotemplatepkg.Engine, error) {
	cfg := newConfig(options)

	files := cfg.templates
	if files == nil && cfg.baseDir != "" {
		files = os.DirFS(cfg.baseDir)
	}
	if files == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	if err := registerDefaultFilters(); err != nil {
		return nil, err
	}

	opts := []gotemplatepkg.Option{
		gotemplatepkg.WithFS(commentStrippingFS{inner: files}),
		gotemplatepkg.WithExtension(cfg.extension),
	}
	if len(cfg.globalData) > 0 {
		opts = append(opts, gotemplatepkg.WithGlobalData(cfg.globalData))
	}
	opts = append(opts, cfg.goTemplateOptions...)

	engine, err := gotemplatepkg.NewRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: build go-template engine: %w", err)
	}
	engine.RegisterPreHook(func(hc *gotemplatepkg.HookContext) error {
		if hc.Template != "" {
			hc.Template = string(stripComments([]byte(hc.Template)))
		}
		return nil
	})
	return engine, nil
}

// commentStrippingFS serves regular files with Twig comments removed.
type commentStrippingFS struct {
	inner fs.FS
}

func (c commentStrippingFS) Open(name string) (fs.File, error) {
	file, err := c.inner.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		return file, nil
	}

	src, err := io.ReadAll(file)
	closeErr := file.Close()
	if err != nil {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	if closeErr != nil {
		return nil, closeErr
	}

	stripped := stripComments(src)
	return &strippedFile{
		Reader: bytes.NewReader(stripped),
		info:   strippedInfo{FileInfo: info, size: int64(len(stripped))},
	}, nil
}

type strippedFile struct {
	*bytes.Reader
	info fs.FileInfo
}

func (f *strippedFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *strippedFile) Close() error               { return nil }

type strippedInfo struct {
	fs.FileInfo
	size int64
}

func (i strippedInfo) Size() int64 { return i.size }
