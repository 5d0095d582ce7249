package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-blockgen/pkg/render/template"
)

// DefaultExtension is appended to template names that carry no extension.
const DefaultExtension = ".twig"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir           string
	templates         fs.FS
	extension         string
	globalData        map[string]any
	goTemplateOptions []gotemplatepkg.Option
}

func newConfig(options []Option) *config {
	cfg := &config{
		extension: DefaultExtension,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return cfg
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS, typically the theme root.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides DefaultExtension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		cfg.extension = trimmed
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// WithGoTemplateOptions appends options applied last by NewGoTemplate, e.g.
// template funcs. New ignores them.
func WithGoTemplateOptions(opts ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.goTemplateOptions = append(cfg.goTemplateOptions, opts...)
	}
}

// Engine is a pongo2 template set satisfying template.TemplateRenderer.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	tplExt      string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. Either a base dir or an fs.FS is required.
func New(options ...Option) (*Engine, error) {
	cfg := newConfig(options)

	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.templates != nil {
		loaders = append(loaders, commentStrippingLoader{inner: pongo2.NewFSLoader(cfg.templates)})
	}
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, commentStrippingLoader{inner: loader})
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("blockgen", loaders...),
		templates:   make(map[string]*pongo2.Template),
		tplExt:      cfg.extension,
	}
	if err := registerDefaultFilters(); err != nil {
		return nil, err
	}

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("gotemplate: apply global data: %w", err)
	}
	return engine, nil
}

// Extension reports the extension appended to bare template names.
func (e *Engine) Extension() string {
	return e.tplExt
}

// Render treats name as inline template content when it contains template
// delimiters and as a template path otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if isTemplateContent(name) {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate loads (and caches) the named template and executes it.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	templatePath := name
	if !strings.HasSuffix(templatePath, e.tplExt) {
		templatePath += e.tplExt
	}

	tmpl, err := e.getTemplate(templatePath)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, templatePath, data, out)
}

// RenderString parses and executes inline template content.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	tmpl, err := e.templateSet.FromString(string(stripComments([]byte(templateContent))))
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	return e.execute(tmpl, "string", data, out)
}

// RegisterFilter registers a filter on the global pongo2 filter table.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext merges data into the template set globals.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

func (e *Engine) execute(tmpl *pongo2.Template, label string, data any, out []io.Writer) (string, error) {
	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}

	var buf bytes.Buffer

	e.mu.RLock()
	err = tmpl.ExecuteWriter(viewContext, &buf)
	e.mu.RUnlock()

	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template %q: %w", label, err)
	}

	rendered := buf.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", err
		}
	}
	return rendered, nil
}

func (e *Engine) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}

	e.templates[path] = tmpl
	return tmpl, nil
}

func isTemplateContent(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "{%") || strings.Contains(s, "{#")
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

// convertToContext normalises structs and typed maps into plain maps through
// JSON so templates see the json tag names.
func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return convertMapToContext(map[string]any(v))
	case map[string]any:
		return convertMapToContext(v)
	default:
		raw, err := jsonRoundTrip(v)
		if err != nil {
			return nil, err
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("gotemplate: context must be an object, got %T", data)
		}
		return convertMapToContext(m)
	}
}

func convertMapToContext(in map[string]any) (pongo2.Context, error) {
	out := make(pongo2.Context, len(in))
	for key, value := range in {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func convertValue(value any) (any, error) {
	if value == nil || isCallable(value) {
		return value, nil
	}

	switch v := value.(type) {
	case string, bool, int, int64, float64:
		return v, nil
	case pongo2.Context:
		return convertMap(map[string]any(v))
	case map[string]any:
		return convertMap(v)
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			converted, err := convertValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	default:
		return jsonRoundTrip(v)
	}
}

func convertMap(in map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for key, value := range in {
		converted, err := convertValue(value)
		if err != nil {
			return nil, err
		}
		out[key] = converted
	}
	return out, nil
}

func jsonRoundTrip(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var (
	defaultFiltersOnce sync.Once
	defaultFiltersErr  error
)

// registerDefaultFilters installs the shared filters on pongo2's global table
// once per process. Filters registered earlier under the same name are kept.
func registerDefaultFilters() error {
	defaultFiltersOnce.Do(func() {
		for name, fn := range map[string]pongo2.FilterFunction{
			"trim":        filterTrim,
			"json_encode": filterJSONEncode,
		} {
			if pongo2.FilterExists(name) {
				continue
			}
			if err := pongo2.RegisterFilter(name, fn); err != nil {
				defaultFiltersErr = errors.Join(defaultFiltersErr, fmt.Errorf("gotemplate: register filter %q: %w", name, err))
			}
		}
	})
	return defaultFiltersErr
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterJSONEncode mirrors Twig's json_encode so templates can hand block data
// to scripts.
func filterJSONEncode(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	payload, err := json.Marshal(in.Interface())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:json_encode", OrigError: err}
	}
	return pongo2.AsSafeValue(string(payload)), nil
}
