// Package scaffold creates new block templates from interactive answers.
package scaffold

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/goliatone/go-blockgen/pkg/header"
)

var (
	// ErrExists is returned when the target template file already exists.
	ErrExists = errors.New("scaffold: template already exists")
	// ErrEmptySlug is returned when a title yields no usable slug.
	ErrEmptySlug = errors.New("scaffold: title does not produce a slug")
)

const (
	DefaultDirectory = "views/blocks"
	DefaultExtension = ".twig"
)

// Categories offered by the category prompt.
var Categories = []string{"text", "media", "design", "widgets", "theme", "embed"}

// Modes offered by the mode prompt.
var Modes = []string{"preview", "edit", "auto"}

// Alignments offered by the align prompts. The empty choice is rendered as "none".
var Alignments = []string{"none", "left", "center", "right", "wide", "full"}

// supportFlags maps multi-select labels to the header they enable.
var supportFlags = []struct {
	label string
	key   header.Key
}{
	{"anchor", header.SupportsAnchor},
	{"mode", header.SupportsMode},
	{"inner blocks", header.SupportsJSX},
	{"align text", header.SupportsAlignText},
	{"align content", header.SupportsAlignContent},
	{"multiple", header.SupportsMultiple},
}

//go:embed templates/*.twig
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded starter templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

func starterBody() string {
	data, err := fs.ReadFile(embeddedTemplates, "templates/starter.twig")
	if err != nil {
		return ""
	}
	return string(data)
}

// Option configures a Scaffolder.
type Option func(*Scaffolder)

// WithRoot sets the theme root on disk.
func WithRoot(root string) Option {
	return func(s *Scaffolder) {
		if root = strings.TrimSpace(root); root != "" {
			s.root = root
		}
	}
}

// WithDirectory sets the template directory, relative to the root.
func WithDirectory(dir string) Option {
	return func(s *Scaffolder) {
		if dir = strings.Trim(strings.TrimSpace(dir), "/"); dir != "" {
			s.directory = dir
		}
	}
}

// WithExtension overrides DefaultExtension.
func WithExtension(ext string) Option {
	return func(s *Scaffolder) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.extension = ext
	}
}

// WithDriver swaps the prompt driver, mainly for tests.
func WithDriver(driver PromptDriver) Option {
	return func(s *Scaffolder) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithBody replaces the starter template body.
func WithBody(body string) Option {
	return func(s *Scaffolder) {
		s.body = body
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scaffolder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scaffolder asks for block metadata and writes the template file.
type Scaffolder struct {
	root      string
	directory string
	extension string
	body      string
	driver    PromptDriver
	logger    *slog.Logger
}

// New constructs a Scaffolder that prompts on the terminal by default.
func New(options ...Option) *Scaffolder {
	s := &Scaffolder{
		root:      ".",
		directory: DefaultDirectory,
		extension: DefaultExtension,
		body:      starterBody(),
		driver:    SurveyDriver{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Result describes a created template.
type Result struct {
	Slug    string
	Path    string
	Headers header.Set
}

// Run prompts for headers and writes the template.
func (s *Scaffolder) Run(ctx context.Context) (Result, error) {
	set, err := s.Prompt(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.Write(set)
}

// Prompt collects header values through the driver.
func (s *Scaffolder) Prompt(ctx context.Context) (header.Set, error) {
	set := header.NewSet()

	title, err := s.driver.Input(ctx, InputConfig{
		Message: "Block title",
		Validator: func(v string) error {
			if Slugify(v) == "" {
				return ErrEmptySlug
			}
			return header.ValidateValue(v)
		},
	})
	if err != nil {
		return nil, err
	}
	set[header.Title] = strings.TrimSpace(title)

	if set[header.Description], err = s.input(ctx, "Description", ""); err != nil {
		return nil, err
	}
	if set[header.Category], err = s.driver.Select(ctx, SelectConfig{
		Message: "Category",
		Options: Categories,
		Default: Categories[0],
	}); err != nil {
		return nil, err
	}
	if set[header.Icon], err = s.input(ctx, "Icon (dashicon slug or inline SVG)", ""); err != nil {
		return nil, err
	}
	if set[header.Keywords], err = s.input(ctx, "Keywords (space separated)", ""); err != nil {
		return nil, err
	}
	if set[header.Mode], err = s.driver.Select(ctx, SelectConfig{
		Message: "Mode",
		Options: Modes,
		Default: Modes[0],
	}); err != nil {
		return nil, err
	}

	align, err := s.driver.Select(ctx, SelectConfig{
		Message: "Default alignment",
		Options: Alignments,
		Default: Alignments[0],
	})
	if err != nil {
		return nil, err
	}
	if align != "none" {
		set[header.Align] = align
	}

	aligns, err := s.driver.MultiSelect(ctx, SelectConfig{
		Message: "Supported alignments (none selected keeps the editor default)",
		Options: Alignments[1:],
	})
	if err != nil {
		return nil, err
	}
	set[header.SupportsAlign] = strings.Join(aligns, " ")

	labels := make([]string, len(supportFlags))
	for i, flag := range supportFlags {
		labels[i] = flag.label
	}
	chosen, err := s.driver.MultiSelect(ctx, SelectConfig{
		Message: "Supports",
		Options: labels,
	})
	if err != nil {
		return nil, err
	}
	for _, label := range chosen {
		for _, flag := range supportFlags {
			if flag.label == label {
				set[flag.key] = "true"
			}
		}
	}
	return set, nil
}

func (s *Scaffolder) input(ctx context.Context, message, def string) (string, error) {
	value, err := s.driver.Input(ctx, InputConfig{
		Message:   message,
		Default:   def,
		Validator: header.ValidateValue,
	})
	return strings.TrimSpace(value), err
}

// Write renders set into a new template file named after the title slug.
// Existing files are never overwritten.
func (s *Scaffolder) Write(set header.Set) (Result, error) {
	slug := Slugify(set.Get(header.Title))
	if slug == "" {
		return Result{}, ErrEmptySlug
	}

	content, err := Template(set, s.body)
	if err != nil {
		return Result{}, fmt.Errorf("scaffold: %w", err)
	}

	dir := filepath.Join(s.root, filepath.FromSlash(s.directory))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("scaffold: create %s: %w", dir, err)
	}

	path := filepath.Join(dir, slug+s.extension)
	err = writeExclusive(path, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrExists, path)
		}
		return Result{}, fmt.Errorf("scaffold: write %s: %w", path, err)
	}

	s.logger.Info("block template created", "slug", slug, "path", path)
	return Result{Slug: slug, Path: path, Headers: set}, nil
}

// writeExclusive creates path, failing if it exists, and fills it through
// write. A failed write or close removes the file so a retry can succeed.
func writeExclusive(path string, write func(io.Writer) error) (err error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return write(file)
}

// Template joins the header comment and body.
func Template(set header.Set, body string) (string, error) {
	comment, err := header.Format(set)
	if err != nil {
		return "", err
	}
	return comment + body, nil
}

// Slugify lowercases title and collapses every run of non alphanumeric
// characters into a single dash.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
