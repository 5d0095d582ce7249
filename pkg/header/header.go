package header

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
)

// Key identifies a recognised header inside a block template.
type Key string

// Recognised header keys. The comment names differ from the keys; see Name.
const (
	Title                Key = "title"
	Description          Key = "description"
	Category             Key = "category"
	Icon                 Key = "icon"
	Keywords             Key = "keywords"
	Mode                 Key = "mode"
	Align                Key = "align"
	PostTypes            Key = "post_types"
	SupportsAlign        Key = "supports_align"
	SupportsAnchor       Key = "supports_anchor"
	SupportsMode         Key = "supports_mode"
	SupportsJSX          Key = "supports_jsx"
	SupportsAlignText    Key = "supports_align_text"
	SupportsAlignContent Key = "supports_align_content"
	SupportsMultiple     Key = "supports_multiple"
	EnqueueStyle         Key = "enqueue_style"
	EnqueueScript        Key = "enqueue_script"
	EnqueueAssets        Key = "enqueue_assets"
)

type definition struct {
	key  Key
	name string
}

// definitions keeps the canonical ordering used by Keys and Format.
var definitions = []definition{
	{Title, "Title"},
	{Description, "Description"},
	{Category, "Category"},
	{Icon, "Icon"},
	{Keywords, "Keywords"},
	{Mode, "Mode"},
	{Align, "Align"},
	{PostTypes, "PostTypes"},
	{SupportsAlign, "SupportsAlign"},
	{SupportsAnchor, "SupportsAnchor"},
	{SupportsMode, "SupportsMode"},
	{SupportsJSX, "SupportsInnerBlocks"},
	{SupportsAlignText, "SupportsAlignText"},
	{SupportsAlignContent, "SupportsAlignContent"},
	{SupportsMultiple, "SupportsMultiple"},
	{EnqueueStyle, "EnqueueStyle"},
	{EnqueueScript, "EnqueueScript"},
	{EnqueueAssets, "EnqueueAssets"},
}

var byName = func() map[string]Key {
	out := make(map[string]Key, len(definitions))
	for _, def := range definitions {
		out[def.name] = def.key
	}
	return out
}()

var commentPattern = regexp.MustCompile(`(?s)\{#\s*(.*?)\s*#\}`)

// Keys returns every recognised key in canonical order.
func Keys() []Key {
	out := make([]Key, 0, len(definitions))
	for _, def := range definitions {
		out = append(out, def.key)
	}
	return out
}

// Name returns the comment header name for key, e.g. "SupportsInnerBlocks" for
// SupportsJSX. Unknown keys return an empty string.
func (k Key) Name() string {
	for _, def := range definitions {
		if def.key == k {
			return def.name
		}
	}
	return ""
}

// Names returns the header names in canonical order.
func Names() []string {
	out := make([]string, len(definitions))
	for i, def := range definitions {
		out[i] = def.name
	}
	return out
}

// Lookup resolves a comment header name to its key. Matching is exact.
func Lookup(name string) (Key, bool) {
	key, ok := byName[name]
	return key, ok
}

// Set maps every recognised key to its extracted value.
type Set map[Key]string

// NewSet returns a Set holding an empty value for every recognised key.
func NewSet() Set {
	set := make(Set, len(definitions))
	for _, def := range definitions {
		set[def.key] = ""
	}
	return set
}

// Get returns the value stored for key or an empty string.
func (s Set) Get(key Key) string {
	if s == nil {
		return ""
	}
	return s[key]
}

// Has reports whether key carries a non-empty value.
func (s Set) Has(key Key) bool {
	return s.Get(key) != ""
}

// Bool reports whether the value of key is literally "true".
func (s Set) Bool(key Key) bool {
	return s.Get(key) == "true"
}

// List splits the value of key on single spaces, dropping empty entries.
func (s Set) List(key Key) []string {
	raw := s.Get(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, " ")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Extract parses the first `{# ... #}` comment of content. Lines of the form
// `Name: value` whose Name exactly matches a recognised header populate the
// Set; later lines overwrite earlier ones. Without a comment every value is
// empty.
func Extract(content []byte) Set {
	set := NewSet()

	matches := commentPattern.FindSubmatch(content)
	if len(matches) < 2 {
		return set
	}

	for _, line := range strings.Split(string(matches[1]), "\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key, known := Lookup(strings.TrimSpace(name))
		if !known {
			continue
		}
		set[key] = strings.TrimSpace(value)
	}
	return set
}

// ExtractFile reads path from fsys and extracts its headers.
func ExtractFile(fsys fs.FS, path string) (Set, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return NewSet(), fmt.Errorf("header: read %s: %w", path, err)
	}
	return Extract(data), nil
}

// ErrInvalidValue is returned by Format for values that would end the header
// comment early or spill onto another header line.
var ErrInvalidValue = errors.New("header: value cannot be written to a header comment")

// ValidateValue reports whether value can be stored in a header line.
func ValidateValue(value string) error {
	if strings.Contains(value, "#}") {
		return fmt.Errorf("%w: contains %q", ErrInvalidValue, "#}")
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: contains a line break", ErrInvalidValue)
	}
	return nil
}

// Format renders set as a header comment in canonical order. Empty values are
// omitted; an empty set yields an empty comment. Extract(Format(set))
// reproduces set for trimmed values.
func Format(set Set) (string, error) {
	var b strings.Builder
	b.WriteString("{#\n")
	for _, def := range definitions {
		value := strings.TrimSpace(set.Get(def.key))
		if value == "" {
			continue
		}
		if err := ValidateValue(value); err != nil {
			return "", fmt.Errorf("%s: %w", def.name, err)
		}
		b.WriteString("  ")
		b.WriteString(def.name)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	b.WriteString("#}\n")
	return b.String(), nil
}
