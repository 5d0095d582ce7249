package header

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

const heroTemplate = `{#
  Title: Hero
  Description: Full width hero with a call to action
  Category: formatting
  Icon: admin-comments
  Keywords: hero banner cta
  Mode: preview
  Align: wide
  SupportsAlign: left right wide
  SupportsAnchor: true
  SupportsInnerBlocks: true
#}

<section class="{{ block.classes }}">{{ block.content|safe }}</section>
`

func TestExtract_AllKeysPresent(t *testing.T) {
	inputs := map[string]string{
		"full":       heroTemplate,
		"no comment": "<div>{{ block.content }}</div>",
		"empty":      "",
		"unknown":    "{# Colour: red #}",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			set := Extract([]byte(input))
			if len(set) != len(Keys()) {
				t.Fatalf("expected %d keys, got %d", len(Keys()), len(set))
			}
			for _, key := range Keys() {
				if _, ok := set[key]; !ok {
					t.Fatalf("key %q missing from set", key)
				}
			}
		})
	}
}

func TestExtract_Title(t *testing.T) {
	set := Extract([]byte("{# Title: Foo #}"))
	if got := set.Get(Title); got != "Foo" {
		t.Fatalf("expected title %q, got %q", "Foo", got)
	}
}

func TestExtract_NoCommentYieldsEmptyValues(t *testing.T) {
	set := Extract([]byte("Title: Outside\n<p>body</p>"))
	for key, value := range set {
		if value != "" {
			t.Fatalf("expected empty value for %q, got %q", key, value)
		}
	}
}

func TestExtract_FullHeader(t *testing.T) {
	set := Extract([]byte(heroTemplate))

	want := NewSet()
	want[Title] = "Hero"
	want[Description] = "Full width hero with a call to action"
	want[Category] = "formatting"
	want[Icon] = "admin-comments"
	want[Keywords] = "hero banner cta"
	want[Mode] = "preview"
	want[Align] = "wide"
	want[SupportsAlign] = "left right wide"
	want[SupportsAnchor] = "true"
	want[SupportsJSX] = "true"

	if diff := cmp.Diff(want, set); diff != "" {
		t.Fatalf("extract mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_ExactKeyMatching(t *testing.T) {
	set := Extract([]byte("{#\nSupportsAlign: full\nSupportsAlignText: true\n#}"))
	if got := set.Get(Align); got != "" {
		t.Fatalf("expected Align to stay empty, got %q", got)
	}
	if got := set.Get(SupportsAlign); got != "full" {
		t.Fatalf("expected SupportsAlign %q, got %q", "full", got)
	}
	if got := set.Get(SupportsAlignText); got != "true" {
		t.Fatalf("expected SupportsAlignText %q, got %q", "true", got)
	}
}

func TestExtract_LaterLinesOverwrite(t *testing.T) {
	set := Extract([]byte("{#\nTitle: First\nTitle: Second\n#}"))
	if got := set.Get(Title); got != "Second" {
		t.Fatalf("expected last title to win, got %q", got)
	}
}

func TestExtract_OnlyFirstComment(t *testing.T) {
	set := Extract([]byte("{# Title: One #}\n<p></p>\n{# Category: ignored #}"))
	if got := set.Get(Title); got != "One" {
		t.Fatalf("expected title %q, got %q", "One", got)
	}
	if got := set.Get(Category); got != "" {
		t.Fatalf("expected category from second comment to be ignored, got %q", got)
	}
}

func TestExtract_ValueKeepsColons(t *testing.T) {
	set := Extract([]byte("{# Description: Ratio 16:9 embed #}"))
	if got := set.Get(Description); got != "Ratio 16:9 embed" {
		t.Fatalf("unexpected description %q", got)
	}
}

func TestSet_BoolAndList(t *testing.T) {
	set := NewSet()
	set[SupportsAnchor] = "true"
	set[SupportsMode] = "yes"
	set[Keywords] = "foo bar baz"
	set[PostTypes] = "post  page"

	if !set.Bool(SupportsAnchor) {
		t.Fatalf("expected SupportsAnchor to be true")
	}
	if set.Bool(SupportsMode) {
		t.Fatalf("expected non-literal value to be false")
	}
	if diff := cmp.Diff([]string{"foo", "bar", "baz"}, set.List(Keywords)); diff != "" {
		t.Fatalf("keywords mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"post", "page"}, set.List(PostTypes)); diff != "" {
		t.Fatalf("post types mismatch (-want +got):\n%s", diff)
	}
	if got := set.List(Icon); got != nil {
		t.Fatalf("expected nil list for empty value, got %#v", got)
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	set := Extract([]byte(heroTemplate))
	formatted, err := Format(set)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	again := Extract([]byte(formatted))
	if diff := cmp.Diff(set, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_RejectsCommentBreakingValues(t *testing.T) {
	for _, value := range []string{"Hero #} broken", "Hero\nCategory: text", "Hero\r"} {
		set := NewSet()
		set[Title] = value
		set[Category] = "text"
		if _, err := Format(set); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Format(%q) error = %v, want ErrInvalidValue", value, err)
		}
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(Keys()) {
		t.Fatalf("expected %d names, got %d", len(Keys()), len(names))
	}
	if names[0] != "Title" || names[11] != "SupportsInnerBlocks" || names[17] != "EnqueueAssets" {
		t.Fatalf("unexpected name order: %v", names)
	}
	for _, name := range names {
		if _, ok := Lookup(name); !ok {
			t.Fatalf("name %q does not resolve", name)
		}
	}
}

func TestKeyName(t *testing.T) {
	if got := SupportsJSX.Name(); got != "SupportsInnerBlocks" {
		t.Fatalf("expected SupportsInnerBlocks, got %q", got)
	}
	if got := Key("nope").Name(); got != "" {
		t.Fatalf("expected empty name for unknown key, got %q", got)
	}
}

func TestExtractFile(t *testing.T) {
	fsys := fstest.MapFS{
		"views/blocks/hero.twig": {Data: []byte(heroTemplate)},
	}

	set, err := ExtractFile(fsys, "views/blocks/hero.twig")
	if err != nil {
		t.Fatalf("extract file: %v", err)
	}
	if set.Get(Title) != "Hero" {
		t.Fatalf("expected title Hero, got %q", set.Get(Title))
	}

	missing, err := ExtractFile(fsys, "views/blocks/missing.twig")
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if len(missing) != len(Keys()) {
		t.Fatalf("expected empty set with every key on error, got %d keys", len(missing))
	}
}
