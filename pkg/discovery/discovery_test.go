package discovery

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-blockgen/pkg/assets"
	"github.com/goliatone/go-blockgen/pkg/block"
	"github.com/goliatone/go-blockgen/pkg/hooks"
	"github.com/goliatone/go-blockgen/pkg/registry"
	"github.com/goliatone/go-blockgen/pkg/testsupport"
)

func theme() fstest.MapFS {
	fsys := testsupport.Theme(map[string]string{
		"views/blocks/hero.twig": testsupport.BlockTemplate(`<section>{{ block.content|safe }}</section>`,
			"Title: Hero",
			"Category: formatting",
			"Keywords: foo bar baz",
			"EnqueueStyle: styles/hero.css",
			"SupportsAnchor: true",
		),
		"views/blocks/untitled.twig": testsupport.BlockTemplate(`<div></div>`, "Category: formatting"),
		"views/blocks/nocategory.twig": testsupport.BlockTemplate(`<div></div>`, "Title: No Category"),
		"views/blocks/readme.md":       "not a template",
		"views/blocks/.twig":           "{# Title: Nameless #}",
		"views/blocks/nested/x.twig":   "{# Title: Nested #}",
		"views/extra/card.twig":        "{# Title: Card\nCategory: layout #}",
		"views/extra/hero.twig":        "{# Title: Hero Again\nCategory: layout #}",
		"dist/styles/hero.css":         "/* built */",
	})
	return fsys
}

func TestDiscover_RegistersTitledBlocks(t *testing.T) {
	reg := registry.New()
	h := hooks.New()
	h.AppendDirectories("views/extra", "views/missing")

	d, err := New(
		WithFS(theme()),
		WithRegistrar(reg),
		WithHooks(h),
		WithAssetResolver(assets.NewResolver(theme())),
	)
	if err != nil {
		t.Fatalf("new discoverer: %v", err)
	}

	result, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	if diff := cmp.Diff([]string{"hero", "nocategory", "card"}, result.Registered); diff != "" {
		t.Fatalf("registered mismatch (-want +got):\n%s", diff)
	}

	wantSkipped := []Skip{
		{Slug: "untitled", Path: "views/blocks/untitled.twig", Reason: ReasonMissingTitle},
		{Slug: "hero", Path: "views/extra/hero.twig", Reason: ReasonNotRegistered},
	}
	if diff := cmp.Diff(wantSkipped, result.Skipped, cmpopts.IgnoreFields(Skip{}, "Err")); diff != "" {
		t.Fatalf("skipped mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(result.Skipped[1].Err, registry.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", result.Skipped[1].Err)
	}

	hero := reg.MustGet("hero")
	if hero.Title != "Hero" {
		t.Fatalf("first directory must win, got title %q", hero.Title)
	}
	if diff := cmp.Diff([]string{"foo", "bar", "baz"}, hero.Keywords); diff != "" {
		t.Fatalf("keywords mismatch (-want +got):\n%s", diff)
	}
	if hero.EnqueueStyle != "dist/styles/hero.css" {
		t.Fatalf("expected dist asset, got %q", hero.EnqueueStyle)
	}
	if hero.Supports == nil || !block.Enabled(hero.Supports.Anchor) {
		t.Fatalf("expected anchor support, got %#v", hero.Supports)
	}
}

func TestDiscover_NoTitleNoRegistration(t *testing.T) {
	var calls int
	d, err := New(
		WithFS(testsupport.Theme(map[string]string{
			"views/blocks/empty.twig":   "<div>no header</div>",
			"views/blocks/blank.twig":   "{#\n  Title:\n#}",
			"views/blocks/comment.twig": "{# just a note #}",
		})),
		WithRegistrar(registry.RegistrarFunc(func(context.Context, block.Config) error {
			calls++
			return nil
		})),
	)
	if err != nil {
		t.Fatalf("new discoverer: %v", err)
	}

	result, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no registration calls, got %d", calls)
	}
	if len(result.Skipped) != 3 {
		t.Fatalf("expected 3 skipped templates, got %#v", result.Skipped)
	}
}

func TestDiscover_DebugWarnings(t *testing.T) {
	cases := []struct {
		name  string
		debug bool
		want  []string
	}{
		{name: "debug off", debug: false},
		{name: "debug on", debug: true, want: []string{
			"This block needs a title",
			"file=views/blocks/untitled.twig",
			"This block needs a category",
			"file=views/blocks/nocategory.twig",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger, logs := testsupport.CapturedLogger()
			d, err := New(
				WithFS(theme()),
				WithRegistrar(registry.New()),
				WithLogger(logger),
				WithDebug(tc.debug),
			)
			if err != nil {
				t.Fatalf("new discoverer: %v", err)
			}
			if _, err := d.Discover(context.Background()); err != nil {
				t.Fatalf("discover: %v", err)
			}

			output := logs.String()
			if !tc.debug && strings.Contains(output, "level=WARN") {
				t.Fatalf("expected no warnings without debug, got %q", output)
			}
			for _, fragment := range tc.want {
				if !strings.Contains(output, fragment) {
					t.Fatalf("expected %q in logs, got %q", fragment, output)
				}
			}
		})
	}
}

func TestDiscover_RenderCallbackWired(t *testing.T) {
	reg := registry.New()
	callback := func(context.Context, block.RenderRequest, ...io.Writer) (string, error) {
		return "rendered", nil
	}
	d, err := New(
		WithFS(theme()),
		WithRegistrar(reg),
		WithRenderCallback(callback),
	)
	if err != nil {
		t.Fatalf("new discoverer: %v", err)
	}
	if _, err := d.Discover(context.Background()); err != nil {
		t.Fatalf("discover: %v", err)
	}

	cfg := reg.MustGet("hero")
	if cfg.RenderCallback == nil {
		t.Fatalf("expected render callback on registered config")
	}
	got, err := cfg.RenderCallback(context.Background(), block.RenderRequest{})
	if err != nil || got != "rendered" {
		t.Fatalf("unexpected callback result %q, %v", got, err)
	}
}

func TestDiscover_CustomExtension(t *testing.T) {
	reg := registry.New()
	d, err := New(
		WithFS(testsupport.Theme(map[string]string{
			"templates/blocks/quote.html": "{# Title: Quote\nCategory: text #}",
			"templates/blocks/hero.twig":  "{# Title: Hero #}",
		})),
		WithDirectories("templates/blocks"),
		WithExtension(".html"),
		WithRegistrar(reg),
	)
	if err != nil {
		t.Fatalf("new discoverer: %v", err)
	}
	result, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if diff := cmp.Diff([]string{"quote"}, result.Registered); diff != "" {
		t.Fatalf("registered mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_DotPrefixedDirectory(t *testing.T) {
	reg := registry.New()
	d, err := New(
		WithFS(testsupport.Theme(map[string]string{
			"views/blocks/hero.twig": "{# Title: Hero #}",
		})),
		WithDirectories("./views/blocks"),
		WithRegistrar(reg),
	)
	if err != nil {
		t.Fatalf("new discoverer: %v", err)
	}
	result, err := d.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if diff := cmp.Diff([]string{"hero"}, result.Registered); diff != "" {
		t.Fatalf("registered mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"views/blocks"}, d.Directories()); diff != "" {
		t.Fatalf("directories mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscover_CancelledContext(t *testing.T) {
	d, err := New(WithFS(theme()), WithRegistrar(registry.New()))
	if err != nil {
		t.Fatalf("new discoverer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Discover(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(WithRegistrar(registry.New())); err == nil {
		t.Fatalf("expected error without filesystem")
	}
	if _, err := New(WithFS(theme())); !errors.Is(err, ErrNoRegistrar) {
		t.Fatalf("expected ErrNoRegistrar, got %v", err)
	}
}
