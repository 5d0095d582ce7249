package template_test

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-blockgen/pkg/render/template/gotemplate"
	"github.com/goliatone/go-blockgen/pkg/testsupport"
)

var templatesFS = fstest.MapFS{
	"views/blocks/hello.twig": {Data: []byte("{#\n  Title: Hello\n  Category: text\n#}\nHello {{ name }}!")},
	"views/use-global.twig":   {Data: []byte("env={{ settings.env }}")},
	"views/use-filter.twig":   {Data: []byte("{{ name|shout }}")},
	"views/use-json.twig":     {Data: []byte("{{ block|json_encode }}")},
	"views/use-trim.twig":     {Data: []byte("[{{ name|trim }}]")},
}

func TestGoTemplateEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("views/blocks/hello", map[string]any{"name": "Ada"}, w)
	})

	want := "\nHello Ada!"
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestGoTemplateEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("views/use-global.twig", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=staging" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}

	result, err := engine.RenderTemplate("views/use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_StructDataUsesJSONNames(t *testing.T) {
	engine := newEngine(t)

	type payload struct {
		PostID int64 `json:"post_id"`
	}

	result, err := engine.RenderString("{{ post_id }}", payload{PostID: 7})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if result != "7" {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_JSONEncode(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.Render("views/use-json", map[string]any{
		"block": map[string]any{"slug": "hero"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != `{"slug":"hero"}` {
		t.Fatalf("unexpected output %q", result)
	}
}

func TestGoTemplateEngine_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}

func TestGoTemplateEngine_ConcurrentConstruction(t *testing.T) {
	const workers = 8

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
			if err != nil {
				errs <- err
				return
			}
			result, err := engine.RenderTemplate("views/use-trim", map[string]any{"name": "  Ada  "})
			if err != nil {
				errs <- err
				return
			}
			if result != "[Ada]" {
				errs <- fmt.Errorf("unexpected output %q", result)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent engine: %v", err)
	}
}

func TestNewGoTemplate_StripsHeaderComments(t *testing.T) {
	engine, err := gotemplate.NewGoTemplate(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new go-template engine: %v", err)
	}

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("views/blocks/hello", map[string]any{"name": "Ada"}, w)
	})
	want := "\nHello Ada!"
	if result != want || written != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q (writer %q)", want, result, written)
	}

	inline, err := engine.RenderString("{#\n  Title: Inline\n#}{{ block|json_encode }}", map[string]any{
		"block": map[string]any{"slug": "hero"},
	})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if inline != `{"slug":"hero"}` {
		t.Fatalf("unexpected inline output %q", inline)
	}
}

func TestNewGoTemplate_ForwardsOptions(t *testing.T) {
	engine, err := gotemplate.NewGoTemplate(
		gotemplate.WithFS(templatesFS),
		gotemplate.WithGlobalData(map[string]any{"settings": map[string]any{"env": "production"}}),
		gotemplate.WithGoTemplateOptions(gotemplatepkg.WithTemplateFunc(map[string]any{
			"site": "example.org",
		})),
	)
	if err != nil {
		t.Fatalf("new go-template engine: %v", err)
	}

	result, err := engine.RenderTemplate("views/use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "env=production" {
		t.Fatalf("unexpected output %q", result)
	}

	site, err := engine.RenderString("{{ site }}", nil)
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if site != "example.org" {
		t.Fatalf("unexpected template func output %q", site)
	}
}

func TestNewGoTemplate_RequiresSource(t *testing.T) {
	if _, err := gotemplate.NewGoTemplate(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()

	engine, err := gotemplate.New(gotemplate.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
