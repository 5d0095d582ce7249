package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-blockgen/pkg/orchestrator"
	"github.com/goliatone/go-blockgen/pkg/server"
	"github.com/goliatone/go-blockgen/pkg/testsupport"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	gen := orchestrator.New(orchestrator.WithFS(testsupport.Theme(map[string]string{
		"views/blocks/hero.twig": testsupport.BlockTemplate(
			`<section id="{{ block.anchor }}" class="{{ block.classes }}">{{ block.content|safe }}{% if block.is_preview %}[preview]{% endif %}</section>`,
			"Title: Hero",
			"Category: media",
			"Keywords: banner intro",
		),
		"views/blocks/quote.twig": testsupport.BlockTemplate(`<blockquote></blockquote>`, "Title: Quote"),
	})))
	if _, err := gen.Discover(testsupport.Context()); err != nil {
		t.Fatalf("discover: %v", err)
	}
	return server.New(gen.Registry(), gen).Handler()
}

func TestListBlocks(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blocks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var payload struct {
		Count  int `json:"count"`
		Blocks []struct {
			Name     string   `json:"name"`
			Keywords []string `json:"keywords"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Count != 2 {
		t.Fatalf("count = %d", payload.Count)
	}
	var names []string
	for _, b := range payload.Blocks {
		names = append(names, b.Name)
	}
	if diff := cmp.Diff([]string{"hero", "quote"}, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestGetBlock(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blocks/hero", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cfg map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg["title"] != "Hero" || cfg["category"] != "media" {
		t.Fatalf("unexpected config: %v", cfg)
	}
	if _, ok := cfg["render_callback"]; ok {
		t.Fatalf("render callback must not be serialised")
	}
}

func TestGetUnknownBlock(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blocks/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRenderBlock(t *testing.T) {
	h := newTestServer(t)

	body := `{"content":"<p>inner</p>","anchor":"top","className":"dark","align":"full"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/blocks/hero/render", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	want := `<section id="top" class="hero dark alignfull"><p>inner</p></section>`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestRenderRejectsInvalidJSON(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/blocks/hero/render", strings.NewReader("{")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestPreviewBlock(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blocks/hero/preview", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); !strings.Contains(got, `class="hero is-preview"`) || !strings.Contains(got, "[preview]") {
		t.Fatalf("unexpected preview markup: %q", got)
	}
}

func TestRenderMethodNotAllowed(t *testing.T) {
	h := newTestServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blocks/hero/render", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}
