package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(`
root: ./theme
directories:
  - views/blocks
  - views/legacy-blocks
extension: html
namespace: theme
dist_dir: build
debug: true
engine: Go-Template
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := Config{
		Root:        "./theme",
		Directories: []string{"views/blocks", "views/legacy-blocks"},
		Extension:   ".html",
		Namespace:   "theme",
		DistDir:     "build",
		Debug:       true,
		Engine:      EngineGoTemplate,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("directories: [unterminated")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blocks.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Debug || cfg.Extension != DefaultExtension {
		t.Fatalf("unexpected config %#v", cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BLOCKGEN_ROOT":        "/srv/theme",
		"BLOCKGEN_DIRECTORIES": "views/blocks, ,views/shared",
		"BLOCKGEN_EXTENSION":   "html",
		"BLOCKGEN_DEBUG":       "1",
		"BLOCKGEN_NAMESPACE":   "  ",
		"BLOCKGEN_ENGINE":      "go-template",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg, err := Default().ApplyEnv(lookup)
	if err != nil {
		t.Fatalf("apply env: %v", err)
	}
	want := Default()
	want.Root = "/srv/theme"
	want.Directories = []string{"views/blocks", "views/shared"}
	want.Extension = ".html"
	want.Debug = true
	want.Engine = EngineGoTemplate
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEnv_InvalidDebug(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "BLOCKGEN_DEBUG" {
			return "maybe", true
		}
		return "", false
	}
	if _, err := Default().ApplyEnv(lookup); err == nil {
		t.Fatal("expected error for invalid debug value")
	}
}
