package testsupport

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

// Theme builds an in-memory theme tree from path/content pairs.
func Theme(files map[string]string) fstest.MapFS {
	fsys := make(fstest.MapFS, len(files))
	for path, content := range files {
		fsys[path] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

// BlockTemplate assembles a block template from header lines and a body.
func BlockTemplate(body string, headers ...string) string {
	var b bytes.Buffer
	b.WriteString("{#\n")
	for _, line := range headers {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("#}\n")
	b.WriteString(body)
	return b.String()
}

// WriteTheme materialises files under a temporary directory and returns its
// path, for code that reads the theme from disk.
func WriteTheme(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir theme dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write theme file: %v", err)
		}
	}
	return root
}

// CapturedLogger returns a debug level text logger writing into the returned
// buffer so tests can assert on emitted diagnostics.
func CapturedLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &buf
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
