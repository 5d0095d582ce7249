package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/goliatone/go-blockgen/pkg/block"
)

// blockMarkdown describes cfg as a markdown document.
func blockMarkdown(namespace string, cfg block.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cfg.Title)
	if cfg.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", cfg.Description)
	}

	item := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "- **%s**: %s\n", label, value)
		}
	}
	item("Name", "`"+namespace+"/"+cfg.Name+"`")
	item("Category", cfg.Category)
	if !strings.Contains(cfg.Icon, "<") {
		item("Icon", cfg.Icon)
	}
	item("Keywords", strings.Join(cfg.Keywords, ", "))
	item("Mode", cfg.Mode)
	item("Align", cfg.Align)
	item("Post types", strings.Join(cfg.PostTypes, ", "))
	item("Style", cfg.EnqueueStyle)
	item("Script", cfg.EnqueueScript)
	item("Assets", cfg.EnqueueAssets)

	if cfg.Supports != nil {
		raw, err := json.MarshalIndent(cfg.Supports, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "\n## Supports\n\n```json\n%s\n```\n", raw)
		}
	}
	return b.String()
}

func writeBlockDetails(w io.Writer, style string, namespace string, cfg block.Config) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(80)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("cli: markdown renderer: %w", err)
	}
	out, err := renderer.Render(blockMarkdown(namespace, cfg))
	if err != nil {
		return fmt.Errorf("cli: render details: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
