package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-blockgen/pkg/block"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	slugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// writeBlockTable prints one row per block config.
func writeBlockTable(w io.Writer, configs []block.Config) error {
	if len(configs) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("no blocks registered"))
		return err
	}

	headers := []string{"SLUG", "TITLE", "CATEGORY", "MODE", "KEYWORDS"}
	rows := make([][]string, 0, len(configs))
	for _, cfg := range configs {
		rows = append(rows, []string{
			cfg.Name,
			cfg.Title,
			cfg.Category,
			cfg.Mode,
			strings.Join(cfg.Keywords, ", "),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := lipgloss.Width(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	line := func(cells []string, style func(col int) lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = style(i).Width(widths[i]).Render(cell)
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ")
	}

	if _, err := fmt.Fprintln(w, line(headers, func(int) lipgloss.Style { return headerStyle })); err != nil {
		return err
	}
	for _, row := range rows {
		out := line(row, func(col int) lipgloss.Style {
			if col == 0 {
				return slugStyle
			}
			return lipgloss.NewStyle()
		})
		if _, err := fmt.Fprintln(w, out); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d block(s)", len(configs))))
	return err
}
