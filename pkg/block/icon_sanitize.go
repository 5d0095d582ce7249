package block

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	iconPolicyOnce sync.Once
	iconPolicy     *bluemonday.Policy
)

// sanitizeIconMarkup keeps inline SVG icons while stripping scripts, event
// handlers and anything that is not plain vector markup.
func sanitizeIconMarkup(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(iconSanitizer().Sanitize(trimmed))
}

func iconSanitizer() *bluemonday.Policy {
	iconPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("svg", "g", "path", "circle", "rect", "line", "polyline", "polygon", "ellipse", "title", "desc")

		policy.AllowAttrs(
			"xmlns", "viewBox", "width", "height", "fill", "stroke",
			"stroke-width", "aria-hidden", "role", "focusable", "class",
		).OnElements("svg")

		for _, el := range []string{"path", "circle", "rect", "line", "polyline", "polygon", "ellipse"} {
			policy.AllowAttrs(
				"d", "cx", "cy", "r", "x", "y", "x1", "y1", "x2", "y2",
				"points", "rx", "ry", "fill", "stroke", "stroke-width", "fill-rule", "clip-rule",
			).OnElements(el)
		}
		policy.AllowAttrs("fill", "transform").OnElements("g")

		iconPolicy = policy
	})
	return iconPolicy
}
