package template

import (
	"io"
)

// TemplateRenderer mirrors the github.com/goliatone/go-template engine
// contract so callers can swap engines without touching block rendering.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
