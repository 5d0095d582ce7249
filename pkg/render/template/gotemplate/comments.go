package gotemplate

import (
	"bytes"
	"io"
	"regexp"

	"github.com/flosch/pongo2/v6"
)

// pongo2 only accepts single-line `{# #}` comments while block templates open
// with a multi-line header comment, so comments are removed before parsing.
var commentPattern = regexp.MustCompile(`(?s)\{#.*?#\}`)

func stripComments(src []byte) []byte {
	if !bytes.Contains(src, []byte("{#")) {
		return src
	}
	return commentPattern.ReplaceAll(src, nil)
}

// commentStrippingLoader wraps a pongo2 loader and removes Twig comments from
// every template it serves, including includes and parents.
type commentStrippingLoader struct {
	inner pongo2.TemplateLoader
}

func (l commentStrippingLoader) Abs(base, name string) string {
	return l.inner.Abs(base, name)
}

func (l commentStrippingLoader) Get(path string) (io.Reader, error) {
	r, err := l.inner.Get(path)
	if err != nil {
		return nil, err
	}
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(stripComments(src)), nil
}
