// Package template defines the engine seam block rendering relies on. The
// gotemplate subpackage provides the pongo2-backed implementation, which
// understands the Twig-style syntax (including `{# ... #}` header comments)
// used by block templates.
package template
