package block

import (
	"strings"
)

// DefaultNamespace prefixes block names on the host side ("acf/hero").
const DefaultNamespace = "acf"

// Instance carries the attributes the host stores for one block occurrence.
type Instance struct {
	Name      string         `json:"name"`
	ClassName string         `json:"className,omitempty"`
	Anchor    string         `json:"anchor,omitempty"`
	Align     string         `json:"align,omitempty"`
	Mode      string         `json:"mode,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// RenderRequest is the input of a render callback.
type RenderRequest struct {
	Block     Instance `json:"block"`
	Content   string   `json:"content"`
	IsPreview bool     `json:"is_preview"`
	PostID    int64    `json:"post_id"`
}

// RenderContext is the data object exposed to the template as `block`.
type RenderContext struct {
	Config

	PostID    int64
	IsPreview bool
	Content   string
	Slug      string
	Anchor    string
	ClassName string
	Data      map[string]any

	// Classes stays a slice until TemplateData joins it so filters can add,
	// drop or reorder entries.
	Classes []string
}

// SlugFromName strips the namespace prefix from a host block name.
func SlugFromName(name, namespace string) string {
	trimmed := strings.TrimSpace(name)
	if namespace == "" {
		return trimmed
	}
	return strings.TrimPrefix(trimmed, namespace+"/")
}

// NewRenderContext merges the registered config with the request values.
// Instance attributes override the registered mode and alignment.
func NewRenderContext(cfg Config, slug string, req RenderRequest) RenderContext {
	if cfg.Name == "" {
		cfg.Name = slug
	}
	if req.Block.Align != "" {
		cfg.Align = req.Block.Align
	}
	if req.Block.Mode != "" {
		cfg.Mode = req.Block.Mode
	}

	return RenderContext{
		Config:    cfg,
		PostID:    req.PostID,
		IsPreview: req.IsPreview,
		Content:   req.Content,
		Slug:      slug,
		Anchor:    req.Block.Anchor,
		ClassName: req.Block.ClassName,
		Data:      req.Block.Data,
		Classes:   ClassList(slug, req.Block.ClassName, req.IsPreview, cfg.Align),
	}
}

// ClassList returns the raw class entries for a block: slug, custom class,
// "is-preview" in preview mode and the alignment class. Empty entries are
// kept; JoinClasses drops them.
func ClassList(slug, className string, preview bool, align string) []string {
	classes := []string{slug, className, "", ""}
	if preview {
		classes[2] = "is-preview"
	}
	if align != "" {
		classes[3] = "align" + align
	}
	return classes
}

// JoinClasses joins the non-empty entries with single spaces.
func JoinClasses(classes []string) string {
	out := make([]string, 0, len(classes))
	for _, class := range classes {
		trimmed := strings.TrimSpace(class)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, " ")
}

// ClassString returns the joined class list.
func (rc RenderContext) ClassString() string {
	return JoinClasses(rc.Classes)
}

// TemplateData flattens the context into the map exposed to templates.
func (rc RenderContext) TemplateData() map[string]any {
	data := map[string]any{
		"name":           rc.Name,
		"title":          rc.Title,
		"description":    rc.Description,
		"category":       rc.Category,
		"icon":           rc.Icon,
		"keywords":       stringsToAny(rc.Keywords),
		"mode":           rc.Mode,
		"align":          rc.Align,
		"enqueue_style":  rc.EnqueueStyle,
		"enqueue_script": rc.EnqueueScript,
		"enqueue_assets": rc.EnqueueAssets,
		"example":        rc.Example,
		"post_id":        rc.PostID,
		"is_preview":     rc.IsPreview,
		"content":        rc.Content,
		"slug":           rc.Slug,
		"anchor":         rc.Anchor,
		"className":      rc.ClassName,
		"classes":        rc.ClassString(),
	}
	if rc.PostTypes != nil {
		data["post_types"] = stringsToAny(rc.PostTypes)
	}
	if rc.Supports != nil {
		data["supports"] = rc.Supports
	}
	if rc.Data != nil {
		data["data"] = rc.Data
	}
	return data
}

func stringsToAny(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
