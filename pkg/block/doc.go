// Package block defines the registration object built from template headers
// and the per-request render context handed to the template engine.
//
// A Config is assembled once per discovered template by FromHeaders and handed
// to a registry. A RenderContext lives for a single render call: it starts from
// the registered Config, picks up request values (post id, preview flag, inner
// content, instance attributes) and exposes the class list as a slice so data
// filters can edit it before it is joined.
package block
