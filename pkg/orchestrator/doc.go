// Package orchestrator wires configuration, hooks, the block registry, the
// discoverer and the renderer together so hosts can register and render
// template-declared blocks from a single entry point.
package orchestrator
