package blockgen

import (
	"io/fs"

	"github.com/goliatone/go-blockgen/pkg/scaffold"
)

// StarterTemplates exposes the embedded starter block bodies used by the
// scaffolder so callers can reuse them without importing the package directly.
func StarterTemplates() fs.FS {
	return scaffold.TemplatesFS()
}
