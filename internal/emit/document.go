// Package emit assembles generated component source from a compiled
// document model. Emission is deterministic: the same document produces
// byte-identical output on every run.
package emit

import (
	"github.com/goliatone/go-compage/internal/content"
	"github.com/goliatone/go-compage/internal/metadata"
)

// Document is the root aggregate for one input file, assembled by the
// driver once every pipeline stage has run. It is immutable after
// construction; a changed source produces a new Document.
type Document struct {
	// SourcePath is the document's path relative to its content root.
	SourcePath string
	// TypeName is the generated component type.
	TypeName string
	// ImportPath is the generated package's import path.
	ImportPath string
	// PackageName is the generated package clause.
	PackageName string
	Meta        metadata.Metadata
	Content     *content.Model
}
