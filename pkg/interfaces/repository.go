package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrDocumentNotFound is returned by DocumentRepository implementations when
// no document matches the requested slug.
var ErrDocumentNotFound = errors.New("interfaces: document not found")

// DocumentInfo describes one discoverable source document.
type DocumentInfo struct {
	// Slug is the stable lookup key: the document's relative path with the
	// extension and any leading date prefix stripped.
	Slug string `json:"slug"`
	// Path is the document's path relative to its content root.
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// DocumentContent is a document plus its raw bytes.
type DocumentContent struct {
	DocumentInfo
	Content []byte `json:"content"`
}

// DocumentRepository is the read-side boundary consumed by content-serving
// hosts. The compiler itself never depends on it; it exists so services that
// serve the original documents share one contract with the build pipeline's
// discovery.
type DocumentRepository interface {
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)
	// ReadBySlug returns ErrDocumentNotFound (possibly wrapped) when the slug
	// does not resolve to a document.
	ReadBySlug(ctx context.Context, slug string) (*DocumentContent, error)
}
