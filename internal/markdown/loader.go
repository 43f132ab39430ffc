package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Source identifies one discovered document.
type Source struct {
	// Root is the configured content root the document came from.
	Root string
	// Path is the document's slash-separated path relative to Root.
	Path string
}

// Loader discovers documents with a fixed extension under one content
// root. It operates on fs.FS so tests can drive it with fstest.MapFS and
// production code with os.DirFS.
type Loader struct {
	fsys fs.FS
	root string
	ext  string
}

// NewLoader constructs a loader for one content root. root is the label
// recorded on discovered sources, typically the configured directory path.
// extension defaults to ".md".
func NewLoader(fsys fs.FS, root, extension string) *Loader {
	if strings.TrimSpace(extension) == "" {
		extension = ".md"
	}
	return &Loader{
		fsys: fsys,
		root: root,
		ext:  extension,
	}
}

// Discover walks the root and returns every document carrying the
// configured extension, sorted by path.
func (l *Loader) Discover(ctx context.Context) ([]Source, error) {
	var sources []Source

	err := fs.WalkDir(l.fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, l.ext) {
			return nil
		}
		sources = append(sources, Source{Root: l.root, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("markdown loader: walk %s: %w", l.root, err)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Path < sources[j].Path
	})

	return sources, nil
}

// Read returns the raw bytes of one discovered document.
func (l *Loader) Read(path string) ([]byte, error) {
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: read %s: %w", path, err)
	}
	return data, nil
}
