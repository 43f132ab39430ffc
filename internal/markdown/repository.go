package markdown

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-compage/internal/logging"
	"github.com/goliatone/go-compage/internal/naming"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

// Repository is the filesystem-backed read side of the document store.
// Content-serving hosts use it to list and fetch the original documents by
// slug; the compiler itself only shares the discovery rules.
type Repository struct {
	loader *Loader
	log    interfaces.Logger
}

// NewRepository constructs a repository over one content root. provider
// may be nil, in which case logging is disabled.
func NewRepository(fsys fs.FS, root, extension string, provider interfaces.LoggerProvider) *Repository {
	return &Repository{
		loader: NewLoader(fsys, root, extension),
		log:    logging.MarkdownLogger(provider),
	}
}

var _ interfaces.DocumentRepository = (*Repository)(nil)

// ListDocuments returns every document under the root, sorted by path.
func (r *Repository) ListDocuments(ctx context.Context) ([]interfaces.DocumentInfo, error) {
	sources, err := r.loader.Discover(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]interfaces.DocumentInfo, 0, len(sources))
	for _, src := range sources {
		stat, err := fs.Stat(r.loader.fsys, src.Path)
		if err != nil {
			return nil, fmt.Errorf("markdown repository: stat %s: %w", src.Path, err)
		}
		infos = append(infos, interfaces.DocumentInfo{
			Slug:    naming.Slug(src.Path),
			Path:    src.Path,
			Size:    stat.Size(),
			ModTime: stat.ModTime(),
		})
	}

	r.log.Debug("listed documents", "root", r.loader.root, "count", len(infos))
	return infos, nil
}

// ReadBySlug fetches one document's content. The returned error wraps
// interfaces.ErrDocumentNotFound when the slug does not resolve.
func (r *Repository) ReadBySlug(ctx context.Context, slug string) (*interfaces.DocumentContent, error) {
	infos, err := r.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	for _, info := range infos {
		if info.Slug != slug {
			continue
		}
		data, err := r.loader.Read(info.Path)
		if err != nil {
			return nil, err
		}
		return &interfaces.DocumentContent{DocumentInfo: info, Content: data}, nil
	}

	return nil, fmt.Errorf("markdown repository: %q: %w", slug, interfaces.ErrDocumentNotFound)
}
