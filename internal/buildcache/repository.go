package buildcache

import (
	"context"
	"fmt"
)

// EntryRepository exposes persistence operations for build cache entries.
type EntryRepository interface {
	Put(ctx context.Context, entry *Entry) (*Entry, error)
	GetBySourcePath(ctx context.Context, sourcePath string) (*Entry, error)
	List(ctx context.Context) ([]*Entry, error)
	Delete(ctx context.Context, sourcePath string) error
}

// NotFoundError is returned when a cache entry cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
