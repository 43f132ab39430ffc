package buildcache

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-compage/internal/identity"
	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunEntryRepository implements EntryRepository with optional caching.
type BunEntryRepository struct {
	repo repository.Repository[*Entry]
}

// NewBunEntryRepository creates a build cache repository without caching.
func NewBunEntryRepository(db *bun.DB) *BunEntryRepository {
	return NewBunEntryRepositoryWithCache(db, nil, nil)
}

// NewBunEntryRepositoryWithCache creates a build cache repository with
// read-through caching in front of the database.
func NewBunEntryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunEntryRepository {
	base := NewEntryRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunEntryRepository{repo: base}
}

// Put stores the entry under its deterministic ID, replacing any previous
// outcome recorded for the same source path.
func (r *BunEntryRepository) Put(ctx context.Context, entry *Entry) (*Entry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = identity.DocumentUUID(entry.SourcePath)
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	if _, err := r.repo.GetByID(ctx, entry.ID.String()); err != nil {
		if !errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("build cache repository error: %w", err)
		}
		created, err := r.repo.Create(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("build cache repository error: %w", err)
		}
		return created, nil
	}

	updated, err := r.repo.Update(ctx, entry,
		repository.UpdateByID(entry.ID.String()),
		repository.UpdateColumns(
			"source_path",
			"hash",
			"type_name",
			"import_path",
			"output_path",
			"routes",
			"updated_at",
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build cache repository error: %w", err)
	}
	return updated, nil
}

func (r *BunEntryRepository) GetBySourcePath(ctx context.Context, sourcePath string) (*Entry, error) {
	record, err := r.repo.GetByIdentifier(ctx, sourcePath)
	if err != nil {
		return nil, mapRepositoryError(err, "build cache entry", sourcePath)
	}
	return record, nil
}

func (r *BunEntryRepository) List(ctx context.Context) ([]*Entry, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunEntryRepository) Delete(ctx context.Context, sourcePath string) error {
	return r.repo.Delete(ctx, &Entry{ID: identity.DocumentUUID(sourcePath)})
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
