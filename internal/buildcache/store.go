package buildcache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goliatone/go-compage/internal/logging"
	"github.com/goliatone/go-compage/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Options configure the persistent store.
type Options struct {
	// Path is the SQLite database location. ":memory:" keeps the store
	// process-local, which tests use.
	Path string
	// TTL bounds the read-through cache in front of the database. Zero
	// disables the memory layer.
	TTL time.Duration
}

// Store keeps per-document build outcomes in SQLite.
type Store struct {
	db   *bun.DB
	repo EntryRepository
	log  interfaces.Logger
}

// Open connects to the database at opts.Path, creating the schema when it is
// missing.
func Open(ctx context.Context, opts Options, provider interfaces.LoggerProvider) (*Store, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("build cache: path is required")
	}

	dsn := opts.Path
	if dsn == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("build cache: open %s: %w", opts.Path, err)
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	if _, err := db.NewCreateTable().Model((*Entry)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("build cache: create table: %w", err)
	}

	var repo EntryRepository = NewBunEntryRepository(db)
	if opts.TTL > 0 {
		cacheCfg := repocache.DefaultConfig()
		cacheCfg.TTL = opts.TTL
		cacheSvc, err := repocache.NewCacheService(cacheCfg)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("build cache: cache service: %w", err)
		}
		repo = NewBunEntryRepositoryWithCache(db, cacheSvc, repocache.NewDefaultKeySerializer())
	}

	log := logging.CacheLogger(provider)
	log.Debug("build cache opened", "path", opts.Path, "ttl", opts.TTL)

	return &Store{db: db, repo: repo, log: log}, nil
}

// Lookup returns the recorded outcome for the source path. Absent entries
// yield a NotFoundError.
func (s *Store) Lookup(ctx context.Context, sourcePath string) (*Entry, error) {
	return s.repo.GetBySourcePath(ctx, sourcePath)
}

// Record upserts the outcome for entry.SourcePath.
func (s *Store) Record(ctx context.Context, entry *Entry) (*Entry, error) {
	stored, err := s.repo.Put(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.log.Debug("build cache entry recorded",
		"source_path", stored.SourcePath,
		"hash", stored.Hash,
	)
	return stored, nil
}

// Entries lists every recorded outcome.
func (s *Store) Entries(ctx context.Context) ([]*Entry, error) {
	return s.repo.List(ctx)
}

// Forget removes the outcome recorded for the source path, if any.
func (s *Store) Forget(ctx context.Context, sourcePath string) error {
	return s.repo.Delete(ctx, sourcePath)
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
