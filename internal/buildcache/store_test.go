package buildcache_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-compage/internal/buildcache"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	store, err := buildcache.Open(ctx, buildcache.Options{Path: ":memory:", TTL: time.Minute}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	entry := &buildcache.Entry{
		SourcePath: "docs/guide.md",
		Hash:       "11aa",
		TypeName:   "Guide",
		ImportPath: "site/pages/docs",
		OutputPath: "gen/docs/guide_gen.go",
		Routes:     []string{"/docs/guide"},
	}
	if _, err := store.Record(ctx, entry); err != nil {
		t.Fatalf("record entry: %v", err)
	}

	got, err := store.Lookup(ctx, "docs/guide.md")
	if err != nil {
		t.Fatalf("lookup entry: %v", err)
	}
	if got.Hash != "11aa" {
		t.Fatalf("expected hash 11aa, got %s", got.Hash)
	}
	if _, err := store.Lookup(ctx, "docs/guide.md"); err != nil {
		t.Fatalf("cached lookup: %v", err)
	}

	if _, err := store.Lookup(ctx, "docs/missing.md"); err == nil {
		t.Fatal("expected lookup miss")
	} else {
		var nf *buildcache.NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected not found error, got %v", err)
		}
	}

	refreshed := &buildcache.Entry{
		SourcePath: "docs/guide.md",
		Hash:       "22bb",
		TypeName:   "Guide",
		ImportPath: "site/pages/docs",
		OutputPath: "gen/docs/guide_gen.go",
		Routes:     []string{"/docs/guide"},
	}
	if _, err := store.Record(ctx, refreshed); err != nil {
		t.Fatalf("record refreshed entry: %v", err)
	}
	latest, err := store.Lookup(ctx, "docs/guide.md")
	if err != nil {
		t.Fatalf("lookup refreshed entry: %v", err)
	}
	if latest.Hash != "22bb" {
		t.Fatalf("expected refreshed hash, got %s", latest.Hash)
	}

	entries, err := store.Entries(ctx)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
}

func TestStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := buildcache.Open(ctx, buildcache.Options{Path: path}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	entry := &buildcache.Entry{
		SourcePath: "index.md",
		Hash:       "aa00",
		TypeName:   "Index",
		ImportPath: "site/pages",
		OutputPath: "gen/index_gen.go",
		Routes:     []string{"/"},
	}
	if _, err := store.Record(ctx, entry); err != nil {
		t.Fatalf("record entry: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := buildcache.Open(ctx, buildcache.Options{Path: path}, nil)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Lookup(ctx, "index.md")
	if err != nil {
		t.Fatalf("lookup after reopen: %v", err)
	}
	if got.Hash != "aa00" || got.TypeName != "Index" {
		t.Fatalf("unexpected entry after reopen: %+v", got)
	}

	if err := reopened.Forget(ctx, "index.md"); err != nil {
		t.Fatalf("forget entry: %v", err)
	}
	if _, err := reopened.Lookup(ctx, "index.md"); err == nil {
		t.Fatal("expected miss after forget")
	}
}

func TestStoreOpenRequiresPath(t *testing.T) {
	if _, err := buildcache.Open(context.Background(), buildcache.Options{}, nil); err == nil {
		t.Fatal("expected error for missing path")
	}
}
