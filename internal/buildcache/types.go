// Package buildcache persists per-document build outcomes so incremental
// builds survive process restarts. Entries are keyed by the combined
// content-and-configuration hash computed by the generator; the row ID is a
// deterministic UUID derived from the source path, so repeated builds of the
// same document address the same record.
package buildcache

import (
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entry records the outcome of one document build.
type Entry struct {
	bun.BaseModel `bun:"table:build_cache,alias:bc"`

	ID         uuid.UUID `bun:",pk,type:uuid" json:"id"`
	SourcePath string    `bun:"source_path,notnull" json:"source_path"`
	Hash       string    `bun:"hash,notnull" json:"hash"`
	TypeName   string    `bun:"type_name" json:"type_name"`
	ImportPath string    `bun:"import_path" json:"import_path"`
	OutputPath string    `bun:"output_path" json:"output_path"`
	Routes     []string  `bun:"routes,type:jsonb" json:"routes,omitempty"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// NewEntryRepository creates a repository for build cache entries.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord: func() *Entry { return &Entry{} },
		GetID: func(entry *Entry) uuid.UUID {
			return entry.ID
		},
		SetID: func(entry *Entry, id uuid.UUID) {
			entry.ID = id
		},
		GetIdentifier: func() string {
			return "source_path"
		},
		GetIdentifierValue: func(entry *Entry) string {
			return entry.SourcePath
		},
	})
}
