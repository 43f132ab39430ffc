package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed,
		hashid.WithHashAlgorithm(hashid.SHA256),
		hashid.WithNormalization(true),
	)
	if err != nil || uid == uuid.Nil {
		// Name-based SHA1 keeps the ID stable even when hashid rejects
		// the input.
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentUUID identifies one source document by its content-root-relative
// path. Build-cache entries reuse the same ID across runs so a document's
// history survives process restarts.
func DocumentUUID(path string) uuid.UUID {
	return UUID("compage:document:" + strings.TrimSpace(path))
}
