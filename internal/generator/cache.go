package generator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-compage/pkg/interfaces"
)

// MemoCache memoizes per-document outcomes keyed by the combined
// content-and-configuration hash. Entries are never evicted; any input
// change produces a new key.
type MemoCache struct {
	mu      sync.RWMutex
	entries map[string]MemoEntry
}

// MemoEntry is one cached outcome.
type MemoEntry struct {
	State       DocumentState
	Component   ComponentInfo
	Diagnostics []interfaces.Diagnostic
	Source      []byte
}

// NewMemoCache creates an empty cache. Callers share one cache across
// builds to keep unchanged documents warm.
func NewMemoCache() *MemoCache {
	return &MemoCache{entries: make(map[string]MemoEntry)}
}

func (c *MemoCache) Get(key string) (MemoEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return entry, ok
}

// Insert stores the entry unless the key is already present. Each key is
// written only by its owning document's pipeline, so the first write wins.
func (c *MemoCache) Insert(key string, entry MemoEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = entry
}

func (c *MemoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// fingerprint digests the emission-relevant configuration. Settings outside
// this set never force recompilation.
func (c Config) fingerprint() string {
	known := append([]string(nil), c.KnownComponents...)
	sort.Strings(known)

	var b strings.Builder
	b.WriteString("ns=")
	b.WriteString(c.RootNamespace)
	b.WriteString(";ext=")
	b.WriteString(c.Extension)
	b.WriteString(";md=")
	b.WriteString(strings.Join(c.Markdown.Extensions, ","))
	fmt.Fprintf(&b, ";hardwraps=%t;unsafe=%t", c.Markdown.HardWraps, c.Markdown.Unsafe)
	b.WriteString(";known=")
	b.WriteString(strings.Join(known, ","))
	return b.String()
}

// documentKey hashes the document content together with the configuration
// fingerprint.
func documentKey(content []byte, fingerprint string) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(fingerprint))
	return hex.EncodeToString(h.Sum(nil))
}
