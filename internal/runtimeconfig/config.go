package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrRootNamespaceRequired = errors.New("compage config: root namespace is required")
var ErrContentRootRequired = errors.New("compage config: at least one content root is required")
var ErrOutputDirRequired = errors.New("compage config: output directory is required")
var ErrExtensionInvalid = errors.New("compage config: document extension must start with '.'")
var ErrWorkersInvalid = errors.New("compage config: worker count must be zero or positive")
var ErrCachePathRequired = errors.New("compage config: cache path is required when the persistent cache is enabled")
var ErrBaseURLRequired = errors.New("compage config: base URL is required when sitemap generation is enabled")
var ErrLoggingProviderUnknown = errors.New("compage config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("compage config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("compage config: logging format is invalid")

// Config aggregates everything the build pipeline needs. Fields use simple
// types so host applications can populate them from their own configuration
// systems.
type Config struct {
	// RootNamespace is the import-path prefix of generated packages; a
	// document's directory path is appended to it.
	RootNamespace string
	// ContentRoots lists the directories scanned for documents.
	ContentRoots []string
	// OutputDir receives generated source files, mirroring each document's
	// directory layout.
	OutputDir string
	// Extension selects the documents to compile. Defaults to ".md".
	Extension string
	// KnownComponents lists component type names resolvable outside the
	// generated set, e.g. hand-written components in the output packages.
	KnownComponents []string
	Workers         int
	Incremental     bool
	CleanBuild      bool
	// BaseURL is the site origin used for absolute sitemap URLs.
	BaseURL          string
	GenerateManifest bool
	GenerateSitemap  bool
	Markdown         MarkdownConfig
	Cache            CacheConfig
	Logging          LoggingConfig
}

// MarkdownConfig captures renderer behaviour.
type MarkdownConfig struct {
	// Extensions names entries from the goldmark extension registry.
	Extensions []string
	HardWraps  bool
	// Unsafe passes raw HTML in the source through to the output. Documents
	// that intermix literal HTML with Markdown need it; defaults to true.
	Unsafe bool
}

// CacheConfig captures persistent build-cache behaviour. The in-memory memo
// cache is always on; the persistent store keeps incrementality across
// process restarts.
type CacheConfig struct {
	Enabled bool
	// Path is the SQLite database location. ":memory:" is accepted for
	// tests.
	Path string
	// TTL bounds the read-through cache in front of the store.
	TTL time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the defaults a bare `compage build` run uses.
func DefaultConfig() Config {
	return Config{
		RootNamespace:    "site/pages",
		ContentRoots:     []string{"content"},
		OutputDir:        "generated",
		Extension:        ".md",
		Workers:          0,
		Incremental:      true,
		CleanBuild:       false,
		GenerateManifest: true,
		GenerateSitemap:  false,
		Markdown: MarkdownConfig{
			Extensions: []string{"gfm"},
			HardWraps:  false,
			Unsafe:     true,
		},
		Cache: CacheConfig{
			Enabled: false,
			Path:    ".compage/cache.db",
			TTL:     time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.RootNamespace) == "" {
		return ErrRootNamespaceRequired
	}
	if len(cfg.ContentRoots) == 0 {
		return ErrContentRootRequired
	}
	for _, root := range cfg.ContentRoots {
		if strings.TrimSpace(root) == "" {
			return ErrContentRootRequired
		}
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	if ext := strings.TrimSpace(cfg.Extension); ext != "" && !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("%w: %s", ErrExtensionInvalid, ext)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrWorkersInvalid, cfg.Workers)
	}
	if cfg.Cache.Enabled && strings.TrimSpace(cfg.Cache.Path) == "" {
		return ErrCachePathRequired
	}
	if cfg.GenerateSitemap && strings.TrimSpace(cfg.BaseURL) == "" {
		return ErrBaseURLRequired
	}
	if provider := normalizeProvider(cfg.Logging.Provider); provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "none", "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
