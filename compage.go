package compage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-compage/internal/buildcache"
	generatecmd "github.com/goliatone/go-compage/internal/commands/generate"
	"github.com/goliatone/go-compage/internal/generator"
	"github.com/goliatone/go-compage/internal/logging"
	"github.com/goliatone/go-compage/internal/logging/console"
	"github.com/goliatone/go-compage/internal/logging/gologger"
	"github.com/goliatone/go-compage/internal/markdown"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

// GeneratorService exports the build driver contract for consumers of the compage package.
type GeneratorService = generator.Service

// BuildOptions exports the per-run options accepted by GeneratorService.Build.
type BuildOptions = generator.BuildOptions

// BuildResult exports the aggregate outcome of a build run.
type BuildResult = generator.BuildResult

// ComponentInfo exports the per-document summary collected in build results.
type ComponentInfo = generator.ComponentInfo

// Diagnostic exports the diagnostic record attached to build results.
type Diagnostic = interfaces.Diagnostic

// Severity exports the diagnostic severity scale.
type Severity = interfaces.Severity

// Logger exports the logging contract handed to embedded services.
type Logger = interfaces.Logger

// LoggerProvider exports the provider contract used to mint module loggers.
type LoggerProvider = interfaces.LoggerProvider

// MarkdownRenderer exports the rendering contract the pipeline consumes.
type MarkdownRenderer = interfaces.MarkdownRenderer

// CommandRegistry exports the dispatcher contract used for command registration.
type CommandRegistry = generatecmd.CommandRegistry

// CommandHandlers exports the registered generation command handlers.
type CommandHandlers = generatecmd.HandlerSet

// BuildSiteCommand exports the dispatcher message that triggers a build.
type BuildSiteCommand = generatecmd.BuildSiteCommand

// CleanSiteCommand exports the dispatcher message that clears the output tree.
type CleanSiteCommand = generatecmd.CleanSiteCommand

// Module represents the top level compiler runtime facade.
type Module struct {
	cfg       Config
	provider  interfaces.LoggerProvider
	renderer  interfaces.MarkdownRenderer
	store     *buildcache.Store
	ownsStore bool
	generator generator.Service
}

// Option overrides a default dependency before the module wires its services.
type Option func(*Module)

// WithLoggerProvider overrides the logger provider the configuration would
// otherwise select.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		m.provider = provider
	}
}

// WithRenderer overrides the Markdown renderer. The default is a goldmark
// renderer configured from Config.Markdown.
func WithRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(m *Module) {
		m.renderer = renderer
	}
}

// WithStore injects an already-open persistent build cache. The caller keeps
// ownership; Close will not touch it.
func WithStore(store *buildcache.Store) Option {
	return func(m *Module) {
		m.store = store
	}
}

// New constructs a compiler module using the provided configuration and
// optional dependency overrides.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	if m.provider == nil {
		provider, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	markdownOpts := markdown.Options{
		Extensions: cfg.Markdown.Extensions,
		HardWraps:  cfg.Markdown.HardWraps,
		Unsafe:     cfg.Markdown.Unsafe,
	}
	if m.renderer == nil {
		m.renderer = markdown.NewRenderer(markdownOpts)
	}

	if m.store == nil && cfg.Cache.Enabled {
		store, err := buildcache.Open(context.Background(), buildcache.Options{
			Path: cfg.Cache.Path,
			TTL:  cfg.Cache.TTL,
		}, m.provider)
		if err != nil {
			return nil, fmt.Errorf("compage: open build cache: %w", err)
		}
		m.store = store
		m.ownsStore = true
	}

	m.generator = generator.NewService(generator.Config{
		RootNamespace:    cfg.RootNamespace,
		ContentRoots:     cfg.ContentRoots,
		OutputDir:        cfg.OutputDir,
		Extension:        cfg.Extension,
		KnownComponents:  cfg.KnownComponents,
		Workers:          cfg.Workers,
		Incremental:      cfg.Incremental,
		CleanBuild:       cfg.CleanBuild,
		BaseURL:          cfg.BaseURL,
		GenerateManifest: cfg.GenerateManifest,
		GenerateSitemap:  cfg.GenerateSitemap,
		Markdown:         markdownOpts,
	}, generator.Dependencies{
		Renderer: m.renderer,
		Logger:   m.provider,
		Store:    m.store,
	})

	return m, nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.cfg
}

// Generator returns the configured build driver.
func (m *Module) Generator() GeneratorService {
	if m == nil {
		return nil
	}
	return m.generator
}

// LoggerProvider exposes the configured logger provider for advanced
// integrations. It is nil when logging is disabled.
func (m *Module) LoggerProvider() LoggerProvider {
	if m == nil {
		return nil
	}
	return m.provider
}

// Logger returns a module-scoped logger backed by the configured provider.
func (m *Module) Logger(name string) Logger {
	if m == nil {
		return logging.NoOp()
	}
	return logging.ModuleLogger(m.provider, name)
}

// RegisterCommands subscribes the build and clean command handlers on the
// provided dispatcher registry and returns them for cron scheduling.
func (m *Module) RegisterCommands(registry CommandRegistry, opts ...generatecmd.Option) (*CommandHandlers, error) {
	if m == nil || m.generator == nil {
		return nil, errors.New("compage: module is not initialised")
	}
	return generatecmd.RegisterGenerateCommands(registry, m.generator, m.provider, opts...)
}

// Close releases resources the module opened itself. Injected stores stay
// open.
func (m *Module) Close() error {
	if m == nil || m.store == nil || !m.ownsStore {
		return nil
	}
	store := m.store
	m.store = nil
	m.ownsStore = false
	return store.Close()
}

func newLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch provider := normalizeProviderName(cfg.Provider); provider {
	case "none":
		return nil, nil
	case "console":
		opts := console.Options{}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "", "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
}

func normalizeProviderName(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
