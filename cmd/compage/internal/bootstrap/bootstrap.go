// Package bootstrap wires the compage module for the CLI entry points and
// keeps the construction swappable for tests.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	compage "github.com/goliatone/go-compage"
	generatecmd "github.com/goliatone/go-compage/internal/commands/generate"
	"github.com/goliatone/go-compage/internal/logging"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

// Options captures configuration for compage CLI bootstraps. String fields
// override the loaded configuration when non-empty; pointer fields override
// when non-nil.
type Options struct {
	ConfigPath     string
	ContentRoots   []string
	OutputDir      string
	RootNamespace  string
	Extension      string
	BaseURL        string
	Workers        *int
	Incremental    *bool
	CleanBuild     *bool
	Manifest       *bool
	Sitemap        *bool
	CacheEnabled   *bool
	CachePath      string
	LogLevel       string
	LogFormat      string
	LogProvider    string
	LoggerProvider interfaces.LoggerProvider
}

// BuildExecutor matches the build command handler contract.
type BuildExecutor interface {
	Execute(ctx context.Context, msg generatecmd.BuildSiteCommand) error
}

// CleanExecutor matches the clean command handler contract.
type CleanExecutor interface {
	Execute(ctx context.Context, msg generatecmd.CleanSiteCommand) error
}

// Module wraps the compage module, its resolved configuration, and the
// command handlers the CLI executes.
type Module struct {
	Module *compage.Module
	Config compage.Config
	Build  BuildExecutor
	Clean  CleanExecutor
	Logger interfaces.Logger
}

// BuildModule constructs a compage module configured for CLI operations.
func BuildModule(opts Options) (*Module, error) {
	cfg := compage.DefaultConfig()
	if trimmed := strings.TrimSpace(opts.ConfigPath); trimmed != "" {
		loaded, err := compage.LoadConfig(trimmed)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if len(opts.ContentRoots) > 0 {
		cfg.ContentRoots = opts.ContentRoots
	}
	if trimmed := strings.TrimSpace(opts.OutputDir); trimmed != "" {
		cfg.OutputDir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.RootNamespace); trimmed != "" {
		cfg.RootNamespace = trimmed
	}
	if trimmed := strings.TrimSpace(opts.Extension); trimmed != "" {
		cfg.Extension = trimmed
	}
	if trimmed := strings.TrimSpace(opts.BaseURL); trimmed != "" {
		cfg.BaseURL = trimmed
	}
	if opts.Workers != nil {
		cfg.Workers = *opts.Workers
	}
	if opts.Incremental != nil {
		cfg.Incremental = *opts.Incremental
	}
	if opts.CleanBuild != nil {
		cfg.CleanBuild = *opts.CleanBuild
	}
	if opts.Manifest != nil {
		cfg.GenerateManifest = *opts.Manifest
	}
	if opts.Sitemap != nil {
		cfg.GenerateSitemap = *opts.Sitemap
	}
	if opts.CacheEnabled != nil {
		cfg.Cache.Enabled = *opts.CacheEnabled
	}
	if trimmed := strings.TrimSpace(opts.CachePath); trimmed != "" {
		cfg.Cache.Path = trimmed
	}
	if trimmed := strings.TrimSpace(opts.LogLevel); trimmed != "" {
		cfg.Logging.Level = trimmed
	}
	if trimmed := strings.TrimSpace(opts.LogFormat); trimmed != "" {
		cfg.Logging.Format = trimmed
	}
	if trimmed := strings.TrimSpace(opts.LogProvider); trimmed != "" {
		cfg.Logging.Provider = trimmed
	}

	moduleOpts := []compage.Option{}
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, compage.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := compage.New(cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise compage module: %w", err)
	}

	logger := logging.CommandsLogger(module.LoggerProvider())

	return &Module{
		Module: module,
		Config: module.Config(),
		Build:  generatecmd.NewBuildSiteHandler(module.Generator(), logger),
		Clean:  generatecmd.NewCleanSiteHandler(module.Generator(), logger),
		Logger: logger,
	}, nil
}

// Close releases resources held by the wrapped module.
func (m *Module) Close() error {
	if m == nil || m.Module == nil {
		return nil
	}
	return m.Module.Close()
}

// SplitList parses a comma separated list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
