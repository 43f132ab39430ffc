package compage_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	compage "github.com/goliatone/go-compage"
	"github.com/goliatone/go-compage/internal/buildcache"
	"github.com/goliatone/go-compage/internal/logging/console"
)

func writeSite(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func siteConfig(t *testing.T, contentDir string) compage.Config {
	t.Helper()
	cfg := compage.DefaultConfig()
	cfg.ContentRoots = []string{contentDir}
	cfg.OutputDir = t.TempDir()
	cfg.Logging.Provider = "none"
	return cfg
}

func TestModuleBuildEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	contentDir := writeSite(t, map[string]string{
		"index.md": "# Welcome\n",
		"company/about.md": `---
routes:
  - /company/about
title: About
---

# About us
`,
	})

	cfg := siteConfig(t, contentDir)
	cfg.Cache.Enabled = true
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")

	module, err := compage.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}

	result, err := module.Generator().Build(ctx, compage.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if result.DocumentsBuilt != 2 || result.DocumentsFailed != 0 {
		t.Fatalf("unexpected counts: built=%d failed=%d", result.DocumentsBuilt, result.DocumentsFailed)
	}
	for _, rel := range []string{"index_gen.go", filepath.Join("company", "about_gen.go"), "routes.json"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, rel)); err != nil {
			t.Fatalf("expected output %s: %v", rel, err)
		}
	}
	if err := module.Close(); err != nil {
		t.Fatalf("close module: %v", err)
	}

	// A fresh module over the same cache file resumes incrementally.
	second, err := compage.New(cfg)
	if err != nil {
		t.Fatalf("reopen module: %v", err)
	}
	defer second.Close()

	rerun, err := second.Generator().Build(ctx, compage.BuildOptions{})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if rerun.DocumentsSkipped != 2 || rerun.DocumentsBuilt != 0 {
		t.Fatalf("expected cached rerun, got built=%d skipped=%d", rerun.DocumentsBuilt, rerun.DocumentsSkipped)
	}
}

func TestModuleConsoleProviderReceivesBuildLogs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	contentDir := writeSite(t, map[string]string{"index.md": "# Hello\n"})
	cfg := siteConfig(t, contentDir)

	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	module, err := compage.New(cfg, compage.WithLoggerProvider(provider))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	if _, err := module.Generator().Build(ctx, compage.BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}

	logs := buf.String()
	if !strings.Contains(logs, "documents discovered") {
		t.Fatalf("expected discovery log entry, got:\n%s", logs)
	}
	if !strings.Contains(logs, "module=compage.generator") {
		t.Fatalf("expected generator module field, got:\n%s", logs)
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

func TestModuleRegisterCommands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	contentDir := writeSite(t, map[string]string{"index.md": "# Hello\n"})
	cfg := siteConfig(t, contentDir)
	// Point the output at a directory that does not exist yet so a dry run
	// leaving it absent is observable.
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")

	module, err := compage.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()

	registry := &recordingRegistry{}
	handlers, err := module.RegisterCommands(registry)
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(registry.handlers) != 2 {
		t.Fatalf("expected 2 registered handlers, got %d", len(registry.handlers))
	}
	if handlers.Build == nil || handlers.Clean == nil {
		t.Fatal("expected build and clean handlers")
	}

	if err := handlers.Build.Execute(ctx, compage.BuildSiteCommand{DryRun: true}); err != nil {
		t.Fatalf("execute build command: %v", err)
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("expected dry run to leave output untouched, stat err=%v", err)
	}
}

func TestModuleInjectedStoreStaysOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := buildcache.Open(ctx, buildcache.Options{Path: ":memory:", TTL: time.Minute}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	contentDir := writeSite(t, map[string]string{"index.md": "# Hello\n"})
	cfg := siteConfig(t, contentDir)

	module, err := compage.New(cfg, compage.WithStore(store))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	if _, err := module.Generator().Build(ctx, compage.BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := module.Close(); err != nil {
		t.Fatalf("close module: %v", err)
	}

	// The injected store survives module shutdown.
	if _, err := store.Entries(ctx); err != nil {
		t.Fatalf("expected injected store to stay open, got %v", err)
	}
}

func TestModuleCloseIdempotent(t *testing.T) {
	t.Parallel()

	contentDir := writeSite(t, map[string]string{"index.md": "# Hello\n"})
	cfg := siteConfig(t, contentDir)
	cfg.Cache.Enabled = true
	cfg.Cache.Path = filepath.Join(t.TempDir(), "cache.db")

	module, err := compage.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	if err := module.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := module.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := compage.DefaultConfig()
	cfg.OutputDir = ""

	if _, err := compage.New(cfg); err == nil {
		t.Fatal("expected config validation error")
	}
}
