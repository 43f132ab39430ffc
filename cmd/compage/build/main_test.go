package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/goliatone/go-compage/cmd/compage/internal/bootstrap"
	generatecmd "github.com/goliatone/go-compage/internal/commands/generate"
	"github.com/goliatone/go-compage/internal/generator"
)

type stubBuildExecutor struct {
	last generatecmd.BuildSiteCommand
	err  error
}

func (s *stubBuildExecutor) Execute(_ context.Context, msg generatecmd.BuildSiteCommand) error {
	s.last = msg
	if msg.ResultCallback != nil {
		msg.ResultCallback(generatecmd.ResultEnvelope{
			Result:   &generator.BuildResult{DocumentsBuilt: 2, DocumentsSkipped: 1},
			Metadata: map[string]any{"operation": "build_site"},
		})
	}
	return s.err
}

func withStubBuilder(t *testing.T) (*stubBuildExecutor, *bootstrap.Options) {
	t.Helper()
	original := moduleBuilder
	stub := &stubBuildExecutor{}
	captured := &bootstrap.Options{}
	moduleBuilder = func(opts bootstrap.Options) (*bootstrap.Module, error) {
		*captured = opts
		return &bootstrap.Module{Build: stub}, nil
	}
	t.Cleanup(func() { moduleBuilder = original })
	return stub, captured
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOutput := log.Writer()
	prevFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOutput)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestRunBuildForwardsCommandFlags(t *testing.T) {
	stub, _ := withStubBuilder(t)
	buf := captureLogs(t)

	err := runBuild([]string{
		"--path", "blog/first.md",
		"--path", "blog/second.md",
		"--force",
		"--dry-run",
	})
	if err != nil {
		t.Fatalf("run build: %v", err)
	}

	got := stub.last
	if len(got.Paths) != 2 || got.Paths[0] != "blog/first.md" || got.Paths[1] != "blog/second.md" {
		t.Fatalf("expected repeated paths forwarded, got %v", got.Paths)
	}
	if !got.Force || !got.DryRun {
		t.Fatalf("expected force and dry-run forwarded, got %+v", got)
	}
	if !strings.Contains(buf.String(), "module=compage operation=build summary built=2 skipped=1 failed=0") {
		t.Fatalf("expected build summary log, got %q", buf.String())
	}
}

func TestRunBuildForwardsModuleOverrides(t *testing.T) {
	_, captured := withStubBuilder(t)
	captureLogs(t)

	err := runBuild([]string{
		"--content", "content,docs",
		"--out", "generated",
		"--namespace", "acme/site",
		"--workers", "4",
		"--sitemap",
		"--base-url", "https://acme.example",
		"--cache",
		"--cache-path", "build/cache.db",
	})
	if err != nil {
		t.Fatalf("run build: %v", err)
	}

	if len(captured.ContentRoots) != 2 || captured.ContentRoots[1] != "docs" {
		t.Fatalf("unexpected content roots %v", captured.ContentRoots)
	}
	if captured.OutputDir != "generated" || captured.RootNamespace != "acme/site" {
		t.Fatalf("unexpected overrides %+v", captured)
	}
	if captured.Workers == nil || *captured.Workers != 4 {
		t.Fatalf("expected workers override, got %v", captured.Workers)
	}
	if captured.Sitemap == nil || !*captured.Sitemap {
		t.Fatalf("expected sitemap override, got %v", captured.Sitemap)
	}
	if captured.CacheEnabled == nil || !*captured.CacheEnabled || captured.CachePath != "build/cache.db" {
		t.Fatalf("unexpected cache overrides %+v", captured)
	}
}

func TestRunBuildLeavesUnsetTogglesNil(t *testing.T) {
	_, captured := withStubBuilder(t)
	captureLogs(t)

	if err := runBuild(nil); err != nil {
		t.Fatalf("run build: %v", err)
	}

	if captured.Workers != nil || captured.Sitemap != nil || captured.Manifest != nil || captured.CacheEnabled != nil {
		t.Fatalf("expected unset toggles to stay nil, got %+v", captured)
	}
}

func TestRunBuildPropagatesHandlerError(t *testing.T) {
	stub, _ := withStubBuilder(t)
	stub.err = errors.New("boom")
	captureLogs(t)

	err := runBuild(nil)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected propagated error, got %v", err)
	}
}

func TestRunBuildBuilderError(t *testing.T) {
	original := moduleBuilder
	moduleBuilder = func(bootstrap.Options) (*bootstrap.Module, error) {
		return nil, errors.New("bad config")
	}
	t.Cleanup(func() { moduleBuilder = original })

	err := runBuild(nil)
	if err == nil || !strings.Contains(err.Error(), "bad config") {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
}

func TestRunBuildMissingHandler(t *testing.T) {
	original := moduleBuilder
	moduleBuilder = func(bootstrap.Options) (*bootstrap.Module, error) {
		return &bootstrap.Module{}, nil
	}
	t.Cleanup(func() { moduleBuilder = original })

	err := runBuild(nil)
	if err == nil || !strings.Contains(err.Error(), "not configured") {
		t.Fatalf("expected handler error, got %v", err)
	}
}
