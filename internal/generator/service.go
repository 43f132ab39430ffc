package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-compage/internal/buildcache"
	"github.com/goliatone/go-compage/internal/logging"
	"github.com/goliatone/go-compage/internal/markdown"
	"github.com/goliatone/go-compage/internal/metadata"
	"github.com/goliatone/go-compage/internal/naming"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

var (
	errRendererRequired    = errors.New("generator: markdown renderer is required")
	errOutputDirRequired   = errors.New("generator: output directory required")
	errContentRootRequired = errors.New("generator: at least one content root is required")
)

// Service describes the build driver contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the build driver.
type Config struct {
	// RootNamespace prefixes the import path of every generated package.
	RootNamespace string
	// ContentRoots lists the directories scanned for documents.
	ContentRoots []string
	// OutputDir receives generated files, mirroring each document's
	// directory layout.
	OutputDir string
	// Extension selects the documents to compile. Defaults to ".md".
	Extension string
	// KnownComponents lists component type names resolvable outside the
	// generated set.
	KnownComponents  []string
	Workers          int
	Incremental      bool
	CleanBuild       bool
	BaseURL          string
	GenerateManifest bool
	GenerateSitemap  bool
	// Markdown configures the default renderer and participates in the
	// incremental fingerprint; hosts supplying their own renderer must keep
	// the two consistent.
	Markdown markdown.Options
}

// BuildOptions narrows the scope of one driver run.
type BuildOptions struct {
	// Paths restricts the build to the given source paths, as watch mode
	// does per change burst. Empty builds every discovered document.
	Paths []string
	// Force recompiles documents even when their cached outcome is current.
	Force bool
	// DryRun compiles without touching the output directory.
	DryRun bool
}

// ComponentInfo describes one emitted component.
type ComponentInfo struct {
	SourcePath string    `json:"source_path"`
	TypeName   string    `json:"type_name"`
	ImportPath string    `json:"import_path"`
	OutputPath string    `json:"output_path"`
	Routes     []string  `json:"routes,omitempty"`
	Title      string    `json:"title,omitempty"`
	Hash       string    `json:"hash"`
	ModTime    time.Time `json:"mod_time"`
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	DocumentsBuilt   int
	DocumentsSkipped int
	DocumentsFailed  int
	Components       []ComponentInfo
	Diagnostics      []interfaces.Diagnostic
	Duration         time.Duration
	Errors           []error
	DryRun           bool
}

// Dependencies lists the collaborators required by the driver.
type Dependencies struct {
	// Renderer turns Markdown into HTML. Required.
	Renderer interfaces.MarkdownRenderer
	// Logger supplies module loggers. Optional.
	Logger interfaces.LoggerProvider
	// Store persists per-document outcomes across processes. Optional.
	Store *buildcache.Store
	// Memo is the in-process outcome cache. Optional; a fresh cache is
	// created when absent.
	Memo *MemoCache
}

// NewService wires a build driver with the provided configuration and
// dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	if strings.TrimSpace(cfg.Extension) == "" {
		cfg.Extension = ".md"
	}
	memo := deps.Memo
	if memo == nil {
		memo = NewMemoCache()
	}
	return &service{
		cfg:         cfg,
		deps:        deps,
		memo:        memo,
		fingerprint: cfg.fingerprint(),
		log:         logging.GeneratorLogger(deps.Logger),
		now:         time.Now,
	}
}

type service struct {
	cfg         Config
	deps        Dependencies
	memo        *MemoCache
	fingerprint string
	log         interfaces.Logger
	now         func() time.Time
}

// sourceDocument is one discovered work unit. Content is read at pipeline
// entry, not during discovery.
type sourceDocument struct {
	Root    string
	Path    string
	ModTime time.Time
	loader  *markdown.Loader
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Renderer == nil {
		return nil, errRendererRequired
	}
	if strings.TrimSpace(s.cfg.OutputDir) == "" {
		return nil, errOutputDirRequired
	}
	if len(s.cfg.ContentRoots) == 0 {
		return nil, errContentRootRequired
	}

	start := s.now()
	result := &BuildResult{DryRun: opts.DryRun}

	docs, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}
	s.log.Debug("documents discovered", "count", len(docs))

	// Reference resolution needs every generated type name, including
	// documents outside this run's path filter.
	known := s.knownTypeNames(docs)

	selected := filterDocuments(docs, opts.Paths)
	if len(selected) == 0 {
		result.Duration = s.now().Sub(start)
		return result, nil
	}

	if s.cfg.CleanBuild && !opts.DryRun {
		if err := s.cleanOutputDir(); err != nil {
			return nil, err
		}
	}

	pipe := &pipeline{
		cfg:      s.cfg,
		renderer: s.deps.Renderer,
		parser:   metadata.NewParser(s.deps.Logger),
		known:    known,
		log:      s.log,
	}

	var (
		mu          sync.Mutex
		outcomes    = make([]documentResult, 0, len(selected))
		errorsSlice []error
	)
	collect := func(outcome documentResult) {
		mu.Lock()
		defer mu.Unlock()
		outcomes = append(outcomes, outcome)
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
		}
	}

	workerCount := s.effectiveWorkerCount(len(selected))
	if workerCount <= 1 || len(selected) <= 1 {
		for _, doc := range selected {
			select {
			case <-ctx.Done():
				collect(documentResult{doc: doc, state: StateFailed, err: ctx.Err()})
				return s.finish(result, outcomes, start), ctx.Err()
			default:
				collect(s.compileDocument(ctx, pipe, doc, opts.Force))
			}
		}
	} else {
		if err := s.compileConcurrently(ctx, pipe, selected, workerCount, opts.Force, collect); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].doc.Path < outcomes[j].doc.Path
	})

	if !opts.DryRun {
		if err := s.persistOutputs(ctx, outcomes); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
		// Partial runs see only a slice of the site, so manifest and
		// sitemap regeneration waits for the next full build.
		if len(opts.Paths) == 0 {
			if s.cfg.GenerateManifest {
				if err := s.writeManifest(outcomes); err != nil {
					errorsSlice = append(errorsSlice, err)
				}
			}
			if s.cfg.GenerateSitemap && strings.TrimSpace(s.cfg.BaseURL) != "" {
				if err := s.writeSitemap(outcomes, start); err != nil {
					errorsSlice = append(errorsSlice, err)
				}
			}
		}
	}

	s.finish(result, outcomes, start)
	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

// Clean removes every generated artifact.
func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.cleanOutputDir()
}

func (s *service) finish(result *BuildResult, outcomes []documentResult, start time.Time) *BuildResult {
	for _, outcome := range outcomes {
		result.Diagnostics = append(result.Diagnostics, outcome.diags...)
		switch {
		case outcome.state == StateFailed:
			result.DocumentsFailed++
		case outcome.skipped:
			result.DocumentsSkipped++
			result.Components = append(result.Components, outcome.component)
		default:
			result.DocumentsBuilt++
			result.Components = append(result.Components, outcome.component)
		}
	}
	result.Duration = s.now().Sub(start)
	return result
}

func (s *service) discover(ctx context.Context) ([]sourceDocument, error) {
	var docs []sourceDocument
	seen := map[string]struct{}{}
	for _, root := range s.cfg.ContentRoots {
		fsys, err := prepareFilesystem(root)
		if err != nil {
			return nil, err
		}
		loader := markdown.NewLoader(fsys, root, s.cfg.Extension)
		sources, err := loader.Discover(ctx)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			if _, ok := seen[src.Path]; ok {
				s.log.Warn("duplicate document path across content roots",
					"path", src.Path,
					"root", root,
				)
				continue
			}
			seen[src.Path] = struct{}{}
			doc := sourceDocument{Root: root, Path: src.Path, loader: loader}
			if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(src.Path))); err == nil {
				doc.ModTime = info.ModTime()
			}
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func (s *service) knownTypeNames(docs []sourceDocument) map[string]struct{} {
	known := make(map[string]struct{}, len(docs)+len(s.cfg.KnownComponents))
	for _, doc := range docs {
		res := naming.Resolve(doc.Path, s.cfg.RootNamespace, "")
		known[res.TypeName] = struct{}{}
	}
	for _, name := range s.cfg.KnownComponents {
		if name = strings.TrimSpace(name); name != "" {
			known[name] = struct{}{}
		}
	}
	return known
}

func (s *service) compileConcurrently(
	ctx context.Context,
	pipe *pipeline,
	docs []sourceDocument,
	workers int,
	force bool,
	collect func(documentResult),
) error {
	jobs := make(chan sourceDocument)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				select {
				case <-ctx.Done():
					collect(documentResult{doc: doc, state: StateFailed, err: ctx.Err()})
					return
				default:
					collect(s.compileDocument(ctx, pipe, doc, force))
				}
			}
		}()
	}

	for _, doc := range docs {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case jobs <- doc:
		}
	}
	close(jobs)
	wg.Wait()
	return nil
}

// compileDocument reads the document once, consults the caches, and runs the
// pipeline on a miss.
func (s *service) compileDocument(ctx context.Context, pipe *pipeline, doc sourceDocument, force bool) documentResult {
	content, err := doc.loader.Read(doc.Path)
	if err != nil {
		return documentResult{
			doc:   doc,
			state: StateFailed,
			err:   fmt.Errorf("generator: read %s: %w", doc.Path, err),
		}
	}

	key := documentKey(content, s.fingerprint)
	if s.cfg.Incremental && !force {
		if outcome, ok := s.cachedOutcome(ctx, doc, key); ok {
			return outcome
		}
	}

	outcome := pipe.compile(doc, content)
	outcome.component.Hash = key
	outcome.component.ModTime = doc.ModTime

	s.memo.Insert(key, MemoEntry{
		State:       outcome.state,
		Component:   outcome.component,
		Diagnostics: outcome.diags,
		Source:      outcome.source,
	})

	return outcome
}

// cachedOutcome answers from the in-process memo first, then from the
// persistent store. Store hits require the output file to still exist.
func (s *service) cachedOutcome(ctx context.Context, doc sourceDocument, key string) (documentResult, bool) {
	if entry, ok := s.memo.Get(key); ok {
		return documentResult{
			doc:       doc,
			state:     entry.State,
			component: entry.Component,
			diags:     entry.Diagnostics,
			source:    entry.Source,
			skipped:   entry.State == StateEmitted,
			cached:    true,
		}, true
	}

	if s.deps.Store == nil {
		return documentResult{}, false
	}
	stored, err := s.deps.Store.Lookup(ctx, doc.Path)
	if err != nil {
		var nf *buildcache.NotFoundError
		if !errors.As(err, &nf) {
			s.log.Warn("build cache lookup failed", "path", doc.Path, "error", err)
		}
		return documentResult{}, false
	}
	if stored.Hash != key {
		return documentResult{}, false
	}
	outputPath := filepath.Join(s.cfg.OutputDir, filepath.FromSlash(stored.OutputPath))
	if _, err := os.Stat(outputPath); err != nil {
		return documentResult{}, false
	}

	component := ComponentInfo{
		SourcePath: stored.SourcePath,
		TypeName:   stored.TypeName,
		ImportPath: stored.ImportPath,
		OutputPath: stored.OutputPath,
		Routes:     stored.Routes,
		Hash:       stored.Hash,
		ModTime:    doc.ModTime,
	}
	s.memo.Insert(key, MemoEntry{State: StateEmitted, Component: component})
	return documentResult{
		doc:       doc,
		state:     StateEmitted,
		component: component,
		skipped:   true,
		cached:    true,
	}, true
}

// persistOutputs writes generated sources and records emitted outcomes in
// the persistent store.
func (s *service) persistOutputs(ctx context.Context, outcomes []documentResult) error {
	dirCache := map[string]struct{}{}
	var errs []error
	for _, outcome := range outcomes {
		if outcome.state != StateEmitted {
			continue
		}
		target := filepath.Join(s.cfg.OutputDir, filepath.FromSlash(outcome.component.OutputPath))
		if len(outcome.source) > 0 {
			if err := ensureDir(dirCache, filepath.Dir(target)); err != nil {
				errs = append(errs, err)
				continue
			}
			if err := os.WriteFile(target, outcome.source, 0o644); err != nil {
				errs = append(errs, fmt.Errorf("generator: write %s: %w", target, err))
				continue
			}
			s.log.Debug("component written",
				"source_path", outcome.component.SourcePath,
				"output_path", outcome.component.OutputPath,
				"type_name", outcome.component.TypeName,
			)
		}

		if s.deps.Store != nil && !outcome.cached {
			entry := &buildcache.Entry{
				SourcePath: outcome.component.SourcePath,
				Hash:       outcome.component.Hash,
				TypeName:   outcome.component.TypeName,
				ImportPath: outcome.component.ImportPath,
				OutputPath: outcome.component.OutputPath,
				Routes:     outcome.component.Routes,
			}
			if _, err := s.deps.Store.Record(ctx, entry); err != nil {
				s.log.Warn("build cache record failed", "path", outcome.component.SourcePath, "error", err)
			}
		}
	}
	return errors.Join(errs...)
}

func (s *service) cleanOutputDir() error {
	dir := strings.TrimSpace(s.cfg.OutputDir)
	if dir == "" || dir == "." || dir == "/" {
		return errOutputDirRequired
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("generator: clean %s: %w", dir, err)
	}
	return nil
}

func (s *service) effectiveWorkerCount(documentCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if documentCount > 0 && workers > documentCount {
		return documentCount
	}
	return workers
}

func filterDocuments(docs []sourceDocument, paths []string) []sourceDocument {
	if len(paths) == 0 {
		return docs
	}
	wanted := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		wanted[path.Clean(strings.TrimSpace(p))] = struct{}{}
	}
	selected := make([]sourceDocument, 0, len(paths))
	for _, doc := range docs {
		if _, ok := wanted[doc.Path]; ok {
			selected = append(selected, doc)
		}
	}
	return selected
}

func prepareFilesystem(root string) (fs.FS, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("generator: content root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("generator: content root %s is not a directory", root)
	}
	return os.DirFS(root), nil
}

func ensureDir(cache map[string]struct{}, dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if _, ok := cache[dir]; ok {
		return nil
	}
	cache[dir] = struct{}{}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("generator: ensure dir %s: %w", dir, err)
	}
	return nil
}
