package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-compage/cmd/compage/internal/bootstrap"
	generatecmd "github.com/goliatone/go-compage/internal/commands/generate"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runBuild(os.Args[1:]); err != nil {
		log.Fatalf("compage build: %v", err)
	}
}

// pathList collects repeated --path flags.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(value string) error {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*p = append(*p, trimmed)
	}
	return nil
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("compage-build", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a compage.json configuration file")
	content := fs.String("content", "", "Comma separated content roots (defaults to config)")
	out := fs.String("out", "", "Output directory for generated source (defaults to config)")
	namespace := fs.String("namespace", "", "Import path prefix for generated packages")
	baseURL := fs.String("base-url", "", "Site origin used for absolute sitemap URLs")
	workers := fs.Int("workers", 0, "Concurrent compilations (0 selects GOMAXPROCS)")
	force := fs.Bool("force", false, "Recompile documents even when cached outcomes are current")
	dryRun := fs.Bool("dry-run", false, "Compile without writing generated files")
	incremental := fs.Bool("incremental", true, "Skip documents whose cached outcome is current")
	cleanBuild := fs.Bool("clean-build", false, "Clear the output directory before a full build")
	manifest := fs.Bool("manifest", true, "Write the route manifest after full builds")
	sitemap := fs.Bool("sitemap", false, "Write sitemap.xml after full builds (requires a base URL)")
	cache := fs.Bool("cache", false, "Persist build outcomes in the SQLite build cache")
	cachePath := fs.String("cache-path", "", "SQLite database location for the persistent cache")
	logLevel := fs.String("log-level", "", "Log level (trace, debug, info, warn, error, fatal)")
	logFormat := fs.String("log-format", "", "Log format (json, console, pretty)")
	var paths pathList
	fs.Var(&paths, "path", "Source path relative to its content root; repeatable")

	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	opts := bootstrap.Options{
		ConfigPath:    *configPath,
		ContentRoots:  bootstrap.SplitList(*content),
		OutputDir:     *out,
		RootNamespace: *namespace,
		BaseURL:       *baseURL,
		CachePath:     *cachePath,
		LogLevel:      *logLevel,
		LogFormat:     *logFormat,
	}
	if set["workers"] {
		opts.Workers = workers
	}
	if set["incremental"] {
		opts.Incremental = incremental
	}
	if set["clean-build"] {
		opts.CleanBuild = cleanBuild
	}
	if set["manifest"] {
		opts.Manifest = manifest
	}
	if set["sitemap"] {
		opts.Sitemap = sitemap
	}
	if set["cache"] {
		opts.CacheEnabled = cache
	}

	module, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if module.Build == nil {
		return fmt.Errorf("build handler not configured")
	}

	var summary *generatecmd.ResultEnvelope
	cmd := generatecmd.BuildSiteCommand{
		Paths:  paths,
		Force:  *force,
		DryRun: *dryRun,
		ResultCallback: func(env generatecmd.ResultEnvelope) {
			summary = &env
		},
	}

	execErr := module.Build.Execute(context.Background(), cmd)
	if summary != nil && summary.Result != nil {
		result := summary.Result
		log.Printf("module=compage operation=build summary built=%d skipped=%d failed=%d duration=%s",
			result.DocumentsBuilt, result.DocumentsSkipped, result.DocumentsFailed, result.Duration)
	}
	if execErr != nil {
		return fmt.Errorf("execute build command: %w", execErr)
	}
	return nil
}
