package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goliatone/go-compage/cmd/compage/internal/bootstrap"
	"github.com/goliatone/go-compage/cmd/compage/internal/watcher"
	generatecmd "github.com/goliatone/go-compage/internal/commands/generate"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runWatch(ctx, os.Args[1:]); err != nil {
		log.Fatalf("compage watch: %v", err)
	}
}

func runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compage-watch", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a compage.json configuration file")
	content := fs.String("content", "", "Comma separated content roots (defaults to config)")
	out := fs.String("out", "", "Output directory for generated source (defaults to config)")
	namespace := fs.String("namespace", "", "Import path prefix for generated packages")
	debounce := fs.Duration("debounce", 250*time.Millisecond, "Quiet period before a change burst triggers a rebuild")
	logLevel := fs.String("log-level", "", "Log level (trace, debug, info, warn, error, fatal)")
	logFormat := fs.String("log-format", "", "Log format (json, console, pretty)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	opts := bootstrap.Options{
		ConfigPath:    *configPath,
		ContentRoots:  bootstrap.SplitList(*content),
		OutputDir:     *out,
		RootNamespace: *namespace,
		LogLevel:      *logLevel,
		LogFormat:     *logFormat,
	}

	module, err := moduleBuilder(opts)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if module.Build == nil {
		return fmt.Errorf("build handler not configured")
	}

	// The watcher is installed before the initial build so edits made while
	// it runs are queued rather than lost.
	w, err := watcher.New(watcher.Options{
		Roots:     module.Config.ContentRoots,
		Extension: module.Config.Extension,
		Debounce:  *debounce,
		Logger:    module.Logger,
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Close()

	if err := rebuild(ctx, module, nil); err != nil {
		log.Printf("module=compage operation=watch initial build failed: %v", err)
	}

	log.Printf("module=compage operation=watch roots=%s debounce=%s",
		strings.Join(module.Config.ContentRoots, ","), *debounce)

	err = w.Run(ctx, func(burst watcher.Burst) {
		paths := burst.Paths
		if burst.Full {
			paths = nil
		}
		if err := rebuild(ctx, module, paths); err != nil {
			log.Printf("module=compage operation=watch rebuild failed: %v", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func rebuild(ctx context.Context, module *bootstrap.Module, paths []string) error {
	var summary *generatecmd.ResultEnvelope
	cmd := generatecmd.BuildSiteCommand{
		Paths: paths,
		ResultCallback: func(env generatecmd.ResultEnvelope) {
			summary = &env
		},
	}

	execErr := module.Build.Execute(ctx, cmd)
	if summary != nil && summary.Result != nil {
		result := summary.Result
		log.Printf("module=compage operation=watch summary built=%d skipped=%d failed=%d duration=%s",
			result.DocumentsBuilt, result.DocumentsSkipped, result.DocumentsFailed, result.Duration)
	}
	return execErr
}
