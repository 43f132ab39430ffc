package generatecmd

import (
	"context"

	"github.com/goliatone/go-compage/internal/commands"
	"github.com/goliatone/go-compage/internal/generator"
	"github.com/goliatone/go-compage/internal/logging"
	"github.com/goliatone/go-compage/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	buildOperation = "generate.build_site"
	cleanOperation = "generate.clean_site"
)

var (
	_ command.Commander[BuildSiteCommand] = (*BuildSiteHandler)(nil)
	_ command.Commander[CleanSiteCommand] = (*CleanSiteHandler)(nil)
)

// BuildSiteHandler runs component generation via the shared command handler
// foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler creates a handler bound to the supplied build driver.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			Paths:  msg.Paths,
			Force:  msg.Force,
			DryRun: msg.DryRun,
		})
		if err != nil {
			return err
		}

		logging.WithFields(baseLogger, map[string]any{
			"built_count":   result.DocumentsBuilt,
			"skipped_count": result.DocumentsSkipped,
			"failed_count":  result.DocumentsFailed,
			"dry_run":       msg.DryRun,
		}).Info("generate.command.build_site.completed")

		for _, diag := range result.Diagnostics {
			if diag.Severity == interfaces.SeverityError {
				baseLogger.Error("generate.command.build_site.diagnostic", "diagnostic", diag.String())
			}
		}

		if msg.ResultCallback != nil {
			msg.ResultCallback(ResultEnvelope{
				Result: result,
				Metadata: map[string]any{
					"operation": "build_site",
					"dry_run":   msg.DryRun,
				},
			})
		}

		// The driver reports author errors through diagnostics, not its
		// error return; command consumers need a hard failure signal.
		if result.DocumentsFailed > 0 {
			return commands.GenerationError(result.DocumentsFailed)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand](buildOperation),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{}
			if len(msg.Paths) > 0 {
				fields["path_count"] = len(msg.Paths)
			}
			if msg.Force {
				fields["force"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanSiteHandler removes generated artifacts via the shared command
// handler foundation.
type CleanSiteHandler struct {
	inner *commands.Handler[CleanSiteCommand]
}

// NewCleanSiteHandler creates a handler bound to the supplied build driver.
func NewCleanSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[CleanSiteCommand]) *CleanSiteHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg CleanSiteCommand) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := service.Clean(ctx); err != nil {
			return err
		}
		baseLogger.Info("generate.command.clean_site.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[CleanSiteCommand]{
		commands.WithLogger[CleanSiteCommand](baseLogger),
		commands.WithOperation[CleanSiteCommand](cleanOperation),
		commands.WithTelemetry(commands.DefaultTelemetry[CleanSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[CleanSiteCommand].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
