// Package generatecmd exposes component generation as go-command messages
// so builds can run through dispatchers, cron schedules, or any other
// command transport.
package generatecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-compage/internal/generator"
)

const (
	buildSiteMessageType = "compage.generate.build_site"
	cleanSiteMessageType = "compage.generate.clean_site"
)

// ResultEnvelope carries a completed run's outcome back to interactive
// callers such as the CLI, which print summaries the structured logs
// already capture.
type ResultEnvelope struct {
	Result   *generator.BuildResult
	Metadata map[string]any
}

// BuildSiteCommand triggers one generation run. An empty Paths list builds
// every discovered document; a populated list narrows the run the way watch
// mode does per change burst.
type BuildSiteCommand struct {
	// Paths restricts the run to the listed source paths, relative to their
	// content root.
	Paths []string `json:"paths,omitempty"`
	// Force recompiles documents even when their cached outcome is current.
	Force bool `json:"force,omitempty"`
	// DryRun compiles without writing generated files.
	DryRun bool `json:"dry_run,omitempty"`
	// ResultCallback, when set, receives the run outcome on the handler
	// goroutine after the driver returns.
	ResultCallback func(ResultEnvelope) `json:"-"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate rejects blank path entries before handlers execute.
func (cmd BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Paths, validation.By(func(value any) error {
			paths, _ := value.([]string)
			for _, path := range paths {
				if strings.TrimSpace(path) == "" {
					return validation.NewError("compage.generate.build_site.path_blank", "path entries cannot be blank")
				}
			}
			return nil
		})),
	)
}

// CleanSiteCommand removes every generated artifact from the output
// directory.
type CleanSiteCommand struct{}

// Type implements command.Message.
func (CleanSiteCommand) Type() string { return cleanSiteMessageType }

// Validate implements command.Message; the command carries no inputs.
func (CleanSiteCommand) Validate() error { return nil }
