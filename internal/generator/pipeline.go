package generator

import (
	"path"

	"github.com/goliatone/go-compage/internal/content"
	"github.com/goliatone/go-compage/internal/emit"
	"github.com/goliatone/go-compage/internal/metadata"
	"github.com/goliatone/go-compage/internal/naming"
	"github.com/goliatone/go-compage/internal/preserve"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

// DocumentState tracks one document through the build. Failed is
// non-terminal; the next build re-enters Discovered.
type DocumentState int

const (
	StateDiscovered DocumentState = iota
	StateParsing
	StateEmitted
	StateFailed
)

func (s DocumentState) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateParsing:
		return "parsing"
	case StateEmitted:
		return "emitted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// documentResult is the outcome of one document's trip through the
// pipeline.
type documentResult struct {
	doc       sourceDocument
	state     DocumentState
	component ComponentInfo
	diags     []interfaces.Diagnostic
	source    []byte
	skipped   bool
	cached    bool
	err       error
}

// pipeline runs the per-document stages. It carries no mutable state, so a
// single pipeline serves every worker.
type pipeline struct {
	cfg      Config
	renderer interfaces.MarkdownRenderer
	parser   *metadata.Parser
	known    map[string]struct{}
	log      interfaces.Logger
}

// compile takes one document from raw bytes to generated source. Any error
// diagnostic suppresses emission without stopping the build; panics are
// converted to an InternalError diagnostic at this boundary.
func (p *pipeline) compile(doc sourceDocument, raw []byte) (out documentResult) {
	out = documentResult{doc: doc, state: StateParsing}
	defer func() {
		if rec := recover(); rec != nil {
			out.state = StateFailed
			out.source = nil
			out.diags = append(out.diags, interfaces.NewError(
				interfaces.DiagInternalError,
				interfaces.SourceLocation{File: doc.Path},
				"recovered from panic: %v", rec,
			))
		}
	}()

	res := p.parser.Parse(doc.Path, raw)
	diags := append([]interfaces.Diagnostic(nil), res.Diagnostics...)

	pres := preserve.Preserve(doc.Path, string(res.Body), res.HeaderLines)
	diags = append(diags, pres.Diagnostics...)

	// Header errors still leave the body scannable, so later stages keep
	// collecting findings. Preserver errors do not: the protected text is
	// unreliable past the failure point.
	var model *content.Model
	if !interfaces.HasErrors(pres.Diagnostics) {
		html, err := p.renderer.Render([]byte(pres.Text))
		if err != nil {
			diags = append(diags, interfaces.NewError(
				interfaces.DiagInternalError,
				interfaces.SourceLocation{File: doc.Path},
				"render markdown: %v", err,
			))
		} else {
			var assembleDiags []interfaces.Diagnostic
			model, assembleDiags = content.Assemble(doc.Path, string(html), pres.Placeholders)
			diags = append(diags, assembleDiags...)
		}
	}

	model.ForEachReference(func(ref *content.ComponentReference) {
		if _, ok := p.known[ref.TypeName]; !ok {
			diags = append(diags, interfaces.NewWarning(
				interfaces.DiagUnresolvedComponentReference,
				ref.Location,
				"component %q does not resolve to a generated or known component", ref.TypeName,
			))
		}
	})

	resolution := naming.Resolve(doc.Path, p.cfg.RootNamespace, res.Meta.Namespace)
	out.component = ComponentInfo{
		SourcePath: doc.Path,
		TypeName:   resolution.TypeName,
		ImportPath: resolution.ImportPath,
		OutputPath: outputRelPath(doc.Path, resolution.TypeName),
		Routes:     res.Meta.Routes,
		Title:      res.Meta.Title,
	}

	if model == nil || interfaces.HasErrors(diags) {
		out.state = StateFailed
		out.diags = diags
		return out
	}

	src, err := emit.Emit(&emit.Document{
		SourcePath:  doc.Path,
		TypeName:    resolution.TypeName,
		ImportPath:  resolution.ImportPath,
		PackageName: resolution.PackageName,
		Meta:        res.Meta,
		Content:     model,
	})
	if err != nil {
		// The emitted file failed the gofmt gate, which means an author
		// expression or code block broke the generated syntax.
		diags = append(diags, interfaces.NewError(
			interfaces.DiagMalformedEmbeddedSyntax,
			interfaces.SourceLocation{File: doc.Path},
			"generated source does not parse: %v", err,
		))
		out.state = StateFailed
		out.diags = diags
		return out
	}

	out.state = StateEmitted
	out.diags = diags
	out.source = src
	return out
}

func outputRelPath(docPath, typeName string) string {
	dir := path.Dir(docPath)
	name := naming.FileName(typeName)
	if dir == "." || dir == "" {
		return name
	}
	return path.Join(dir, name)
}
