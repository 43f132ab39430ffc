package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-compage/pkg/interfaces"
)

// Options configure the goldmark engine backing the default renderer.
type Options struct {
	// Extensions names entries from the extension registry. An empty list
	// selects the defaults (GFM, linkify, task list).
	Extensions []string
	// HardWraps renders single newlines as <br> elements.
	HardWraps bool
	// Unsafe passes raw HTML through to the output. Documents that intermix
	// literal HTML with Markdown need it.
	Unsafe bool
}

// Renderer implements interfaces.MarkdownRenderer using the goldmark
// engine. The renderer is stateless; a single instance can serve parallel
// document pipelines without locking because each Render call builds its
// own engine.
type Renderer struct {
	opts Options
}

// NewRenderer constructs a renderer with the supplied options.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

var _ interfaces.MarkdownRenderer = (*Renderer)(nil)

// Render converts Markdown into an HTML fragment. Placeholder tokens are
// plain alphanumeric words, so the engine passes them through untouched.
func (r *Renderer) Render(src []byte) ([]byte, error) {
	engine := newEngine(r.opts)
	var buf bytes.Buffer
	if err := engine.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

func newEngine(opts Options) goldmark.Markdown {
	exts := collectExtensions(opts.Extensions)

	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	rendererOptions := []renderer.Option{}

	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	if opts.Unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}

	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}

	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}
