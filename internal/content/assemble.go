package content

import (
	"strings"

	"github.com/goliatone/go-compage/internal/preserve"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

// maxNestingDepth bounds recursive child-content parsing so pathological
// nesting cannot overflow the stack.
const maxNestingDepth = 16

// Assemble rebuilds the content model from rendered HTML and the
// placeholders preserved from the same document. Child content inside
// component tags is preserved and reconstructed recursively, without
// Markdown rendering.
func Assemble(file, html string, placeholders []preserve.Placeholder) (*Model, []interfaces.Diagnostic) {
	a := &assembler{file: file}
	model := a.reconstruct(html, placeholders, 0)
	model.CodeBlocks = a.codeBlocks
	return model, a.diags
}

// assembler carries the state shared across nesting levels: the document
// level code block list and the accumulated diagnostics.
type assembler struct {
	file       string
	codeBlocks []CodeBlock
	diags      []interfaces.Diagnostic
}

// reconstruct splits text on placeholder tokens in order of appearance and
// turns the pieces into segments. Sequence numbers count up from zero per
// scope; adjacent static runs collapse into one segment.
func (a *assembler) reconstruct(text string, placeholders []preserve.Placeholder, depth int) *Model {
	model := &Model{}
	seq := 0
	var static strings.Builder
	var lost []string
	rest := text

	flush := func() {
		if static.Len() == 0 {
			return
		}
		model.Segments = append(model.Segments, Segment{
			Kind:     SegmentStatic,
			Sequence: seq,
			Text:     static.String(),
		})
		seq++
		static.Reset()
	}

	for _, ph := range placeholders {
		idx := strings.Index(rest, ph.Token)
		if idx < 0 {
			// the renderer dropped the token; re-emit the original text at
			// the end so author content is never lost
			lost = append(lost, ph.Raw)
			continue
		}
		static.WriteString(rest[:idx])
		rest = rest[idx+len(ph.Token):]

		switch ph.Kind {
		case preserve.KindEscape:
			static.WriteString(ph.Text)
		case preserve.KindExpression:
			flush()
			model.Segments = append(model.Segments, Segment{
				Kind:     SegmentExpression,
				Sequence: seq,
				Text:     ph.Text,
			})
			seq++
		case preserve.KindCodeBlock:
			rest = unwrapParagraph(&static, rest)
			flush()
			a.codeBlocks = append(a.codeBlocks, CodeBlock{
				RawCode:  ph.Text,
				Location: ph.Location,
			})
			model.Segments = append(model.Segments, Segment{
				Kind:      SegmentCodeBlock,
				Sequence:  seq,
				CodeIndex: len(a.codeBlocks) - 1,
			})
			seq++
		case preserve.KindComponentTag:
			rest = unwrapParagraph(&static, rest)
			flush()
			ref := a.reference(ph, depth)
			if ref == nil {
				continue
			}
			model.Segments = append(model.Segments, Segment{
				Kind:     SegmentComponent,
				Sequence: seq,
				Ref:      ref,
			})
			seq++
			model.References = append(model.References, ref)
		}
	}

	static.WriteString(rest)
	for _, raw := range lost {
		static.WriteString(raw)
	}
	flush()
	return model
}

// unwrapParagraph removes the <p> wrapper the renderer puts around a
// block-level token that was the sole content of its paragraph, so hoisted
// code and block components do not leave an empty paragraph behind.
func unwrapParagraph(static *strings.Builder, rest string) string {
	const open, clos = "<p>", "</p>"
	pending := static.String()
	if !strings.HasSuffix(pending, open) || !strings.HasPrefix(rest, clos) {
		return rest
	}
	static.Reset()
	static.WriteString(pending[:len(pending)-len(open)])
	rest = rest[len(clos):]
	return strings.TrimPrefix(rest, "\n")
}
