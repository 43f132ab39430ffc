// Package content models a document body as an ordered segment stream and
// rebuilds that stream from rendered Markdown.
package content

import (
	"github.com/goliatone/go-compage/pkg/interfaces"
)

// SegmentKind tags the variants of a Segment.
type SegmentKind int

const (
	// SegmentStatic is literal HTML markup.
	SegmentStatic SegmentKind = iota + 1
	// SegmentExpression is a verbatim expression rendered as content.
	SegmentExpression
	// SegmentCodeBlock marks where a hoisted member block stood. It holds
	// an index into the document-level code block list and produces no
	// tree instruction.
	SegmentCodeBlock
	// SegmentComponent is a nested component reference.
	SegmentComponent
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentStatic:
		return "static"
	case SegmentExpression:
		return "expression"
	case SegmentCodeBlock:
		return "code-block"
	case SegmentComponent:
		return "component"
	default:
		return "unknown"
	}
}

// Segment is one ordered unit of a content model. Sequence numbers are
// strictly increasing within a scope and start at zero; nested child
// content owns its own numbering.
type Segment struct {
	Kind     SegmentKind
	Sequence int
	// Text carries static markup or the expression, depending on Kind.
	Text string
	// CodeIndex points into the document-level code block list for
	// SegmentCodeBlock.
	CodeIndex int
	// Ref is set for SegmentComponent.
	Ref *ComponentReference
}

// Model is the ordered content of one scope. The root model additionally
// carries every code block in the document, including blocks contributed
// by nested child content.
type Model struct {
	Segments   []Segment
	References []*ComponentReference
	CodeBlocks []CodeBlock
}

// ComponentReference is one parsed component tag.
type ComponentReference struct {
	TypeName   string
	Parameters []ReferenceParameter
	// ChildContent is nil for self-closing tags and tags without content.
	ChildContent *Model
	Location     interfaces.SourceLocation
}

// ReferenceParameter is one attribute on a component tag. Values carrying
// the expression marker pass through verbatim and are never evaluated.
type ReferenceParameter struct {
	Name         string
	Value        string
	IsExpression bool
}

// CodeBlock is one hoisted member block, emitted verbatim at package level.
type CodeBlock struct {
	RawCode  string
	Location interfaces.SourceLocation
}

// ForEachReference visits every component reference in the model in
// document order, descending into child content.
func (m *Model) ForEachReference(fn func(*ComponentReference)) {
	if m == nil {
		return
	}
	for _, seg := range m.Segments {
		if seg.Kind != SegmentComponent || seg.Ref == nil {
			continue
		}
		fn(seg.Ref)
		seg.Ref.ChildContent.ForEachReference(fn)
	}
}
