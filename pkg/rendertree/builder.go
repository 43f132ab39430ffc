// Package rendertree is the component framework targeted by generated code.
// A component describes its output by invoking Builder methods in sequence
// order; the builder records the instructions as a flat op list with nested
// scopes for component children.
package rendertree

import (
	"fmt"
	"strings"
)

// OpKind identifies one recorded render-tree instruction.
type OpKind int

const (
	// OpMarkup appends a raw HTML fragment.
	OpMarkup OpKind = iota + 1
	// OpContent appends dynamic content computed by the component.
	OpContent
	// OpOpenComponent opens a nested component scope.
	OpOpenComponent
	// OpAttribute assigns an attribute to the open component.
	OpAttribute
	// OpChildContent attaches a child render fragment to the open component.
	OpChildContent
	// OpCloseComponent closes the current component scope.
	OpCloseComponent
)

// Op is one recorded instruction. Sequence is -1 for instructions that carry
// no sequence number (attributes, child content, close).
type Op struct {
	Kind      OpKind
	Sequence  int
	Markup    string
	Name      string
	Value     any
	Component Component
	Children  []Op
}

// Builder records the render-tree instructions emitted by one component
// scope. Sequence numbers must be strictly increasing within a scope; child
// scopes opened through ChildContent number independently from zero. The
// builder panics on contract violations; those are programming errors in
// the calling component, not runtime conditions.
type Builder struct {
	ops      []Op
	lastSeq  int
	open     []int // indices into ops of unclosed OpOpenComponent entries
	title    string
	hasTitle bool
}

// NewBuilder returns an empty builder scope.
func NewBuilder() *Builder {
	return &Builder{lastSeq: -1}
}

func (b *Builder) claim(seq int) {
	if seq <= b.lastSeq {
		panic(fmt.Sprintf("rendertree: sequence %d not after %d", seq, b.lastSeq))
	}
	b.lastSeq = seq
}

// SetPageTitle records the document title for the rendered page. It carries
// no sequence number and may be called at most once per scope.
func (b *Builder) SetPageTitle(title string) {
	if b.hasTitle {
		panic("rendertree: page title already set")
	}
	b.title = title
	b.hasTitle = true
}

// PageTitle returns the recorded page title, if any.
func (b *Builder) PageTitle() (string, bool) {
	return b.title, b.hasTitle
}

// Markup appends a static HTML fragment.
func (b *Builder) Markup(seq int, html string) {
	b.claim(seq)
	b.ops = append(b.ops, Op{Kind: OpMarkup, Sequence: seq, Markup: html})
}

// Content appends dynamic content. The value is rendered by the host.
func (b *Builder) Content(seq int, value any) {
	b.claim(seq)
	b.ops = append(b.ops, Op{Kind: OpContent, Sequence: seq, Value: value})
}

// OpenComponent opens a nested component scope. Attribute and ChildContent
// apply to the most recently opened component until CloseComponent.
func (b *Builder) OpenComponent(seq int, c Component) {
	b.claim(seq)
	b.open = append(b.open, len(b.ops))
	b.ops = append(b.ops, Op{Kind: OpOpenComponent, Sequence: seq, Component: c})
}

func (b *Builder) openIndex() int {
	if len(b.open) == 0 {
		panic("rendertree: no open component scope")
	}
	return b.open[len(b.open)-1]
}

// Attribute assigns an attribute on the open component. Components embedding
// ComponentBase also receive the value through SetAttribute.
func (b *Builder) Attribute(name string, value any) {
	idx := b.openIndex()
	b.ops = append(b.ops, Op{Kind: OpAttribute, Sequence: -1, Name: name, Value: value})
	if rec, ok := b.ops[idx].Component.(interface{ SetAttribute(string, any) }); ok && rec != nil {
		rec.SetAttribute(name, value)
	}
}

// ChildContent runs fn against a fresh child scope and attaches the recorded
// fragment to the open component. Sequence numbering restarts at zero inside
// the child scope.
func (b *Builder) ChildContent(fn func(*Builder)) {
	b.openIndex()
	child := NewBuilder()
	if fn != nil {
		fn(child)
	}
	b.ops = append(b.ops, Op{Kind: OpChildContent, Sequence: -1, Children: child.ops})
}

// CloseComponent closes the most recently opened component scope.
func (b *Builder) CloseComponent() {
	if len(b.open) == 0 {
		panic("rendertree: CloseComponent without open component")
	}
	b.open = b.open[:len(b.open)-1]
	b.ops = append(b.ops, Op{Kind: OpCloseComponent, Sequence: -1})
}

// Ops returns the recorded instruction list. The returned slice is shared;
// callers must not mutate it.
func (b *Builder) Ops() []Op {
	return b.ops
}

// StaticHTML concatenates the markup payloads of the scope's top-level
// markup instructions, in order.
func (b *Builder) StaticHTML() string {
	var sb strings.Builder
	for _, op := range b.ops {
		if op.Kind == OpMarkup {
			sb.WriteString(op.Markup)
		}
	}
	return sb.String()
}
