// Package preserve protects embedded template syntax from Markdown
// rendering by substituting inert placeholder tokens, which are restored
// once the renderer has produced HTML.
package preserve

import (
	"strings"

	"github.com/goliatone/go-compage/pkg/interfaces"
)

// Kind classifies what a placeholder stands for.
type Kind int

const (
	// KindEscape is a literal @ written as @@.
	KindEscape Kind = iota + 1
	// KindExpression is an inline expression such as @user.Name or @(x + y).
	KindExpression
	// KindCodeBlock is an @code { ... } member block.
	KindCodeBlock
	// KindComponentTag is a PascalCase component tag, self-closing or paired.
	KindComponentTag
)

func (k Kind) String() string {
	switch k {
	case KindEscape:
		return "escape"
	case KindExpression:
		return "expression"
	case KindCodeBlock:
		return "code-block"
	case KindComponentTag:
		return "component-tag"
	default:
		return "unknown"
	}
}

// Placeholder records one preserved span and the token that stands in for
// it inside the rendered Markdown.
type Placeholder struct {
	Token string
	Kind  Kind
	// Raw is the original source span, marker included.
	Raw string
	// Text is what the span contributes downstream: the literal @ for an
	// escape, the expression without its marker, the code between the
	// braces, or the full tag text for component references.
	Text     string
	Location interfaces.SourceLocation
}

// Result carries the Markdown-safe text and the substitutions made in it.
type Result struct {
	Text         string
	Placeholders []Placeholder
	Diagnostics  []interfaces.Diagnostic
}

// basePrefix seeds placeholder tokens. It is extended until it no longer
// occurs in the body, so tokens cannot collide with author text and
// recompiling unchanged input stays byte-stable.
const basePrefix = "cpg"

func tokenPrefix(body string) string {
	prefix := basePrefix
	for strings.Contains(body, prefix) {
		prefix += "g"
	}
	return prefix
}

// Preserve scans body and replaces every live construct with an inert
// alphanumeric token. headerLines shifts reported positions so they are
// file-absolute. Fenced code blocks and inline code spans pass through
// verbatim; syntax inside them is display text.
func Preserve(file, body string, headerLines int) Result {
	s := &scanner{
		input:   body,
		file:    file,
		lineOff: headerLines,
		line:    1,
		col:     1,
		prefix:  tokenPrefix(body),
	}
	s.run()
	return Result{
		Text:         s.out.String(),
		Placeholders: s.placeholders,
		Diagnostics:  s.diags,
	}
}
