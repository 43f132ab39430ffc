package preserve

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-compage/pkg/interfaces"
)

// scanner walks the body once, copying literal text and substituting
// placeholder tokens. Line and column are 1-based and rune-correct.
type scanner struct {
	input   string
	file    string
	lineOff int

	pos  int
	line int
	col  int
	prev rune

	out          strings.Builder
	placeholders []Placeholder
	diags        []interfaces.Diagnostic
	prefix       string
}

func (s *scanner) run() {
	for s.pos < len(s.input) {
		if s.col == 1 {
			if end, ok := s.fenceEnd(s.pos); ok {
				s.copyTo(end)
				continue
			}
		}
		switch r := s.peek(); {
		case r == '`':
			s.inlineCode()
		case r == '@':
			s.marker()
		case r == '<':
			s.componentTag()
		default:
			s.copyRune()
		}
	}
}

// marker dispatches on what follows an @ sign. An @ preceded by an
// identifier rune is plain text, so addresses like user@example.com never
// open an expression.
func (s *scanner) marker() {
	if identRune(s.prev) {
		s.copyRune()
		return
	}
	switch {
	case s.matchString("@@"):
		s.escape()
	case s.atCodeMarker():
		s.codeBlock()
	default:
		s.expression()
	}
}

func (s *scanner) escape() {
	loc := s.position()
	raw := s.input[s.pos : s.pos+2]
	s.advanceTo(s.pos + 2)
	s.emit(KindEscape, raw, "@", loc)
}

// atCodeMarker reports whether the scanner sits on an @code block: the
// marker word, not part of a longer identifier, followed by optional
// whitespace and an opening brace.
func (s *scanner) atCodeMarker() bool {
	const marker = "@code"
	if !s.matchString(marker) {
		return false
	}
	i := s.pos + len(marker)
	if r, _ := runeAt(s.input, i); identRune(r) {
		return false
	}
	i = skipSpaces(s.input, i)
	return i < len(s.input) && s.input[i] == '{'
}

func (s *scanner) codeBlock() {
	loc := s.position()
	marker := s.pos
	open := skipSpaces(s.input, marker+len("@code"))
	bodyEnd, end, ok := balancedBracesEnd(s.input, open)
	if !ok {
		s.fail(loc, "@code block is missing its closing brace")
		s.copyTo(marker + len("@code"))
		return
	}
	raw := s.input[marker:end]
	s.advanceTo(end)
	s.emit(KindCodeBlock, raw, s.input[open+1:bodyEnd], loc)
}

func (s *scanner) expression() {
	loc := s.position()
	start := s.pos
	switch next, _ := runeAt(s.input, start+1); {
	case next == '(':
		end, ok := balancedParensEnd(s.input, start+1)
		if !ok {
			s.fail(loc, "expression is missing its closing parenthesis")
			s.copyTo(start + 1)
			return
		}
		s.advanceTo(end)
		s.emit(KindExpression, s.input[start:end], s.input[start+1:end], loc)
	case identStart(next):
		end, ok := chainEnd(s.input, start+1)
		if !ok {
			s.fail(loc, "expression call is missing its closing parenthesis")
			s.copyTo(start + 1)
			return
		}
		s.advanceTo(end)
		s.emit(KindExpression, s.input[start:end], s.input[start+1:end], loc)
	default:
		// a lone @ is plain text
		s.copyRune()
	}
}

func (s *scanner) componentTag() {
	if r, _ := runeAt(s.input, s.pos+1); r < 'A' || r > 'Z' {
		s.copyRune()
		return
	}
	loc := s.position()
	start := s.pos
	name, openEnd, selfClosing, ok := tagOpenEnd(s.input, start)
	if !ok {
		s.fail(loc, "component tag <%s is never closed", name)
		s.copyTo(start + 1)
		return
	}
	end := openEnd
	if !selfClosing {
		_, closeEnd, found := matchingCloseEnd(s.input, openEnd, name)
		if !found {
			s.fail(loc, "component tag <%s> has no matching </%s>", name, name)
			s.copyTo(start + 1)
			return
		}
		end = closeEnd
	}
	raw := s.input[start:end]
	s.advanceTo(end)
	s.emit(KindComponentTag, raw, raw, loc)
}

// inlineCode copies a backtick code span verbatim. The closing run must
// have exactly the opening run's length; an unmatched run is literal text.
func (s *scanner) inlineCode() {
	run := backtickRun(s.input, s.pos)
	end, ok := closingBacktickRun(s.input, s.pos+run, run)
	if !ok {
		s.copyTo(s.pos + run)
		return
	}
	s.copyTo(end)
}

// fenceEnd reports the end of a fenced code block opening at i, which must
// be a line start. An unterminated fence runs to the end of input.
func (s *scanner) fenceEnd(i int) (int, bool) {
	marker, count, lineEnd, ok := fenceOpen(s.input, i)
	if !ok {
		return 0, false
	}
	j := lineEnd
	for j < len(s.input) {
		next := strings.IndexByte(s.input[j:], '\n')
		end := len(s.input)
		if next >= 0 {
			end = j + next + 1
		}
		if fenceCloses(s.input[j:end], marker, count) {
			return end, true
		}
		j = end
	}
	return len(s.input), true
}

func (s *scanner) emit(kind Kind, raw, text string, loc interfaces.SourceLocation) {
	token := s.prefix + strconv.Itoa(len(s.placeholders)) + "x"
	s.placeholders = append(s.placeholders, Placeholder{
		Token:    token,
		Kind:     kind,
		Raw:      raw,
		Text:     text,
		Location: loc,
	})
	s.out.WriteString(token)
}

func (s *scanner) fail(loc interfaces.SourceLocation, format string, args ...any) {
	s.diags = append(s.diags, interfaces.NewError(interfaces.DiagMalformedEmbeddedSyntax, loc, format, args...))
}

func (s *scanner) position() interfaces.SourceLocation {
	return interfaces.SourceLocation{File: s.file, Line: s.line + s.lineOff, Column: s.col}
}

func (s *scanner) peek() rune {
	r, _ := runeAt(s.input, s.pos)
	return r
}

func (s *scanner) matchString(str string) bool {
	return strings.HasPrefix(s.input[s.pos:], str)
}

func (s *scanner) advance() {
	if s.pos >= len(s.input) {
		return
	}
	r, size := utf8.DecodeRuneInString(s.input[s.pos:])
	s.pos += size
	s.prev = r
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *scanner) advanceTo(target int) {
	for s.pos < target {
		s.advance()
	}
}

func (s *scanner) copyRune() {
	start := s.pos
	s.advance()
	s.out.WriteString(s.input[start:s.pos])
}

func (s *scanner) copyTo(target int) {
	s.out.WriteString(s.input[s.pos:target])
	s.advanceTo(target)
}

// chainEnd scans an identifier chain starting at i: segments joined by
// dots, each optionally followed by a balanced call. A dot not followed by
// an identifier belongs to the surrounding prose, not the chain.
func chainEnd(s string, i int) (int, bool) {
	i = identTail(s, i)
	for i < len(s) {
		if s[i] == '(' {
			end, ok := balancedParensEnd(s, i)
			if !ok {
				return i, false
			}
			i = end
			continue
		}
		if s[i] == '.' {
			if r, _ := runeAt(s, i+1); identStart(r) {
				i = identTail(s, i+1)
				continue
			}
		}
		break
	}
	return i, true
}

// balancedParensEnd returns the index just past the parenthesis matching
// the one at i. String and rune literals are skipped so a bracket inside
// them never counts.
func balancedParensEnd(s string, i int) (int, bool) {
	depth := 0
	for i < len(s) {
		switch s[i] {
		case '(':
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return i, true
			}
		case '"':
			i = quotedEnd(s, i, '"')
		case '\'':
			i = quotedEnd(s, i, '\'')
		case '`':
			i = rawStringEnd(s, i)
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
		}
	}
	return 0, false
}

// balancedBracesEnd returns the body end and span end of the brace block
// opening at i. Braces inside string literals, rune literals and comments
// do not count toward the balance.
func balancedBracesEnd(s string, i int) (bodyEnd, end int, ok bool) {
	depth := 0
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], "//"):
			i = lineCommentEnd(s, i)
		case strings.HasPrefix(s[i:], "/*"):
			i = blockCommentEnd(s, i)
		case s[i] == '"':
			i = quotedEnd(s, i, '"')
		case s[i] == '\'':
			i = quotedEnd(s, i, '\'')
		case s[i] == '`':
			i = rawStringEnd(s, i)
		case s[i] == '{':
			depth++
			i++
		case s[i] == '}':
			depth--
			i++
			if depth == 0 {
				return i - 1, i, true
			}
		default:
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
		}
	}
	return 0, 0, false
}

// tagOpenEnd scans the opening tag starting at the < at i. Quoted
// attribute values are skipped, so a > inside one does not end the tag.
func tagOpenEnd(s string, start int) (name string, end int, selfClosing, ok bool) {
	i := start + 1
	nameStart := i
	for i < len(s) && isTagNameByte(s[i]) {
		i++
	}
	name = s[nameStart:i]
	for i < len(s) {
		switch s[i] {
		case '"', '\'':
			quote := s[i]
			idx := strings.IndexByte(s[i+1:], quote)
			if idx < 0 {
				return name, 0, false, false
			}
			i += idx + 2
		case '>':
			return name, i + 1, false, true
		case '/':
			if i+1 < len(s) && s[i+1] == '>' {
				return name, i + 2, true, true
			}
			i++
		case '<':
			return name, 0, false, false
		default:
			i++
		}
	}
	return name, 0, false, false
}

// matchingCloseEnd finds the </name> matching an already scanned opening
// tag, counting nesting depth of same-name tags in between. It returns
// both the index of the closing tag's < and the index just past its >.
func matchingCloseEnd(s string, from int, name string) (int, int, bool) {
	depth := 1
	i := from
	for i < len(s) {
		idx := strings.IndexByte(s[i:], '<')
		if idx < 0 {
			return 0, 0, false
		}
		j := i + idx
		if end, ok := closeTagEnd(s, j, name); ok {
			depth--
			if depth == 0 {
				return j, end, true
			}
			i = end
			continue
		}
		if sameNameOpen(s, j, name) {
			_, openEnd, selfClosing, ok := tagOpenEnd(s, j)
			if !ok {
				i = j + 1
				continue
			}
			if !selfClosing {
				depth++
			}
			i = openEnd
			continue
		}
		i = j + 1
	}
	return 0, 0, false
}

func closeTagEnd(s string, i int, name string) (int, bool) {
	if !strings.HasPrefix(s[i:], "</"+name) {
		return 0, false
	}
	j := i + 2 + len(name)
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	if j < len(s) && s[j] == '>' {
		return j + 1, true
	}
	return 0, false
}

func sameNameOpen(s string, i int, name string) bool {
	if !strings.HasPrefix(s[i:], "<"+name) {
		return false
	}
	next := i + 1 + len(name)
	return next >= len(s) || !isTagNameByte(s[next])
}

func fenceOpen(s string, i int) (marker byte, count, lineEnd int, ok bool) {
	j := i
	for spaces := 0; j < len(s) && s[j] == ' ' && spaces < 3; spaces++ {
		j++
	}
	if j >= len(s) || (s[j] != '`' && s[j] != '~') {
		return 0, 0, 0, false
	}
	marker = s[j]
	runStart := j
	for j < len(s) && s[j] == marker {
		j++
	}
	count = j - runStart
	if count < 3 {
		return 0, 0, 0, false
	}
	lineEnd = len(s)
	if eol := strings.IndexByte(s[j:], '\n'); eol >= 0 {
		lineEnd = j + eol + 1
	}
	// an info string with a backtick makes a backtick run a code span
	if marker == '`' && strings.IndexByte(s[j:lineEnd], '`') >= 0 {
		return 0, 0, 0, false
	}
	return marker, count, lineEnd, true
}

func fenceCloses(line string, marker byte, count int) bool {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	j := 0
	for spaces := 0; j < len(line) && line[j] == ' ' && spaces < 3; spaces++ {
		j++
	}
	run := 0
	for j < len(line) && line[j] == marker {
		j++
		run++
	}
	if run < count {
		return false
	}
	return strings.TrimRight(line[j:], " \t") == ""
}

func backtickRun(s string, i int) int {
	run := 0
	for i+run < len(s) && s[i+run] == '`' {
		run++
	}
	return run
}

func closingBacktickRun(s string, from, n int) (int, bool) {
	i := from
	for i < len(s) {
		if s[i] != '`' {
			i++
			continue
		}
		run := backtickRun(s, i)
		if run == n {
			return i + run, true
		}
		i += run
	}
	return 0, false
}

func lineCommentEnd(s string, i int) int {
	if idx := strings.IndexByte(s[i:], '\n'); idx >= 0 {
		return i + idx
	}
	return len(s)
}

func blockCommentEnd(s string, i int) int {
	if idx := strings.Index(s[i+2:], "*/"); idx >= 0 {
		return i + idx + 4
	}
	return len(s)
}

func quotedEnd(s string, i int, quote byte) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		}
	}
	return len(s)
}

func rawStringEnd(s string, i int) int {
	if idx := strings.IndexByte(s[i+1:], '`'); idx >= 0 {
		return i + idx + 2
	}
	return len(s)
}

func runeAt(s string, i int) (rune, int) {
	if i < 0 || i >= len(s) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s[i:])
}

func identStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func identRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// identTail consumes an identifier starting at i and returns the index
// just past it.
func identTail(s string, i int) int {
	r, size := runeAt(s, i)
	if !identStart(r) {
		return i
	}
	i += size
	for {
		r, size = runeAt(s, i)
		if size == 0 || !identRune(r) {
			return i
		}
		i += size
	}
}

func skipSpaces(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}

func isTagNameByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	default:
		return false
	}
}
