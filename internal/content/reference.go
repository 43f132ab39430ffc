package content

import (
	"strings"

	"github.com/goliatone/go-compage/internal/preserve"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

// reference turns one preserved component tag into a ComponentReference.
// Paired tags with content re-enter preservation and reconstruction on the
// inner text, one nesting level deeper.
func (a *assembler) reference(ph preserve.Placeholder, depth int) *ComponentReference {
	tag, ok := preserve.SplitTag(ph.Raw)
	if !ok {
		a.diags = append(a.diags, interfaces.NewError(
			interfaces.DiagMalformedEmbeddedSyntax, ph.Location,
			"component tag %q could not be parsed", ph.Raw))
		return nil
	}

	ref := &ComponentReference{
		TypeName:   tag.Name,
		Parameters: parseAttributes(tag.AttrText),
		Location:   ph.Location,
	}
	if tag.SelfClosing || strings.TrimSpace(tag.Inner) == "" {
		return ref
	}

	if depth+1 > maxNestingDepth {
		a.diags = append(a.diags, interfaces.NewError(
			interfaces.DiagMalformedEmbeddedSyntax, ph.Location,
			"component nesting exceeds %d levels", maxNestingDepth))
		return ref
	}

	// positions inside the child land on the tag's line plus any newlines
	// before the inner text
	childOffset := ph.Location.Line - 1 + strings.Count(ph.Raw[:tag.InnerOffset], "\n")
	pres := preserve.Preserve(a.file, tag.Inner, childOffset)
	a.diags = append(a.diags, pres.Diagnostics...)
	ref.ChildContent = a.reconstruct(pres.Text, pres.Placeholders, depth+1)
	return ref
}

// parseAttributes scans the attribute text of an opening tag. A value
// starting with the expression marker passes through verbatim with the
// marker stripped; a bare attribute becomes the expression true.
func parseAttributes(s string) []ReferenceParameter {
	var params []ReferenceParameter
	i := 0
	for i < len(s) {
		i = skipAttrSpace(s, i)
		if i >= len(s) {
			break
		}
		nameStart := i
		for i < len(s) && !isAttrBoundary(s[i]) {
			i++
		}
		name := s[nameStart:i]
		if name == "" {
			i++
			continue
		}
		i = skipAttrSpace(s, i)
		if i >= len(s) || s[i] != '=' {
			params = append(params, ReferenceParameter{Name: name, Value: "true", IsExpression: true})
			continue
		}
		i = skipAttrSpace(s, i+1)
		var value string
		if i < len(s) && (s[i] == '"' || s[i] == '\'') {
			quote := s[i]
			end := strings.IndexByte(s[i+1:], quote)
			if end < 0 {
				value = s[i+1:]
				i = len(s)
			} else {
				value = s[i+1 : i+1+end]
				i += end + 2
			}
		} else {
			valueStart := i
			for i < len(s) && !isAttrSpace(s[i]) {
				i++
			}
			value = s[valueStart:i]
		}
		param := ReferenceParameter{Name: name, Value: value}
		if strings.HasPrefix(value, "@") {
			param.Value = value[1:]
			param.IsExpression = true
		}
		params = append(params, param)
	}
	return params
}

func skipAttrSpace(s string, i int) int {
	for i < len(s) && isAttrSpace(s[i]) {
		i++
	}
	return i
}

func isAttrSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

func isAttrBoundary(b byte) bool {
	return isAttrSpace(b) || b == '='
}
