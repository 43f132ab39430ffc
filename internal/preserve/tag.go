package preserve

// Tag is the surface structure of one component tag span.
type Tag struct {
	Name string
	// AttrText is the raw text between the tag name and the closing
	// bracket of the opening tag.
	AttrText string
	// Inner is the text between the opening and closing tags, verbatim.
	// Empty for self-closing tags.
	Inner string
	// InnerOffset is the byte offset of Inner within the span.
	InnerOffset int
	SelfClosing bool
}

// SplitTag splits a component tag span previously captured by Preserve.
// The second return is false when the span is not a well-formed tag.
func SplitTag(raw string) (Tag, bool) {
	if len(raw) < 3 || raw[0] != '<' {
		return Tag{}, false
	}
	name, openEnd, selfClosing, ok := tagOpenEnd(raw, 0)
	if !ok || name == "" {
		return Tag{}, false
	}
	tag := Tag{Name: name, SelfClosing: selfClosing}
	attrEnd := openEnd - 1
	if selfClosing {
		attrEnd = openEnd - 2
	}
	tag.AttrText = raw[1+len(name) : attrEnd]
	if selfClosing {
		return tag, true
	}
	closeStart, _, ok := matchingCloseEnd(raw, openEnd, name)
	if !ok {
		return Tag{}, false
	}
	tag.Inner = raw[openEnd:closeStart]
	tag.InnerOffset = openEnd
	return tag, true
}
