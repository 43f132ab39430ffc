package interfaces

// MarkdownRenderer converts Markdown source into an HTML fragment. The
// compiler treats the renderer as an external collaborator: implementations
// must pass opaque placeholder tokens through unaltered and must protect
// fenced and inline code spans from further interpretation. The default
// implementation wraps goldmark; hosts may substitute their own.
type MarkdownRenderer interface {
	Render(src []byte) ([]byte, error)
}
