// Package markdown renders placeholder-protected document text into HTML
// and discovers source documents on a filesystem. The renderer is a
// collaborator behind pkg/interfaces.MarkdownRenderer so hosts can swap
// the engine without touching the compiler pipeline.
package markdown
