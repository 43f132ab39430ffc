package emit

import (
	"fmt"
	"go/format"
	"strconv"
	"strings"

	"github.com/goliatone/go-compage/internal/content"
)

const rendertreeImport = "github.com/goliatone/go-compage/pkg/rendertree"

const defaultBaseType = "rendertree.ComponentBase"

// Emit assembles and formats the Go source for one compiled document.
// The output carries a generated-code header, the package clause, the
// import block, the component type with its parameter fields, the
// Descriptor and BuildRenderTree methods, and finally the document's code
// blocks verbatim as package-level declarations.
//
// Formatting doubles as a syntax gate for author-written expressions and
// code blocks: when go/format rejects the assembled source, the raw bytes
// are returned alongside the error so the caller can report the failure
// without losing the evidence.
func Emit(doc *Document) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated by go-compage from %s. DO NOT EDIT.\n\n", doc.SourcePath)
	fmt.Fprintf(&b, "package %s\n\n", doc.PackageName)
	writeImports(&b, doc)
	fmt.Fprintf(&b, "var _ rendertree.Component = (*%s)(nil)\n\n", doc.TypeName)
	writeType(&b, doc)
	writeDescriptor(&b, doc)
	writeBuildRenderTree(&b, doc)
	writeCodeBlocks(&b, doc)

	src := []byte(b.String())
	formatted, err := format.Source(src)
	if err != nil {
		return src, fmt.Errorf("emit %s: format generated source: %w", doc.SourcePath, err)
	}
	return formatted, nil
}

func writeImports(b *strings.Builder, doc *Document) {
	b.WriteString("import (\n")
	fmt.Fprintf(b, "\t%q\n", rendertreeImport)
	if len(doc.Meta.Usings) > 0 {
		b.WriteString("\n")
		for _, using := range doc.Meta.Usings {
			fmt.Fprintf(b, "\t%q\n", using)
		}
	}
	b.WriteString(")\n\n")
}

func writeType(b *strings.Builder, doc *Document) {
	fmt.Fprintf(b, "// %s is the component generated from %s.\n", doc.TypeName, doc.SourcePath)
	fmt.Fprintf(b, "type %s struct {\n", doc.TypeName)

	base := strings.TrimSpace(doc.Meta.BaseType)
	if base == "" {
		base = defaultBaseType
	}
	fmt.Fprintf(b, "\t%s\n", base)

	if len(doc.Meta.Parameters) > 0 {
		b.WriteString("\n")
		for _, param := range doc.Meta.Parameters {
			fmt.Fprintf(b, "\t%s %s\n", param.Name, param.Type)
		}
	}
	b.WriteString("}\n\n")
}

func writeDescriptor(b *strings.Builder, doc *Document) {
	meta := doc.Meta
	fmt.Fprintf(b, "func (c *%s) Descriptor() rendertree.Descriptor {\n", doc.TypeName)

	empty := len(meta.Routes) == 0 && meta.Title == "" && meta.Layout == "" &&
		len(meta.Attributes) == 0 && len(meta.Parameters) == 0
	if empty {
		b.WriteString("\treturn rendertree.Descriptor{}\n}\n\n")
		return
	}

	b.WriteString("\treturn rendertree.Descriptor{\n")
	if len(meta.Routes) > 0 {
		fmt.Fprintf(b, "\t\tRoutes: %s,\n", stringSliceLiteral(meta.Routes))
	}
	if meta.Title != "" {
		fmt.Fprintf(b, "\t\tTitle: %s,\n", strconv.Quote(meta.Title))
	}
	if meta.Layout != "" {
		fmt.Fprintf(b, "\t\tLayout: %s,\n", strconv.Quote(meta.Layout))
	}
	if len(meta.Attributes) > 0 {
		fmt.Fprintf(b, "\t\tAttributes: %s,\n", stringSliceLiteral(meta.Attributes))
	}
	if len(meta.Parameters) > 0 {
		b.WriteString("\t\tParameters: []rendertree.ParameterInfo{\n")
		for _, param := range meta.Parameters {
			fmt.Fprintf(b, "\t\t\t{Name: %q, Type: %q", param.Name, param.Type)
			if param.Nillable {
				b.WriteString(", Nillable: true")
			}
			b.WriteString("},\n")
		}
		b.WriteString("\t\t},\n")
	}
	b.WriteString("\t}\n}\n\n")
}

func writeBuildRenderTree(b *strings.Builder, doc *Document) {
	fmt.Fprintf(b, "func (c *%s) BuildRenderTree(b *rendertree.Builder) {\n", doc.TypeName)
	if doc.Meta.Title != "" {
		fmt.Fprintf(b, "\tb.SetPageTitle(%s)\n", strconv.Quote(doc.Meta.Title))
	}
	if doc.Content != nil {
		writeSegments(b, doc.Content.Segments, "\t")
	}
	b.WriteString("}\n")
}

func writeSegments(b *strings.Builder, segments []content.Segment, indent string) {
	for _, seg := range segments {
		switch seg.Kind {
		case content.SegmentStatic:
			fmt.Fprintf(b, "%sb.Markup(%d, %s)\n", indent, seg.Sequence, strconv.Quote(seg.Text))
		case content.SegmentExpression:
			fmt.Fprintf(b, "%sb.Content(%d, %s)\n", indent, seg.Sequence, seg.Text)
		case content.SegmentCodeBlock:
			// Claims a sequence number but renders nothing; the block body
			// is emitted at package level after the method.
		case content.SegmentComponent:
			writeReference(b, seg, indent)
		}
	}
}

func writeReference(b *strings.Builder, seg content.Segment, indent string) {
	ref := seg.Ref
	if ref == nil {
		return
	}

	fmt.Fprintf(b, "%sb.OpenComponent(%d, &%s{})\n", indent, seg.Sequence, ref.TypeName)
	for _, param := range ref.Parameters {
		value := param.Value
		if !param.IsExpression {
			value = strconv.Quote(param.Value)
		}
		fmt.Fprintf(b, "%sb.Attribute(%s, %s)\n", indent, strconv.Quote(param.Name), value)
	}
	if ref.ChildContent != nil {
		fmt.Fprintf(b, "%sb.ChildContent(func(b *rendertree.Builder) {\n", indent)
		writeSegments(b, ref.ChildContent.Segments, indent+"\t")
		fmt.Fprintf(b, "%s})\n", indent)
	}
	fmt.Fprintf(b, "%sb.CloseComponent()\n", indent)
}

func writeCodeBlocks(b *strings.Builder, doc *Document) {
	if doc.Content == nil {
		return
	}
	for _, block := range doc.Content.CodeBlocks {
		b.WriteString("\n")
		b.WriteString(block.RawCode)
		if !strings.HasSuffix(block.RawCode, "\n") {
			b.WriteString("\n")
		}
	}
}

func stringSliceLiteral(values []string) string {
	var sb strings.Builder
	sb.WriteString("[]string{")
	for i, value := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(value))
	}
	sb.WriteString("}")
	return sb.String()
}
