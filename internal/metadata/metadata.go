package metadata

// Metadata is the typed projection of a document's front matter. Absent
// fields stay zero; a document without a header yields the zero Metadata.
type Metadata struct {
	// Routes holds the document's route templates, from either the singular
	// route key or the plural routes key. Both keys at once is an error and
	// leaves Routes empty.
	Routes []string
	Title  string
	// Namespace overrides the generated package import path.
	Namespace string
	// Layout names the layout type the component renders under.
	Layout string
	// BaseType names the type the generated component embeds. Empty means
	// the framework default.
	BaseType string
	// Usings lists import paths added to the generated file.
	Usings []string
	// Attributes carries opaque attribute-expression strings, emitted
	// verbatim into the component descriptor.
	Attributes []string
	Parameters []ParameterDecl
}

// ParameterDecl declares one bindable component parameter. Nillable is
// derived from the type syntax during parsing so the emitter does not parse
// types twice.
type ParameterDecl struct {
	Name     string
	Type     string
	Nillable bool
}

// HasRoutes reports whether the document declared at least one route.
func (m Metadata) HasRoutes() bool {
	return len(m.Routes) > 0
}
