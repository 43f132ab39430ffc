package rendertree

// Component is implemented by every component that can appear in a render
// tree, generated or hand-written.
type Component interface {
	BuildRenderTree(b *Builder)
}

// Descriptor carries a component's declarative surface: the routes it
// serves, its page title, the layout it renders under, opaque attribute
// expressions, and its declared parameters. Generated components expose it
// through a Descriptor method; hosts use it for routing tables and tooling.
type Descriptor struct {
	Routes     []string        `json:"routes,omitempty"`
	Title      string          `json:"title,omitempty"`
	Layout     string          `json:"layout,omitempty"`
	Attributes []string        `json:"attributes,omitempty"`
	Parameters []ParameterInfo `json:"parameters,omitempty"`
}

// ParameterInfo describes one bindable component parameter. Nillable is true
// for parameter types that admit nil (pointers, slices, maps, channels,
// funcs, interfaces), letting hosts distinguish "unset" from the zero value.
type ParameterInfo struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nillable bool   `json:"nillable,omitempty"`
}

// Describer is implemented by components that declare routing or parameter
// metadata.
type Describer interface {
	Descriptor() Descriptor
}

// ComponentBase is the default embeddable base for components. It stores
// attributes assigned by a parent scope and supplies an empty descriptor;
// embedders override Descriptor when they declare metadata.
type ComponentBase struct {
	attrs map[string]any
}

// SetAttribute records an attribute assigned by the enclosing scope.
func (c *ComponentBase) SetAttribute(name string, value any) {
	if c.attrs == nil {
		c.attrs = make(map[string]any)
	}
	c.attrs[name] = value
}

// Attribute returns an attribute previously assigned with SetAttribute.
func (c *ComponentBase) Attribute(name string) (any, bool) {
	v, ok := c.attrs[name]
	return v, ok
}

// Descriptor returns an empty descriptor.
func (c *ComponentBase) Descriptor() Descriptor {
	return Descriptor{}
}
