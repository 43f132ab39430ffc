// Package metadata parses document front matter into typed component
// metadata, attaching a source location to every diagnostic it reports.
package metadata

import (
	"bytes"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-compage/internal/logging"
	"github.com/goliatone/go-compage/pkg/interfaces"
)

// headerEnvelope captures every front matter key. Unknown keys are kept so
// they can be reported instead of failing the parse.
type headerEnvelope struct {
	Raw map[string]any `yaml:",inline"`
}

var knownHeaderKeys = map[string]struct{}{
	"route":      {},
	"routes":     {},
	"title":      {},
	"namespace":  {},
	"layout":     {},
	"basetype":   {},
	"usings":     {},
	"attributes": {},
	"parameters": {},
}

var yamlLinePattern = regexp.MustCompile(`line (\d+):`)

// Result is the outcome of parsing one document header.
type Result struct {
	Meta Metadata
	// Body is the document content with the header stripped.
	Body []byte
	// HeaderLines is the number of lines the header occupied, delimiter
	// lines included. Adding it to a 1-based body line yields the file line.
	HeaderLines int
	Diagnostics []interfaces.Diagnostic
}

// Parser turns raw document bytes into Metadata. A single Parser is safe for
// concurrent use.
type Parser struct {
	log interfaces.Logger
}

func NewParser(provider interfaces.LoggerProvider) *Parser {
	return &Parser{log: logging.MetadataLogger(provider)}
}

// Parse splits the header from source and projects it into Metadata. A
// document without a header yields the zero Metadata and the full source as
// body. Diagnostics carry 1-based file positions.
func (p *Parser) Parse(file string, source []byte) Result {
	span, found := splitHeader(source)
	if !found {
		return Result{Body: source}
	}

	res := Result{Body: span.body, HeaderLines: headerLineCount(source, span.body)}
	if !span.terminated {
		res.Body = nil
		res.HeaderLines = span.lines
		res.Diagnostics = append(res.Diagnostics, interfaces.NewError(
			interfaces.DiagInvalidMetadataSyntax,
			interfaces.SourceLocation{File: file, Line: 1, Column: 1},
			"front matter is not terminated; expected a closing %q line", "---"))
		return res
	}

	var root yaml.Node
	if err := yaml.Unmarshal(span.raw, &root); err != nil {
		res.Diagnostics = append(res.Diagnostics, interfaces.NewError(
			interfaces.DiagInvalidMetadataSyntax,
			syntaxErrorLocation(file, err),
			"front matter is not valid YAML: %v", err))
		return res
	}

	var envelope headerEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &envelope)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, interfaces.NewError(
			interfaces.DiagInvalidMetadataSyntax,
			syntaxErrorLocation(file, err),
			"front matter is not valid YAML: %v", err))
		return res
	}
	res.Body = body
	res.HeaderLines = headerLineCount(source, body)

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return res
	}
	walk := &headerWalk{file: file}
	walk.mapping(root.Content[0])
	res.Meta = walk.meta
	res.Diagnostics = append(res.Diagnostics, walk.diags...)

	p.reportUnknownKeys(file, envelope.Raw)
	return res
}

func (p *Parser) reportUnknownKeys(file string, raw map[string]any) {
	var unknown []string
	for key := range raw {
		if _, ok := knownHeaderKeys[strings.ToLower(key)]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return
	}
	sort.Strings(unknown)
	p.log.Debug("ignoring unknown front matter keys",
		"document", file,
		"keys", strings.Join(unknown, ", "))
}

// headerWalk projects a parsed header mapping into Metadata, recording a
// diagnostic at the offending node for every rule violation.
type headerWalk struct {
	file  string
	meta  Metadata
	diags []interfaces.Diagnostic
}

func (w *headerWalk) mapping(node *yaml.Node) {
	if node.Kind != yaml.MappingNode {
		w.errorf(interfaces.DiagInvalidMetadataSyntax, node, "front matter must be a key/value mapping")
		return
	}

	var singular, plural *yaml.Node
	var singularRoutes, pluralRoutes []string

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		value := node.Content[i+1]
		switch strings.ToLower(key.Value) {
		case "route":
			singular = key
			if _, ok := w.scalar("route", value); ok {
				if route, ok := w.route(value); ok {
					singularRoutes = []string{route}
				}
			}
		case "routes":
			plural = key
			pluralRoutes = w.routeList(value)
		case "title":
			if title, ok := w.scalar("title", value); ok {
				w.meta.Title = title
			}
		case "namespace":
			w.namespace(value)
		case "layout":
			w.typeName("layout", value, func(name string) { w.meta.Layout = name })
		case "basetype":
			w.typeName("baseType", value, func(name string) { w.meta.BaseType = name })
		case "usings":
			w.usings(value)
		case "attributes":
			w.meta.Attributes = append(w.meta.Attributes, w.stringList("attributes", value)...)
		case "parameters":
			w.parameters(value)
		}
	}

	w.routes(singular, plural, singularRoutes, pluralRoutes)
}

// routes resolves the singular/plural key pair. Declaring both forms is an
// error and leaves Routes empty so emission cannot pick a winner silently.
func (w *headerWalk) routes(singular, plural *yaml.Node, singularRoutes, pluralRoutes []string) {
	if singular != nil && plural != nil {
		later := plural
		if singular.Line > plural.Line || (singular.Line == plural.Line && singular.Column > plural.Column) {
			later = singular
		}
		w.errorf(interfaces.DiagMultipleRouteForms, later,
			"route and routes cannot both be declared; keep one form")
		return
	}
	routes := singularRoutes
	if plural != nil {
		routes = pluralRoutes
	}
	w.meta.Routes = routes
}

func (w *headerWalk) namespace(node *yaml.Node) {
	value, ok := w.scalar("namespace", node)
	if !ok {
		return
	}
	if !isValidImportPath(value) {
		w.errorf(interfaces.DiagInvalidIdentifier, node, "namespace %q is not a valid import path", value)
		return
	}
	w.meta.Namespace = value
}

func (w *headerWalk) typeName(key string, node *yaml.Node, assign func(string)) {
	value, ok := w.scalar(key, node)
	if !ok {
		return
	}
	if !isValidTypeExpr(value) {
		w.errorf(interfaces.DiagInvalidIdentifier, node, "%s %q is not a valid type name", key, value)
		return
	}
	assign(value)
}

func (w *headerWalk) usings(node *yaml.Node) {
	for _, value := range w.stringListNodes("usings", node) {
		path := value.Value
		if !isValidImportPath(path) {
			w.errorf(interfaces.DiagInvalidIdentifier, value, "using %q is not a valid import path", path)
			continue
		}
		w.meta.Usings = append(w.meta.Usings, path)
	}
}

func (w *headerWalk) parameters(node *yaml.Node) {
	if node.Kind != yaml.SequenceNode {
		w.errorf(interfaces.DiagInvalidMetadataSyntax, node, "parameters must be a list of name/type entries")
		return
	}
	seen := make(map[string]struct{}, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			w.errorf(interfaces.DiagInvalidMetadataSyntax, item, "each parameter must be a mapping with name and type keys")
			continue
		}
		var nameNode, typeNode *yaml.Node
		for i := 0; i+1 < len(item.Content); i += 2 {
			switch strings.ToLower(item.Content[i].Value) {
			case "name":
				nameNode = item.Content[i+1]
			case "type":
				typeNode = item.Content[i+1]
			}
		}
		if nameNode == nil {
			w.errorf(interfaces.DiagInvalidParameterName, item, "parameter entry is missing a name")
			continue
		}
		name := nameNode.Value
		if nameNode.Kind != yaml.ScalarNode || !isValidIdentifier(name) {
			w.errorf(interfaces.DiagInvalidParameterName, nameNode, "parameter name %q is not a valid identifier", name)
			continue
		}
		if _, dup := seen[name]; dup {
			w.errorf(interfaces.DiagDuplicateParameter, nameNode, "parameter %q is declared more than once", name)
			continue
		}
		if typeNode == nil {
			w.errorf(interfaces.DiagInvalidParameterType, item, "parameter %q is missing a type", name)
			continue
		}
		typ := typeNode.Value
		if typeNode.Kind != yaml.ScalarNode || !isValidTypeExpr(typ) {
			w.errorf(interfaces.DiagInvalidParameterType, typeNode, "parameter %q has invalid type %q", name, typ)
			continue
		}
		seen[name] = struct{}{}
		w.meta.Parameters = append(w.meta.Parameters, ParameterDecl{
			Name:     name,
			Type:     typ,
			Nillable: isNillableType(typ),
		})
	}
}

func (w *headerWalk) scalar(key string, node *yaml.Node) (string, bool) {
	if node.Kind != yaml.ScalarNode {
		w.errorf(interfaces.DiagInvalidMetadataSyntax, node, "front matter key %q expects a string value", key)
		return "", false
	}
	return node.Value, true
}

func (w *headerWalk) route(node *yaml.Node) (string, bool) {
	value := node.Value
	if value == "" || !strings.HasPrefix(value, "/") {
		w.errorf(interfaces.DiagInvalidRoute, node, "route %q must start with %q", value, "/")
		return "", false
	}
	return value, true
}

func (w *headerWalk) routeList(node *yaml.Node) []string {
	nodes := w.stringListNodes("routes", node)
	var routes []string
	for _, item := range nodes {
		if route, ok := w.route(item); ok {
			routes = append(routes, route)
		}
	}
	return routes
}

func (w *headerWalk) stringList(key string, node *yaml.Node) []string {
	nodes := w.stringListNodes(key, node)
	if len(nodes) == 0 {
		return nil
	}
	values := make([]string, 0, len(nodes))
	for _, item := range nodes {
		values = append(values, item.Value)
	}
	return values
}

func (w *headerWalk) stringListNodes(key string, node *yaml.Node) []*yaml.Node {
	if node.Kind != yaml.SequenceNode {
		w.errorf(interfaces.DiagInvalidMetadataSyntax, node, "front matter key %q expects a list", key)
		return nil
	}
	items := make([]*yaml.Node, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			w.errorf(interfaces.DiagInvalidMetadataSyntax, item, "front matter key %q expects string entries", key)
			continue
		}
		items = append(items, item)
	}
	return items
}

func (w *headerWalk) errorf(code interfaces.DiagnosticCode, node *yaml.Node, format string, args ...any) {
	w.diags = append(w.diags, interfaces.NewError(code, w.location(node), format, args...))
}

// location converts a node position inside the header to a file position.
// The header body starts on file line 2, one past the opening delimiter.
func (w *headerWalk) location(node *yaml.Node) interfaces.SourceLocation {
	return interfaces.SourceLocation{File: w.file, Line: node.Line + 1, Column: node.Column}
}

// headerSpan is the raw layout of a front matter block inside a document.
type headerSpan struct {
	raw        []byte
	body       []byte
	lines      int
	terminated bool
}

// splitHeader locates the front matter block. found is false when the
// document does not open with a delimiter line, in which case the whole
// source is body.
func splitHeader(source []byte) (headerSpan, bool) {
	lineEnd := bytes.IndexByte(source, '\n')
	first := source
	if lineEnd >= 0 {
		first = source[:lineEnd]
	}
	if !isHeaderDelimiter(first) {
		return headerSpan{}, false
	}
	span := headerSpan{lines: 1}
	if lineEnd < 0 {
		return span, true
	}

	headerStart := lineEnd + 1
	pos := headerStart
	for pos < len(source) {
		next := bytes.IndexByte(source[pos:], '\n')
		var line []byte
		lineLen := 0
		if next < 0 {
			line = source[pos:]
			lineLen = len(line)
		} else {
			line = source[pos : pos+next]
			lineLen = next + 1
		}
		span.lines++
		if isHeaderDelimiter(line) {
			span.raw = source[headerStart:pos]
			span.body = source[pos+lineLen:]
			span.terminated = true
			return span, true
		}
		if next < 0 {
			break
		}
		pos += lineLen
	}
	span.raw = source[headerStart:]
	return span, true
}

func isHeaderDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, "\r")) == "---"
}

// headerLineCount counts the lines the header consumed given the returned
// body, so body positions can be shifted to file positions.
func headerLineCount(source, body []byte) int {
	cut := len(source) - len(body)
	if cut < 0 || cut > len(source) {
		return 0
	}
	return bytes.Count(source[:cut], []byte{'\n'})
}

// syntaxErrorLocation recovers a file line from a YAML error message. The
// decoder reports lines relative to the header body, which starts on file
// line 2.
func syntaxErrorLocation(file string, err error) interfaces.SourceLocation {
	loc := interfaces.SourceLocation{File: file, Line: 2, Column: 1}
	if match := yamlLinePattern.FindStringSubmatch(err.Error()); match != nil {
		if line, convErr := strconv.Atoi(match[1]); convErr == nil {
			loc.Line = line + 1
		}
	}
	return loc
}
