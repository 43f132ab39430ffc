// Package naming derives the generated type, import path and package name
// for a document from its path. Resolution is a pure function of its
// inputs, so the full set of generated names can be precomputed before any
// parallel work starts.
package naming

import (
	"go/token"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ettle/strcase"
	"github.com/goliatone/go-slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Resolution is the generated identity of one document.
type Resolution struct {
	TypeName    string
	ImportPath  string
	PackageName string
}

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

// Resolve derives names for a document. filePath is relative to its
// content root, forward-slashed. A namespace override from metadata
// replaces the derived import path unconditionally.
func Resolve(filePath, rootNamespace, namespaceOverride string) Resolution {
	dir, file := path.Split(path.Clean(filePath))
	base := strings.TrimSuffix(file, path.Ext(file))
	base = datePrefix.ReplaceAllString(base, "")

	importPath := strings.Trim(rootNamespace, "/")
	if cleaned := cleanDir(dir); cleaned != "" {
		importPath += "/" + cleaned
	}
	if namespaceOverride != "" {
		importPath = namespaceOverride
	}

	return Resolution{
		TypeName:    TypeName(base),
		ImportPath:  importPath,
		PackageName: PackageName(importPath),
	}
}

// Slug is the stable lookup key for a document: its relative path with
// the extension and any leading date prefix stripped.
func Slug(filePath string) string {
	dir, file := path.Split(path.Clean(filePath))
	base := strings.TrimSuffix(file, path.Ext(file))
	base = datePrefix.ReplaceAllString(base, "")
	return dir + base
}

// TypeName converts a file base name into an exported Go type name:
// slug-normalized words in PascalCase, keyword-escaped, X-prefixed when
// the result would not start with a letter.
func TypeName(value string) string {
	normalized, err := slug.Normalize(value)
	if err != nil || normalized == "" {
		normalized = value
	}
	caser := cases.Title(language.English)
	var b strings.Builder
	words := strings.FieldsFunc(normalized, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	for _, word := range words {
		b.WriteString(caser.String(word))
	}
	name := identifierRunes(b.String())
	if name == "" {
		return "X"
	}
	if !startsWithLetter(name) {
		name = "X" + name
	}
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}

// PackageName reduces the last import-path segment to a valid package
// identifier: lowered, dashes folded to underscores, keyword-escaped,
// x-prefixed when it would start with a digit.
func PackageName(importPath string) string {
	segment := importPath
	if idx := strings.LastIndexByte(segment, '/'); idx >= 0 {
		segment = segment[idx+1:]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(segment) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" {
		return "x"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "x" + name
	}
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}

// FileName is the generated file name for a type.
func FileName(typeName string) string {
	return strcase.ToSnake(typeName) + "_gen.go"
}

func cleanDir(dir string) string {
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return ""
	}
	var cleaned []string
	for _, segment := range strings.Split(dir, "/") {
		if segment == "" || segment == "." {
			continue
		}
		normalized, err := slug.Normalize(segment)
		if err != nil || normalized == "" {
			normalized = strings.ToLower(segment)
		}
		cleaned = append(cleaned, normalized)
	}
	return strings.Join(cleaned, "/")
}

func identifierRunes(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}
