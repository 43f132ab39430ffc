package metadata

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// isValidTypeExpr reports whether raw parses as a Go type expression. The
// language's own parser is the arbiter; the kind walk afterwards rejects
// value expressions such as 1+2 that parse but name no type.
func isValidTypeExpr(raw string) bool {
	expr, err := parser.ParseExpr(raw)
	if err != nil {
		return false
	}
	return isTypeNode(expr)
}

func isTypeNode(expr ast.Expr) bool {
	switch node := expr.(type) {
	case *ast.Ident:
		return true
	case *ast.SelectorExpr:
		base, ok := node.X.(*ast.Ident)
		return ok && base != nil
	case *ast.StarExpr:
		return isTypeNode(node.X)
	case *ast.ParenExpr:
		return isTypeNode(node.X)
	case *ast.ArrayType:
		return isTypeNode(node.Elt)
	case *ast.MapType:
		return isTypeNode(node.Key) && isTypeNode(node.Value)
	case *ast.ChanType:
		return isTypeNode(node.Value)
	case *ast.FuncType, *ast.InterfaceType, *ast.StructType:
		return true
	case *ast.IndexExpr:
		return isTypeNode(node.X) && isTypeNode(node.Index)
	case *ast.IndexListExpr:
		if !isTypeNode(node.X) {
			return false
		}
		for _, index := range node.Indices {
			if !isTypeNode(index) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// isNillableType reports whether the zero value of the parsed type is nil.
// Slices, maps, channels, pointers, functions and interfaces qualify; fixed
// length arrays and unknown named types do not.
func isNillableType(raw string) bool {
	expr, err := parser.ParseExpr(raw)
	if err != nil {
		return false
	}
	return isNillableNode(expr)
}

func isNillableNode(expr ast.Expr) bool {
	switch node := expr.(type) {
	case *ast.Ident:
		return node.Name == "any" || node.Name == "error"
	case *ast.StarExpr, *ast.MapType, *ast.ChanType, *ast.FuncType, *ast.InterfaceType:
		return true
	case *ast.ArrayType:
		return node.Len == nil
	case *ast.ParenExpr:
		return isNillableNode(node.X)
	default:
		return false
	}
}

// isValidIdentifier reports whether raw is a single Go identifier.
func isValidIdentifier(raw string) bool {
	return token.IsIdentifier(raw)
}

// isValidImportPath reports whether raw can serve as a generated package
// import path: slash separated, no blank segments, no path escapes, and
// characters limited to the portable import set.
func isValidImportPath(raw string) bool {
	if raw == "" || strings.HasPrefix(raw, "/") || strings.HasSuffix(raw, "/") {
		return false
	}
	for _, segment := range strings.Split(raw, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return false
		}
		for _, r := range segment {
			if !isImportPathRune(r) {
				return false
			}
		}
	}
	return true
}

func isImportPathRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-' || r == '_' || r == '~':
		return true
	default:
		return false
	}
}
