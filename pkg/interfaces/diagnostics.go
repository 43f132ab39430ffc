package interfaces

import "fmt"

// Severity classifies how a diagnostic affects a document's compilation.
type Severity int

const (
	// SeverityWarning marks findings that never block emission.
	SeverityWarning Severity = iota + 1
	// SeverityError marks findings that suppress the document's output.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// DiagnosticCode is the stable identifier of a diagnostic category. Codes are
// part of the public contract: hosts match on them to group or filter build
// output.
type DiagnosticCode string

const (
	// DiagInvalidMetadataSyntax reports a front matter header that does not
	// parse as YAML.
	DiagInvalidMetadataSyntax DiagnosticCode = "InvalidMetadataSyntax"
	// DiagInvalidRoute reports a route value that does not begin with "/".
	DiagInvalidRoute DiagnosticCode = "InvalidRoute"
	// DiagMultipleRouteForms reports a header declaring both the singular
	// route key and the plural routes key.
	DiagMultipleRouteForms DiagnosticCode = "MultipleRouteForms"
	// DiagInvalidIdentifier reports a namespace, layout, or base type that is
	// not a syntactically valid identifier or type expression.
	DiagInvalidIdentifier DiagnosticCode = "InvalidIdentifier"
	// DiagInvalidParameterName reports a parameter whose name is not a valid
	// identifier.
	DiagInvalidParameterName DiagnosticCode = "InvalidParameterName"
	// DiagInvalidParameterType reports a parameter whose type does not parse
	// as a type expression.
	DiagInvalidParameterType DiagnosticCode = "InvalidParameterType"
	// DiagDuplicateParameter reports two parameter declarations sharing a
	// name.
	DiagDuplicateParameter DiagnosticCode = "DuplicateParameter"
	// DiagUnresolvedComponentReference reports a component tag whose type
	// name cannot be statically confirmed to resolve.
	DiagUnresolvedComponentReference DiagnosticCode = "UnresolvedComponentReference"
	// DiagMalformedEmbeddedSyntax reports unbalanced or unterminated embedded
	// expression, code block, or component tag syntax.
	DiagMalformedEmbeddedSyntax DiagnosticCode = "MalformedEmbeddedSyntax"
	// DiagInternalError reports a failure recovered at the document boundary.
	DiagInternalError DiagnosticCode = "InternalError"
)

// SourceLocation points at a position in an input document. Line and Column
// are 1-based; a zero Line means the location is unknown. Locations exist for
// reporting only and never drive program logic.
type SourceLocation struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l SourceLocation) String() string {
	if l.Line <= 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is one finding raised by a compilation stage.
type Diagnostic struct {
	Code     DiagnosticCode `json:"code"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Location SourceLocation `json:"location"`
}

// String renders the diagnostic in the file:line:col: severity code: message
// shape build logs and editors expect.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.Code, d.Message)
}

// NewError builds an error-severity diagnostic.
func NewError(code DiagnosticCode, loc SourceLocation, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: SeverityError,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

// NewWarning builds a warning-severity diagnostic.
func NewWarning(code DiagnosticCode, loc SourceLocation, format string, args ...any) Diagnostic {
	return Diagnostic{
		Code:     code,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

// HasErrors reports whether any diagnostic in the set carries Error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
