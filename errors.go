package tomo

import "fmt"

// ParseError is the error kind raised by the parser on unrecoverable
// failure (§7 ParseError). Where the C implementation longjmps to an
// `on_err` handler, Go code returns this as a conventional error value
// (see DESIGN.md on the longjmp-to-error-return translation).
type ParseError struct {
	Span    Span
	Message string
	// Kind distinguishes the three failure classes described in §4.7's
	// "Failure taxonomy": lexical, syntactic, and semantic-lite.
	Kind ParseErrorKind
}

// ParseErrorKind is the failure taxonomy from §4.7.
type ParseErrorKind int

const (
	// ParseErrorLexical covers invalid indentation, unterminated
	// literals, and invalid escape sequences.
	ParseErrorLexical ParseErrorKind = iota
	// ParseErrorSyntactic covers missing required tokens and
	// misplaced top-level forms.
	ParseErrorSyntactic
	// ParseErrorSemantic covers "semantic-lite" issues caught during
	// parsing, like duplicate enum tag values or `use` outside
	// top-level position.
	ParseErrorSemantic
)

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Message)
}

// Highlighted renders the error the way §6.2's `highlight_error` does:
// the message followed by the offending source line(s) underlined.
func (e *ParseError) Highlighted(contextLines int, useColor bool) string {
	if e.Span.File == nil {
		return e.Error()
	}
	return e.Span.File.HighlightError(e.Span.Start, e.Span.End, e.Message, contextLines, useColor)
}

func newParseError(kind ParseErrorKind, span Span, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}
