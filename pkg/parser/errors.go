package parser

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/huff-lang/huffc/pkg/token"
)

// Kind enumerates ParserErrorKind from spec.md §7.
type Kind int

const (
	UnexpectedToken Kind = iota
	UnexpectedEof
	InvalidConstantValue
	DuplicateDefinition
	InvalidTableSize
	UnknownDecorator
	InvalidSignature
	InvalidArgument
)

func (k Kind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case UnexpectedEof:
		return "UnexpectedEof"
	case InvalidConstantValue:
		return "InvalidConstantValue"
	case DuplicateDefinition:
		return "DuplicateDefinition"
	case InvalidTableSize:
		return "InvalidTableSize"
	case UnknownDecorator:
		return "UnknownDecorator"
	case InvalidSignature:
		return "InvalidSignature"
	case InvalidArgument:
		return "InvalidArgument"
	default:
		return "UnknownParserError"
	}
}

// Error is a parse error: a kind, a primary span, and a short message
// describing what was expected or what went wrong.
type Error struct {
	Kind    Kind
	Span    token.Span
	Message string
	Source  string
}

func (e *Error) Error() string {
	return e.Format(false)
}

// Format renders the error with a source excerpt, grounded on the same
// Format(useColors bool) contract the lexer and code generator errors use
// (spec §7).
func (e *Error) Format(useColors bool) string {
	var b strings.Builder
	header := fmt.Sprintf("parse error: %s", e.Kind)
	if useColors {
		header = color.New(color.FgRed, color.Bold).Sprint(header)
	}
	b.WriteString(header)
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	fmt.Fprintf(&b, " at %s\n", e.Span)
	if excerpt := sourceExcerpt(e.Source, e.Span); excerpt != "" {
		b.WriteString(excerpt)
	}
	return b.String()
}

func sourceExcerpt(source string, span token.Span) string {
	if source == "" || span.Start < 0 || span.Start > len(source) {
		return ""
	}
	lineStart := span.Start
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	lineEnd := span.Start
	for lineEnd < len(source) && source[lineEnd] != '\n' {
		lineEnd++
	}
	line := source[lineStart:lineEnd]
	col := span.Start - lineStart
	var b strings.Builder
	b.WriteString(line)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", col))
	b.WriteString("^\n")
	return b.String()
}
