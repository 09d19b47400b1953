package lexer

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/huff-lang/huffc/pkg/token"
)

// Kind enumerates LexicalErrorKind from spec.md §7.
type Kind int

const (
	UnexpectedEof Kind = iota
	InvalidCharacter
	InvalidArraySize
	InvalidPrimitiveType
)

func (k Kind) String() string {
	switch k {
	case UnexpectedEof:
		return "UnexpectedEof"
	case InvalidCharacter:
		return "InvalidCharacter"
	case InvalidArraySize:
		return "InvalidArraySize"
	case InvalidPrimitiveType:
		return "InvalidPrimitiveType"
	default:
		return "UnknownLexicalError"
	}
}

// Error is a lexical error: a kind, a primary span, and the offending
// character or substring where one applies.
type Error struct {
	Kind    Kind
	Span    token.Span
	Offense string
	Source  string // the flattened source, for Format's excerpt
}

func (e *Error) Error() string {
	return e.Format(false)
}

// Format renders the error with a source excerpt and caret, grounded on the
// teacher's CompileError.FormatError(useColors bool) contract (spec §7).
func (e *Error) Format(useColors bool) string {
	var b strings.Builder
	header := fmt.Sprintf("lexical error: %s", e.Kind)
	if useColors {
		header = color.New(color.FgRed, color.Bold).Sprint(header)
	}
	b.WriteString(header)
	if e.Offense != "" {
		fmt.Fprintf(&b, ": %q", e.Offense)
	}
	fmt.Fprintf(&b, " at %s\n", e.Span)
	if excerpt := sourceExcerpt(e.Source, e.Span); excerpt != "" {
		b.WriteString(excerpt)
	}
	return b.String()
}

// sourceExcerpt renders the line containing span.Start plus a caret under
// the offending column.
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
