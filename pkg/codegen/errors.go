package codegen

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/huff-lang/huffc/pkg/token"
)

// Kind enumerates CodegenErrorKind from spec.md §7.
type Kind int

const (
	UndefinedMacro Kind = iota
	UndefinedConstant
	UndefinedTable
	UndefinedArgument
	StoragePointersNotDerived
	UnmatchedJumpLabel
	ArgumentCountMismatch
	RecursionLimitExceeded
	ContractTooLarge
	PushOverflow
)

func (k Kind) String() string {
	switch k {
	case UndefinedMacro:
		return "UndefinedMacro"
	case UndefinedConstant:
		return "UndefinedConstant"
	case UndefinedTable:
		return "UndefinedTable"
	case UndefinedArgument:
		return "UndefinedArgument"
	case StoragePointersNotDerived:
		return "StoragePointersNotDerived"
	case UnmatchedJumpLabel:
		return "UnmatchedJumpLabel"
	case ArgumentCountMismatch:
		return "ArgumentCountMismatch"
	case RecursionLimitExceeded:
		return "RecursionLimitExceeded"
	case ContractTooLarge:
		return "ContractTooLarge"
	case PushOverflow:
		return "PushOverflow"
	default:
		return "UnknownCodegenError"
	}
}

// Error is a code generation error.
type Error struct {
	Kind    Kind
	Span    token.Span
	Message string
}

func (e *Error) Error() string {
	return e.Format(false)
}

// Format renders the error, matching the lexer/parser Format(useColors
// bool) contract (spec §7).
func (e *Error) Format(useColors bool) string {
	var b strings.Builder
	header := fmt.Sprintf("codegen error: %s", e.Kind)
	if useColors {
		header = color.New(color.FgRed, color.Bold).Sprint(header)
	}
	b.WriteString(header)
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Span != (token.Span{}) {
		fmt.Fprintf(&b, " at %s", e.Span)
	}
	return b.String()
}
