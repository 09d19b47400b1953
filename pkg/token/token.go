// Package token defines the lexical tokens shared by the lexer, parser and
// code generator, plus the span machinery used to report diagnostics back
// to the originating source file.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	Illegal Kind = iota
	Eof
	Comment

	// Punctuation
	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]
	LBrace   // {
	RBrace   // }
	Comma    // ,
	Colon    // :
	Equals   // =
	Less     // <
	Greater  // >
	Plus     // +
	Minus    // -
	Star     // *
	Slash    // /

	// Keywords, valid only immediately after #define
	Define
	Macro
	Fn
	Test
	Function
	Event
	Error
	Constant
	JumpTable
	JumpTablePacked
	Table
	Include

	// Keywords valid in narrower contexts
	Takes   // only after '='
	Returns // only before '(' and not after 'function'
	View
	Pure
	Payable
	Nonpayable
	Indexed
	Calldata
	Memory
	Storage

	// Literals and identifiers
	Ident
	Str
	Number // decimal literal
	Hex    // 0x-prefixed literal, arbitrary length
	Opcode // an identifier that resolved to an EVM opcode inside a macro body

	// ABI primitive/array type tokens
	PrimitiveType // uint256, bytes32, address, bool, string, bytes, ...
	ArrayType     // <base>[] or <base>[N], recorded with the literal verbatim

	// Builtins, e.g. __codesize, __FUNC_SIG
	Builtin

	Label             // IDENT immediately followed by ':'
	FreeStoragePointer // the FREE_STORAGE_POINTER() sentinel, parens pre-consumed
)

var kindNames = map[Kind]string{
	Illegal: "ILLEGAL", Eof: "EOF", Comment: "COMMENT",
	LParen: "(", RParen: ")", LBracket: "[", RBracket: "]",
	LBrace: "{", RBrace: "}", Comma: ",", Colon: ":", Equals: "=",
	Less: "<", Greater: ">", Plus: "+", Minus: "-", Star: "*", Slash: "/",
	Define: "#define", Macro: "macro", Fn: "fn", Test: "test",
	Function: "function", Event: "event", Error: "error", Constant: "constant",
	JumpTable: "jumptable", JumpTablePacked: "jumptable__packed", Table: "table",
	Include: "#include", Takes: "takes", Returns: "returns",
	View: "view", Pure: "pure", Payable: "payable", Nonpayable: "nonpayable",
	Indexed: "indexed", Calldata: "calldata", Memory: "memory", Storage: "storage",
	Ident: "IDENT", Str: "STRING", Number: "NUMBER", Hex: "HEX", Opcode: "OPCODE",
	PrimitiveType: "PRIMITIVE_TYPE", ArrayType: "ARRAY_TYPE", Builtin: "BUILTIN",
	Label: "LABEL", FreeStoragePointer: "FREE_STORAGE_POINTER",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Span is a byte range in the flattened source, plus an optional
// back-pointer to the file it originated from (set via
// resolver.Flattened.Attribute; the lexer leaves it empty). End is the offset one past the
// last consumed byte ("last consumed byte + 1"), matching the zipped-lexer
// convention spec.md's open question adopts.
type Span struct {
	Start int
	End   int
	File  string // empty if not yet attributed to a file
}

// Extend returns a copy of s with End pushed forward by n bytes, for a span
// that must cover trailing consumed characters that aren't part of its
// literal.
func (s Span) Extend(n int) Span {
	s.End += n
	return s
}

// Join returns the smallest span covering both s and other. Both must carry
// the same File (or be file-less); Join does not attempt to merge spans
// from different files.
func (s Span) Join(other Span) Span {
	out := s
	if other.Start < out.Start {
		out.Start = other.Start
	}
	if other.End > out.End {
		out.End = other.End
	}
	if out.File == "" {
		out.File = other.File
	}
	return out
}

func (s Span) String() string {
	if s.File != "" {
		return fmt.Sprintf("%s:%d-%d", s.File, s.Start, s.End)
	}
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// AstSpan aggregates the spans an AST node was built from, in source order.
// Nodes assembled from several tokens (e.g. a macro invocation with several
// arguments) carry one entry per contributing token/sub-node.
type AstSpan []Span

// Add appends s to the aggregate, returning the new slice.
func (a AstSpan) Add(s Span) AstSpan {
	return append(a, s)
}

// Span collapses the aggregate down to the single span covering all of it.
// Returns the zero Span if the aggregate is empty.
func (a AstSpan) Span() Span {
	if len(a) == 0 {
		return Span{}
	}
	out := a[0]
	for _, s := range a[1:] {
		out = out.Join(s)
	}
	return out
}

// Token is a single lexical token: its kind and the span of source bytes it
// was read from. Literal is the token's textual payload where one applies
// (identifiers, numbers, hex digits, strings); punctuation and keyword
// tokens leave it empty since Kind alone determines their text.
type Token struct {
	Kind    Kind
	Literal string
	Span    Span
}

func (t Token) String() string {
	if t.Literal != "" {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Literal)
	}
	return t.Kind.String()
}

// Keywords recognized only immediately after #define.
var DefineKeywords = map[string]Kind{
	"macro":              Macro,
	"fn":                 Fn,
	"test":                Test,
	"function":           Function,
	"event":               Event,
	"error":               Error,
	"constant":            Constant,
	"jumptable":           JumpTable,
	"jumptable__packed":   JumpTablePacked,
	"table":               Table,
}

// Mutability keywords, legal after themselves or ')'.
var MutabilityKeywords = map[string]Kind{
	"view":       View,
	"pure":       Pure,
	"payable":    Payable,
	"nonpayable": Nonpayable,
}
