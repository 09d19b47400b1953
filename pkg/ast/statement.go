package ast

import (
	"github.com/huff-lang/huffc/pkg/evm"
	"github.com/huff-lang/huffc/pkg/token"
)

// Statement is one element of a macro body. Concrete types below implement
// it with a marker method, the same sum-type-via-interface idiom used for
// MacroArg and ConstVal.
type Statement interface {
	isStatement()
	Span() token.Span
}

type baseStmt struct {
	span token.Span
}

func (b baseStmt) Span() token.Span { return b.span }

// LiteralStmt pushes a literal value (<= 32 bytes).
type LiteralStmt struct {
	baseStmt
	Value []byte
}

func (LiteralStmt) isStatement() {}

// OpcodeStmt emits a single EVM opcode.
type OpcodeStmt struct {
	baseStmt
	Op evm.OpCode
}

func (OpcodeStmt) isStatement() {}

// MacroInvocationStmt invokes another macro with the given arguments.
type MacroInvocationStmt struct {
	baseStmt
	Name string
	Args []MacroArg
}

func (MacroInvocationStmt) isStatement() {}

// LabelStmt defines a jump destination; Inner holds the statements that
// follow it up to the next label or the end of the enclosing body (Huff
// labels do not scope their contents — Inner is purely how the parser
// groups the statements between one label and the next for readability of
// the tree; codegen walks them as an ordinary sequence "inline").
type LabelStmt struct {
	baseStmt
	Name  string
	Inner []Statement
}

func (LabelStmt) isStatement() {}

// LabelCallStmt references a label by name, forward or backward.
type LabelCallStmt struct {
	baseStmt
	Name string
}

func (LabelCallStmt) isStatement() {}

// BuiltinKind enumerates the __builtin functions.
type BuiltinKind int

const (
	BuiltinCodesize BuiltinKind = iota
	BuiltinTablesize
	BuiltinTablestart
	BuiltinFuncSig
	BuiltinEventHash
	BuiltinError
	BuiltinRightpad
	BuiltinVerbatim
	BuiltinCodecopyDynArg
	BuiltinImmutable
)

// BuiltinCallStmt is a __NAME(args) builtin invocation.
type BuiltinCallStmt struct {
	baseStmt
	Kind BuiltinKind
	Args []string
}

func (BuiltinCallStmt) isStatement() {}

// ConstantStmt pushes the value of a [NAME] constant reference.
type ConstantStmt struct {
	baseStmt
	Name string
}

func (ConstantStmt) isStatement() {}

// ArgCallStmt is a <name> reference to an enclosing macro's parameter.
type ArgCallStmt struct {
	baseStmt
	Name string
}

func (ArgCallStmt) isStatement() {}

// NewLiteralStmt, etc. are small constructors so the parser doesn't repeat
// the baseStmt{span} boilerplate at every call site.

func NewLiteralStmt(span token.Span, value []byte) LiteralStmt {
	return LiteralStmt{baseStmt{span}, value}
}

func NewOpcodeStmt(span token.Span, op evm.OpCode) OpcodeStmt {
	return OpcodeStmt{baseStmt{span}, op}
}

func NewMacroInvocationStmt(span token.Span, name string, args []MacroArg) MacroInvocationStmt {
	return MacroInvocationStmt{baseStmt{span}, name, args}
}

func NewLabelStmt(span token.Span, name string, inner []Statement) LabelStmt {
	return LabelStmt{baseStmt{span}, name, inner}
}

func NewLabelCallStmt(span token.Span, name string) LabelCallStmt {
	return LabelCallStmt{baseStmt{span}, name}
}

func NewBuiltinCallStmt(span token.Span, kind BuiltinKind, args []string) BuiltinCallStmt {
	return BuiltinCallStmt{baseStmt{span}, kind, args}
}

func NewConstantStmt(span token.Span, name string) ConstantStmt {
	return ConstantStmt{baseStmt{span}, name}
}

func NewArgCallStmt(span token.Span, name string) ArgCallStmt {
	return ArgCallStmt{baseStmt{span}, name}
}
