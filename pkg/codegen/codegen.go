// Package codegen expands a parsed, storage-pointer-derived Contract into
// EVM bytecode. This is the compiler's largest stage: it recursively
// expands macro invocations, bubbles arguments through nested invocation
// frames, resolves jump labels and table references in a second pass once
// every offset is known, and lowers the builtin functions (spec.md §4.4).
package codegen

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/huff-lang/huffc/pkg/ast"
	"github.com/huff-lang/huffc/pkg/evm"
	"github.com/huff-lang/huffc/pkg/token"
)

// ImmutableRef records where an __IMMUTABLE(name) placeholder was written
// into the runtime bytecode, so Churn can patch in the deploy-time value
// the same way Solidity's immutable pattern copies constructor-computed
// values into the deployed code before RETURN.
type ImmutableRef struct {
	Name   string
	Offset int // offset of the first of 32 placeholder bytes
}

// Generator expands one Contract's macros into bytecode.
type Generator struct {
	contract  *ast.Contract
	shanghai  bool // PUSH0 dialect for zero literals when true, else PUSH1 0x00
	maxDepth  int
	measuring map[string]bool // macro names currently mid-measurement, for __codesize cycle detection
}

// NewGenerator returns a Generator for contract. shanghai selects the
// PUSH0-vs-PUSH1-0x00 zero-literal dialect (spec §6). maxDepth bounds macro
// invocation recursion (the config default is 256).
func NewGenerator(contract *ast.Contract, shanghai bool, maxDepth int) *Generator {
	return &Generator{contract: contract, shanghai: shanghai, maxDepth: maxDepth, measuring: map[string]bool{}}
}

type argKind int

const (
	litArg argKind = iota
	opcodeArg
	macroArg
	labelArg
)

// resolvedArg is a macro argument fully resolved to what it will actually
// emit, computed once at the invocation site (spec §4.4.3/§9's load-bearing
// opcode > constant > macro > label priority). Storing the resolved form
// (rather than the raw ast.MacroArg) in each callee frame means a forwarded
// <name> argument resolves in O(1) regardless of how many invocation levels
// it bubbles through.
type resolvedArg struct {
	kind      argKind
	bytes     []byte
	op        evm.OpCode
	macroName string
	labelName string
}

type frame struct {
	args map[string]resolvedArg
}

type pendingRef struct {
	name   string
	offset int // offset of the 2-byte placeholder
}

// expansion is the mutable state of one self-contained macro expansion run.
// __codesize measurement runs its own throwaway expansion so a hypothetical
// size computation never pollutes the real program's label/table state.
type expansion struct {
	out              []byte
	labelOffsets     map[string]int
	pendingJumps     []pendingRef
	tableOrder       []string
	tableSeen        map[string]bool
	pendingTableRefs []pendingRef
	tableOffsets     map[string]int
	immutables       []ImmutableRef
}

func newExpansion() *expansion {
	return &expansion{labelOffsets: map[string]int{}, tableSeen: map[string]bool{}}
}

func (g *Generator) errf(kind Kind, span token.Span, msg string) error {
	return &Error{Kind: kind, Span: span, Message: msg}
}

// Generate expands mainMacro (and, transitively, everything it invokes)
// into final bytecode: labels and table references are resolved once the
// whole body is known.
func (g *Generator) Generate(mainMacro string) ([]byte, []ImmutableRef, error) {
	e := newExpansion()
	if err := g.expandMacro(e, mainMacro, nil, 0); err != nil {
		return nil, nil, err
	}
	if err := g.appendTables(e); err != nil {
		return nil, nil, err
	}
	if err := g.patchPending(e); err != nil {
		return nil, nil, err
	}
	return e.out, e.immutables, nil
}

func (g *Generator) expandMacro(e *expansion, name string, args []resolvedArg, depth int) error {
	if depth > g.maxDepth {
		return g.errf(RecursionLimitExceeded, token.Span{}, "macro invocation depth exceeded "+name)
	}
	m := g.contract.FindMacro(name)
	if m == nil {
		return g.errf(UndefinedMacro, token.Span{}, name)
	}
	if len(args) != len(m.Parameters) {
		return g.errf(ArgumentCountMismatch, m.Span.Span(), name)
	}
	f := &frame{args: map[string]resolvedArg{}}
	for i, param := range m.Parameters {
		f.args[param.Name] = args[i]
	}
	return g.emitStatements(e, m.Statements, f, depth)
}

// emitStatements walks one statement sequence left to right. A PUSH<K>
// opcode immediately followed by a literal is a special pair (spec
// §4.4.2): the literal is consumed as that push's immediate, left-zero-
// padded to exactly K bytes, rather than being emitted as its own
// minimal-width push.
func (g *Generator) emitStatements(e *expansion, stmts []ast.Statement, f *frame, depth int) error {
	for i := 0; i < len(stmts); i++ {
		s := stmts[i]
		if op, ok := s.(ast.OpcodeStmt); ok && op.Op.IsPush() && op.Op != evm.PUSH0 && i+1 < len(stmts) {
			if lit, ok := stmts[i+1].(ast.LiteralStmt); ok {
				width := op.Op.PushWidth()
				if len(lit.Value) > width {
					return g.errf(PushOverflow, lit.Span(), fmt.Sprintf("literal %x does not fit in PUSH%d", lit.Value, width))
				}
				e.out = append(e.out, byte(op.Op))
				e.out = append(e.out, evm.LeftPad(lit.Value, width)...)
				i++
				continue
			}
		}
		if err := g.emitStatement(e, s, f, depth); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitStatement(e *expansion, stmt ast.Statement, f *frame, depth int) error {
	switch s := stmt.(type) {
	case ast.LiteralStmt:
		e.out = append(e.out, evm.EncodePush(s.Value, g.shanghai)...)
		return nil

	case ast.OpcodeStmt:
		e.out = append(e.out, byte(s.Op))
		return nil

	case ast.ConstantStmt:
		bytes, err := g.constantBytes(s.Name)
		if err != nil {
			return err
		}
		e.out = append(e.out, evm.EncodePush(bytes, g.shanghai)...)
		return nil

	case ast.ArgCallStmt:
		r, ok := f.args[s.Name]
		if !ok {
			return g.errf(UndefinedArgument, s.Span(), s.Name)
		}
		return g.emitResolved(e, r, depth)

	case ast.LabelStmt:
		e.labelOffsets[s.Name] = len(e.out)
		e.out = append(e.out, byte(evm.JUMPDEST))
		return g.emitStatements(e, s.Inner, f, depth)

	case ast.LabelCallStmt:
		e.pendingJumps = append(e.pendingJumps, pendingRef{name: s.Name, offset: len(e.out) + 1})
		e.out = append(e.out, byte(evm.PUSH2), 0, 0)
		return nil

	case ast.MacroInvocationStmt:
		resolvedArgs := make([]resolvedArg, len(s.Args))
		for i, a := range s.Args {
			r, err := g.resolveArgChain(f, a)
			if err != nil {
				return err
			}
			resolvedArgs[i] = r
		}
		return g.expandMacro(e, s.Name, resolvedArgs, depth+1)

	case ast.BuiltinCallStmt:
		return g.emitBuiltin(e, s, f, depth)

	default:
		return g.errf(UndefinedMacro, stmt.Span(), "unhandled statement kind")
	}
}

func (g *Generator) constantBytes(name string) ([]byte, error) {
	def, ok := g.contract.Constants.Lookup(name)
	if !ok {
		return nil, g.errf(UndefinedConstant, token.Span{}, name)
	}
	if !g.contract.Constants.Derived() {
		return nil, g.errf(StoragePointersNotDerived, token.Span{}, name)
	}
	lit, ok := def.Value.(ast.Literal)
	if !ok {
		return nil, g.errf(StoragePointersNotDerived, token.Span{}, name)
	}
	return lit.Bytes, nil
}

// resolveGlobalIdent implements the load-bearing opcode > constant > macro
// > label priority order for a bare identifier (spec §4.4.3, §9).
func (g *Generator) resolveGlobalIdent(name string) (resolvedArg, error) {
	if op, ok := evm.Lookup(strings.ToLower(name)); ok {
		return resolvedArg{kind: opcodeArg, op: op}, nil
	}
	if _, ok := g.contract.Constants.Lookup(name); ok {
		b, err := g.constantBytes(name)
		if err != nil {
			return resolvedArg{}, err
		}
		return resolvedArg{kind: litArg, bytes: b}, nil
	}
	if g.contract.FindMacro(name) != nil {
		return resolvedArg{kind: macroArg, macroName: name}, nil
	}
	return resolvedArg{kind: labelArg, labelName: name}, nil
}

func (g *Generator) resolveArgChain(f *frame, arg ast.MacroArg) (resolvedArg, error) {
	switch v := arg.(type) {
	case ast.LiteralArg:
		return resolvedArg{kind: litArg, bytes: v.Value}, nil
	case ast.IdentArg:
		return g.resolveGlobalIdent(v.Name)
	case ast.ArgCallArg:
		if f == nil {
			return resolvedArg{}, g.errf(UndefinedArgument, token.Span{}, v.Name)
		}
		r, ok := f.args[v.Name]
		if !ok {
			return resolvedArg{}, g.errf(UndefinedArgument, token.Span{}, v.Name)
		}
		return r, nil
	default:
		return resolvedArg{}, g.errf(UndefinedArgument, token.Span{}, "unrecognized argument form")
	}
}

func (g *Generator) emitResolved(e *expansion, r resolvedArg, depth int) error {
	switch r.kind {
	case litArg:
		e.out = append(e.out, evm.EncodePush(r.bytes, g.shanghai)...)
		return nil
	case opcodeArg:
		e.out = append(e.out, byte(r.op))
		return nil
	case macroArg:
		return g.expandMacro(e, r.macroName, nil, depth+1)
	case labelArg:
		e.pendingJumps = append(e.pendingJumps, pendingRef{name: r.labelName, offset: len(e.out) + 1})
		e.out = append(e.out, byte(evm.PUSH2), 0, 0)
		return nil
	default:
		return g.errf(UndefinedArgument, token.Span{}, "unresolved argument")
	}
}

// appendTables appends every table referenced during expansion, in
// first-use order, after the runtime bytes, recording each table's start
// offset for patchPending to fill __tablestart/jump-table references with.
func (g *Generator) appendTables(e *expansion) error {
	e.tableOffsets = map[string]int{}
	for _, name := range e.tableOrder {
		t := g.contract.FindTable(name)
		if t == nil {
			return g.errf(UndefinedTable, token.Span{}, name)
		}
		e.tableOffsets[name] = len(e.out)
		switch t.Kind {
		case ast.CodeTableKind:
			e.out = append(e.out, t.CodeBytes...)
		case ast.JumpTableKind:
			for _, label := range t.Labels {
				off, ok := e.labelOffsets[label]
				if !ok {
					return g.errf(UnmatchedJumpLabel, token.Span{}, label)
				}
				e.out = append(e.out, evm.LeftPad(big.NewInt(int64(off)).Bytes(), 32)...)
			}
		case ast.JumpTablePackedKind:
			for _, label := range t.Labels {
				off, ok := e.labelOffsets[label]
				if !ok {
					return g.errf(UnmatchedJumpLabel, token.Span{}, label)
				}
				e.out = append(e.out, evm.LeftPad(big.NewInt(int64(off)).Bytes(), 2)...)
			}
		}
	}
	return nil
}

func (g *Generator) patchPending(e *expansion) error {
	for _, pj := range e.pendingJumps {
		off, ok := e.labelOffsets[pj.name]
		if !ok {
			return g.errf(UnmatchedJumpLabel, token.Span{}, pj.name)
		}
		writeUint16(e.out, pj.offset, off)
	}
	for _, pt := range e.pendingTableRefs {
		off, ok := e.tableOffsets[pt.name]
		if !ok {
			return g.errf(UndefinedTable, token.Span{}, pt.name)
		}
		writeUint16(e.out, pt.offset, off)
	}
	return nil
}

func writeUint16(out []byte, offset, value int) {
	out[offset] = byte(value >> 8)
	out[offset+1] = byte(value)
}
