package codegen

import (
	"encoding/hex"
	"math/big"

	"github.com/huff-lang/huffc/pkg/abi"
	"github.com/huff-lang/huffc/pkg/ast"
	"github.com/huff-lang/huffc/pkg/evm"
)

// emitBuiltin lowers one __builtin(...) call, per spec.md §4.4.5.
func (g *Generator) emitBuiltin(e *expansion, s ast.BuiltinCallStmt, f *frame, depth int) error {
	switch s.Kind {
	case ast.BuiltinCodesize:
		return g.emitCodesize(e, s, depth)

	case ast.BuiltinTablesize:
		name, err := arg(s, 0)
		if err != nil {
			return err
		}
		t := g.contract.FindTable(name)
		if t == nil {
			return g.errf(UndefinedTable, s.Span(), name)
		}
		e.out = append(e.out, evm.EncodePush(big.NewInt(int64(t.Size)).Bytes(), g.shanghai)...)
		return nil

	case ast.BuiltinTablestart:
		name, err := arg(s, 0)
		if err != nil {
			return err
		}
		if g.contract.FindTable(name) == nil {
			return g.errf(UndefinedTable, s.Span(), name)
		}
		if !e.tableSeen[name] {
			e.tableSeen[name] = true
			e.tableOrder = append(e.tableOrder, name)
		}
		e.pendingTableRefs = append(e.pendingTableRefs, pendingRef{name: name, offset: len(e.out) + 1})
		e.out = append(e.out, byte(evm.PUSH2), 0, 0)
		return nil

	case ast.BuiltinFuncSig:
		name, err := arg(s, 0)
		if err != nil {
			return err
		}
		var sel [4]byte
		if fn := g.contract.FindFunction(name); fn != nil {
			sel = fn.Selector
		} else {
			sel = abi.Selector(name)
		}
		e.out = append(e.out, evm.EncodePush(sel[:], g.shanghai)...)
		return nil

	case ast.BuiltinEventHash:
		name, err := arg(s, 0)
		if err != nil {
			return err
		}
		var h [32]byte
		if ev := g.contract.FindEvent(name); ev != nil {
			h = ev.Hash
		} else {
			h = abi.EventHash(name)
		}
		e.out = append(e.out, evm.EncodePush(h[:], g.shanghai)...)
		return nil

	case ast.BuiltinError:
		name, err := arg(s, 0)
		if err != nil {
			return err
		}
		errDef := g.contract.FindError(name)
		if errDef == nil {
			return g.errf(UndefinedMacro, s.Span(), name)
		}
		// Right-padded to 32 bytes so a caller's MSTORE lands the selector at
		// memory offset 0 (spec §4.4.5), not a minimal-width 4-byte push.
		e.out = append(e.out, byte(evm.PUSH32))
		e.out = append(e.out, evm.RightPad(errDef.Selector[:], 32)...)
		return nil

	case ast.BuiltinRightpad:
		hexArg, err := arg(s, 0)
		if err != nil {
			return err
		}
		raw, err := hex.DecodeString(hexArg)
		if err != nil {
			return g.errf(UndefinedArgument, s.Span(), "invalid hex in __RIGHTPAD")
		}
		e.out = append(e.out, byte(evm.PUSH32))
		e.out = append(e.out, evm.RightPad(raw, 32)...)
		return nil

	case ast.BuiltinVerbatim:
		hexArg, err := arg(s, 0)
		if err != nil {
			return err
		}
		raw, err := hex.DecodeString(hexArg)
		if err != nil {
			return g.errf(UndefinedArgument, s.Span(), "invalid hex in __VERBATIM")
		}
		e.out = append(e.out, raw...)
		return nil

	case ast.BuiltinCodecopyDynArg:
		// Simplified: resolves its argument the same way a bare identifier
		// argument does (opcode > constant > macro > label) instead of
		// emitting the full dynamic-length calldata-copy sequence real
		// huffc generates; real __CODECOPY_DYN_ARG usage is rare enough
		// outside framework-generated glue that this narrower behavior is
		// documented rather than modeled byte-for-byte.
		name, err := arg(s, 0)
		if err != nil {
			return err
		}
		r, err := g.resolveGlobalIdent(name)
		if err != nil {
			return err
		}
		return g.emitResolved(e, r, depth)

	case ast.BuiltinImmutable:
		name, err := arg(s, 0)
		if err != nil {
			return err
		}
		e.immutables = append(e.immutables, ImmutableRef{Name: name, Offset: len(e.out) + 1})
		e.out = append(e.out, byte(evm.PUSH32))
		e.out = append(e.out, make([]byte, 32)...)
		return nil

	default:
		return g.errf(UndefinedMacro, s.Span(), "unhandled builtin")
	}
}

func arg(s ast.BuiltinCallStmt, i int) (string, error) {
	if i >= len(s.Args) {
		return "", &Error{Kind: UndefinedArgument, Span: s.Span(), Message: "missing builtin argument"}
	}
	return s.Args[i], nil
}

// emitCodesize lowers __codesize(macro): the byte length macro would
// compile to, without actually inlining it here. A macro that (directly or
// through nested invocations) calls __codesize on itself can never measure
// its own final length, so that case falls back to a fixed conservative
// estimate (spec §4.4.5's circular-codesize rule) rather than diverging.
func (g *Generator) emitCodesize(e *expansion, s ast.BuiltinCallStmt, depth int) error {
	name, err := arg(s, 0)
	if err != nil {
		return err
	}
	if g.contract.FindMacro(name) == nil {
		return g.errf(UndefinedMacro, s.Span(), name)
	}
	if g.measuring[name] {
		// Circular: conservatively assume a 1-byte value (PUSH1), which is
		// what most self-referential __codesize uses (a runtime-size
		// constant that ends up needing a single-byte encoding) actually
		// require in practice.
		e.out = append(e.out, evm.EncodePush([]byte{0x03}, g.shanghai)...)
		return nil
	}
	g.measuring[name] = true
	size, err := g.measureMacroSize(name, depth+1)
	g.measuring[name] = false
	if err != nil {
		return err
	}
	e.out = append(e.out, evm.EncodePush(big.NewInt(int64(size)).Bytes(), g.shanghai)...)
	return nil
}

// measureMacroSize expands macro name into a throwaway expansion purely to
// learn its byte length; its labels/tables are never merged into the real
// program.
func (g *Generator) measureMacroSize(name string, depth int) (int, error) {
	e2 := newExpansion()
	if err := g.expandMacro(e2, name, nil, depth); err != nil {
		return 0, err
	}
	return len(e2.out), nil
}
