package parser

import (
	"encoding/hex"
	"testing"

	"github.com/huff-lang/huffc/pkg/ast"
	"github.com/huff-lang/huffc/pkg/lexer"
)

func mustParse(t *testing.T, src string) *ast.Contract {
	t.Helper()
	toks, err := lexer.Lex(src)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	c, err := Parse(toks, src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return c
}

func TestParseSimpleMacro(t *testing.T) {
	c := mustParse(t, `#define macro MAIN() = takes(0) returns(0) { caller pop }`)
	if len(c.Macros) != 1 {
		t.Fatalf("expected 1 macro, got %d", len(c.Macros))
	}
	m := c.Macros[0]
	if m.Name != "MAIN" {
		t.Errorf("Name = %q, want MAIN", m.Name)
	}
	if m.Takes != 0 || m.Returns != 0 {
		t.Errorf("Takes/Returns = %d/%d, want 0/0", m.Takes, m.Returns)
	}
	if len(m.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(m.Statements))
	}
	if _, ok := m.Statements[0].(ast.OpcodeStmt); !ok {
		t.Errorf("statement 0 = %T, want OpcodeStmt", m.Statements[0])
	}
}

func TestParseMacroWithParamsAndTakesReturns(t *testing.T) {
	c := mustParse(t, `#define macro ADD_TWO(a, b) = takes(2) returns(1) { <a> <b> add }`)
	m := c.Macros[0]
	if len(m.Parameters) != 2 {
		t.Fatalf("expected 2 params, got %d", len(m.Parameters))
	}
	if m.Parameters[0].Name != "a" || m.Parameters[1].Name != "b" {
		t.Errorf("params = %+v", m.Parameters)
	}
	if m.Takes != 2 || m.Returns != 1 {
		t.Errorf("Takes/Returns = %d/%d, want 2/1", m.Takes, m.Returns)
	}
	if len(m.Statements) != 3 {
		t.Fatalf("expected 3 statements (<a>, <b>, add), got %d", len(m.Statements))
	}
	if _, ok := m.Statements[0].(ast.ArgCallStmt); !ok {
		t.Errorf("statement 0 = %T, want ArgCallStmt", m.Statements[0])
	}
}

func TestParseFnAndTestMacroKinds(t *testing.T) {
	c := mustParse(t, `
		#define fn HELPER() = takes(0) returns(0) {}
		#define test TEST_IT() = takes(0) returns(0) {}
	`)
	if len(c.Macros) != 2 {
		t.Fatalf("expected 2 macros, got %d", len(c.Macros))
	}
	if c.Macros[1].Test != true {
		t.Error("expected TEST_IT to be marked Test")
	}
	if c.Macros[0].Test {
		t.Error("expected HELPER to not be marked Test")
	}
}

func TestParseDuplicateMacroErrors(t *testing.T) {
	toks, err := lexer.Lex(`
		#define macro MAIN() = takes(0) returns(0) {}
		#define macro MAIN() = takes(0) returns(0) {}
	`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	_, err = Parse(toks, "")
	if err == nil {
		t.Fatal("expected a duplicate-definition error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if perr.Kind != DuplicateDefinition {
		t.Errorf("Kind = %s, want DuplicateDefinition", perr.Kind)
	}
}

func TestParseLabelAndLabelCall(t *testing.T) {
	c := mustParse(t, `#define macro MAIN() = takes(0) returns(0) {
		start:
			caller
			start jump
	}`)
	m := c.Macros[0]
	label, ok := m.Statements[0].(ast.LabelStmt)
	if !ok {
		t.Fatalf("statement 0 = %T, want LabelStmt", m.Statements[0])
	}
	if label.Name != "start" {
		t.Errorf("label name = %q, want start", label.Name)
	}
	if len(label.Inner) != 3 {
		t.Fatalf("expected 3 inner statements (caller, start, jump), got %d", len(label.Inner))
	}
	if _, ok := label.Inner[1].(ast.LabelCallStmt); !ok {
		t.Errorf("inner[1] = %T, want LabelCallStmt", label.Inner[1])
	}
}

func TestParseMacroInvocationWithArgs(t *testing.T) {
	c := mustParse(t, `
		#define macro ECHO(a) = takes(0) returns(0) { <a> }
		#define macro MAIN() = takes(0) returns(0) { ECHO(0x01) ECHO(caller) ECHO(<x>) }
	`)
	main := c.Macros[1]
	if len(main.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(main.Statements))
	}
	inv0 := main.Statements[0].(ast.MacroInvocationStmt)
	if inv0.Name != "ECHO" {
		t.Errorf("invocation name = %q, want ECHO", inv0.Name)
	}
	if _, ok := inv0.Args[0].(ast.LiteralArg); !ok {
		t.Errorf("arg 0 = %T, want LiteralArg", inv0.Args[0])
	}
	inv1 := main.Statements[1].(ast.MacroInvocationStmt)
	if _, ok := inv1.Args[0].(ast.IdentArg); !ok {
		t.Errorf("arg 0 = %T, want IdentArg", inv1.Args[0])
	}
	inv2 := main.Statements[2].(ast.MacroInvocationStmt)
	if _, ok := inv2.Args[0].(ast.ArgCallArg); !ok {
		t.Errorf("arg 0 = %T, want ArgCallArg", inv2.Args[0])
	}
}

func TestParseConstantHexAndFreeStoragePointer(t *testing.T) {
	c := mustParse(t, `
		#define constant A = FREE_STORAGE_POINTER()
		#define constant LIT = 0xa57B
	`)
	all := c.Constants.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 constants, got %d", len(all))
	}
	if _, ok := all[0].Value.(ast.FreeStoragePointer); !ok {
		t.Errorf("A's value = %T, want FreeStoragePointer", all[0].Value)
	}
	lit, ok := all[1].Value.(ast.Literal)
	if !ok {
		t.Fatalf("LIT's value = %T, want Literal", all[1].Value)
	}
	if hex.EncodeToString(lit.Bytes) != "a57b" {
		t.Errorf("LIT bytes = %x, want a57b", lit.Bytes)
	}
}

func TestDeriveStoragePointersAssignsSequentialIndices(t *testing.T) {
	c := mustParse(t, `
		#define constant A = FREE_STORAGE_POINTER()
		#define constant LIT = 0xa57B
		#define constant B = FREE_STORAGE_POINTER()
	`)
	DeriveStoragePointers(c)
	all := c.Constants.All()

	a := all[0].Value.(ast.Literal)
	if len(a.Bytes) != 0 {
		t.Errorf("A = %x, want empty (index 0)", a.Bytes)
	}
	lit := all[1].Value.(ast.Literal)
	if hex.EncodeToString(lit.Bytes) != "a57b" {
		t.Errorf("LIT = %x, want a57b (untouched)", lit.Bytes)
	}
	b := all[2].Value.(ast.Literal)
	if len(b.Bytes) != 1 || b.Bytes[0] != 1 {
		t.Errorf("B = %x, want [1] (index 1)", b.Bytes)
	}
	if !c.Constants.Derived() {
		t.Error("expected Constants.Derived() to report true after Derive")
	}
}

func TestParseFunctionSignatureAndSelector(t *testing.T) {
	c := mustParse(t, `#define function transfer(address,uint256) nonpayable returns (bool)`)
	if len(c.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(c.Functions))
	}
	f := c.Functions[0]
	if f.Name != "transfer" {
		t.Errorf("Name = %q, want transfer", f.Name)
	}
	if hex.EncodeToString(f.Selector[:]) != "a9059cbb" {
		t.Errorf("selector = %x, want a9059cbb", f.Selector)
	}
	if len(f.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(f.Outputs))
	}
	if f.Mutability != ast.Nonpayable {
		t.Errorf("Mutability = %v, want Nonpayable", f.Mutability)
	}
}

func TestParseEventSignatureAndHash(t *testing.T) {
	c := mustParse(t, `#define event Transfer(address indexed from, address indexed to, uint256 value)`)
	e := c.Events[0]
	if hex.EncodeToString(e.Hash[:]) != "ddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef" {
		t.Errorf("hash = %x", e.Hash)
	}
	if !e.Parameters[0].Indexed || !e.Parameters[1].Indexed {
		t.Error("expected from/to to be indexed")
	}
	if e.Parameters[2].Indexed {
		t.Error("expected value to not be indexed")
	}
}

func TestParseErrorSignatureAndSelector(t *testing.T) {
	c := mustParse(t, `#define error InsufficientBalance(uint256)`)
	e := c.Errors[0]
	if e.Name != "InsufficientBalance" {
		t.Errorf("Name = %q", e.Name)
	}
	if len(e.Selector) != 4 {
		t.Errorf("Selector length = %d, want 4", len(e.Selector))
	}
}

func TestParseIndexedOutsideEventErrors(t *testing.T) {
	toks, err := lexer.Lex(`#define function foo(uint256 indexed x) nonpayable returns ()`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	_, err = Parse(toks, "")
	if err == nil {
		t.Fatal("expected an error: indexed is only valid on event parameters")
	}
}

func TestParseJumpTable(t *testing.T) {
	c := mustParse(t, `#define jumptable TABLE { label_a label_b label_c label_d }`)
	tbl := c.Tables[0]
	if tbl.Kind != ast.JumpTableKind {
		t.Errorf("Kind = %v, want JumpTableKind", tbl.Kind)
	}
	if len(tbl.Labels) != 4 {
		t.Fatalf("expected 4 labels, got %d", len(tbl.Labels))
	}
	if tbl.Size != 4*32 {
		t.Errorf("Size = %d, want %d", tbl.Size, 4*32)
	}
}

func TestParsePackedJumpTableSize(t *testing.T) {
	c := mustParse(t, `#define jumptable__packed TABLE { label_a label_b label_c label_d }`)
	tbl := c.Tables[0]
	if tbl.Kind != ast.JumpTablePackedKind {
		t.Errorf("Kind = %v, want JumpTablePackedKind", tbl.Kind)
	}
	if tbl.Size != 4*2 {
		t.Errorf("Size = %d, want %d", tbl.Size, 4*2)
	}
}

func TestParseCodeTable(t *testing.T) {
	c := mustParse(t, `#define table CODE { 0x0123 0xabcdef }`)
	tbl := c.Tables[0]
	if tbl.Kind != ast.CodeTableKind {
		t.Errorf("Kind = %v, want CodeTableKind", tbl.Kind)
	}
	if hex.EncodeToString(tbl.CodeBytes) != "0123abcdef" {
		t.Errorf("CodeBytes = %x", tbl.CodeBytes)
	}
	if tbl.Size != 5 {
		t.Errorf("Size = %d, want 5", tbl.Size)
	}
}

func TestParseEmptyTableErrors(t *testing.T) {
	toks, err := lexer.Lex(`#define jumptable EMPTY { }`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	_, err = Parse(toks, "")
	if err == nil {
		t.Fatal("expected an error for a table with no entries")
	}
}

func TestParseBuiltinCall(t *testing.T) {
	c := mustParse(t, `#define macro MAIN() = takes(0) returns(0) { __FUNC_SIG("transfer(address,uint256)") }`)
	stmt := c.Macros[0].Statements[0].(ast.BuiltinCallStmt)
	if stmt.Kind != ast.BuiltinFuncSig {
		t.Errorf("Kind = %v, want BuiltinFuncSig", stmt.Kind)
	}
	if stmt.Args[0] != "transfer(address,uint256)" {
		t.Errorf("arg = %q", stmt.Args[0])
	}
}

func TestParseConstantPushStatement(t *testing.T) {
	c := mustParse(t, `
		#define constant OWNER = FREE_STORAGE_POINTER()
		#define macro MAIN() = takes(0) returns(0) { [OWNER] sload }
	`)
	main := c.Macros[0]
	cs, ok := main.Statements[0].(ast.ConstantStmt)
	if !ok {
		t.Fatalf("statement 0 = %T, want ConstantStmt", main.Statements[0])
	}
	if cs.Name != "OWNER" {
		t.Errorf("Name = %q, want OWNER", cs.Name)
	}
}

func TestParseIncludeDirective(t *testing.T) {
	c := mustParse(t, `#include "./Utils.huff"`)
	if len(c.Imports) != 1 || c.Imports[0] != "./Utils.huff" {
		t.Errorf("Imports = %v", c.Imports)
	}
}

func TestParseUnexpectedTokenAtTopLevel(t *testing.T) {
	toks, err := lexer.Lex(`not_a_define`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	_, err = Parse(toks, "")
	if err == nil {
		t.Fatal("expected an error for a stray top-level identifier")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if perr.Kind != UnexpectedToken {
		t.Errorf("Kind = %s, want UnexpectedToken", perr.Kind)
	}
}

func TestParseArrayTypeInParamList(t *testing.T) {
	c := mustParse(t, `#define function batch(uint256[] memory, address[2]) nonpayable returns ()`)
	f := c.Functions[0]
	if f.Inputs[0].Type.String() != "uint256[]" {
		t.Errorf("input 0 = %s, want uint256[]", f.Inputs[0].Type.String())
	}
	if f.Inputs[1].Type.String() != "address[2]" {
		t.Errorf("input 1 = %s, want address[2]", f.Inputs[1].Type.String())
	}
}
