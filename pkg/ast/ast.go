// Package ast defines the contract AST built by the parser and consumed,
// read-only (with the narrow exception of Contract.Constants), by the code
// generator.
package ast

import (
	"math/big"
	"sync"

	"github.com/huff-lang/huffc/pkg/abi"
	"github.com/huff-lang/huffc/pkg/token"
)

// Param is a single ABI parameter: a type, an optional name, and (for
// event parameters only) whether it is indexed.
type Param struct {
	Name    string
	Type    abi.Type
	Indexed bool
}

// Mutability is a function's declared state-mutability keyword.
type Mutability int

const (
	MutabilityUnspecified Mutability = iota
	View
	Pure
	Payable
	Nonpayable
)

// FunctionSignature is a #define function declaration.
type FunctionSignature struct {
	Name       string
	Inputs     []Param
	Outputs    []Param
	Mutability Mutability
	Selector   [4]byte
	Span       token.AstSpan
}

// EventDefinition is a #define event declaration.
type EventDefinition struct {
	Name       string
	Parameters []Param
	Hash       [32]byte
	Span       token.AstSpan
}

// ErrorDefinition is a #define error declaration.
type ErrorDefinition struct {
	Name       string
	Parameters []Param
	Selector   [4]byte
	Span       token.AstSpan
}

// Decorator carries @[calldata(...), value(...)] metadata attached to a
// test macro. The parser does not read decorator syntax (the lexer has no
// '@' token), so MacroDefinition.Decorator is nil on every parsed macro.
type Decorator struct {
	Calldata []byte
	Value    *big.Int
}

// Argument is a macro parameter: a bare name, used both as the formal
// parameter name in the macro's signature and as the <name> ArgCall
// identifier inside its body.
type Argument struct {
	Name string
	Span token.Span
}

// MacroDefinition is a #define macro|fn|test declaration.
type MacroDefinition struct {
	Name       string
	Parameters []Argument
	Statements []Statement
	Takes      int
	Returns    int
	Decorator  *Decorator
	Outlined   bool
	Test       bool
	Span       token.AstSpan
}

// Contract is the parser's output: every top-level declaration in a
// (already-flattened) source file, plus the list of raw import paths the
// resolver consumed to build it.
type Contract struct {
	Macros    []*MacroDefinition
	Constants *ConstantTable
	Functions []*FunctionSignature
	Events    []*EventDefinition
	Errors    []*ErrorDefinition
	Tables    []*TableDefinition
	Imports   []string
}

// NewContract returns an empty Contract ready for the parser to populate.
func NewContract() *Contract {
	return &Contract{Constants: NewConstantTable()}
}

// FindMacro returns the macro definition named name, or nil if none exists.
func (c *Contract) FindMacro(name string) *MacroDefinition {
	for _, m := range c.Macros {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// FindFunction returns the function signature named name, or nil.
func (c *Contract) FindFunction(name string) *FunctionSignature {
	for _, f := range c.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FindEvent returns the event definition named name, or nil.
func (c *Contract) FindEvent(name string) *EventDefinition {
	for _, e := range c.Events {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// FindError returns the error definition named name, or nil.
func (c *Contract) FindError(name string) *ErrorDefinition {
	for _, e := range c.Errors {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// FindTable returns the table definition named name, or nil.
func (c *Contract) FindTable(name string) *TableDefinition {
	for _, t := range c.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// ConstantTable is the one mutable-by-design part of the AST (spec §3/§5):
// the parser populates it in declaration order with possibly-unresolved
// FreeStoragePointer values, and DeriveStoragePointers later replaces each
// with its assigned literal index. The mutex is held only for the brief
// derive pass and for individual lookups during codegen, never across a
// whole compilation.
type ConstantTable struct {
	mu      sync.Mutex
	entries []*ConstantDefinition
	index   map[string]int
	derived bool
}

// NewConstantTable returns an empty ConstantTable.
func NewConstantTable() *ConstantTable {
	return &ConstantTable{index: make(map[string]int)}
}

// Define appends a new constant declaration in parse order.
func (t *ConstantTable) Define(def *ConstantDefinition) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.index[def.Name] = len(t.entries)
	t.entries = append(t.entries, def)
}

// Lookup returns the constant named name and whether it was found. The
// returned ConstantDefinition is a pointer into the table; callers must not
// retain it across a concurrent Derive.
func (t *ConstantTable) Lookup(name string) (*ConstantDefinition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.entries[i], true
}

// All returns a snapshot slice of every constant in declaration order.
func (t *ConstantTable) All() []*ConstantDefinition {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*ConstantDefinition, len(t.entries))
	copy(out, t.entries)
	return out
}

// Derive replaces every FreeStoragePointer value with a Literal equal to its
// index among free-pointer constants in declaration order (spec §3/§4.2).
// Idempotent: calling it twice leaves already-derived constants unchanged.
func (t *ConstantTable) Derive() {
	t.mu.Lock()
	defer t.mu.Unlock()
	next := 0
	for _, def := range t.entries {
		switch def.Value.(type) {
		case FreeStoragePointer:
			def.Value = Literal{Bytes: big.NewInt(int64(next)).Bytes()}
			next++
		case Literal:
			// Explicit literals don't consume a free-pointer index.
		}
	}
	t.derived = true
}

// Derived reports whether Derive has run, letting codegen fail fast with
// StoragePointersNotDerived instead of silently reading a FreeStoragePointer
// sentinel as zero.
func (t *ConstantTable) Derived() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.derived
}
