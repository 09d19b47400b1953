package ast

import "github.com/huff-lang/huffc/pkg/token"

// TableKind distinguishes the three #define table flavors.
type TableKind int

const (
	JumpTableKind TableKind = iota
	JumpTablePackedKind
	CodeTableKind
)

// TableDefinition is a #define jumptable|jumptable__packed|table
// declaration. For jump tables, Labels holds the referenced label call
// names in declared order; for code tables, CodeBytes holds the verbatim
// bytes. Size is computed eagerly at parse time per spec §3's invariant:
// len(Labels)*32 for JumpTableKind, len(Labels)*2 for JumpTablePackedKind,
// len(CodeBytes) for CodeTableKind.
type TableDefinition struct {
	Name      string
	Kind      TableKind
	Labels    []string
	CodeBytes []byte
	Size      int
	Span      token.AstSpan
}

// ComputeSize derives t.Size from t.Labels/t.CodeBytes per the kind
// invariant. Called once by the parser immediately after building t.
func (t *TableDefinition) ComputeSize() {
	switch t.Kind {
	case JumpTableKind:
		t.Size = len(t.Labels) * 32
	case JumpTablePackedKind:
		t.Size = len(t.Labels) * 2
	case CodeTableKind:
		t.Size = len(t.CodeBytes)
	}
}
