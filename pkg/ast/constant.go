package ast

import "github.com/huff-lang/huffc/pkg/token"

// ConstVal is the value side of a #define constant declaration: either a
// resolved Literal or a FreeStoragePointer sentinel awaiting derivation.
type ConstVal interface {
	isConstVal()
}

// Literal is a byte string of at most 32 bytes.
type Literal struct {
	Bytes []byte
}

func (Literal) isConstVal() {}

// FreeStoragePointer is the FREE_STORAGE_POINTER() sentinel; it is replaced
// by a Literal during ConstantTable.Derive.
type FreeStoragePointer struct{}

func (FreeStoragePointer) isConstVal() {}

// ConstantDefinition is a single #define constant declaration.
type ConstantDefinition struct {
	Name  string
	Value ConstVal
	Span  token.Span
}
