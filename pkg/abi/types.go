// Package abi parses and canonicalizes Solidity ABI type grammar and
// derives the function/error selectors and event hashes the code generator
// and the #define function/event/error declarations need.
package abi

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is a single ABI parameter type: a primitive (possibly sized), or an
// array of another Type, or a tuple of component Types.
type Type struct {
	Base       string // "uint", "int", "bytes", "bool", "address", "string", "tuple"
	Bits       int    // for uint<N>/int<N>, N; 0 means the type carries no width suffix
	FixedBytes int    // for bytes<N>, N; 0 means dynamic "bytes"
	ArrayOf    *Type  // non-nil if this type is an array of ArrayOf
	ArrayLen   int    // 0 for dynamic arrays ("T[]"), >0 for fixed ("T[N]")
	IsArray    bool
	Components []Type // for tuple types
}

// String renders the canonical Solidity type signature, e.g. "uint256",
// "bytes", "address[2][]", "(address,uint256)".
func (t Type) String() string {
	if t.IsArray {
		suffix := "[]"
		if t.ArrayLen > 0 {
			suffix = fmt.Sprintf("[%d]", t.ArrayLen)
		}
		return t.ArrayOf.String() + suffix
	}
	switch t.Base {
	case "uint":
		bits := t.Bits
		if bits == 0 {
			bits = 256
		}
		return fmt.Sprintf("uint%d", bits)
	case "int":
		bits := t.Bits
		if bits == 0 {
			bits = 256
		}
		return fmt.Sprintf("int%d", bits)
	case "bytes":
		if t.FixedBytes > 0 {
			return fmt.Sprintf("bytes%d", t.FixedBytes)
		}
		return "bytes"
	case "bool", "address", "string":
		return t.Base
	case "tuple":
		parts := make([]string, len(t.Components))
		for i, c := range t.Components {
			parts[i] = c.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return t.Base
	}
}

// ParseType parses a single ABI type token (as produced by the lexer's
// PrimitiveType/ArrayType recognition) into a Type. It does not parse tuple
// syntax.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Type{}, fmt.Errorf("abi: empty type")
	}

	// Array suffix: peel off trailing "[]" / "[N]" repeatedly, building
	// from the innermost base type outward.
	if idx := strings.LastIndexByte(s, ']'); idx == len(s)-1 {
		open := strings.LastIndexByte(s, '[')
		if open < 0 {
			return Type{}, fmt.Errorf("abi: unbalanced array brackets in %q", s)
		}
		inner, err := ParseType(s[:open])
		if err != nil {
			return Type{}, err
		}
		lenStr := s[open+1 : idx]
		arr := Type{IsArray: true, ArrayOf: &inner}
		if lenStr != "" {
			n, err := strconv.Atoi(lenStr)
			if err != nil || n <= 0 {
				return Type{}, fmt.Errorf("abi: invalid array length %q", lenStr)
			}
			arr.ArrayLen = n
		}
		return arr, nil
	}

	switch {
	case s == "bool", s == "address", s == "string", s == "bytes":
		return Type{Base: s}, nil
	case s == "uint", s == "int":
		return Type{Base: s, Bits: 256}, nil
	case strings.HasPrefix(s, "uint"):
		n, err := strconv.Atoi(s[4:])
		if err != nil || n <= 0 || n > 256 || n%8 != 0 {
			return Type{}, fmt.Errorf("abi: invalid uint width in %q", s)
		}
		return Type{Base: "uint", Bits: n}, nil
	case strings.HasPrefix(s, "int"):
		n, err := strconv.Atoi(s[3:])
		if err != nil || n <= 0 || n > 256 || n%8 != 0 {
			return Type{}, fmt.Errorf("abi: invalid int width in %q", s)
		}
		return Type{Base: "int", Bits: n}, nil
	case strings.HasPrefix(s, "bytes"):
		n, err := strconv.Atoi(s[5:])
		if err != nil || n <= 0 || n > 32 {
			return Type{}, fmt.Errorf("abi: invalid bytes width in %q", s)
		}
		return Type{Base: "bytes", FixedBytes: n}, nil
	default:
		return Type{}, fmt.Errorf("abi: unrecognized primitive type %q", s)
	}
}

// CanonicalSignature builds the "name(type1,type2,...)" signature string
// that function/error selectors and event hashes are derived from.
func CanonicalSignature(name string, params []Type) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}
