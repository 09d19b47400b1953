package codegen

import (
	"github.com/huff-lang/huffc/pkg/evm"
)

// Churn assembles the final init-code: constructor logic, a bootstrap
// sequence that copies the (immutable-patched) runtime code into memory and
// returns it, the runtime code itself, and the ABI-encoded constructor
// arguments appended raw at the end (spec.md §4/§6).
//
// immutableValues maps each __IMMUTABLE(name) placeholder to its deploy-time
// value; every name in immutableRefs must have an entry. shanghai selects
// PUSH0 for the bootstrap's two zero offsets, matching the dialect used to
// generate constructorBytecode/runtimeBytecode (spec §6).
func Churn(constructorBytecode, runtimeBytecode []byte, immutableRefs []ImmutableRef, immutableValues map[string][]byte, constructorArgs []byte, shanghai bool) ([]byte, error) {
	patched := make([]byte, len(runtimeBytecode))
	copy(patched, runtimeBytecode)
	for _, ref := range immutableRefs {
		val, ok := immutableValues[ref.Name]
		if !ok {
			return nil, &Error{Kind: UndefinedArgument, Message: "no value supplied for immutable " + ref.Name}
		}
		if len(val) > 32 {
			return nil, &Error{Kind: ContractTooLarge, Message: "immutable " + ref.Name + " exceeds 32 bytes"}
		}
		copy(patched[ref.Offset:ref.Offset+32], evm.LeftPad(val, 32))
	}

	runtimeLen := len(patched)
	zeroWidth := 2 // PUSH1 0x00
	if shanghai {
		zeroWidth = 1 // PUSH0
	}
	// Pick the narrowest shared push width for runtimeLen and codeOffset;
	// computed twice since codeOffset depends on the bootstrap's own
	// length, which depends on the width (spec §6's push-width widening
	// above 255 runtime bytes).
	width := 2
	if offsetFits(len(constructorBytecode), runtimeLen, 1, zeroWidth) {
		width = 1
	}
	bootLen := 2*(1+width) + 2*zeroWidth + 3
	codeOffset := len(constructorBytecode) + bootLen
	if width == 1 && codeOffset > 0xff {
		width = 2
		bootLen = 2*(1+width) + 2*zeroWidth + 3
		codeOffset = len(constructorBytecode) + bootLen
	}
	if runtimeLen > 0xffff || codeOffset > 0xffff {
		return nil, &Error{Kind: ContractTooLarge, Message: "contract exceeds 64KiB addressable init-code"}
	}

	var out []byte
	out = append(out, constructorBytecode...)
	out = append(out, bootstrap(runtimeLen, codeOffset, width, shanghai)...)
	out = append(out, patched...)
	out = append(out, constructorArgs...)
	return out, nil
}

func offsetFits(ctorLen, runtimeLen, width, zeroWidth int) bool {
	bootLen := 2*(1+width) + 2*zeroWidth + 3
	return runtimeLen <= 0xff && ctorLen+bootLen <= 0xff
}

// bootstrap emits: PUSH<w> runtimeLen, DUP1, PUSH<w> codeOffset, <zero>,
// CODECOPY, <zero>, RETURN — where <zero> is PUSH0 under the Shanghai+
// dialect and PUSH1 0x00 otherwise (spec §6).
func bootstrap(runtimeLen, codeOffset, width int, shanghai bool) []byte {
	var out []byte
	out = append(out, pushN(runtimeLen, width)...)
	out = append(out, byte(evm.DUP1))
	out = append(out, pushN(codeOffset, width)...)
	out = append(out, pushZero(shanghai)...)
	out = append(out, byte(evm.CODECOPY))
	out = append(out, pushZero(shanghai)...)
	out = append(out, byte(evm.RETURN))
	return out
}

func pushZero(shanghai bool) []byte {
	if shanghai {
		return []byte{byte(evm.PUSH0)}
	}
	return []byte{byte(evm.PUSH1), 0x00}
}

func pushN(value, width int) []byte {
	b := make([]byte, width)
	v := value
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	out := make([]byte, 0, 1+width)
	out = append(out, byte(evm.Push(width)))
	out = append(out, b...)
	return out
}
