package evm

import (
	"encoding/hex"
	"fmt"
)

// TrimLeadingZeros strips leading zero bytes, returning an empty slice for
// an all-zero (or empty) input so callers can special-case PUSH0.
func TrimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

// LeftPad pads b with leading zero bytes up to width n. It does not
// truncate: callers must check len(b) <= n first.
func LeftPad(b []byte, n int) []byte {
	if len(b) >= n {
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// RightPad pads b with trailing zero bytes up to width n.
func RightPad(b []byte, n int) []byte {
	if len(b) >= n {
		out := make([]byte, len(b))
		copy(out, b)
		return out
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// EncodePush returns the bytecode for pushing literal value, choosing the
// narrowest PUSH<K> that fits (PUSH0 for the zero value, unless shanghai is
// false, in which case PUSH1 0x00 is emitted per the pre-Shanghai
// dialect rule in spec.md §6).
func EncodePush(value []byte, shanghai bool) []byte {
	trimmed := TrimLeadingZeros(value)
	if len(trimmed) == 0 {
		if shanghai {
			return []byte{byte(PUSH0)}
		}
		return []byte{byte(PUSH1), 0x00}
	}
	op := Push(len(trimmed))
	out := make([]byte, 0, 1+len(trimmed))
	out = append(out, byte(op))
	out = append(out, trimmed...)
	return out
}

// FormatOffset renders an absolute bytecode offset as a fixed-width 2-byte
// (4 hex digit) big-endian immediate, the width every PUSH2 label/table
// reference uses.
func FormatOffset(offset int) string {
	return fmt.Sprintf("%04x", offset)
}

// MustDecodeHex decodes a hex string with no 0x prefix, panicking on
// malformed input, so it suits internally generated strings (e.g.
// FormatOffset's output) rather than user-supplied source.
func MustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("evm: invalid internally generated hex %q: %v", s, err))
	}
	return b
}
