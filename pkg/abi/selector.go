package abi

import "github.com/huff-lang/huffc/pkg/evm"

// Selector returns the 4-byte function/error selector for the given
// canonical signature string: the first four bytes of its Keccak-256 hash.
func Selector(signature string) [4]byte {
	h := evm.Keccak256([]byte(signature))
	var out [4]byte
	copy(out[:], h[:4])
	return out
}

// EventHash returns the full 32-byte Keccak-256 hash of the canonical event
// signature, used as topic0.
func EventHash(signature string) [32]byte {
	return evm.Keccak256([]byte(signature))
}
