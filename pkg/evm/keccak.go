package evm

import "golang.org/x/crypto/sha3"

// Keccak256 hashes data with the original (pre-NIST-finalization) Keccak
// padding, which is what Ethereum selectors, event topics and error
// signatures are derived from. sha3.Sum256 (the FIPS-202 final variant)
// uses different padding and must never be substituted here.
func Keccak256(data ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Keccak256Hash is a convenience wrapper returning a slice instead of an
// array, for call sites that pass the digest straight into byte-string
// building code.
func Keccak256Hash(data ...[]byte) []byte {
	h := Keccak256(data...)
	return h[:]
}
