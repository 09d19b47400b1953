package evm

import (
	"encoding/hex"
	"testing"
)

// Keccak256("") is a well-known test vector for the pre-NIST Keccak padding
// (distinct from SHA3-256's empty-input hash).
func TestKeccak256EmptyInput(t *testing.T) {
	got := Keccak256([]byte{})
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if hex.EncodeToString(got[:]) != want {
		t.Errorf("Keccak256(\"\") = %x, want %s", got, want)
	}
}

// Keccak256("transfer(address,uint256)")[:4] is the well-known ERC-20
// `transfer` selector.
func TestKeccak256TransferSelector(t *testing.T) {
	h := Keccak256([]byte("transfer(address,uint256)"))
	got := hex.EncodeToString(h[:4])
	want := "a9059cbb"
	if got != want {
		t.Errorf("selector = %s, want %s", got, want)
	}
}

func TestKeccak256MultipleChunksEqualsConcatenation(t *testing.T) {
	a := Keccak256([]byte("foo"), []byte("bar"))
	b := Keccak256([]byte("foobar"))
	if a != b {
		t.Errorf("Keccak256(\"foo\",\"bar\") = %x, want %x", a, b)
	}
}

func TestKeccak256HashMatchesArrayForm(t *testing.T) {
	arr := Keccak256([]byte("abc"))
	sl := Keccak256Hash([]byte("abc"))
	if hex.EncodeToString(arr[:]) != hex.EncodeToString(sl) {
		t.Errorf("Keccak256Hash mismatch: %x vs %x", arr, sl)
	}
}
