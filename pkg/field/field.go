// Package field converts between raw bytes/big integers and the
// frontend.Variable / field-element representation the circuits and
// witnesses exchange, per the spec's numeric encoding rules (little-endian,
// fixed width, truncation mod r accepted).
package field

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
)

// ScalarOrder is the BN254 scalar field modulus r that every circuit
// variable is reduced against.
func ScalarOrder() *big.Int {
	return ecc.BN254.ScalarField()
}

// Reduce truncates v into the scalar field by reduction mod r. Per spec
// §4.1, values that exceed r are accepted and silently truncated rather
// than rejected — callers that need range-checked values must validate
// before calling this.
func Reduce(v *big.Int) *big.Int {
	return new(big.Int).Mod(v, ScalarOrder())
}

// BytesLEToField decodes a little-endian byte slice into a field element,
// reducing it mod r.
func BytesLEToField(data []byte) *big.Int {
	be := make([]byte, len(data))
	for i, b := range data {
		be[len(data)-1-i] = b
	}
	return Reduce(new(big.Int).SetBytes(be))
}

// FieldToBytesLE encodes a field element into a fixed-width little-endian
// byte slice. The value is reduced mod r first, then zero-padded or
// truncated (keeping the least-significant bytes) to width bytes.
func FieldToBytesLE(v *big.Int, width int) []byte {
	reduced := Reduce(v)
	be := reduced.Bytes()
	if len(be) > width {
		be = be[len(be)-width:]
	}

	out := make([]byte, width)
	// be is big-endian; reverse into out while right-aligning the value
	// within the big-endian view, matching FieldToBytesLE's width contract.
	offset := width - len(be)
	for i, b := range be {
		out[width-1-(offset+i)] = b
	}
	return out
}

// ToVariables packs a slice of *big.Int values into a fixed-length slice of
// the same values, zero-filling (with field-zero, i.e. big.NewInt(0)) up to
// n entries. Used to build frontend.Variable-shaped witnesses for circuits
// whose arrays are sized by a spec constant (MaxPrefs, MaxCap, ...).
func ToVariables(values []*big.Int, n int) []*big.Int {
	out := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		if i < len(values) {
			out[i] = values[i]
		} else {
			out[i] = big.NewInt(0)
		}
	}
	return out
}
