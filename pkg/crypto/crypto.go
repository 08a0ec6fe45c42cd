// Package crypto collects the Poseidon2-based hashing helpers shared by
// the host-side witness builders and the circuits: the input commitment
// (C5a), per-match leaf/nonce derivation (C5c), and ElGamal randomness
// derivation (C2). Adapted from the teacher's pkg/crypto/crypto.go, whose
// "hash several Field values together, optionally behind a domain tag"
// shape is kept verbatim; only the preimage layouts change, from file-chunk
// framing to the matching domain's flattened-input and match-record framing.
package crypto

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"
)

// Domain tags for Merkle leaf hashing. Real leaves use DomainTagReal so an
// all-zero real match record hashes differently from a padding leaf.
const (
	DomainTagReal    = 1
	DomainTagPadding = 0
)

func hashElements(elements ...*big.Int) *big.Int {
	h := poseidon2.NewMerkleDamgardHasher()
	for _, e := range elements {
		var fe fr.Element
		fe.SetBigInt(e)
		b := fe.Bytes()
		h.Write(b[:])
	}
	return new(big.Int).SetBytes(h.Sum(nil))
}

func hashElementsWithTag(tag int, elements ...*big.Int) *big.Int {
	all := make([]*big.Int, 0, len(elements)+1)
	all = append(all, big.NewInt(int64(tag)))
	all = append(all, elements...)
	return hashElements(all...)
}

// HashFlatten computes the canonical input commitment:
// H(student_prefs row-major, college_prefs row-major, capacities,
// student pubkey hashes, college pubkey hashes), matching the circuit's
// checkInputCommitment preimage order exactly.
func HashFlatten(elements []*big.Int) *big.Int {
	return hashElements(elements...)
}

// HashPoint folds an (x, y) curve point into a single field element, the
// same collapsing step the circuit's pointHash helper performs before
// folding a pubkey into the flattened input-commitment preimage.
func HashPoint(x, y *big.Int) *big.Int {
	return hashElements(x, y)
}

// DeriveMatchLeaf computes a student's match-record Merkle leaf:
// H(DomainTagReal, studentID, collegeMatch, nonce).
func DeriveMatchLeaf(studentID, collegeMatch, nonce *big.Int) *big.Int {
	return hashElementsWithTag(DomainTagReal, studentID, collegeMatch, nonce)
}

// DeriveNonce computes a student's per-match nonce: H(studentID,
// collegeMatch, nonceSeed). This is the private value a student later
// reveals to a third party (together with their match) to open their own
// Merkle leaf without exposing anyone else's.
func DeriveNonce(studentID, collegeMatch, nonceSeed *big.Int) *big.Int {
	return hashElements(studentID, collegeMatch, nonceSeed)
}

// ComputeZeroLeafHash returns the padding-leaf hash H(DomainTagPadding, 0, 0, 0).
func ComputeZeroLeafHash() *big.Int {
	zero := big.NewInt(0)
	return hashElementsWithTag(DomainTagPadding, zero, zero, zero)
}

// DeriveCiphertextRandomness computes r_i = H(msg, i, nonceSeed), matching
// the circuit's checkCiphertexts preimage (pubkey coordinates are bound
// in-circuit by the ElGamal equations themselves, not by this hash).
func DeriveCiphertextRandomness(msg *big.Int, slot int, nonceSeed *big.Int) *big.Int {
	return hashElements(msg, big.NewInt(int64(slot)), nonceSeed)
}
