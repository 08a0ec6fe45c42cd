// Package permutation implements C3: a deterministic, keyed permutation
// over student and college indices, used to decouple a participant's
// public slot position from their private index before encryption. The
// permutation seed is never revealed and is independent of nonce_seed (the
// two PRG draws must never share entropy — see spec Design Notes and
// DESIGN.md's Open Question log).
package permutation

import "math/big"

// LCG constants (Numerics Recipes parameters, used only to drive a
// deterministic, non-cryptographic shuffle — the permutation itself is
// never revealed, so an adversary never observes LCG outputs to invert the
// seed).
const (
	lcgA = 1103515245
	lcgB = 12345
	lcgM = (1 << 31) - 1
)

// lcg produces the i-th output of a seeded linear congruential generator:
// rand(seed, i) = (seed*A + B + i) mod M, per spec §4.3.
func lcg(seed *big.Int, i int) uint64 {
	s := new(big.Int).Mod(seed, big.NewInt(lcgM))
	draw := s.Uint64()*lcgA + lcgB + uint64(i)
	return draw % lcgM
}

// Generate derives a Fisher-Yates permutation of [0, n) from seed. The
// permutation is a bijection pi: [0,n) -> [0,n); pi[i] is the public slot
// assigned to private index i.
func Generate(seed *big.Int, n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(lcg(seed, n-1-i) % uint64(i+1))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// Apply returns values reordered so that output[pi[i]] = values[i].
func Apply(pi []int, values []int) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[pi[i]] = v
	}
	return out
}

// Invert returns the inverse permutation: inv[pi[i]] = i.
func Invert(pi []int) []int {
	inv := make([]int, len(pi))
	for i, p := range pi {
		inv[p] = i
	}
	return inv
}
