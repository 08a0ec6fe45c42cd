// Package config holds the compile-time sizing constants shared by every
// circuit and the host-side witness/session code. All circuit shapes are
// fixed at these values; there is no support for per-run resizing (see
// spec Non-goals: no dynamic participant counts at runtime).
package config

const (
	// NS is the number of student (proposee-side, in the college-proposing
	// variant) participants, N_S in the spec's data model.
	NS = 32

	// NC is the number of colleges, N_C in the spec's data model.
	NC = 16

	// MaxPrefs bounds the length of every student preference list; college
	// preference lists have NS entries.
	MaxPrefs = 16

	// MaxCap bounds a single college's capacity.
	MaxCap = 8

	// TotalCap is the total number of match slots the ciphertext vector
	// carries: NS student slots plus NC*MaxCap college-capacity slots.
	TotalCap = NS + NC*MaxCap

	// MerkleHeight is the fixed depth of the match-commitment Merkle tree.
	// 2^MerkleHeight must be >= NS (one leaf per student); rounded up from
	// ceil(log2(NS))=5 for headroom, see DESIGN.md.
	MerkleHeight = 6

	// BitsDL bounds the exponential-ElGamal plaintext space (message must
	// satisfy 0 <= m < 2^BitsDL so BabyStepGiantStep terminates).
	BitsDL = 16

	// Unmatched is the sentinel value written into a match record when a
	// participant receives no match.
	Unmatched = 999

	// MaxEdges bounds the kidney-exchange compatibility graph's edge count.
	MaxEdges = 64

	// MaxCycles bounds the number of exchange cycles returned in one run of
	// the kidney-exchange variant.
	MaxCycles = 8

	// MaxPairs bounds the number of donor-recipient pairs (graph vertices)
	// in the kidney-exchange variant. Reuses NS's sizing: both bound a
	// single-capacity participant population.
	MaxPairs = NS
)
