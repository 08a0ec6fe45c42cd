// Package session threads one matching round's state through the full
// pipeline — permute, solve, encrypt, commit — as an explicit value, per
// spec Design Note "Global mutable state -> explicit arguments": the
// source's globalMerkleRoot/globalStudentMatches module-scope state
// becomes fields of a MatchingSession threaded through operations, never
// package-level mutable variables.
package session

import (
	"fmt"
	"math/big"

	"github.com/privmatch/zkmatch/circuits/matching"
	"github.com/privmatch/zkmatch/config"
	"github.com/privmatch/zkmatch/pkg/curve"
	"github.com/privmatch/zkmatch/pkg/elgamal"
	"github.com/privmatch/zkmatch/pkg/permutation"
)

// RawInstance is Variant A's instance in original (un-permuted) participant
// IDs, as intake from the host: preferences, capacities and public keys
// addressed by real identity.
type RawInstance struct {
	StudentPrefs      [config.NS][config.MaxPrefs]int
	CollegePrefs      [config.NC][config.NS]int
	CollegeCapacities [config.NC]int
	StudentPubKeys    [config.NS]curve.Point
	CollegePubKeys    [config.NC]curve.Point
	ActualStudents    int
	ActualColleges    int
	PermutationSeed   *big.Int
	NonceSeed         *big.Int
}

// MatchingSession is the full state of one matching round: the raw intake,
// the derived permutations, the permuted instance handed to the solver and
// circuit, the circuit witness, and the original-ID output once inverted.
type MatchingSession struct {
	Raw RawInstance

	StudentPerm []int // pi_S
	CollegePerm []int // pi_C

	PermutedInstance matching.Instance
	Witness          *matching.WitnessResult

	// StudentMatchByOriginalID[s] is college id (original numbering) or
	// Unmatched, after inverting the permuted solver output.
	StudentMatchByOriginalID [config.NS]int
}

// RunVariantA executes the full C3.permute -> C4.solve -> C2.encrypt ->
// C5.commit pipeline for the student/college variant and returns the
// populated session.
func RunVariantA(raw RawInstance) (*MatchingSession, error) {
	sess := &MatchingSession{Raw: raw}
	if raw.ActualStudents > config.NS || raw.ActualColleges > config.NC {
		return nil, fmt.Errorf("instance exceeds compiled bounds: students=%d/%d colleges=%d/%d",
			raw.ActualStudents, config.NS, raw.ActualColleges, config.NC)
	}

	// Only the active prefixes are shuffled; padding slots map to themselves,
	// so real participants stay in [0, Actual*) where the solver and the
	// circuit look for them.
	sess.StudentPerm = permutation.Generate(raw.PermutationSeed, raw.ActualStudents)
	for s := raw.ActualStudents; s < config.NS; s++ {
		sess.StudentPerm = append(sess.StudentPerm, s)
	}
	// College permutation is derived from a distinct derived seed so it is
	// not simply a truncation of the student permutation's PRG stream.
	collegeSeed := deriveCollegeSeed(raw.PermutationSeed)
	sess.CollegePerm = permutation.Generate(collegeSeed, raw.ActualColleges)
	for c := raw.ActualColleges; c < config.NC; c++ {
		sess.CollegePerm = append(sess.CollegePerm, c)
	}

	permuted, err := applyPermutation(raw, sess.StudentPerm, sess.CollegePerm)
	if err != nil {
		return nil, fmt.Errorf("apply permutation: %w", err)
	}
	sess.PermutedInstance = permuted

	witness, err := matching.PrepareWitness(permuted)
	if err != nil {
		return nil, fmt.Errorf("prepare witness: %w", err)
	}
	sess.Witness = witness

	studentInverse := permutation.Invert(sess.StudentPerm)
	collegeInverse := permutation.Invert(sess.CollegePerm)
	for s := range sess.StudentMatchByOriginalID {
		sess.StudentMatchByOriginalID[s] = matching.Unmatched
	}
	for permutedS := 0; permutedS < config.NS; permutedS++ {
		origS := studentInverse[permutedS]
		c := witness.StudentMatch[permutedS]
		if c == matching.Unmatched {
			sess.StudentMatchByOriginalID[origS] = matching.Unmatched
			continue
		}
		sess.StudentMatchByOriginalID[origS] = collegeInverse[c]
	}

	return sess, nil
}

// deriveCollegeSeed keeps the college permutation independent of the
// student permutation's PRG stream while still deriving both from the
// single permutation_seed witness value the host supplies.
func deriveCollegeSeed(seed *big.Int) *big.Int {
	return new(big.Int).Add(seed, big.NewInt(1))
}

// applyPermutation builds the permuted instance C4 and the circuit operate
// over: C3.apply(prefs, pi_self, pi_other) and C3.apply_keys(keys, pi).
func applyPermutation(raw RawInstance, studentPerm, collegePerm []int) (matching.Instance, error) {
	var out matching.Instance
	out.ActualStudents = raw.ActualStudents
	out.ActualColleges = raw.ActualColleges
	out.NonceSeed = raw.NonceSeed

	for s := 0; s < config.NS; s++ {
		permS := studentPerm[s]
		for k := 0; k < config.MaxPrefs; k++ {
			c := raw.StudentPrefs[s][k]
			if c == matching.Unmatched {
				out.StudentPrefs[permS][k] = matching.Unmatched
				continue
			}
			if c < 0 || c >= config.NC {
				return matching.Instance{}, fmt.Errorf("student %d preference %d out of range", s, c)
			}
			out.StudentPrefs[permS][k] = collegePerm[c]
		}
		out.StudentPubKeys[permS] = raw.StudentPubKeys[s]
	}

	for c := 0; c < config.NC; c++ {
		permC := collegePerm[c]
		for k := 0; k < config.NS; k++ {
			s := raw.CollegePrefs[c][k]
			if s == matching.Unmatched {
				out.CollegePrefs[permC][k] = matching.Unmatched
				continue
			}
			if s < 0 || s >= config.NS {
				return matching.Instance{}, fmt.Errorf("college %d preference %d out of range", c, s)
			}
			out.CollegePrefs[permC][k] = studentPerm[s]
		}
		out.CollegeCapacities[permC] = raw.CollegeCapacities[c]
		out.CollegePubKeys[permC] = raw.CollegePubKeys[c]
	}

	return out, nil
}

// DecodeMatch implements the off-circuit decryption entry point (spec §6):
// given a ciphertext and the recipient's secret key, returns the
// participant's match ID, or Unmatched if decryption yields a value outside
// [1, 2^BitsDL] (after undoing the +1 plaintext offset).
func DecodeMatch(sk *big.Int, ct elgamal.Ciphertext) (int, error) {
	plaintext, err := elgamal.Decrypt(sk, ct)
	if err != nil {
		return 0, fmt.Errorf("decode match: %w", err)
	}
	if plaintext < 1 {
		return matching.Unmatched, nil
	}
	return int(plaintext) - 1, nil
}
