// Package matching implements the circuit half of C4 Variant A (the
// student/college solver) together with C1/C2/C5's circuit-level
// arithmetic contract: input-commitment binding, a bounded stability check
// over a host-supplied assignment, and per-slot ElGamal ciphertext
// re-derivation, all expressed as gnark constraints in the teacher's
// fixed-loop, assertion-per-violation idiom (see circuits/poi's monotonicity
// and direction checks for the pattern this is grounded on).
package matching

import (
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// PointVar is an in-circuit affine curve point (the embedded twisted
// Edwards curve gnark already ships under std/algebra/native/twistededwards,
// the same dependency the teacher's gnark requirement pulls in).
type PointVar struct {
	X, Y frontend.Variable
}

// CiphertextVar is one ElGamal ciphertext slot.
type CiphertextVar struct {
	C1, C2 PointVar
}

// Circuit is the main solve-and-commit circuit (external-interface
// operation 0). It proves: the public input commitment matches the private
// preference/capacity/pubkey data; the supplied student_match assignment has
// no blocking pair against the AssignedBag holdings, with a college's free
// slots counted up to its capacity; every ciphertext slot is the correct
// ElGamal encryption of the corresponding (permuted) match value; and the
// match-commitment Merkle root is correctly derived from the assignment.
// It does not check that AssignedBag lists exactly the students whose
// StudentMatch names that college, nor that a bag holds no more students
// than the college's capacity.
type Circuit struct {
	// Public
	InputCommitment frontend.Variable                `gnark:"inputCommitment,public"`
	MerkleRoot      frontend.Variable                `gnark:"merkleRoot,public"`
	Ciphertexts     [TotalCap]CiphertextVar           `gnark:"ciphertexts,public"`

	// Private: raw instance data, canonical order for the input commitment.
	StudentPrefs      [NS][MaxPrefs]frontend.Variable `gnark:"studentPrefs"`
	CollegePrefs      [NC][NS]frontend.Variable       `gnark:"collegePrefs"`
	CollegeCapacities [NC]frontend.Variable           `gnark:"collegeCapacities"`
	StudentPubKeys    [NS]PointVar                    `gnark:"studentPubKeys"`
	CollegePubKeys    [NC]PointVar                    `gnark:"collegePubKeys"`
	ActualStudents    frontend.Variable               `gnark:"actualStudents"`
	ActualColleges    frontend.Variable               `gnark:"actualColleges"`

	// Private: the host-computed solution and the rank tables that let the
	// circuit check stability without re-running deferred acceptance
	// step-by-step.
	StudentMatch  [NS]frontend.Variable      `gnark:"studentMatch"`  // college id or Unmatched
	StudentRank   [NS][NC]frontend.Variable  `gnark:"studentRank"`   // position of c in student_prefs[s], or MaxPrefs
	CollegeRank   [NC][NS]frontend.Variable  `gnark:"collegeRank"`   // position of s in college_prefs[c]
	AssignedBag   [NC][MaxCap]frontend.Variable `gnark:"assignedBag"` // student ids held by c, or Unmatched

	// Private: the shared randomness seed and the per-slot plaintext and
	// Merkle leaves underlying Ciphertexts / MerkleRoot.
	NonceSeed    frontend.Variable                 `gnark:"nonceSeed"`
	Plaintexts   [TotalCap]frontend.Variable        `gnark:"plaintexts"`
	MerkleProofs [NS]MerkleProofCircuit             `gnark:"merkleProofs"`
	Nonces       [NS]frontend.Variable              `gnark:"nonces"`
}

// domainTagReal and domainTagPadding match pkg/crypto.DomainTagReal/
// DomainTagPadding, folded into every match-leaf hash so a real match
// record never collides with a padding leaf.
const (
	domainTagReal    = 1
	domainTagPadding = 0
)

// isLess returns 1 if a < b, else 0, for values bounded well within the
// field (rank/index values here never exceed NS or NC). Built on
// frontend.API's native Cmp, which returns -1/0/1.
func isLess(api frontend.API, a, b frontend.Variable) frontend.Variable {
	return api.IsZero(api.Add(api.Cmp(a, b), 1))
}

func (c *Circuit) Define(api frontend.API) error {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}

	if err := c.checkInputCommitment(api, p); err != nil {
		return err
	}
	c.checkRankTables(api, p)
	c.checkStability(api)
	if err := c.checkCiphertexts(api, p); err != nil {
		return err
	}
	if err := c.checkMerkleRoot(api, p); err != nil {
		return err
	}

	return nil
}

// checkInputCommitment re-derives H_input over the canonical flattening
// (student_prefs row-major, college_prefs row-major, capacities,
// student pubkey hashes, college pubkey hashes) and asserts it matches the
// public InputCommitment.
func (c *Circuit) checkInputCommitment(api frontend.API, p poseidon2.Permutation) error {
	h := hash.NewMerkleDamgardHasher(api, p, 0)

	for s := 0; s < NS; s++ {
		h.Write(c.StudentPrefs[s][:]...)
	}
	for col := 0; col < NC; col++ {
		h.Write(c.CollegePrefs[col][:]...)
	}
	h.Write(c.CollegeCapacities[:]...)

	for s := 0; s < NS; s++ {
		h.Write(pointHash(api, p, c.StudentPubKeys[s]))
	}
	for col := 0; col < NC; col++ {
		h.Write(pointHash(api, p, c.CollegePubKeys[col]))
	}

	api.AssertIsEqual(h.Sum(), c.InputCommitment)
	return nil
}

// pointHash collapses a curve point to a single field element via Poseidon2,
// so it can be folded into the same flattened-Field hash preimage as every
// other scalar input.
func pointHash(api frontend.API, p poseidon2.Permutation, pt PointVar) frontend.Variable {
	h := hash.NewMerkleDamgardHasher(api, p, 0)
	h.Write(pt.X, pt.Y)
	return h.Sum()
}

// checkRankTables asserts StudentRank/CollegeRank are consistent with the
// raw preference rows: StudentRank[s][StudentPrefs[s][k]] == k for every
// real entry, likewise for CollegeRank, over fixed MaxPrefs/NS bounds.
func (c *Circuit) checkRankTables(api frontend.API, p poseidon2.Permutation) {
	for s := 0; s < NS; s++ {
		for k := 0; k < MaxPrefs; k++ {
			col := c.StudentPrefs[s][k]
			isReal := api.Sub(1, api.IsZero(api.Sub(col, Unmatched)))
			for cc := 0; cc < NC; cc++ {
				matches := api.IsZero(api.Sub(col, cc))
				// When this row entry names college cc, its rank must be k.
				viol := api.Mul(api.Mul(isReal, matches), api.Sub(c.StudentRank[s][cc], k))
				api.AssertIsEqual(viol, 0)
			}
		}
	}
	for col := 0; col < NC; col++ {
		for k := 0; k < NS; k++ {
			s := c.CollegePrefs[col][k]
			isReal := api.Sub(1, api.IsZero(api.Sub(s, Unmatched)))
			for ss := 0; ss < NS; ss++ {
				matches := api.IsZero(api.Sub(s, ss))
				viol := api.Mul(api.Mul(isReal, matches), api.Sub(c.CollegeRank[col][ss], k))
				api.AssertIsEqual(viol, 0)
			}
		}
	}
}

// checkStability asserts the no-blocking-pair invariant: for every student s
// and every college c that s prefers to its current match, every AssignedBag
// slot of c below CollegeCapacities[c] must hold a student ranked ahead of s
// (i.e. c has no free slot and no reason to prefer s).
func (c *Circuit) checkStability(api frontend.API) {
	for s := 0; s < NS; s++ {
		matchRank := frontend.Variable(MaxPrefs) // rank of Unmatched sentinel: worst possible
		for cc := 0; cc < NC; cc++ {
			isMatch := api.IsZero(api.Sub(c.StudentMatch[s], cc))
			matchRank = api.Select(isMatch, c.StudentRank[s][cc], matchRank)
		}

		for k := 0; k < MaxPrefs; k++ {
			col := c.StudentPrefs[s][k]
			prefersThis := isLess(api, frontend.Variable(k), matchRank)
			isReal := api.Sub(1, api.IsZero(api.Sub(col, Unmatched)))
			active := api.Mul(prefersThis, isReal)

			// If active, every slot of college `col` below its capacity must
			// be both occupied and ranked ahead of s.
			for slot := 0; slot < MaxCap; slot++ {
				for colIdx := 0; colIdx < NC; colIdx++ {
					isCol := api.IsZero(api.Sub(col, colIdx))
					inCap := isLess(api, frontend.Variable(slot), c.CollegeCapacities[colIdx])
					gate := api.Mul(api.Mul(active, isCol), inCap)

					held := c.AssignedBag[colIdx][slot]
					heldIsReal := api.Sub(1, api.IsZero(api.Sub(held, Unmatched)))
					api.AssertIsEqual(api.Mul(gate, api.Sub(1, heldIsReal)), 0)

					var heldRank frontend.Variable = frontend.Variable(0)
					for ss := 0; ss < NS; ss++ {
						isHeld := api.IsZero(api.Sub(held, ss))
						heldRank = api.Select(isHeld, c.CollegeRank[colIdx][ss], heldRank)
					}
					sRank := c.CollegeRank[colIdx][s]
					heldPreferred := isLess(api, heldRank, sRank)
					api.AssertIsEqual(api.Mul(gate, api.Sub(1, heldPreferred)), 0)
				}
			}
		}
	}
}

// checkCiphertexts asserts each slot's plaintext is its match value (the
// student's college, or the college's bag entry) plus 1, re-derives each
// ciphertext's randomness from the shared nonce seed and asserts
// C1 = r*G, C2 = m*G + r*PK, matching
// pkg/elgamal.EncryptWithRandomness's formula exactly, now over in-circuit
// curve arithmetic.
func (c *Circuit) checkCiphertexts(api frontend.API, p poseidon2.Permutation) error {
	curve, err := twistededwards.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return err
	}

	for i := 0; i < TotalCap; i++ {
		rh := hash.NewMerkleDamgardHasher(api, p, 0)
		rh.Write(c.Plaintexts[i], frontend.Variable(i), c.NonceSeed)
		r := rh.Sum()

		var pk twistededwards.Point
		var match frontend.Variable
		if i < NS {
			pk = twistededwards.Point{X: c.StudentPubKeys[i].X, Y: c.StudentPubKeys[i].Y}
			match = c.StudentMatch[i]
		} else {
			colIdx := (i - NS) / MaxCap
			pk = twistededwards.Point{X: c.CollegePubKeys[colIdx].X, Y: c.CollegePubKeys[colIdx].Y}
			match = c.AssignedBag[colIdx][(i-NS)%MaxCap]
		}
		// The plaintext is the slot's match value with the +1 offset.
		api.AssertIsEqual(c.Plaintexts[i], api.Add(match, 1))

		base := curve.Base
		c1 := curve.ScalarMul(base, r)
		m := curve.ScalarMul(base, c.Plaintexts[i])
		s := curve.ScalarMul(pk, r)
		c2 := curve.Add(m, s)

		api.AssertIsEqual(c1.X, c.Ciphertexts[i].C1.X)
		api.AssertIsEqual(c1.Y, c.Ciphertexts[i].C1.Y)
		api.AssertIsEqual(c2.X, c.Ciphertexts[i].C2.X)
		api.AssertIsEqual(c2.Y, c.Ciphertexts[i].C2.Y)
	}
	return nil
}

// checkMerkleRoot hashes each student's match record into a leaf
// (H(domainTagReal, studentID, collegeMatch, nonce), matching
// pkg/crypto.DeriveMatchLeaf's preimage exactly) for students below
// ActualStudents, and uses the precomputed zero-subtree leaf
// (H(domainTagPadding, 0, 0, 0), matching pkg/crypto.ComputeZeroLeafHash)
// for the padding positions beyond it — mirroring buildMatchTree's sparse
// tree exactly — then verifies each leaf's Merkle path against the public
// MerkleRoot.
func (c *Circuit) checkMerkleRoot(api frontend.API, p poseidon2.Permutation) error {
	zh := hash.NewMerkleDamgardHasher(api, p, 0)
	zh.Write(frontend.Variable(domainTagPadding), frontend.Variable(0), frontend.Variable(0), frontend.Variable(0))
	zeroLeaf := zh.Sum()

	for s := 0; s < NS; s++ {
		lh := hash.NewMerkleDamgardHasher(api, p, 0)
		lh.Write(frontend.Variable(domainTagReal), frontend.Variable(s), c.StudentMatch[s], c.Nonces[s])
		realLeaf := lh.Sum()

		isReal := isLess(api, frontend.Variable(s), c.ActualStudents)
		leaf := api.Select(isReal, realLeaf, zeroLeaf)

		api.AssertIsEqual(c.MerkleProofs[s].LeafValue, leaf)
		api.AssertIsEqual(c.MerkleProofs[s].RootHash, c.MerkleRoot)
		if err := c.MerkleProofs[s].Define(api); err != nil {
			return err
		}
	}
	return nil
}
