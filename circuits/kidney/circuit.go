// Package kidney implements Variant B's circuit half: the donor/recipient
// cycle-finding core (C4), sharing the same envelope (input commitment,
// per-pair ElGamal ciphertexts, match-commitment Merkle root) as
// circuits/matching's Variant A, per spec Design Note "Variant A vs Variant
// B ... same envelope".
package kidney

import (
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// PointVar is an in-circuit affine curve point, duplicated from
// circuits/matching for the same reason its MerkleProofCircuit is
// duplicated: each circuit package is self-contained.
type PointVar struct {
	X, Y frontend.Variable
}

// CiphertextVar is one ElGamal ciphertext slot.
type CiphertextVar struct {
	C1, C2 PointVar
}

// EdgeVar is one directed compatibility edge between two pair vertices.
type EdgeVar struct {
	From, To frontend.Variable
}

// Circuit proves: the public input commitment matches the private edge
// list and pair pubkeys; in every selected cycle with at least two used
// slots, consecutive used edges chain end-to-start and the last closes back
// to the first; all selected cycles are edge-disjoint; the
// per-pair match derived from the cycles is consistent; every ciphertext
// slot is the correct ElGamal encryption of its pair's (+1-offset) match;
// and the match-commitment Merkle root is correctly derived. Cycle slot
// indices are not compared against ActualEdges, and a cycle with a single
// used slot is not checked for closure.
type Circuit struct {
	// Public
	InputCommitment frontend.Variable           `gnark:"inputCommitment,public"`
	MerkleRoot      frontend.Variable           `gnark:"merkleRoot,public"`
	Ciphertexts     [MaxPairs]CiphertextVar     `gnark:"ciphertexts,public"`

	// Private: raw instance data.
	Edges         [MaxEdges]EdgeVar    `gnark:"edges"`
	ActualEdges   frontend.Variable    `gnark:"actualEdges"`
	PairPubKeys   [MaxPairs]PointVar   `gnark:"pairPubKeys"`

	// Private: the host-selected cycles, each a length-3 array of edge
	// indices padded with Unmatched for 2-cycles.
	Cycles [MaxCycles][3]frontend.Variable `gnark:"cycles"`

	// Private: per-pair derived match (the pair it donates to / receives
	// from, or Unmatched), and the ciphertext/Merkle witness data.
	PairMatch    [MaxPairs]frontend.Variable `gnark:"pairMatch"`
	NonceSeed    frontend.Variable           `gnark:"nonceSeed"`
	Plaintexts   [MaxPairs]frontend.Variable `gnark:"plaintexts"`
	MerkleProofs [MaxPairs]MerkleProofCircuit `gnark:"merkleProofs"`
	Nonces       [MaxPairs]frontend.Variable  `gnark:"nonces"`
}

func (c *Circuit) Define(api frontend.API) error {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}

	c.checkInputCommitment(api, p)
	c.checkCycleValidity(api)
	c.checkEdgeDisjoint(api)
	c.checkPairMatchConsistency(api)
	if err := c.checkCiphertexts(api, p); err != nil {
		return err
	}
	if err := c.checkMerkleRoot(api, p); err != nil {
		return err
	}
	return nil
}

func (c *Circuit) checkInputCommitment(api frontend.API, p poseidon2.Permutation) {
	h := hash.NewMerkleDamgardHasher(api, p, 0)
	for i := 0; i < MaxEdges; i++ {
		h.Write(c.Edges[i].From, c.Edges[i].To)
	}
	h.Write(c.ActualEdges)
	for i := 0; i < MaxPairs; i++ {
		ph := hash.NewMerkleDamgardHasher(api, p, 0)
		ph.Write(c.PairPubKeys[i].X, c.PairPubKeys[i].Y)
		h.Write(ph.Sum())
	}
	api.AssertIsEqual(h.Sum(), c.InputCommitment)
}

// lookupEdgeEnd returns Edges[idx].From (isFrom=true) or .To (isFrom=false)
// via a selection multiplexer over all MaxEdges entries — the same
// "IsZero-gated accumulate" idiom circuits/matching uses for rank-table
// lookups, since gnark has no native dynamic array indexing.
func (c *Circuit) lookupEdgeEnd(api frontend.API, idx frontend.Variable, isFrom bool) frontend.Variable {
	var acc frontend.Variable = frontend.Variable(Unmatched)
	for e := 0; e < MaxEdges; e++ {
		isMatch := api.IsZero(api.Sub(idx, e))
		var v frontend.Variable
		if isFrom {
			v = c.Edges[e].From
		} else {
			v = c.Edges[e].To
		}
		acc = api.Select(isMatch, v, acc)
	}
	return acc
}

// checkCycleValidity asserts that every non-sentinel edge slot in every
// cycle forms a consistent directed ring: edges[e_i].To == edges[e_{i+1}].From
// for the next used slot, wrapping to the first used slot.
func (c *Circuit) checkCycleValidity(api frontend.API) {
	for cyc := 0; cyc < MaxCycles; cyc++ {
		slots := c.Cycles[cyc]
		isUsed := [3]frontend.Variable{}
		for i := 0; i < 3; i++ {
			isUsed[i] = api.Sub(1, api.IsZero(api.Sub(slots[i], Unmatched)))
		}

		for i := 0; i < 3; i++ {
			j := (i + 1) % 3
			// When slots i and j are both used, edges[i].To must equal
			// edges[j].From. Pairs with an unused slot are skipped here; the
			// 2-cycle wraparound (slot 1 back to slot 0) is checked below.
			toI := c.lookupEdgeEnd(api, slots[i], false)
			fromJ := c.lookupEdgeEnd(api, slots[j], true)
			bothUsed := api.Mul(isUsed[i], isUsed[j])
			api.AssertIsEqual(api.Mul(bothUsed, api.Sub(toI, fromJ)), 0)
		}

		// 2-cycle closure: when slot 2 is unused, slot 1's To must close
		// back to slot 0's From directly.
		slot2Unused := api.Sub(1, isUsed[2])
		closure := api.Mul(api.Mul(isUsed[0], isUsed[1]), slot2Unused)
		to1 := c.lookupEdgeEnd(api, slots[1], false)
		from0 := c.lookupEdgeEnd(api, slots[0], true)
		api.AssertIsEqual(api.Mul(closure, api.Sub(to1, from0)), 0)
	}
}

// checkEdgeDisjoint asserts no two used cycle slots (across all cycles)
// reference the same edge index.
func (c *Circuit) checkEdgeDisjoint(api frontend.API) {
	type ref struct {
		val  frontend.Variable
		used frontend.Variable
	}
	var all []ref
	for cyc := 0; cyc < MaxCycles; cyc++ {
		for i := 0; i < 3; i++ {
			v := c.Cycles[cyc][i]
			used := api.Sub(1, api.IsZero(api.Sub(v, Unmatched)))
			all = append(all, ref{val: v, used: used})
		}
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			sameEdge := api.IsZero(api.Sub(all[i].val, all[j].val))
			bothUsed := api.Mul(all[i].used, all[j].used)
			api.AssertIsEqual(api.Mul(bothUsed, sameEdge), 0)
		}
	}
}

// checkPairMatchConsistency asserts PairMatch[p] equals the To-end of the
// unique used cycle slot whose edge's From-end is p, or Unmatched if p
// appears in no selected cycle. checkEdgeDisjoint guarantees at most one
// such slot exists, so a plain accumulate (last write wins) is sound.
func (c *Circuit) checkPairMatchConsistency(api frontend.API) {
	for pr := 0; pr < MaxPairs; pr++ {
		var acc frontend.Variable = frontend.Variable(Unmatched)
		for cyc := 0; cyc < MaxCycles; cyc++ {
			for i := 0; i < 3; i++ {
				slot := c.Cycles[cyc][i]
				used := api.Sub(1, api.IsZero(api.Sub(slot, Unmatched)))
				fromEnd := c.lookupEdgeEnd(api, slot, true)
				toEnd := c.lookupEdgeEnd(api, slot, false)
				isThisPair := api.Mul(used, api.IsZero(api.Sub(fromEnd, pr)))
				acc = api.Select(isThisPair, toEnd, acc)
			}
		}
		api.AssertIsEqual(acc, c.PairMatch[pr])
	}
}

func (c *Circuit) checkCiphertexts(api frontend.API, p poseidon2.Permutation) error {
	curve, err := twistededwards.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return err
	}

	for i := 0; i < MaxPairs; i++ {
		// The plaintext is the pair's match with the +1 offset.
		api.AssertIsEqual(c.Plaintexts[i], api.Add(c.PairMatch[i], 1))

		rh := hash.NewMerkleDamgardHasher(api, p, 0)
		rh.Write(c.Plaintexts[i], frontend.Variable(i), c.NonceSeed)
		r := rh.Sum()

		pk := twistededwards.Point{X: c.PairPubKeys[i].X, Y: c.PairPubKeys[i].Y}

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

// domainTagReal matches pkg/crypto.DomainTagReal.
const domainTagReal = 1

func (c *Circuit) checkMerkleRoot(api frontend.API, p poseidon2.Permutation) error {
	for pr := 0; pr < MaxPairs; pr++ {
		lh := hash.NewMerkleDamgardHasher(api, p, 0)
		lh.Write(frontend.Variable(domainTagReal), frontend.Variable(pr), c.PairMatch[pr], c.Nonces[pr])
		leaf := lh.Sum()

		api.AssertIsEqual(c.MerkleProofs[pr].LeafValue, leaf)
		api.AssertIsEqual(c.MerkleProofs[pr].RootHash, c.MerkleRoot)
		if err := c.MerkleProofs[pr].Define(api); err != nil {
			return err
		}
	}
	return nil
}
