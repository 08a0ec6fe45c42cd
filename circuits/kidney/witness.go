package kidney

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/privmatch/zkmatch/pkg/crypto"
	"github.com/privmatch/zkmatch/pkg/curve"
	"github.com/privmatch/zkmatch/pkg/elgamal"
	"github.com/privmatch/zkmatch/pkg/matching"
	"github.com/privmatch/zkmatch/pkg/merkle"
)

// Instance is Variant B's already-permuted instance data: the compatibility
// edge list, one pubkey per donor-recipient pair, and the shared nonce seed.
type Instance struct {
	Edges       [MaxEdges]matching.Edge
	ActualEdges int
	PairPubKeys [MaxPairs]curve.Point
	NonceSeed   *big.Int
}

// WitnessResult holds the fully populated kidney circuit assignment and the
// public values a caller publishes alongside a proof.
type WitnessResult struct {
	Assignment      Circuit
	PairMatch       [MaxPairs]int
	InputCommitment *big.Int
	MerkleRoot      *big.Int
	Ciphertexts     [MaxPairs]elgamal.Ciphertext
}

// PrepareWitness runs the cycle-finding solver and assembles a ready-to-use
// circuit assignment, mirroring circuits/matching.PrepareWitness's structure
// for the kidney-exchange envelope.
func PrepareWitness(inst Instance) (*WitnessResult, error) {
	if inst.ActualEdges > MaxEdges {
		return nil, fmt.Errorf("instance exceeds compiled bounds: edges=%d/%d", inst.ActualEdges, MaxEdges)
	}

	solverInput := matching.KidneyInput{ActualEdges: inst.ActualEdges}
	copy(solverInput.Edges[:], inst.Edges[:])

	result := matching.SolveKidney(solverInput)

	var assignment Circuit
	for i := 0; i < MaxEdges; i++ {
		assignment.Edges[i] = EdgeVar{
			From: big.NewInt(int64(inst.Edges[i].From)),
			To:   big.NewInt(int64(inst.Edges[i].To)),
		}
	}
	assignment.ActualEdges = big.NewInt(int64(inst.ActualEdges))
	for i := 0; i < MaxPairs; i++ {
		assignment.PairPubKeys[i] = toPointVar(inst.PairPubKeys[i])
	}

	for cyc := 0; cyc < MaxCycles; cyc++ {
		for i := 0; i < 3; i++ {
			assignment.Cycles[cyc][i] = big.NewInt(int64(result.Cycles[cyc][i]))
		}
	}

	// Derive each pair's match from the selected cycles: pair p's match is
	// the To-end of the unique used edge whose From-end is p.
	var pairMatch [MaxPairs]int
	for p := range pairMatch {
		pairMatch[p] = matching.Unmatched
	}
	for cyc := 0; cyc < result.ActualCycles; cyc++ {
		for i := 0; i < 3; i++ {
			e := result.Cycles[cyc][i]
			if e == matching.Unmatched {
				continue
			}
			pairMatch[inst.Edges[e].From] = inst.Edges[e].To
		}
	}
	for p := 0; p < MaxPairs; p++ {
		assignment.PairMatch[p] = big.NewInt(int64(pairMatch[p]))
	}

	flat := flattenInput(inst)
	inputCommitment := crypto.HashFlatten(flat)
	assignment.InputCommitment = inputCommitment

	var ciphertexts [MaxPairs]elgamal.Ciphertext
	assignment.NonceSeed = inst.NonceSeed
	for p := 0; p < MaxPairs; p++ {
		msg := pairMatch[p] + 1 // +1-offset, same convention as circuits/matching.
		r := crypto.DeriveCiphertextRandomness(big.NewInt(int64(msg)), p, inst.NonceSeed)
		ciphertexts[p] = elgamal.EncryptWithRandomness(inst.PairPubKeys[p], uint32(msg), r)
		assignment.Plaintexts[p] = big.NewInt(int64(msg))
		assignment.Ciphertexts[p] = toCiphertextVar(ciphertexts[p])
	}

	zeroLeaf := crypto.ComputeZeroLeafHash()
	var nonces [MaxPairs]*big.Int
	for p := 0; p < MaxPairs; p++ {
		nonces[p] = crypto.DeriveNonce(big.NewInt(int64(p)), big.NewInt(int64(pairMatch[p])), inst.NonceSeed)
	}

	smt := buildPairTree(pairMatch, nonces[:], zeroLeaf)

	for p := 0; p < MaxPairs; p++ {
		siblings, directions := smt.GetProof(p)
		var proofPath [MerkleHeight]frontend.Variable
		var proofDirections [MerkleHeight]frontend.Variable
		for i := 0; i < MerkleHeight; i++ {
			proofPath[i] = siblings[i]
			proofDirections[i] = directions[i]
		}
		assignment.MerkleProofs[p] = MerkleProofCircuit{
			RootHash:   smt.Root,
			LeafValue:  smt.GetLeafHash(p),
			ProofPath:  proofPath,
			Directions: proofDirections,
		}
		assignment.Nonces[p] = nonces[p]
	}
	assignment.MerkleRoot = smt.Root

	return &WitnessResult{
		Assignment:      assignment,
		PairMatch:       pairMatch,
		InputCommitment: inputCommitment,
		MerkleRoot:      smt.Root,
		Ciphertexts:     ciphertexts,
	}, nil
}

// buildPairTree hashes every pair's match leaf (all MaxPairs are "real":
// unmatched pairs commit to Unmatched rather than being padding, since the
// kidney-exchange envelope has one leaf per pair, not per matched pair).
func buildPairTree(pairMatch [MaxPairs]int, nonces []*big.Int, zeroLeaf *big.Int) *merkle.SparseMerkleTree {
	leafHashes := make([]*big.Int, MaxPairs)
	for p := 0; p < MaxPairs; p++ {
		leafHashes[p] = crypto.DeriveMatchLeaf(big.NewInt(int64(p)), big.NewInt(int64(pairMatch[p])), nonces[p])
	}
	items := make([][]byte, MaxPairs)
	for i := range items {
		items[i] = []byte{byte(i)}
	}
	hashLeaf := func(item []byte) *big.Int {
		return leafHashes[int(item[0])]
	}
	return merkle.GenerateSparseMerkleTree(items, MerkleHeight, hashLeaf, zeroLeaf)
}

func flattenInput(inst Instance) []*big.Int {
	flat := make([]*big.Int, 0, MaxEdges*2+1+MaxPairs)
	for i := 0; i < MaxEdges; i++ {
		flat = append(flat, big.NewInt(int64(inst.Edges[i].From)), big.NewInt(int64(inst.Edges[i].To)))
	}
	flat = append(flat, big.NewInt(int64(inst.ActualEdges)))
	for p := 0; p < MaxPairs; p++ {
		flat = append(flat, crypto.HashPoint(inst.PairPubKeys[p].X, inst.PairPubKeys[p].Y))
	}
	return flat
}

func toPointVar(p curve.Point) PointVar {
	return PointVar{X: p.X, Y: p.Y}
}

func toCiphertextVar(ct elgamal.Ciphertext) CiphertextVar {
	return CiphertextVar{
		C1: PointVar{X: ct.C1.X, Y: ct.C1.Y},
		C2: PointVar{X: ct.C2.X, Y: ct.C2.Y},
	}
}
