package matching

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

// Instance is the minimal, already-permuted instance data needed to build a
// full circuit witness: preferences, capacities, and public keys in slot
// order, plus the nonce seed.
type Instance struct {
	StudentPrefs      [NS][MaxPrefs]int
	CollegePrefs      [NC][NS]int
	CollegeCapacities [NC]int
	StudentPubKeys    [NS]curve.Point
	CollegePubKeys    [NC]curve.Point
	ActualStudents    int
	ActualColleges    int
	NonceSeed         *big.Int
}

// WitnessResult holds the fully populated circuit assignment and the
// derived public values callers need to publish alongside a proof.
type WitnessResult struct {
	Assignment      Circuit
	StudentMatch    [NS]int
	InputCommitment *big.Int
	MerkleRoot      *big.Int
	Ciphertexts     [TotalCap]elgamal.Ciphertext
}

// PrepareWitness runs the Variant A solver, derives every committed value,
// and assembles a ready-to-use circuit assignment.
func PrepareWitness(inst Instance) (*WitnessResult, error) {
	if inst.ActualStudents > NS || inst.ActualColleges > NC {
		return nil, fmt.Errorf("instance exceeds compiled bounds: students=%d/%d colleges=%d/%d",
			inst.ActualStudents, NS, inst.ActualColleges, NC)
	}

	solverInput := matching.Input{ActualStudents: inst.ActualStudents, ActualColleges: inst.ActualColleges}
	for s := 0; s < NS; s++ {
		for k := 0; k < MaxPrefs; k++ {
			solverInput.StudentPrefs[s][k] = inst.StudentPrefs[s][k]
		}
	}
	for c := 0; c < NC; c++ {
		solverInput.CollegePrefs[c] = inst.CollegePrefs[c]
		solverInput.CollegeCapacities[c] = inst.CollegeCapacities[c]
	}

	result := matching.Solve(solverInput)

	var assignment Circuit

	// Raw instance data.
	for s := 0; s < NS; s++ {
		for k := 0; k < MaxPrefs; k++ {
			assignment.StudentPrefs[s][k] = big.NewInt(int64(inst.StudentPrefs[s][k]))
		}
		assignment.StudentPubKeys[s] = toPointVar(inst.StudentPubKeys[s])
	}
	for c := 0; c < NC; c++ {
		for k := 0; k < NS; k++ {
			assignment.CollegePrefs[c][k] = big.NewInt(int64(inst.CollegePrefs[c][k]))
		}
		assignment.CollegeCapacities[c] = big.NewInt(int64(inst.CollegeCapacities[c]))
		assignment.CollegePubKeys[c] = toPointVar(inst.CollegePubKeys[c])
	}
	assignment.ActualStudents = big.NewInt(int64(inst.ActualStudents))
	assignment.ActualColleges = big.NewInt(int64(inst.ActualColleges))

	// Rank tables.
	var studentRank [NS][NC]*big.Int
	for s := 0; s < NS; s++ {
		rank := make([]int, NC)
		for c := range rank {
			rank[c] = MaxPrefs
		}
		for k := 0; k < MaxPrefs; k++ {
			c := inst.StudentPrefs[s][k]
			if c == matching.Unmatched || c < 0 || c >= NC {
				continue
			}
			rank[c] = k
		}
		for c := 0; c < NC; c++ {
			studentRank[s][c] = big.NewInt(int64(rank[c]))
		}
		assignment.StudentRank[s] = studentRank[s]
	}

	var collegeRank [NC][NS]*big.Int
	for c := 0; c < NC; c++ {
		rank := make([]int, NS)
		for s := range rank {
			rank[s] = NS
		}
		for k := 0; k < NS; k++ {
			s := inst.CollegePrefs[c][k]
			if s == matching.Unmatched || s < 0 || s >= NS {
				continue
			}
			rank[s] = k
		}
		for s := 0; s < NS; s++ {
			collegeRank[c][s] = big.NewInt(int64(rank[s]))
		}
		assignment.CollegeRank[c] = collegeRank[c]
	}

	// Assigned bag per college, padded with Unmatched.
	var assignedBag [NC][MaxCap]int
	for c := range assignedBag {
		for slot := range assignedBag[c] {
			assignedBag[c][slot] = matching.Unmatched
		}
	}
	for s := 0; s < NS; s++ {
		c := result.StudentMatch[s]
		if c == matching.Unmatched {
			continue
		}
		for slot := 0; slot < MaxCap; slot++ {
			if assignedBag[c][slot] == matching.Unmatched {
				assignedBag[c][slot] = s
				break
			}
		}
	}
	for c := 0; c < NC; c++ {
		for slot := 0; slot < MaxCap; slot++ {
			assignment.AssignedBag[c][slot] = big.NewInt(int64(assignedBag[c][slot]))
		}
	}

	for s := 0; s < NS; s++ {
		assignment.StudentMatch[s] = big.NewInt(int64(result.StudentMatch[s]))
	}

	// Input commitment.
	flat := flattenInput(inst)
	inputCommitment := crypto.HashFlatten(flat)
	assignment.InputCommitment = inputCommitment

	// Plaintexts and ciphertexts, one per TotalCap slot: [0,NS) are each
	// student's match (college id or Unmatched); [NS, NS+NC*MaxCap) are
	// each college's assigned-bag slots (student id or Unmatched).
	var plaintexts [TotalCap]int
	for s := 0; s < NS; s++ {
		plaintexts[s] = result.StudentMatch[s]
	}
	for c := 0; c < NC; c++ {
		for slot := 0; slot < MaxCap; slot++ {
			plaintexts[NS+c*MaxCap+slot] = assignedBag[c][slot]
		}
	}

	var ciphertexts [TotalCap]elgamal.Ciphertext
	assignment.NonceSeed = inst.NonceSeed
	for i := 0; i < TotalCap; i++ {
		// +1-offset so 0 is never a valid plaintext (disambiguates "match to
		// index 0" from the point at infinity); decryption subtracts 1.
		msg := plaintexts[i] + 1
		r := crypto.DeriveCiphertextRandomness(big.NewInt(int64(msg)), i, inst.NonceSeed)

		var pk curve.Point
		if i < NS {
			pk = inst.StudentPubKeys[i]
		} else {
			colIdx := (i - NS) / MaxCap
			pk = inst.CollegePubKeys[colIdx]
		}

		ciphertexts[i] = elgamal.EncryptWithRandomness(pk, uint32(msg), r)
		assignment.Plaintexts[i] = big.NewInt(int64(msg))
		assignment.Ciphertexts[i] = toCiphertextVar(ciphertexts[i])
	}

	// Match-commitment Merkle tree: one leaf per student.
	zeroLeaf := crypto.ComputeZeroLeafHash()
	var nonces [NS]*big.Int
	for s := 0; s < inst.ActualStudents; s++ {
		nonces[s] = crypto.DeriveNonce(big.NewInt(int64(s)), big.NewInt(int64(result.StudentMatch[s])), inst.NonceSeed)
	}

	smt := buildMatchTree(result, nonces[:], inst.ActualStudents, zeroLeaf)

	for s := 0; s < NS; s++ {
		siblings, directions := smt.GetProof(s)
		var proofPath [MerkleHeight]frontend.Variable
		var proofDirections [MerkleHeight]frontend.Variable
		for i := 0; i < MerkleHeight; i++ {
			proofPath[i] = siblings[i]
			proofDirections[i] = directions[i]
		}
		assignment.MerkleProofs[s] = MerkleProofCircuit{
			RootHash:   smt.Root,
			LeafValue:  smt.GetLeafHash(s),
			ProofPath:  proofPath,
			Directions: proofDirections,
		}
		if s < inst.ActualStudents {
			assignment.Nonces[s] = nonces[s]
		} else {
			assignment.Nonces[s] = big.NewInt(0)
		}
	}
	assignment.MerkleRoot = smt.Root

	return &WitnessResult{
		Assignment:      assignment,
		StudentMatch:    result.StudentMatch,
		InputCommitment: inputCommitment,
		MerkleRoot:      smt.Root,
		Ciphertexts:     ciphertexts,
	}, nil
}

// buildMatchTree hashes each student's match leaf directly (bypassing
// merkle.HashFunc's byte-oriented signature, since leaves here are composed
// of several already-known Field values rather than raw bytes) and wraps
// them into a fixed-depth sparse Merkle tree.
func buildMatchTree(result matching.Result, nonces []*big.Int, numReal int, zeroLeaf *big.Int) *merkle.SparseMerkleTree {
	leafHashes := make([]*big.Int, numReal)
	for s := 0; s < numReal; s++ {
		leafHashes[s] = crypto.DeriveMatchLeaf(big.NewInt(int64(s)), big.NewInt(int64(result.StudentMatch[s])), nonces[s])
	}

	items := make([][]byte, numReal)
	for i := range items {
		items[i] = []byte{byte(i)}
	}
	lookup := leafHashes
	hashLeaf := func(item []byte) *big.Int {
		return lookup[int(item[0])]
	}

	return merkle.GenerateSparseMerkleTree(items, MerkleHeight, hashLeaf, zeroLeaf)
}

func flattenInput(inst Instance) []*big.Int {
	flat := make([]*big.Int, 0, NS*MaxPrefs+NC*NS+NC+NS+NC)
	for s := 0; s < NS; s++ {
		for k := 0; k < MaxPrefs; k++ {
			flat = append(flat, big.NewInt(int64(inst.StudentPrefs[s][k])))
		}
	}
	for c := 0; c < NC; c++ {
		for k := 0; k < NS; k++ {
			flat = append(flat, big.NewInt(int64(inst.CollegePrefs[c][k])))
		}
	}
	for c := 0; c < NC; c++ {
		flat = append(flat, big.NewInt(int64(inst.CollegeCapacities[c])))
	}
	for s := 0; s < NS; s++ {
		flat = append(flat, crypto.HashPoint(inst.StudentPubKeys[s].X, inst.StudentPubKeys[s].Y))
	}
	for c := 0; c < NC; c++ {
		flat = append(flat, crypto.HashPoint(inst.CollegePubKeys[c].X, inst.CollegePubKeys[c].Y))
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
