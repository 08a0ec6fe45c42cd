package matching

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// MerkleProofCircuit verifies a fixed-depth (MerkleHeight) sparse Merkle
// authentication path. Unlike the variable-length proofs in poi/fsp (which
// skip levels once a zero sibling signals padding), this tree always has
// exactly MerkleHeight levels: padding leaves are real, precomputed
// zero-subtree hashes, not an early stop, so every level is hashed.
type MerkleProofCircuit struct {
	RootHash frontend.Variable `gnark:"rootHash"`

	LeafValue  frontend.Variable                  `gnark:"leafValue"`
	ProofPath  [MerkleHeight]frontend.Variable `gnark:"proofPath"`
	Directions [MerkleHeight]frontend.Variable `gnark:"directions"` // 0 = sibling on right, 1 = sibling on left
}

// Define implements the circuit logic for Merkle proof verification.
func (circuit *MerkleProofCircuit) Define(api frontend.API) error {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}
	hasher := hash.NewMerkleDamgardHasher(api, p, 0)

	currentHash := circuit.LeafValue

	for i := 0; i < MerkleHeight; i++ {
		sibling := circuit.ProofPath[i]
		direction := circuit.Directions[i]

		hasher.Reset()
		leftHash := api.Select(direction, sibling, currentHash)
		rightHash := api.Select(direction, currentHash, sibling)
		hasher.Write(leftHash, rightHash)
		currentHash = hasher.Sum()
	}

	api.AssertIsEqual(currentHash, circuit.RootHash)

	return nil
}
