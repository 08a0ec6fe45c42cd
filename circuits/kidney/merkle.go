package kidney

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// MerkleProofCircuit is circuits/matching's fixed-depth sparse Merkle
// verifier, duplicated here the way the teacher keeps one copy per circuit
// package (see poi and fsp, each with their own MerkleProofCircuit).
type MerkleProofCircuit struct {
	RootHash frontend.Variable `gnark:"rootHash"`

	LeafValue  frontend.Variable              `gnark:"leafValue"`
	ProofPath  [MerkleHeight]frontend.Variable `gnark:"proofPath"`
	Directions [MerkleHeight]frontend.Variable `gnark:"directions"`
}

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
