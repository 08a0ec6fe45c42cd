// Package matchproof implements the "prove your own match" external
// interface operation (spec §4.5c / §6 operation=1): a participant reveals
// their own match-record nonce and Merkle authentication path to a third
// party, who can verify inclusion under the published root without
// learning anything about any other participant's match. Grounded on
// circuits/keyleak's public-binding-plus-preimage-ownership pattern, with
// the preimage check replaced by Merkle inclusion instead of a single hash.
package matchproof

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/permutation/poseidon2"
)

// MerkleHeight must match the height of the tree the proof was generated
// against. Duplicated locally, the way each circuit package carries its own
// copy (see circuits/matching, circuits/kidney).
const MerkleHeight = 6

// domainTagReal matches pkg/crypto.DomainTagReal.
const domainTagReal = 1

// Circuit proves knowledge of a match record (recipientID, matchID, nonce)
// whose leaf hash is included in the published MerkleRoot, without
// revealing any other participant's leaf.
type Circuit struct {
	// Public
	MerkleRoot  frontend.Variable `gnark:"merkleRoot,public"`
	RecipientID frontend.Variable `gnark:"recipientId,public"`
	MatchID     frontend.Variable `gnark:"matchId,public"`

	// Private
	Nonce      frontend.Variable               `gnark:"nonce"`
	ProofPath  [MerkleHeight]frontend.Variable `gnark:"proofPath"`
	Directions [MerkleHeight]frontend.Variable `gnark:"directions"`
}

func (circuit *Circuit) Define(api frontend.API) error {
	p, err := poseidon2.NewPoseidon2FromParameters(api, 2, 6, 50)
	if err != nil {
		return err
	}

	leafHasher := hash.NewMerkleDamgardHasher(api, p, 0)
	leafHasher.Write(frontend.Variable(domainTagReal), circuit.RecipientID, circuit.MatchID, circuit.Nonce)
	currentHash := leafHasher.Sum()

	nodeHasher := hash.NewMerkleDamgardHasher(api, p, 0)
	for i := 0; i < MerkleHeight; i++ {
		sibling := circuit.ProofPath[i]
		direction := circuit.Directions[i]

		nodeHasher.Reset()
		leftHash := api.Select(direction, sibling, currentHash)
		rightHash := api.Select(direction, currentHash, sibling)
		nodeHasher.Write(leftHash, rightHash)
		currentHash = nodeHasher.Sum()
	}

	api.AssertIsEqual(currentHash, circuit.MerkleRoot)
	return nil
}
