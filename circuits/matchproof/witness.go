package matchproof

import (
	"math/big"

	"github.com/privmatch/zkmatch/pkg/crypto"
	"github.com/privmatch/zkmatch/pkg/merkle"
)

// PrepareWitness builds a match-inclusion proof witness for a single
// participant against an already-constructed match-commitment tree (the one
// built by circuits/matching.PrepareWitness or circuits/kidney.PrepareWitness).
func PrepareWitness(tree *merkle.SparseMerkleTree, recipientID, matchID int, nonce *big.Int) *Circuit {
	siblings, directions := tree.GetProof(recipientID)

	c := &Circuit{
		MerkleRoot:  tree.Root,
		RecipientID: big.NewInt(int64(recipientID)),
		MatchID:     big.NewInt(int64(matchID)),
		Nonce:       nonce,
	}
	for i := 0; i < MerkleHeight; i++ {
		c.ProofPath[i] = siblings[i]
		c.Directions[i] = big.NewInt(int64(directions[i]))
	}
	return c
}

// VerifyOffCircuit recomputes the same inclusion check outside a circuit,
// useful for sanity-checking a witness before proving (mirrors
// pkg/merkle.VerifyMerkleProof's host-side verification idiom).
func VerifyOffCircuit(tree *merkle.SparseMerkleTree, recipientID, matchID int, nonce *big.Int) bool {
	leaf := crypto.DeriveMatchLeaf(big.NewInt(int64(recipientID)), big.NewInt(int64(matchID)), nonce)
	siblings, directions := tree.GetProof(recipientID)

	current := leaf
	for i := 0; i < MerkleHeight; i++ {
		if directions[i] != 0 {
			current = merkle.HashNodes(siblings[i], current)
		} else {
			current = merkle.HashNodes(current, siblings[i])
		}
	}
	return current.Cmp(tree.Root) == 0
}
