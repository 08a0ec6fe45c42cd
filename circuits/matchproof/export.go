package matchproof

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"

	"github.com/privmatch/zkmatch/pkg/crypto"
	"github.com/privmatch/zkmatch/pkg/field"
	"github.com/privmatch/zkmatch/pkg/merkle"
	"github.com/privmatch/zkmatch/pkg/setup"
)

// fieldHex renders a field element as the little-endian fixed-width
// encoding from spec.md §6 "Numeric encodings", hex-encoded for JSON.
func fieldHex(v *big.Int) string {
	return "0x" + hex.EncodeToString(field.FieldToBytesLE(v, 32))
}

// ProofFixture holds the public values needed by a third party to check a
// single participant's match-inclusion proof.
type ProofFixture struct {
	MerkleRoot  string `json:"merkle_root"`
	RecipientID string `json:"recipient_id"`
	MatchID     string `json:"match_id"`
}

// ExportProofFixture compiles the matchproof circuit, loads dev keys,
// builds a small deterministic tree and one participant's witness, proves,
// verifies, and returns the JSON fixture.
func ExportProofFixture(keysDir string) ([]byte, error) {
	fmt.Println("Compiling matchproof circuit...")
	ccs, err := setup.CompileCircuitForBackend(&Circuit{}, setup.PlonkBackend)
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	fmt.Println("Loading keys...")
	pk, vk, err := setup.LoadPlonkKeys(keysDir, "matchproof")
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	tree, recipientID, matchID, nonce := deterministicFixtureTree()

	circuitWitness := PrepareWitness(tree, recipientID, matchID, nonce)
	fmt.Printf("Merkle root: 0x%064x\n", tree.Root)

	witness, err := frontend.NewWitness(circuitWitness, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return nil, fmt.Errorf("extract public witness: %w", err)
	}

	fmt.Println("Generating proof...")
	proof, err := plonk.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("prove: %w", err)
	}
	if err := plonk.Verify(proof, vk, publicWitness); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	fmt.Println("Proof verified successfully in Go!")

	fixture := ProofFixture{
		MerkleRoot:  fieldHex(tree.Root),
		RecipientID: fmt.Sprintf("%d", recipientID),
		MatchID:     fmt.Sprintf("%d", matchID),
	}
	jsonOut, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}

	fmt.Println("\n=== PROOF FIXTURE (JSON) ===")
	fmt.Println(string(jsonOut))
	return jsonOut, nil
}

// deterministicFixtureTree builds a tiny 1-leaf match tree (matching E2's
// shape: a single student/college pair) and returns the parameters needed
// to build student 0's inclusion witness.
func deterministicFixtureTree() (*merkle.SparseMerkleTree, int, int, *big.Int) {
	const recipientID = 0
	const matchID = 0
	nonceSeed := big.NewInt(0x12345678)
	nonce := crypto.DeriveNonce(big.NewInt(recipientID), big.NewInt(matchID), nonceSeed)

	leafHash := crypto.DeriveMatchLeaf(big.NewInt(recipientID), big.NewInt(matchID), nonce)
	zeroLeaf := crypto.ComputeZeroLeafHash()

	items := [][]byte{{0}}
	hashLeaf := func(item []byte) *big.Int { return leafHash }
	tree := merkle.GenerateSparseMerkleTree(items, MerkleHeight, hashLeaf, zeroLeaf)

	return tree, recipientID, matchID, nonce
}
