package kidney

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/privmatch/zkmatch/pkg/curve"
	"github.com/privmatch/zkmatch/pkg/field"
	"github.com/privmatch/zkmatch/pkg/matching"
	"github.com/privmatch/zkmatch/pkg/setup"
)

// fieldHex renders a field element as the little-endian fixed-width
// encoding from spec.md §6 "Numeric encodings", hex-encoded for JSON.
func fieldHex(v *big.Int) string {
	return "0x" + hex.EncodeToString(field.FieldToBytesLE(v, 32))
}

// ProofFixture holds the public values needed by an external verifier to
// check a kidney-exchange solve-and-commit proof.
type ProofFixture struct {
	InputCommitment string `json:"input_commitment"`
	MerkleRoot      string `json:"merkle_root"`
}

// ExportProofFixture compiles the kidney circuit, loads dev keys, builds
// the E6 scenario instance, proves, verifies, and returns the JSON fixture.
func ExportProofFixture(keysDir string) ([]byte, error) {
	fmt.Println("Compiling kidney circuit...")
	ccs, err := setup.CompileCircuit(&Circuit{})
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	fmt.Println("Loading keys...")
	pk, vk, err := setup.LoadKeys(keysDir, "kidney")
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}

	inst := deterministicFixtureInstance()

	fmt.Println("Preparing witness...")
	result, err := PrepareWitness(inst)
	if err != nil {
		return nil, fmt.Errorf("prepare witness: %w", err)
	}
	fmt.Printf("Input commitment: 0x%064x\n", result.InputCommitment)
	fmt.Printf("Merkle root: 0x%064x\n", result.MerkleRoot)

	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("create witness: %w", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return nil, fmt.Errorf("extract public witness: %w", err)
	}

	fmt.Println("Generating proof...")
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("prove: %w", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	fmt.Println("Proof verified successfully in Go!")

	fixture := ProofFixture{
		InputCommitment: fieldHex(result.InputCommitment),
		MerkleRoot:      fieldHex(result.MerkleRoot),
	}
	jsonOut, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal fixture: %w", err)
	}

	fmt.Println("\n=== PROOF FIXTURE (JSON) ===")
	fmt.Println(string(jsonOut))
	return jsonOut, nil
}

// deterministicFixtureInstance builds spec scenario E6's shape: 5 pairs
// with a compatibility edge for every ordered pair.
func deterministicFixtureInstance() Instance {
	var inst Instance
	inst.NonceSeed = big.NewInt(0x55aa55aa)

	const numPairs = 5
	idx := 0
	for i := 0; i < numPairs; i++ {
		for j := 0; j < numPairs; j++ {
			if i == j {
				continue
			}
			inst.Edges[idx] = matching.Edge{From: i, To: j}
			idx++
		}
	}
	inst.ActualEdges = idx

	for p := 0; p < MaxPairs; p++ {
		sk := big.NewInt(int64(3000 + p))
		inst.PairPubKeys[p] = curve.FixedBaseMul(sk)
	}

	return inst
}
