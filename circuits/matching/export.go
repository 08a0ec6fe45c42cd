package matching

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
	"github.com/privmatch/zkmatch/pkg/setup"
)

// fieldHex renders a field element as the little-endian fixed-width
// encoding from spec.md §6 "Numeric encodings", hex-encoded for JSON.
func fieldHex(v *big.Int) string {
	return "0x" + hex.EncodeToString(field.FieldToBytesLE(v, 32))
}

// ProofFixture holds the public values an external verifier needs to check
// a solve-and-commit proof; the proof itself is not included.
type ProofFixture struct {
	InputCommitment string `json:"input_commitment"`
	MerkleRoot      string `json:"merkle_root"`
}

// ExportProofFixture compiles the circuit, loads dev keys, builds a small
// deterministic instance, proves, verifies, and returns the JSON fixture.
// keysDir is the directory containing the proving and verifying keys.
func ExportProofFixture(keysDir string) ([]byte, error) {
	fmt.Println("Compiling matching circuit...")
	ccs, err := setup.CompileCircuit(&Circuit{})
	if err != nil {
		return nil, fmt.Errorf("compile circuit: %w", err)
	}

	fmt.Println("Loading keys...")
	pk, vk, err := setup.LoadKeys(keysDir, "matching")
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

// deterministicFixtureInstance builds a fixed, reproducible small instance
// (matching spec scenario E1's shape) for export/testing, never for
// production use (real pubkeys come from participant enrollment).
func deterministicFixtureInstance() Instance {
	var inst Instance
	inst.ActualStudents = 5
	inst.ActualColleges = 3
	inst.NonceSeed = big.NewInt(0x12345678)

	studentPrefs := [][]int{
		{0, 1, 2},
		{1, 0, 2},
		{1, 2, 0},
		{0, 2, 1},
		{2, 0, 1},
	}
	for s, row := range studentPrefs {
		for k := range inst.StudentPrefs[s] {
			inst.StudentPrefs[s][k] = 999
		}
		copy(inst.StudentPrefs[s][:], row)
	}

	collegePrefs := [][]int{
		{1, 3, 0, 2, 4},
		{2, 0, 4, 1, 3},
		{0, 2, 3, 4, 1},
	}
	for c := range inst.CollegePrefs {
		for k := range inst.CollegePrefs[c] {
			inst.CollegePrefs[c][k] = 999
		}
	}
	for c, row := range collegePrefs {
		copy(inst.CollegePrefs[c][:], row)
	}

	capacities := []int{3, 1, 1}
	for c, cap := range capacities {
		inst.CollegeCapacities[c] = cap
	}

	for s := range inst.StudentPubKeys {
		sk := big.NewInt(int64(1000 + s))
		inst.StudentPubKeys[s] = curve.FixedBaseMul(sk)
	}
	for c := range inst.CollegePubKeys {
		sk := big.NewInt(int64(2000 + c))
		inst.CollegePubKeys[c] = curve.FixedBaseMul(sk)
	}

	return inst
}
