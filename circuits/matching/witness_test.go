package matching

import (
	"math/big"
	"testing"

	"github.com/privmatch/zkmatch/pkg/crypto"
	"github.com/privmatch/zkmatch/pkg/curve"
)

func e2Instance() Instance {
	var inst Instance
	inst.ActualStudents = 1
	inst.ActualColleges = 1
	inst.NonceSeed = big.NewInt(42)
	for k := range inst.StudentPrefs[0] {
		inst.StudentPrefs[0][k] = Unmatched
	}
	inst.StudentPrefs[0][0] = 0
	for k := range inst.CollegePrefs[0] {
		inst.CollegePrefs[0][k] = Unmatched
	}
	inst.CollegePrefs[0][0] = 0
	inst.CollegeCapacities[0] = 1
	inst.StudentPubKeys[0] = curve.FixedBaseMul(big.NewInt(77))
	inst.CollegePubKeys[0] = curve.FixedBaseMul(big.NewInt(88))
	return inst
}

func TestPrepareWitnessE2Match(t *testing.T) {
	result, err := PrepareWitness(e2Instance())
	if err != nil {
		t.Fatalf("PrepareWitness: %v", err)
	}
	if result.StudentMatch[0] != 0 {
		t.Fatalf("expected student 0 matched to college 0, got %d", result.StudentMatch[0])
	}
}

// TestPrepareWitnessMerkleLeafMatchesOffCircuitDerivation guards the
// witness/circuit leaf-preimage consistency directly: the leaf value placed
// into the Merkle proof must equal pkg/crypto.DeriveMatchLeaf's output,
// since the in-circuit checkMerkleRoot recomputes the same preimage.
func TestPrepareWitnessMerkleLeafMatchesOffCircuitDerivation(t *testing.T) {
	inst := e2Instance()
	result, err := PrepareWitness(inst)
	if err != nil {
		t.Fatalf("PrepareWitness: %v", err)
	}

	nonce := crypto.DeriveNonce(big.NewInt(0), big.NewInt(0), inst.NonceSeed)
	wantLeaf := crypto.DeriveMatchLeaf(big.NewInt(0), big.NewInt(0), nonce)

	gotLeaf, ok := result.Assignment.MerkleProofs[0].LeafValue.(*big.Int)
	if !ok {
		t.Fatalf("LeafValue is %T, want *big.Int", result.Assignment.MerkleProofs[0].LeafValue)
	}
	if gotLeaf.Cmp(wantLeaf) != 0 {
		t.Fatalf("leaf value %s does not match pkg/crypto.DeriveMatchLeaf %s", gotLeaf, wantLeaf)
	}
}

func TestPrepareWitnessDeterministic(t *testing.T) {
	inst := e2Instance()
	r1, err := PrepareWitness(inst)
	if err != nil {
		t.Fatalf("PrepareWitness (1): %v", err)
	}
	r2, err := PrepareWitness(inst)
	if err != nil {
		t.Fatalf("PrepareWitness (2): %v", err)
	}
	if r1.InputCommitment.Cmp(r2.InputCommitment) != 0 {
		t.Fatal("identical instance produced different input commitments")
	}
	if r1.MerkleRoot.Cmp(r2.MerkleRoot) != 0 {
		t.Fatal("identical instance produced different Merkle roots")
	}
}

func TestPrepareWitnessRejectsOversizedInstance(t *testing.T) {
	inst := e2Instance()
	inst.ActualStudents = NS + 1
	if _, err := PrepareWitness(inst); err == nil {
		t.Fatal("expected an error for an instance exceeding compiled bounds")
	}
}
