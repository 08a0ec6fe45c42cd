package matching

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
)

// TestCircuitSolvingPartialRoster drives the actual constraint system (not
// just the host-side witness builder) for a partial roster, the shape every
// spec scenario uses (ActualStudents < NS). This is the case the
// zero-padding leaves must be gated for in checkMerkleRoot.
func TestCircuitSolvingPartialRoster(t *testing.T) {
	assert := test.NewAssert(t)

	result, err := PrepareWitness(e2Instance())
	if err != nil {
		t.Fatalf("PrepareWitness: %v", err)
	}

	assert.SolvingSucceeded(&Circuit{}, &result.Assignment, test.WithCurves(ecc.BN254))
}
