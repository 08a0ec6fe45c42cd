package matchproof

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/test"
)

// TestCircuitSolvingInclusion drives the actual constraint system (not just
// VerifyOffCircuit) for a valid inclusion witness.
func TestCircuitSolvingInclusion(t *testing.T) {
	assert := test.NewAssert(t)

	tree, nonces := buildTestTree(5)
	witness := PrepareWitness(tree, 2, 2%3, nonces[2])

	assert.SolvingSucceeded(&Circuit{}, witness, test.WithCurves(ecc.BN254))
}
