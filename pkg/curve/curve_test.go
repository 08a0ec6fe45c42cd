package curve

import (
	"math/big"
	"testing"
)

func TestFixedBaseMulRoundTripViaBSGS(t *testing.T) {
	for _, k := range []int64{0, 1, 2, 5, 100, 65535} {
		p := FixedBaseMul(big.NewInt(k))
		got, err := BabyStepGiantStep(p, 16)
		if err != nil {
			t.Fatalf("k=%d: bsgs: %v", k, err)
		}
		if got.Int64() != k {
			t.Fatalf("k=%d: bsgs recovered %s", k, got)
		}
	}
}

func TestBabyStepGiantStepExhausted(t *testing.T) {
	// A scalar well outside the declared bit bound must fail, not silently
	// wrap or return a wrong value.
	p := FixedBaseMul(big.NewInt(1 << 20))
	if _, err := BabyStepGiantStep(p, 10); err != ErrDLSearchExhausted {
		t.Fatalf("expected ErrDLSearchExhausted, got %v", err)
	}
}

func TestAddNegIdentity(t *testing.T) {
	g := Generator()
	sum := Add(g, Neg(g))
	id := Identity()
	if !Equal(sum, id) {
		t.Fatalf("G + (-G) should be the identity")
	}
}

func TestVarBaseMulMatchesFixedBaseMul(t *testing.T) {
	k := big.NewInt(42)
	if !Equal(FixedBaseMul(k), VarBaseMul(Generator(), k)) {
		t.Fatal("VarBaseMul(G, k) should equal FixedBaseMul(k)")
	}
}

func TestScalarMulDistributesOverAdd(t *testing.T) {
	a, b := big.NewInt(7), big.NewInt(11)
	lhs := FixedBaseMul(new(big.Int).Add(a, b))
	rhs := Add(FixedBaseMul(a), FixedBaseMul(b))
	if !Equal(lhs, rhs) {
		t.Fatal("(a+b)*G should equal a*G + b*G")
	}
}

func TestRandomScalarNonZeroAndBounded(t *testing.T) {
	order := Order()
	for i := 0; i < 20; i++ {
		k, err := RandomScalar()
		if err != nil {
			t.Fatalf("RandomScalar: %v", err)
		}
		if k.Sign() == 0 {
			t.Fatal("RandomScalar returned zero")
		}
		if k.Cmp(order) >= 0 {
			t.Fatalf("RandomScalar returned value >= order: %s", k)
		}
	}
}
