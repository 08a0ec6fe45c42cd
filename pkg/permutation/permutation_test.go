package permutation

import (
	"math/big"
	"testing"
)

func TestGenerateIsBijection(t *testing.T) {
	seeds := []int64{0, 1, 42, 0x12345678, 0x87654321}
	sizes := []int{1, 2, 5, 16, 32}

	for _, seed := range seeds {
		for _, n := range sizes {
			pi := Generate(big.NewInt(seed), n)
			if len(pi) != n {
				t.Fatalf("seed=%d n=%d: len(pi)=%d", seed, n, len(pi))
			}
			seen := make(map[int]bool, n)
			for _, v := range pi {
				if v < 0 || v >= n {
					t.Fatalf("seed=%d n=%d: out-of-range entry %d", seed, n, v)
				}
				if seen[v] {
					t.Fatalf("seed=%d n=%d: duplicate entry %d, not a bijection", seed, n, v)
				}
				seen[v] = true
			}
		}
	}
}

func TestInvertRoundTrip(t *testing.T) {
	pi := Generate(big.NewInt(0x87654321), 32)
	inv := Invert(pi)
	for i, p := range pi {
		if inv[p] != i {
			t.Fatalf("invert(pi)[pi[%d]=%d] = %d, want %d", i, p, inv[p], i)
		}
	}
}

func TestApplyInvertRoundTrip(t *testing.T) {
	pi := Generate(big.NewInt(7), 16)
	values := make([]int, 16)
	for i := range values {
		values[i] = i * 3
	}
	permuted := Apply(pi, values)
	inv := Invert(pi)
	restored := Apply(inv, permuted)
	for i := range values {
		if restored[i] != values[i] {
			t.Fatalf("round trip mismatch at %d: got %d, want %d", i, restored[i], values[i])
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(big.NewInt(999), 32)
	b := Generate(big.NewInt(999), 32)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different permutations at %d: %d != %d", i, a[i], b[i])
		}
	}
}
