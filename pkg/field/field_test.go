package field

import (
	"math/big"
	"testing"
)

func TestFieldToBytesLERoundTrip(t *testing.T) {
	v := big.NewInt(0x1234)
	b := FieldToBytesLE(v, 32)
	if len(b) != 32 {
		t.Fatalf("len(b) = %d, want 32", len(b))
	}
	got := BytesLEToField(b)
	if got.Cmp(v) != 0 {
		t.Fatalf("round trip = %s, want %s", got, v)
	}
}

func TestFieldToBytesLELittleEndian(t *testing.T) {
	v := big.NewInt(0x0201)
	b := FieldToBytesLE(v, 4)
	want := []byte{0x01, 0x02, 0x00, 0x00}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x (full: %x)", i, b[i], want[i], b)
		}
	}
}

func TestReduceTruncatesAboveScalarOrder(t *testing.T) {
	above := new(big.Int).Add(ScalarOrder(), big.NewInt(7))
	got := Reduce(above)
	if got.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("Reduce(r+7) = %s, want 7", got)
	}
}

func TestToVariablesZeroFills(t *testing.T) {
	in := []*big.Int{big.NewInt(1), big.NewInt(2)}
	out := ToVariables(in, 5)
	if len(out) != 5 {
		t.Fatalf("len(out) = %d, want 5", len(out))
	}
	for i := 2; i < 5; i++ {
		if out[i].Sign() != 0 {
			t.Fatalf("out[%d] = %s, want 0", i, out[i])
		}
	}
}
