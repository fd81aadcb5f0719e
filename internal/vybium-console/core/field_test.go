package core

import (
	"bytes"
	"crypto/rand"
	"errors"
	"math/big"
	"testing"
)

func randomFields(t *testing.T, n int) []Field {
	t.Helper()
	out := make([]Field, n)
	for i := range out {
		f, err := RandomField(rand.Reader)
		if err != nil {
			t.Fatalf("RandomField() error = %v", err)
		}
		out[i] = f
	}
	return out
}

// TestFieldArithmetic tests the ring identities on random elements
func TestFieldArithmetic(t *testing.T) {
	elems := randomFields(t, 32)
	for i := 0; i+1 < len(elems); i++ {
		a, b := elems[i], elems[i+1]

		if !a.Add(b).Sub(b).Equal(a) {
			t.Errorf("a + b - b != a for a=%s b=%s", a, b)
		}
		if !a.Add(a.Neg()).IsZero() {
			t.Errorf("a + (-a) != 0 for a=%s", a)
		}
		if !a.Double().Equal(a.Add(a)) {
			t.Errorf("Double() disagrees with Add for a=%s", a)
		}
		if !a.Square().Equal(a.Mul(a)) {
			t.Errorf("Square() disagrees with Mul for a=%s", a)
		}
		if a.IsZero() {
			continue
		}
		inv, err := a.Inverse()
		if err != nil {
			t.Fatalf("Inverse() error = %v", err)
		}
		if !a.Mul(inv).IsOne() {
			t.Errorf("a * a^-1 != 1 for a=%s", a)
		}
		q, err := b.Div(a)
		if err != nil {
			t.Fatalf("Div() error = %v", err)
		}
		if !q.Mul(a).Equal(b) {
			t.Errorf("(b / a) * a != b")
		}
	}
}

// TestFieldInverseZero tests that zero has no inverse
func TestFieldInverseZero(t *testing.T) {
	if _, err := FieldZero().Inverse(); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Inverse(0) error = %v, want ErrDivisionByZero", err)
	}
	if _, err := FieldOne().Div(FieldZero()); !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("Div(1, 0) error = %v, want ErrDivisionByZero", err)
	}
}

// TestFieldPow tests exponentiation against big.Int
func TestFieldPow(t *testing.T) {
	tests := []struct {
		base, exp uint64
	}{
		{0, 0},
		{0, 5},
		{1, 1000},
		{2, 10},
		{3, 252},
		{12345, 67},
	}
	p := FieldModulus()
	for _, tt := range tests {
		got := FieldFromUint64(tt.base).Pow(FieldFromUint64(tt.exp))
		want := new(big.Int).Exp(new(big.Int).SetUint64(tt.base), new(big.Int).SetUint64(tt.exp), p)
		if got.Big().Cmp(want) != 0 {
			t.Errorf("%d^%d = %s, want %s", tt.base, tt.exp, got, want)
		}
	}

	// Fermat: a^(p-1) == 1
	a := randomFields(t, 1)[0]
	if a.IsZero() {
		a = FieldOne()
	}
	pm1 := FieldFromBig(new(big.Int).Sub(p, big.NewInt(1)))
	if !a.Pow(pm1).IsOne() {
		t.Error("a^(p-1) != 1")
	}
}

// TestFieldSqrt tests square roots of squares and the Legendre symbol
func TestFieldSqrt(t *testing.T) {
	for _, a := range randomFields(t, 8) {
		sq := a.Square()
		r, ok := sq.Sqrt()
		if !ok {
			t.Fatalf("Sqrt(a²) reported no root")
		}
		if !r.Square().Equal(sq) {
			t.Errorf("Sqrt(a²)² != a²")
		}
		if !a.IsZero() && sq.Legendre() != 1 {
			t.Errorf("Legendre(a²) = %d, want 1", sq.Legendre())
		}
	}
}

// TestFieldEncoding tests canonical byte and bit round-trips
func TestFieldEncoding(t *testing.T) {
	for _, a := range randomFields(t, 16) {
		b := a.Bytes()
		back, err := FieldFromBytesLE(b[:])
		if err != nil {
			t.Fatalf("FieldFromBytesLE() error = %v", err)
		}
		if !back.Equal(a) {
			t.Errorf("byte round-trip changed value")
		}
		again := back.Bytes()
		if !bytes.Equal(b[:], again[:]) {
			t.Errorf("re-encoding is not byte-exact")
		}

		bits := a.ToBitsLE()
		if len(bits) != FieldBits {
			t.Fatalf("ToBitsLE() len = %d, want %d", len(bits), FieldBits)
		}
		fromBits, err := FieldFromBitsLE(bits)
		if err != nil {
			t.Fatalf("FieldFromBitsLE() error = %v", err)
		}
		if !fromBits.Equal(a) {
			t.Errorf("bit round-trip changed value")
		}
	}

	if FieldFromUint64(1).Bytes()[0] != 1 {
		t.Error("encoding is not little-endian")
	}
}

// TestFieldDecodingRejects tests non-canonical inputs
func TestFieldDecodingRejects(t *testing.T) {
	p := FieldModulus()
	pLE := make([]byte, FieldBytes)
	p.FillBytes(pLE)
	pLE = reverseBytes(pLE)

	all := bytes.Repeat([]byte{0xff}, FieldBytes)

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"short", make([]byte, FieldBytes-1)},
		{"long", make([]byte, FieldBytes+1)},
		{"modulus", pLE},
		{"all ones", all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FieldFromBytesLE(tt.input); !errors.Is(err, ErrInvalidEncoding) {
				t.Errorf("FieldFromBytesLE() error = %v, want ErrInvalidEncoding", err)
			}
		})
	}

	if _, err := FieldFromBitsLE(make([]bool, FieldBits+1)); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("FieldFromBitsLE(too long) error = %v, want ErrInvalidEncoding", err)
	}
}

// TestFieldFromBytesLEMod tests reduction of wide inputs
func TestFieldFromBytesLEMod(t *testing.T) {
	p := FieldModulus()
	wide := make([]byte, 64)
	for i := range wide {
		wide[i] = byte(i*7 + 3)
	}
	got := FieldFromBytesLEMod(wide)
	want := new(big.Int).SetBytes(reverseBytes(wide))
	want.Mod(want, p)
	if got.Big().Cmp(want) != 0 {
		t.Errorf("FieldFromBytesLEMod() = %s, want %s", got, want)
	}
}

// TestSelectAndSwapField tests the masked helpers
func TestSelectAndSwapField(t *testing.T) {
	a, b := FieldFromUint64(11), FieldFromUint64(22)
	if !selectField(0, a, b).Equal(a) || !selectField(1, a, b).Equal(b) {
		t.Error("selectField picked the wrong operand")
	}
	x, y := a, b
	swapField(0, &x, &y)
	if !x.Equal(a) || !y.Equal(b) {
		t.Error("swapField(0) changed its operands")
	}
	swapField(1, &x, &y)
	if !x.Equal(b) || !y.Equal(a) {
		t.Error("swapField(1) did not swap")
	}
}

func BenchmarkFieldMul(b *testing.B) {
	x, y := FieldFromUint64(123456789), FieldFromUint64(987654321)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = x.Mul(y)
	}
}
