package core

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/twistededwards"
)

// TestGeneratorProperties tests that the generator has prime order
func TestGeneratorProperties(t *testing.T) {
	g := Generator()
	if !g.IsOnCurve() {
		t.Fatal("generator is not on the curve")
	}
	if !g.IsInSubgroup() {
		t.Fatal("generator is not in the prime-order subgroup")
	}
	if g.IsIdentity() {
		t.Fatal("generator is the identity")
	}
	if !Identity().IsOnCurve() {
		t.Fatal("identity is not on the curve")
	}
}

// TestScalarMulMatchesGnark cross-checks the ladder against gnark-crypto
func TestScalarMulMatchesGnark(t *testing.T) {
	base := Generator().affine()
	for _, s := range randomScalars(t, 8) {
		var want twistededwards.PointAffine
		want.ScalarMultiplication(&base, s.Big())

		got := Generator().ScalarMul(s).affine()
		if !got.X.Equal(&want.X) || !got.Y.Equal(&want.Y) {
			t.Errorf("ScalarMul(%s) disagrees with gnark-crypto", s)
		}
	}
}

// TestGroupOpsMatchGnarkAffine cross-checks the extended-coordinate
// operations against the affine formulas
func TestGroupOpsMatchGnarkAffine(t *testing.T) {
	s := randomScalars(t, 2)
	a, b := Generator().ScalarMul(s[0]), Generator().ScalarMul(s[1])
	aa, ba := a.affine(), b.affine()

	var sum, dbl, neg twistededwards.PointAffine
	sum.Add(&aa, &ba)
	dbl.Double(&aa)
	neg.Neg(&aa)

	cases := []struct {
		name string
		got  Group
		want twistededwards.PointAffine
	}{
		{"add", a.Add(b), sum},
		{"double", a.Double(), dbl},
		{"neg", a.Neg(), neg},
	}
	for _, tc := range cases {
		got := tc.got.affine()
		if !got.Equal(&tc.want) {
			t.Errorf("%s disagrees with the affine result", tc.name)
		}
		if !tc.got.IsOnCurve() {
			t.Errorf("%s left the curve", tc.name)
		}
	}
}

// TestGroupEncodingSignFlag tests that the top bit selects between p and -p
func TestGroupEncodingSignFlag(t *testing.T) {
	p := Generator().ScalarMul(ScalarFromUint64(7))
	enc, negEnc := p.Bytes(), p.Neg().Bytes()
	if (enc[31]^negEnc[31])&signMask == 0 {
		t.Fatal("p and -p share the flag bit")
	}
	enc[31] &^= signMask
	negEnc[31] &^= signMask
	if !bytes.Equal(enc[:], negEnc[:]) {
		t.Error("p and -p differ in y")
	}
	x, _ := p.ToAffine()
	e := x.Element()
	flagged := p.Bytes()[31]&signMask != 0
	if flagged != e.LexicographicallyLargest() {
		t.Error("flag bit does not follow the lexicographically largest root")
	}
}

// TestScalarMulEdgeCases tests zero, one and the order
func TestScalarMulEdgeCases(t *testing.T) {
	g := Generator()
	if !g.ScalarMul(ScalarZero()).IsIdentity() {
		t.Error("0·G is not the identity")
	}
	if !g.ScalarMul(ScalarOne()).Equal(g) {
		t.Error("1·G != G")
	}
	if !g.ScalarMul(ScalarFromUint64(2)).Equal(g.Double()) {
		t.Error("2·G != G + G")
	}
	if !Identity().ScalarMul(ScalarFromUint64(12345)).IsIdentity() {
		t.Error("s·O is not the identity")
	}
	if !g.mulBig(ScalarModulus()).IsIdentity() {
		t.Error("q·G is not the identity")
	}
}

// TestGroupLaws tests associativity, inverses and distributivity
func TestGroupLaws(t *testing.T) {
	s := randomScalars(t, 3)
	g := Generator()
	a, b, c := g.ScalarMul(s[0]), g.ScalarMul(s[1]), g.ScalarMul(s[2])

	if !a.Add(b).Add(c).Equal(a.Add(b.Add(c))) {
		t.Error("addition is not associative")
	}
	if !a.Add(b).Equal(b.Add(a)) {
		t.Error("addition is not commutative")
	}
	if !a.Sub(a).IsIdentity() {
		t.Error("a - a is not the identity")
	}
	if !a.Add(Identity()).Equal(a) {
		t.Error("a + O != a")
	}
	if !a.Double().Equal(a.Add(a)) {
		t.Error("Double() disagrees with Add")
	}
	if !g.ScalarMul(s[0].Add(s[1])).Equal(a.Add(b)) {
		t.Error("(s0 + s1)·G != s0·G + s1·G")
	}
	if !a.ScalarMul(s[1]).Equal(b.ScalarMul(s[0])) {
		t.Error("s1·(s0·G) != s0·(s1·G)")
	}
}

// TestGroupEncodingRoundTrip tests byte-exact round-trips of s·G
func TestGroupEncodingRoundTrip(t *testing.T) {
	points := []Group{Identity(), Generator(), Generator().Neg()}
	for _, s := range randomScalars(t, 16) {
		points = append(points, Generator().ScalarMul(s))
	}
	for _, p := range points {
		enc := p.Bytes()
		dec, err := GroupFromBytes(enc[:])
		if err != nil {
			t.Fatalf("GroupFromBytes() error = %v", err)
		}
		if !dec.Equal(p) {
			t.Error("decoded point differs")
		}
		again := dec.Bytes()
		if !bytes.Equal(enc[:], again[:]) {
			t.Error("re-encoding is not byte-exact")
		}
	}
}

// TestGroupDecodingRejects tests invalid encodings and subgroup failures
func TestGroupDecodingRejects(t *testing.T) {
	if _, err := GroupFromBytes(make([]byte, 31)); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("short input error = %v, want ErrInvalidEncoding", err)
	}

	// y = p is not canonical
	pLE := make([]byte, 32)
	FieldModulus().FillBytes(pLE)
	pLE = reverseBytes(pLE)
	if _, err := GroupFromBytes(pLE); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("non-canonical y error = %v, want ErrInvalidEncoding", err)
	}

	// y = 1 gives x = 0, so a set sign bit is non-canonical
	one := FieldOne().Bytes()
	one[31] |= 0x80
	if _, err := GroupFromBytes(one[:]); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("negative zero error = %v, want ErrInvalidEncoding", err)
	}

	// Find some y that is not on the curve
	found := false
	for y := uint64(2); y < 200; y++ {
		enc := FieldFromUint64(y).Bytes()
		if _, err := CurvePointFromBytes(enc[:]); err != nil {
			if !errors.Is(err, ErrInvalidEncoding) {
				t.Errorf("off-curve error = %v, want ErrInvalidEncoding", err)
			}
			found = true
			break
		}
	}
	if !found {
		t.Error("no off-curve y found in range")
	}

	// (0, -1) has order 2: on the curve, outside the subgroup
	low := FieldOne().Neg().Bytes()
	if _, err := CurvePointFromBytes(low[:]); err != nil {
		t.Fatalf("CurvePointFromBytes(0, -1) error = %v", err)
	}
	if _, err := GroupFromBytes(low[:]); !errors.Is(err, ErrNotInSubgroup) {
		t.Errorf("low-order point error = %v, want ErrNotInSubgroup", err)
	}
	if _, err := GroupFromAffine(FieldZero(), FieldOne().Neg()); !errors.Is(err, ErrNotInSubgroup) {
		t.Errorf("GroupFromAffine(low order) error = %v, want ErrNotInSubgroup", err)
	}
	if _, err := GroupFromAffine(FieldOne(), FieldOne()); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("GroupFromAffine(off curve) error = %v, want ErrInvalidEncoding", err)
	}
}

// TestHashToGroup tests determinism and tag separation
func TestHashToGroup(t *testing.T) {
	a1, err := HashToGroup([]byte("vybium.console.v1/test/a"))
	if err != nil {
		t.Fatalf("HashToGroup() error = %v", err)
	}
	a2, err := HashToGroup([]byte("vybium.console.v1/test/a"))
	if err != nil {
		t.Fatalf("HashToGroup() error = %v", err)
	}
	b, err := HashToGroup([]byte("vybium.console.v1/test/b"))
	if err != nil {
		t.Fatalf("HashToGroup() error = %v", err)
	}
	if !a1.Equal(a2) {
		t.Error("HashToGroup is not deterministic")
	}
	if a1.Equal(b) {
		t.Error("different tags map to the same point")
	}
	for _, p := range []Group{a1, b} {
		if !p.IsInSubgroup() || p.IsIdentity() {
			t.Error("HashToGroup output is not a non-identity subgroup element")
		}
	}
}

// TestMulByCofactor tests cofactor clearing of a low-order point
func TestMulByCofactor(t *testing.T) {
	low, err := CurvePointFromBytes(func() []byte { b := FieldOne().Neg().Bytes(); return b[:] }())
	if err != nil {
		t.Fatalf("CurvePointFromBytes() error = %v", err)
	}
	if !low.MulByCofactor().IsIdentity() {
		t.Error("cofactor does not clear the order-2 point")
	}
	g := Generator()
	if !g.MulByCofactor().Equal(g.mulBig(big.NewInt(4))) {
		t.Error("MulByCofactor() != 4·G")
	}
}

func BenchmarkScalarMul(b *testing.B) {
	g := Generator()
	s := ScalarFromUint64(0xdeadbeefcafe)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = g.ScalarMul(s)
	}
}
