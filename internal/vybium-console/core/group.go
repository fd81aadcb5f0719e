package core

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/twistededwards"
	"golang.org/x/crypto/blake2s"
)

const (
	// GroupBytes is the size of a compressed group element
	GroupBytes = 32

	// maxHashToGroupAttempts bounds try-and-increment; each attempt succeeds
	// with probability close to 1/2
	maxHashToGroupAttempts = 256

	// signMask selects the x-coordinate flag in the last encoded byte
	signMask = 0x80
)

var (
	edwardsCofactor *big.Int
	edwardsBase     Group
)

func init() {
	params := twistededwards.GetEdwardsCurve()
	edwardsCofactor = params.Cofactor.BigInt(new(big.Int))
	edwardsBase.p.FromAffine(&params.Base)
}

// Group is a point on the twisted Edwards curve a·x² + y² = 1 + d·x²·y²
// over Field, backed by gnark-crypto extended coordinates. Group is a value
// type; every value built through the public constructors is on the curve.
type Group struct {
	p twistededwards.PointExtended
}

// Identity returns the neutral element (0, 1)
func Identity() Group {
	var g Group
	g.p.Y.SetOne()
	g.p.Z.SetOne()
	return g
}

// Generator returns the prime-order subgroup generator
func Generator() Group {
	return edwardsBase
}

// GroupFromAffine builds a point from affine coordinates and checks curve and
// subgroup membership
func GroupFromAffine(x, y Field) (Group, error) {
	a := twistededwards.PointAffine{X: x.Element(), Y: y.Element()}
	if !a.IsOnCurve() {
		return Group{}, fmt.Errorf("affine point is not on the curve: %w", ErrInvalidEncoding)
	}
	g := groupFromPointAffine(&a)
	if !g.IsInSubgroup() {
		return Group{}, fmt.Errorf("affine point: %w", ErrNotInSubgroup)
	}
	return g, nil
}

func groupFromPointAffine(a *twistededwards.PointAffine) Group {
	var g Group
	g.p.FromAffine(a)
	return g
}

// GroupFromBytes decodes a compressed point and requires it to be in the
// prime-order subgroup
func GroupFromBytes(b []byte) (Group, error) {
	g, err := CurvePointFromBytes(b)
	if err != nil {
		return Group{}, err
	}
	if !g.IsInSubgroup() {
		return Group{}, fmt.Errorf("decoded point: %w", ErrNotInSubgroup)
	}
	return g, nil
}

// CurvePointFromBytes decodes a compressed point and only requires it to be on
// the curve. The encoding is gnark-crypto's: y little-endian with the top bit
// set when x is the lexicographically largest root. Only the canonical
// encoding of a point is accepted.
func CurvePointFromBytes(b []byte) (Group, error) {
	if len(b) != GroupBytes {
		return Group{}, fmt.Errorf("group element must be %d bytes, got %d: %w", GroupBytes, len(b), ErrInvalidEncoding)
	}
	masked := make([]byte, GroupBytes)
	copy(masked, b)
	masked[GroupBytes-1] &^= signMask
	if _, err := FieldFromBytesLE(masked); err != nil {
		return Group{}, fmt.Errorf("y-coordinate: %w", err)
	}

	var a twistededwards.PointAffine
	if _, err := a.SetBytes(b); err != nil {
		return Group{}, fmt.Errorf("decode point: %v: %w", err, ErrInvalidEncoding)
	}
	if !a.IsOnCurve() {
		return Group{}, fmt.Errorf("no curve point with this y-coordinate: %w", ErrInvalidEncoding)
	}
	// rejects a set flag on x = 0
	if enc := a.Bytes(); !bytes.Equal(enc[:], b) {
		return Group{}, fmt.Errorf("non-canonical point encoding: %w", ErrInvalidEncoding)
	}
	return groupFromPointAffine(&a), nil
}

// HashToGroup maps an arbitrary tag to a subgroup element with an unknown
// discrete logarithm. Candidates are BLAKE2s(tag ‖ counter) read as a
// compressed point; the first decodable one is multiplied by the cofactor.
func HashToGroup(tag []byte) (Group, error) {
	input := make([]byte, len(tag)+4)
	copy(input, tag)
	for counter := uint32(0); counter < maxHashToGroupAttempts; counter++ {
		binary.LittleEndian.PutUint32(input[len(tag):], counter)
		digest := blake2s.Sum256(input)
		// keep the flag, clear the bits above the modulus
		digest[GroupBytes-1] &= signMask | (0xff >> (8*FieldBytes - FieldBits))

		c, err := CurvePointFromBytes(digest[:])
		if err != nil {
			continue
		}
		g := c.MulByCofactor()
		if g.IsIdentity() {
			continue
		}
		return g, nil
	}
	return Group{}, fmt.Errorf("hash to group failed for tag %q", tag)
}

// Add computes p + q
func (p Group) Add(q Group) Group {
	var r Group
	r.p.Add(&p.p, &q.p)
	return r
}

// Double computes 2p
func (p Group) Double() Group {
	var r Group
	r.p.Double(&p.p)
	return r
}

// Neg returns -p
func (p Group) Neg() Group {
	var r Group
	r.p.Neg(&p.p)
	return r
}

// Sub computes p - q
func (p Group) Sub(q Group) Group {
	return p.Add(q.Neg())
}

// ScalarMul computes s·p with a Montgomery ladder over all 256 bit positions.
// Each step performs one addition and one doubling and swaps the registers
// with a mask, so the sequence of operations is independent of s.
func (p Group) ScalarMul(s Scalar) Group {
	r0 := Identity()
	r1 := p
	limbs := s.canonical()
	for i := 255; i >= 0; i-- {
		bit := (limbs[i/64] >> (uint(i) % 64)) & 1
		swapGroup(bit, &r0, &r1)
		r1 = r0.Add(r1)
		r0 = r0.Double()
		swapGroup(bit, &r0, &r1)
	}
	return r0
}

// mulBig multiplies by a public non-negative integer in variable time. The
// integer is used as is, without reduction modulo the group order.
func (p Group) mulBig(k *big.Int) Group {
	r := Identity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		r = r.Double()
		if k.Bit(i) == 1 {
			r = r.Add(p)
		}
	}
	return r
}

// MulByCofactor multiplies by the curve cofactor
func (p Group) MulByCofactor() Group {
	return p.mulBig(edwardsCofactor)
}

// IsInSubgroup reports whether the point has prime order (or is the identity)
func (p Group) IsInSubgroup() bool {
	return p.mulBig(scalarModulus).IsIdentity()
}

// IsOnCurve reports whether the point satisfies the curve equation
func (p Group) IsOnCurve() bool {
	a := p.affine()
	return a.IsOnCurve()
}

// IsIdentity reports whether p is the neutral element
func (p Group) IsIdentity() bool {
	return p.p.X.IsZero() && p.p.Y.Equal(&p.p.Z)
}

// Equal compares two points projectively
func (p Group) Equal(q Group) bool {
	var l, r Field
	l.v.Mul(&p.p.X, &q.p.Z)
	r.v.Mul(&q.p.X, &p.p.Z)
	if !l.Equal(r) {
		return false
	}
	l.v.Mul(&p.p.Y, &q.p.Z)
	r.v.Mul(&q.p.Y, &p.p.Z)
	return l.Equal(r)
}

// ToAffine returns the affine coordinates (x, y)
func (p Group) ToAffine() (Field, Field) {
	a := p.affine()
	return FieldFromElement(a.X), FieldFromElement(a.Y)
}

func (p Group) affine() twistededwards.PointAffine {
	var a twistededwards.PointAffine
	a.FromExtended(&p.p)
	return a
}

// X returns the affine x-coordinate
func (p Group) X() Field {
	x, _ := p.ToAffine()
	return x
}

// Y returns the affine y-coordinate
func (p Group) Y() Field {
	_, y := p.ToAffine()
	return y
}

// Bytes returns the compressed encoding of the affine point
func (p Group) Bytes() [GroupBytes]byte {
	a := p.affine()
	return a.Bytes()
}

// String returns the affine coordinates
func (p Group) String() string {
	x, y := p.ToAffine()
	return fmt.Sprintf("(%s, %s)", x, y)
}

// swapGroup exchanges a and b when bit is 1, without branching
func swapGroup(bit uint64, a, b *Group) {
	swapElement(bit, &a.p.X, &b.p.X)
	swapElement(bit, &a.p.Y, &b.p.Y)
	swapElement(bit, &a.p.Z, &b.p.Z)
	swapElement(bit, &a.p.T, &b.p.T)
}

// SelectGroup returns a when bit is 0 and b when bit is 1, without branching
func SelectGroup(bit uint64, a, b Group) Group {
	var r Group
	r.p.X = selectElement(bit, &a.p.X, &b.p.X)
	r.p.Y = selectElement(bit, &a.p.Y, &b.p.Y)
	r.p.Z = selectElement(bit, &a.p.Z, &b.p.Z)
	r.p.T = selectElement(bit, &a.p.T, &b.p.T)
	return r
}
