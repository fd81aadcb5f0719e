package core

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/twistededwards"
)

const (
	// ScalarBytes is the size of a canonical scalar encoding
	ScalarBytes = 32
)

// Scalar field parameters, derived once from the curve order.
// They are package-level constants in all but syntax and never change.
var (
	scalarModulus  *big.Int
	scalarQ        [4]uint64 // modulus limbs, little-endian
	scalarQInv     uint64    // -q^-1 mod 2^64
	scalarR2       [4]uint64 // 2^512 mod q, canonical
	scalarOneMont  [4]uint64 // 2^256 mod q
	scalarMinusTwo *big.Int
	// ScalarBits is the bit length of the scalar modulus
	ScalarBits int
	// ScalarDataBits is the number of bits that always fit below the modulus
	ScalarDataBits int
)

func init() {
	params := twistededwards.GetEdwardsCurve()
	scalarModulus = new(big.Int).Set(&params.Order)
	scalarQ = bigToLimbs(scalarModulus)
	ScalarBits = scalarModulus.BitLen()
	ScalarDataBits = ScalarBits - 1

	// Newton iteration for q[0]^-1 mod 2^64
	inv := uint64(1)
	for i := 0; i < 6; i++ {
		inv *= 2 - scalarQ[0]*inv
	}
	scalarQInv = -inv

	r := new(big.Int).Lsh(big.NewInt(1), 256)
	scalarOneMont = bigToLimbs(new(big.Int).Mod(r, scalarModulus))
	r2 := new(big.Int).Lsh(big.NewInt(1), 512)
	scalarR2 = bigToLimbs(r2.Mod(r2, scalarModulus))
	scalarMinusTwo = new(big.Int).Sub(scalarModulus, big.NewInt(2))
}

// Scalar is an integer modulo the prime order of the Edwards subgroup.
// Limbs are kept in Montgomery form and every operation is branch-free.
type Scalar struct {
	m [4]uint64
}

// ScalarModulus returns the order of the prime-order subgroup
func ScalarModulus() *big.Int {
	return new(big.Int).Set(scalarModulus)
}

// ScalarZero returns the additive identity
func ScalarZero() Scalar {
	return Scalar{}
}

// ScalarOne returns the multiplicative identity
func ScalarOne() Scalar {
	return Scalar{m: scalarOneMont}
}

// ScalarFromUint64 creates a scalar from a uint64
func ScalarFromUint64(v uint64) Scalar {
	return scalarFromCanonical([4]uint64{v, 0, 0, 0})
}

// ScalarFromBig creates a scalar from a big.Int, reducing it modulo the order
func ScalarFromBig(v *big.Int) Scalar {
	return scalarFromCanonical(bigToLimbs(new(big.Int).Mod(v, scalarModulus)))
}

// ScalarFromBytesLE decodes a canonical 32-byte little-endian scalar
func ScalarFromBytesLE(b []byte) (Scalar, error) {
	if len(b) != ScalarBytes {
		return Scalar{}, fmt.Errorf("scalar must be %d bytes, got %d: %w", ScalarBytes, len(b), ErrInvalidEncoding)
	}
	var l [4]uint64
	for i := range l {
		l[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	_, borrow := subLimbs(l, scalarQ)
	if borrow == 0 {
		return Scalar{}, fmt.Errorf("non-canonical scalar: %w", ErrInvalidEncoding)
	}
	return scalarFromCanonical(l), nil
}

// ScalarFromBitsLE decodes a little-endian bit string into a canonical scalar
func ScalarFromBitsLE(bits []bool) (Scalar, error) {
	if len(bits) > 256 {
		return Scalar{}, fmt.Errorf("scalar has at most 256 bits, got %d: %w", len(bits), ErrInvalidEncoding)
	}
	var buf [ScalarBytes]byte
	for i, bit := range bits {
		if bit {
			buf[i/8] |= 1 << (i % 8)
		}
	}
	return ScalarFromBytesLE(buf[:])
}

// ScalarFromFieldTruncated keeps the low ScalarDataBits bits of a field
// element. The result is always below the order, so no reduction happens.
func ScalarFromFieldTruncated(f Field) Scalar {
	l := f.limbs()
	drop := uint(256 - ScalarDataBits)
	l[3] &= ^uint64(0) >> drop
	return scalarFromCanonical(l)
}

// RandomScalar samples a uniformly random scalar from rng by rejection sampling
func RandomScalar(rng io.Reader) (Scalar, error) {
	var buf [ScalarBytes]byte
	for {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return Scalar{}, fmt.Errorf("failed to sample scalar: %w", err)
		}
		buf[ScalarBytes-1] &= 0xff >> uint(8*ScalarBytes-ScalarBits)
		s, err := ScalarFromBytesLE(buf[:])
		if err == nil {
			return s, nil
		}
	}
}

// RandomNonZeroScalar samples a uniformly random non-zero scalar
func RandomNonZeroScalar(rng io.Reader) (Scalar, error) {
	for {
		s, err := RandomScalar(rng)
		if err != nil {
			return Scalar{}, err
		}
		if !s.IsZero() {
			return s, nil
		}
	}
}

// Add performs scalar addition
func (s Scalar) Add(o Scalar) Scalar {
	return Scalar{m: addMod(s.m, o.m)}
}

// Sub performs scalar subtraction
func (s Scalar) Sub(o Scalar) Scalar {
	return Scalar{m: subMod(s.m, o.m)}
}

// Neg returns the additive inverse
func (s Scalar) Neg() Scalar {
	return Scalar{m: subMod([4]uint64{}, s.m)}
}

// Mul performs scalar multiplication
func (s Scalar) Mul(o Scalar) Scalar {
	return Scalar{m: montMul(s.m, o.m)}
}

// Square returns s²
func (s Scalar) Square() Scalar {
	return s.Mul(s)
}

// Inverse computes s^(q-2). The exponent is public.
func (s Scalar) Inverse() (Scalar, error) {
	if s.IsZero() {
		return Scalar{}, fmt.Errorf("cannot invert zero scalar: %w", ErrDivisionByZero)
	}
	r := ScalarOne()
	for i := scalarMinusTwo.BitLen() - 1; i >= 0; i-- {
		r = r.Square()
		if scalarMinusTwo.Bit(i) == 1 {
			r = r.Mul(s)
		}
	}
	return r, nil
}

// SelectScalar returns a when bit is 0 and b when bit is 1, without branching
func SelectScalar(bit uint64, a, b Scalar) Scalar {
	return Scalar{m: selectLimbs(bit, a.m, b.m)}
}

// IsZero reports whether s is zero, in constant time
func (s Scalar) IsZero() bool {
	acc := s.m[0] | s.m[1] | s.m[2] | s.m[3]
	return (acc|-acc)>>63 == 0
}

// Equal reports whether two scalars are equal, in constant time
func (s Scalar) Equal(o Scalar) bool {
	acc := (s.m[0] ^ o.m[0]) | (s.m[1] ^ o.m[1]) | (s.m[2] ^ o.m[2]) | (s.m[3] ^ o.m[3])
	return (acc|-acc)>>63 == 0
}

// Bit returns bit i of the canonical value
func (s Scalar) Bit(i int) uint64 {
	l := s.canonical()
	return (l[i/64] >> (uint(i) % 64)) & 1
}

// Bytes returns the canonical 32-byte little-endian encoding
func (s Scalar) Bytes() [ScalarBytes]byte {
	l := s.canonical()
	var b [ScalarBytes]byte
	for i := range l {
		binary.LittleEndian.PutUint64(b[i*8:], l[i])
	}
	return b
}

// ToBitsLE returns ScalarBits little-endian bits
func (s Scalar) ToBitsLE() []bool {
	l := s.canonical()
	bits := make([]bool, ScalarBits)
	for i := range bits {
		bits[i] = (l[i/64]>>(uint(i)%64))&1 == 1
	}
	return bits
}

// Big returns the value as a big.Int
func (s Scalar) Big() *big.Int {
	b := s.Bytes()
	return new(big.Int).SetBytes(reverseBytes(b[:]))
}

// String returns the decimal representation of the scalar
func (s Scalar) String() string {
	return s.Big().String()
}

func (s Scalar) canonical() [4]uint64 {
	return montMul(s.m, [4]uint64{1, 0, 0, 0})
}

func scalarFromCanonical(l [4]uint64) Scalar {
	return Scalar{m: montMul(l, scalarR2)}
}

func bigToLimbs(v *big.Int) [4]uint64 {
	var buf [32]byte
	v.FillBytes(buf[:])
	var l [4]uint64
	for i := range l {
		l[i] = binary.BigEndian.Uint64(buf[32-8*(i+1):])
	}
	return l
}

func subLimbs(a, b [4]uint64) ([4]uint64, uint64) {
	var r [4]uint64
	var borrow uint64
	r[0], borrow = bits.Sub64(a[0], b[0], 0)
	r[1], borrow = bits.Sub64(a[1], b[1], borrow)
	r[2], borrow = bits.Sub64(a[2], b[2], borrow)
	r[3], borrow = bits.Sub64(a[3], b[3], borrow)
	return r, borrow
}

func addLimbs(a, b [4]uint64) ([4]uint64, uint64) {
	var r [4]uint64
	var carry uint64
	r[0], carry = bits.Add64(a[0], b[0], 0)
	r[1], carry = bits.Add64(a[1], b[1], carry)
	r[2], carry = bits.Add64(a[2], b[2], carry)
	r[3], carry = bits.Add64(a[3], b[3], carry)
	return r, carry
}

// selectLimbs returns a when bit is 0 and b when bit is 1
func selectLimbs(bit uint64, a, b [4]uint64) [4]uint64 {
	mask := -(bit & 1)
	var r [4]uint64
	for i := range r {
		r[i] = a[i] ^ (mask & (a[i] ^ b[i]))
	}
	return r
}

func addMod(a, b [4]uint64) [4]uint64 {
	t, carry := addLimbs(a, b)
	u, borrow := subLimbs(t, scalarQ)
	return selectLimbs(carry|(borrow^1), t, u)
}

func subMod(a, b [4]uint64) [4]uint64 {
	t, borrow := subLimbs(a, b)
	mask := -borrow
	q := [4]uint64{scalarQ[0] & mask, scalarQ[1] & mask, scalarQ[2] & mask, scalarQ[3] & mask}
	r, _ := addLimbs(t, q)
	return r
}

// montMul computes a·b·2^-256 mod q with CIOS and a masked final subtraction
func montMul(a, b [4]uint64) [4]uint64 {
	var t [6]uint64
	for i := 0; i < 4; i++ {
		var c, cc uint64
		for j := 0; j < 4; j++ {
			hi, lo := bits.Mul64(a[j], b[i])
			lo, cc = bits.Add64(lo, t[j], 0)
			hi += cc
			lo, cc = bits.Add64(lo, c, 0)
			hi += cc
			t[j] = lo
			c = hi
		}
		t[4], cc = bits.Add64(t[4], c, 0)
		t[5] = cc

		m := t[0] * scalarQInv
		hi, lo := bits.Mul64(m, scalarQ[0])
		_, cc = bits.Add64(lo, t[0], 0)
		c = hi + cc
		for j := 1; j < 4; j++ {
			hi, lo = bits.Mul64(m, scalarQ[j])
			lo, cc = bits.Add64(lo, t[j], 0)
			hi += cc
			lo, cc = bits.Add64(lo, c, 0)
			hi += cc
			t[j-1] = lo
			c = hi
		}
		t[3], cc = bits.Add64(t[4], c, 0)
		t[4] = t[5] + cc
	}
	r := [4]uint64{t[0], t[1], t[2], t[3]}
	u, borrow := subLimbs(r, scalarQ)
	return selectLimbs(t[4]|(borrow^1), r, u)
}
