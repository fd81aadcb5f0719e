package core

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
)

const (
	// FieldBits is the bit length of the field modulus
	FieldBits = fr.Bits
	// FieldBytes is the size of a canonical field encoding
	FieldBytes = fr.Bytes
	// FieldDataBits is the number of bits that always fit below the modulus
	FieldDataBits = FieldBits - 1
)

// fieldMinusTwo is the Fermat inversion exponent p-2
var fieldMinusTwo = new(big.Int).Sub(fr.Modulus(), big.NewInt(2))

// Field is an element of the BLS12-377 scalar field, the base field of every
// primitive in this module. The value is always canonical and Field is a value
// type: arithmetic never aliases its operands.
type Field struct {
	v fr.Element
}

// FieldModulus returns the field modulus
func FieldModulus() *big.Int {
	return fr.Modulus()
}

// FieldZero returns the additive identity
func FieldZero() Field {
	return Field{}
}

// FieldOne returns the multiplicative identity
func FieldOne() Field {
	var f Field
	f.v.SetOne()
	return f
}

// FieldFromUint64 creates a field element from a uint64
func FieldFromUint64(v uint64) Field {
	var f Field
	f.v.SetUint64(v)
	return f
}

// FieldFromBig creates a field element from a big.Int, reducing it modulo p
func FieldFromBig(v *big.Int) Field {
	var f Field
	f.v.SetBigInt(v)
	return f
}

// FieldFromBytesLE decodes a canonical 32-byte little-endian field element
func FieldFromBytesLE(b []byte) (Field, error) {
	if len(b) != FieldBytes {
		return Field{}, fmt.Errorf("field element must be %d bytes, got %d: %w", FieldBytes, len(b), ErrInvalidEncoding)
	}
	be := reverseBytes(b)
	var f Field
	if err := f.v.SetBytesCanonical(be); err != nil {
		return Field{}, fmt.Errorf("non-canonical field element: %w", ErrInvalidEncoding)
	}
	return f, nil
}

// FieldFromBytesLEMod interprets b as a little-endian integer of any length and
// reduces it modulo p
func FieldFromBytesLEMod(b []byte) Field {
	v := new(big.Int).SetBytes(reverseBytes(b))
	return FieldFromBig(v)
}

// FieldFromBitsLE decodes a little-endian bit string of at most FieldBits bits
func FieldFromBitsLE(bits []bool) (Field, error) {
	if len(bits) > FieldBits {
		return Field{}, fmt.Errorf("field element has at most %d bits, got %d: %w", FieldBits, len(bits), ErrInvalidEncoding)
	}
	var buf [FieldBytes]byte
	for i, bit := range bits {
		if bit {
			buf[i/8] |= 1 << (i % 8)
		}
	}
	return FieldFromBytesLE(buf[:])
}

// RandomField samples a uniformly random field element from rng.
// Candidates are masked to FieldBits bits and rejected when not below p.
func RandomField(rng io.Reader) (Field, error) {
	var buf [FieldBytes]byte
	for {
		if _, err := io.ReadFull(rng, buf[:]); err != nil {
			return Field{}, fmt.Errorf("failed to sample field element: %w", err)
		}
		buf[FieldBytes-1] &= 0xff >> (8*FieldBytes - FieldBits)
		f, err := FieldFromBytesLE(buf[:])
		if err == nil {
			return f, nil
		}
	}
}

// Add performs field addition
func (f Field) Add(o Field) Field {
	var r Field
	r.v.Add(&f.v, &o.v)
	return r
}

// Sub performs field subtraction
func (f Field) Sub(o Field) Field {
	var r Field
	r.v.Sub(&f.v, &o.v)
	return r
}

// Mul performs field multiplication
func (f Field) Mul(o Field) Field {
	var r Field
	r.v.Mul(&f.v, &o.v)
	return r
}

// Neg returns the additive inverse
func (f Field) Neg() Field {
	var r Field
	r.v.Neg(&f.v)
	return r
}

// Double returns 2f
func (f Field) Double() Field {
	var r Field
	r.v.Double(&f.v)
	return r
}

// Square returns f²
func (f Field) Square() Field {
	var r Field
	r.v.Square(&f.v)
	return r
}

// Inverse computes the multiplicative inverse as f^(p-2).
// The exponent is public so the computation does not depend on the value of f.
func (f Field) Inverse() (Field, error) {
	if f.IsZero() {
		return Field{}, fmt.Errorf("cannot invert zero: %w", ErrDivisionByZero)
	}
	var r Field
	r.v.Exp(f.v, fieldMinusTwo)
	return r, nil
}

// Div performs field division (multiplication by inverse)
func (f Field) Div(o Field) (Field, error) {
	inv, err := o.Inverse()
	if err != nil {
		return Field{}, fmt.Errorf("division failed: %w", err)
	}
	return f.Mul(inv), nil
}

// Pow computes f^e with a fixed 256-step square-and-multiply. Both branches
// are computed every step and the result is chosen with a masked select.
func (f Field) Pow(e Field) Field {
	limbs := e.limbs()
	r := FieldOne()
	for i := 255; i >= 0; i-- {
		r = r.Square()
		t := r.Mul(f)
		bit := (limbs[i/64] >> (uint(i) % 64)) & 1
		r = selectField(bit, r, t)
	}
	return r
}

// Sqrt returns a square root of f and whether one exists
func (f Field) Sqrt() (Field, bool) {
	var r Field
	if r.v.Sqrt(&f.v) == nil {
		return Field{}, false
	}
	return r, true
}

// Legendre returns 1 for a non-zero square, -1 for a non-square and 0 for zero
func (f Field) Legendre() int {
	return f.v.Legendre()
}

// Equal reports whether two field elements are equal, in constant time
func (f Field) Equal(o Field) bool {
	a, b := f.Bytes(), o.Bytes()
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}

// IsZero checks if the element is zero
func (f Field) IsZero() bool {
	return f.v.IsZero()
}

// IsOne checks if the element is one
func (f Field) IsOne() bool {
	return f.v.IsOne()
}

// Bytes returns the canonical 32-byte little-endian encoding
func (f Field) Bytes() [FieldBytes]byte {
	be := f.v.Bytes()
	var le [FieldBytes]byte
	for i := range be {
		le[i] = be[FieldBytes-1-i]
	}
	return le
}

// ToBitsLE returns exactly FieldBits little-endian bits
func (f Field) ToBitsLE() []bool {
	b := f.Bytes()
	bits := make([]bool, FieldBits)
	for i := range bits {
		bits[i] = (b[i/8]>>(i%8))&1 == 1
	}
	return bits
}

// Big returns the value as a big.Int
func (f Field) Big() *big.Int {
	return f.v.BigInt(new(big.Int))
}

// String returns the decimal representation of the field element
func (f Field) String() string {
	return f.Big().String()
}

// Element exposes the underlying gnark-crypto element
func (f Field) Element() fr.Element {
	return f.v
}

// FieldFromElement wraps a gnark-crypto element
func FieldFromElement(e fr.Element) Field {
	return Field{v: e}
}

// limbs returns the canonical (non-Montgomery) little-endian limbs
func (f Field) limbs() [4]uint64 {
	b := f.Bytes()
	var l [4]uint64
	for i := range l {
		l[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return l
}

// selectField returns a when bit is 0 and b when bit is 1, without branching
func selectField(bit uint64, a, b Field) Field {
	return Field{v: selectElement(bit, &a.v, &b.v)}
}

// swapField exchanges a and b when bit is 1, without branching
func swapField(bit uint64, a, b *Field) {
	swapElement(bit, &a.v, &b.v)
}

func selectElement(bit uint64, a, b *fr.Element) fr.Element {
	mask := -(bit & 1)
	var r fr.Element
	for i := range r {
		r[i] = a[i] ^ (mask & (a[i] ^ b[i]))
	}
	return r
}

func swapElement(bit uint64, a, b *fr.Element) {
	mask := -(bit & 1)
	for i := range a {
		t := mask & (a[i] ^ b[i])
		a[i] ^= t
		b[i] ^= t
	}
}

func reverseBytes(b []byte) []byte {
	r := make([]byte, len(b))
	for i := range b {
		r[i] = b[len(b)-1-i]
	}
	return r
}
