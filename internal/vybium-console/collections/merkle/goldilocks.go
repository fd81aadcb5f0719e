package merkle

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// GoldilocksDigestBytes is the encoded size of a Tip5 digest
const GoldilocksDigestBytes = hash.DigestLen * 8

// GoldilocksHasher is the leaf and path hasher of the Goldilocks profile.
// Leaves are hashed with the variable-length Tip5 sponge over
// [leaf tag, leaf...]; nodes use the fixed-length Hash10 over left ‖ right;
// the padding digest is the variable-length hash of [padding tag].
type GoldilocksHasher struct {
	padding hash.Digest
}

// NewGoldilocksHasher creates the Goldilocks profile hasher
func NewGoldilocksHasher() *GoldilocksHasher {
	return &GoldilocksHasher{
		padding: hash.HashVarlen([]field.Element{goldilocksTag(algorithms.DomainMerklePadding)}),
	}
}

func goldilocksTag(d algorithms.Domain) field.Element {
	return field.New(d.Tag64())
}

// HashLeaf hashes one leaf
func (h *GoldilocksHasher) HashLeaf(leaf []field.Element) (hash.Digest, error) {
	input := make([]field.Element, 0, len(leaf)+1)
	input = append(input, goldilocksTag(algorithms.DomainMerkleLeaf))
	input = append(input, leaf...)
	return hash.HashVarlen(input), nil
}

// HashChildren hashes two child digests
func (h *GoldilocksHasher) HashChildren(left, right hash.Digest) (hash.Digest, error) {
	var input [2 * hash.DigestLen]field.Element
	copy(input[:hash.DigestLen], left[:])
	copy(input[hash.DigestLen:], right[:])
	return hash.Hash10(input), nil
}

// HashEmpty returns the padding digest
func (h *GoldilocksHasher) HashEmpty() hash.Digest {
	return h.padding
}

// ToField packs the digest limbs into one field element
func (h *GoldilocksHasher) ToField(digest hash.Digest) core.Field {
	v := new(big.Int)
	for i := len(digest) - 1; i >= 0; i-- {
		v.Lsh(v, 64)
		v.Or(v, new(big.Int).SetUint64(digest[i].Value()))
	}
	return core.FieldFromBig(v)
}

// GoldilocksCodec encodes Tip5 digests as DigestLen little-endian u64 limbs
type GoldilocksCodec struct{}

// Size returns the encoded digest size
func (GoldilocksCodec) Size() int { return GoldilocksDigestBytes }

// Encode returns the canonical encoding
func (GoldilocksCodec) Encode(d hash.Digest) []byte {
	out := make([]byte, GoldilocksDigestBytes)
	for i, e := range d {
		binary.LittleEndian.PutUint64(out[i*8:], e.Value())
	}
	return out
}

// Decode rejects limbs that are not below the Goldilocks modulus
func (GoldilocksCodec) Decode(b []byte) (hash.Digest, error) {
	var d hash.Digest
	if len(b) != GoldilocksDigestBytes {
		return d, fmt.Errorf("goldilocks digest must be %d bytes, got %d: %w", GoldilocksDigestBytes, len(b), core.ErrInvalidEncoding)
	}
	for i := range d {
		v := binary.LittleEndian.Uint64(b[i*8:])
		if v >= field.P {
			return d, fmt.Errorf("goldilocks limb %d is not canonical: %w", i, core.ErrInvalidEncoding)
		}
		d[i] = field.New(v)
	}
	return d, nil
}
