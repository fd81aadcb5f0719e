package merkle

import (
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// Profile names the hash family of a tree
type Profile string

const (
	// ProfileBHP hashes bit-string leaves with BHP1024 and nodes with BHP512
	ProfileBHP Profile = "bhp"
	// ProfilePoseidon hashes field leaves with Poseidon rate 4 and nodes with rate 2
	ProfilePoseidon Profile = "poseidon"
	// ProfilePoseidon2 hashes field leaves and nodes with Poseidon2 Merkle–Damgård
	ProfilePoseidon2 Profile = "poseidon2"
	// ProfileGoldilocks hashes Goldilocks leaves and nodes with Tip5
	ProfileGoldilocks Profile = "goldilocks"
)

// Profiles returns every supported profile
func Profiles() []Profile {
	return []Profile{ProfileBHP, ProfilePoseidon, ProfilePoseidon2, ProfileGoldilocks}
}

// Valid returns ErrInvalidConfig for unknown profiles
func (p Profile) Valid() error {
	for _, known := range Profiles() {
		if p == known {
			return nil
		}
	}
	return fmt.Errorf("unknown merkle profile %q: %w", string(p), core.ErrInvalidConfig)
}

// BHPLeafHasher hashes bit-string leaves with BHP1024 under DomainMerkleLeaf
type BHPLeafHasher struct {
	bhp *algorithms.BHP
}

// NewBHPLeafHasher wraps a BHP1024 instance
func NewBHPLeafHasher(bhp1024 *algorithms.BHP) *BHPLeafHasher {
	return &BHPLeafHasher{bhp: bhp1024}
}

// HashLeaf hashes one leaf
func (h *BHPLeafHasher) HashLeaf(leaf []bool) (core.Field, error) {
	return h.bhp.Hash(algorithms.DomainMerkleLeaf, leaf)
}

// BHPPathHasher hashes left ‖ right bits with BHP512 under DomainMerkleNode.
// The padding digest is BHP256 of the empty input under DomainMerklePadding.
type BHPPathHasher struct {
	bhp     *algorithms.BHP
	padding core.Field
}

// NewBHPPathHasher derives the padding digest from bhp256 and hashes nodes with bhp512
func NewBHPPathHasher(bhp512, bhp256 *algorithms.BHP) (*BHPPathHasher, error) {
	padding, err := bhp256.Hash(algorithms.DomainMerklePadding, nil)
	if err != nil {
		return nil, fmt.Errorf("bhp padding digest: %w", err)
	}
	return &BHPPathHasher{bhp: bhp512, padding: padding}, nil
}

// HashChildren hashes two child digests
func (h *BHPPathHasher) HashChildren(left, right core.Field) (core.Field, error) {
	bits := append(left.ToBitsLE(), right.ToBitsLE()...)
	return h.bhp.Hash(algorithms.DomainMerkleNode, bits)
}

// HashEmpty returns the padding digest
func (h *BHPPathHasher) HashEmpty() core.Field {
	return h.padding
}

// ToField returns the digest itself
func (h *BHPPathHasher) ToField(digest core.Field) core.Field {
	return digest
}

// NewBHPHashers builds the leaf and path hashers of the BHP profile
func NewBHPHashers() (*BHPLeafHasher, *BHPPathHasher, error) {
	bhp256, err := algorithms.NewBHP256()
	if err != nil {
		return nil, nil, err
	}
	bhp512, err := algorithms.NewBHP512()
	if err != nil {
		return nil, nil, err
	}
	bhp1024, err := algorithms.NewBHP1024()
	if err != nil {
		return nil, nil, err
	}
	ph, err := NewBHPPathHasher(bhp512, bhp256)
	if err != nil {
		return nil, nil, err
	}
	return NewBHPLeafHasher(bhp1024), ph, nil
}

// PoseidonLeafHasher hashes field leaves under DomainMerkleLeaf
type PoseidonLeafHasher struct {
	poseidon *algorithms.Poseidon
}

// NewPoseidonLeafHasher wraps a Poseidon instance, rate 4 by convention
func NewPoseidonLeafHasher(poseidon *algorithms.Poseidon) *PoseidonLeafHasher {
	return &PoseidonLeafHasher{poseidon: poseidon}
}

// HashLeaf hashes one leaf
func (h *PoseidonLeafHasher) HashLeaf(leaf []core.Field) (core.Field, error) {
	return h.poseidon.Hash(algorithms.DomainMerkleLeaf, leaf)
}

// PoseidonPathHasher hashes [left, right] under DomainMerkleNode. The padding
// digest is the hash of the empty input under DomainMerklePadding.
type PoseidonPathHasher struct {
	poseidon *algorithms.Poseidon
	padding  core.Field
}

// NewPoseidonPathHasher wraps a Poseidon instance, rate 2 by convention
func NewPoseidonPathHasher(poseidon *algorithms.Poseidon) (*PoseidonPathHasher, error) {
	padding, err := poseidon.Hash(algorithms.DomainMerklePadding, nil)
	if err != nil {
		return nil, fmt.Errorf("poseidon padding digest: %w", err)
	}
	return &PoseidonPathHasher{poseidon: poseidon, padding: padding}, nil
}

// HashChildren hashes two child digests
func (h *PoseidonPathHasher) HashChildren(left, right core.Field) (core.Field, error) {
	return h.poseidon.Hash(algorithms.DomainMerkleNode, []core.Field{left, right})
}

// HashEmpty returns the padding digest
func (h *PoseidonPathHasher) HashEmpty() core.Field {
	return h.padding
}

// ToField returns the digest itself
func (h *PoseidonPathHasher) ToField(digest core.Field) core.Field {
	return digest
}

// NewPoseidonHashers builds the leaf and path hashers of the Poseidon profile
func NewPoseidonHashers(params algorithms.PoseidonParameters) (*PoseidonLeafHasher, *PoseidonPathHasher, error) {
	psd4, err := algorithms.NewPoseidon(4, params)
	if err != nil {
		return nil, nil, err
	}
	psd2, err := algorithms.NewPoseidon(2, params)
	if err != nil {
		return nil, nil, err
	}
	ph, err := NewPoseidonPathHasher(psd2)
	if err != nil {
		return nil, nil, err
	}
	return NewPoseidonLeafHasher(psd4), ph, nil
}

// Poseidon2Hasher is both the leaf and the path hasher of the Poseidon2 profile
type Poseidon2Hasher struct {
	md      *algorithms.Poseidon2MD
	padding core.Field
}

// NewPoseidon2Hasher creates the Poseidon2 profile hasher
func NewPoseidon2Hasher() (*Poseidon2Hasher, error) {
	md := algorithms.NewPoseidon2MD()
	padding, err := md.Hash(algorithms.DomainMerklePadding, nil)
	if err != nil {
		return nil, fmt.Errorf("poseidon2 padding digest: %w", err)
	}
	return &Poseidon2Hasher{md: md, padding: padding}, nil
}

// HashLeaf hashes one leaf under DomainMerkleLeaf
func (h *Poseidon2Hasher) HashLeaf(leaf []core.Field) (core.Field, error) {
	return h.md.Hash(algorithms.DomainMerkleLeaf, leaf)
}

// HashChildren hashes two child digests under DomainMerkleNode
func (h *Poseidon2Hasher) HashChildren(left, right core.Field) (core.Field, error) {
	return h.md.Hash(algorithms.DomainMerkleNode, []core.Field{left, right})
}

// HashEmpty returns the padding digest
func (h *Poseidon2Hasher) HashEmpty() core.Field {
	return h.padding
}

// ToField returns the digest itself
func (h *Poseidon2Hasher) ToField(digest core.Field) core.Field {
	return digest
}

// FieldCodec encodes Field digests as 32 little-endian bytes
type FieldCodec struct{}

// Size returns the encoded digest size
func (FieldCodec) Size() int { return core.FieldBytes }

// Encode returns the canonical encoding
func (FieldCodec) Encode(d core.Field) []byte {
	b := d.Bytes()
	return b[:]
}

// Decode rejects non-canonical encodings
func (FieldCodec) Decode(b []byte) (core.Field, error) {
	return core.FieldFromBytesLE(b)
}
