package algorithms

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr/poseidon2"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// Poseidon2MD is the Merkle–Damgård hash over the Poseidon2 permutation
// shipped with gnark-crypto. The domain element is absorbed as the first
// block and every input element follows as a 32-byte big-endian block.
type Poseidon2MD struct{}

// NewPoseidon2MD creates the hasher
func NewPoseidon2MD() *Poseidon2MD {
	return &Poseidon2MD{}
}

// Hash returns the digest of the domain-prefixed input
func (h *Poseidon2MD) Hash(domain Domain, input []core.Field) (core.Field, error) {
	if err := domain.Valid(); err != nil {
		return core.Field{}, err
	}
	hasher := poseidon2.NewMerkleDamgardHasher()

	d := domain.Field().Element()
	block := d.Bytes()
	if _, err := hasher.Write(block[:]); err != nil {
		return core.Field{}, fmt.Errorf("poseidon2 absorb domain: %w", err)
	}
	for i, in := range input {
		e := in.Element()
		block := e.Bytes()
		if _, err := hasher.Write(block[:]); err != nil {
			return core.Field{}, fmt.Errorf("poseidon2 absorb element %d: %w", i, err)
		}
	}
	return core.FieldFromBig(new(big.Int).SetBytes(hasher.Sum(nil))), nil
}
