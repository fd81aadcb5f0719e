package algorithms

import (
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// Committer commits to bit strings under a blinding scalar
type Committer interface {
	Commit(domain Domain, input []bool, randomizer core.Scalar) (core.Field, error)
	Verify(domain Domain, commitment core.Field, input []bool, randomizer core.Scalar) bool
}

// UncompressedHasher is a hash whose output is a curve point
type UncompressedHasher interface {
	Name() string
	HashUncompressed(domain Domain, input []bool) (core.Group, error)
}

// Commitment is hash(input) + r·H, reported as the x-coordinate, where H is
// a generator derived independently of the hash generators
type Commitment struct {
	hasher UncompressedHasher
	base   core.Group
}

var _ Committer = (*Commitment)(nil)

// NewCommitment builds a commitment scheme on top of hasher
func NewCommitment(hasher UncompressedHasher) (*Commitment, error) {
	base, err := core.HashToGroup([]byte(fmt.Sprintf("vybium.console.v%d/commitment-randomizer/%s", DomainVersion, hasher.Name())))
	if err != nil {
		return nil, fmt.Errorf("commitment randomizer base: %w", err)
	}
	return &Commitment{hasher: hasher, base: base}, nil
}

// RandomizerBase returns H
func (c *Commitment) RandomizerBase() core.Group {
	return c.base
}

// CommitUncompressed returns the commitment point
func (c *Commitment) CommitUncompressed(domain Domain, input []bool, randomizer core.Scalar) (core.Group, error) {
	h, err := c.hasher.HashUncompressed(domain, input)
	if err != nil {
		return core.Group{}, fmt.Errorf("commit with %s: %w", c.hasher.Name(), err)
	}
	return h.Add(c.base.ScalarMul(randomizer)), nil
}

// Commit returns the x-coordinate of CommitUncompressed
func (c *Commitment) Commit(domain Domain, input []bool, randomizer core.Scalar) (core.Field, error) {
	p, err := c.CommitUncompressed(domain, input, randomizer)
	if err != nil {
		return core.Field{}, err
	}
	return p.X(), nil
}

// Verify recomputes the commitment; any failure is reported as false
func (c *Commitment) Verify(domain Domain, commitment core.Field, input []bool, randomizer core.Scalar) bool {
	got, err := c.Commit(domain, input, randomizer)
	if err != nil {
		return false
	}
	return got.Equal(commitment)
}

// CommitField commits to the bits of a field element
func CommitField(c Committer, domain Domain, value core.Field, randomizer core.Scalar) (core.Field, error) {
	return c.Commit(domain, value.ToBitsLE(), randomizer)
}

// VerifyField is the counterpart of CommitField
func VerifyField(c Committer, domain Domain, commitment, value core.Field, randomizer core.Scalar) bool {
	return c.Verify(domain, commitment, value.ToBitsLE(), randomizer)
}
