package vybiumconsole

import (
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// CommitmentScheme selects the hash a commitment is built on
type CommitmentScheme string

// Commitment schemes
const (
	CommitBHP256Scheme  CommitmentScheme = "bhp256"
	CommitBHP512Scheme  CommitmentScheme = "bhp512"
	CommitBHP768Scheme  CommitmentScheme = "bhp768"
	CommitBHP1024Scheme CommitmentScheme = "bhp1024"
	CommitPED64Scheme   CommitmentScheme = "ped64"
	CommitPED128Scheme  CommitmentScheme = "ped128"
)

var commitmentSchemes = []CommitmentScheme{
	CommitBHP256Scheme, CommitBHP512Scheme, CommitBHP768Scheme, CommitBHP1024Scheme,
	CommitPED64Scheme, CommitPED128Scheme,
}

// CommitmentSchemes returns every supported scheme
func CommitmentSchemes() []CommitmentScheme {
	return append([]CommitmentScheme(nil), commitmentSchemes...)
}

func (c *Console) uncompressed(scheme CommitmentScheme) algorithms.UncompressedHasher {
	switch scheme {
	case CommitBHP256Scheme:
		return c.bhp256
	case CommitBHP512Scheme:
		return c.bhp512
	case CommitBHP768Scheme:
		return c.bhp768
	case CommitBHP1024Scheme:
		return c.bhp1024
	case CommitPED64Scheme:
		return c.ped64
	default:
		return c.ped128
	}
}

func (c *Console) committer(scheme CommitmentScheme) (*algorithms.Commitment, error) {
	com, ok := c.commitments[scheme]
	if !ok {
		return nil, fmt.Errorf("unknown commitment scheme %q: %w", string(scheme), core.ErrInvalidConfig)
	}
	return com, nil
}

// Commit commits to input under the blinding scalar
func (c *Console) Commit(scheme CommitmentScheme, domain Domain, input []bool, randomizer Scalar) (Field, error) {
	com, err := c.committer(scheme)
	if err != nil {
		return Field{}, err
	}
	return com.Commit(domain, input, randomizer)
}

// VerifyCommitment recomputes a commitment; any failure is reported as false
func (c *Console) VerifyCommitment(scheme CommitmentScheme, domain Domain, commitment Field, input []bool, randomizer Scalar) bool {
	com, err := c.committer(scheme)
	if err != nil {
		return false
	}
	return com.Verify(domain, commitment, input, randomizer)
}

// CommitBHP256 commits with BHP256
func (c *Console) CommitBHP256(domain Domain, input []bool, randomizer Scalar) (Field, error) {
	return c.Commit(CommitBHP256Scheme, domain, input, randomizer)
}

// CommitBHP512 commits with BHP512
func (c *Console) CommitBHP512(domain Domain, input []bool, randomizer Scalar) (Field, error) {
	return c.Commit(CommitBHP512Scheme, domain, input, randomizer)
}

// CommitBHP768 commits with BHP768
func (c *Console) CommitBHP768(domain Domain, input []bool, randomizer Scalar) (Field, error) {
	return c.Commit(CommitBHP768Scheme, domain, input, randomizer)
}

// CommitBHP1024 commits with BHP1024
func (c *Console) CommitBHP1024(domain Domain, input []bool, randomizer Scalar) (Field, error) {
	return c.Commit(CommitBHP1024Scheme, domain, input, randomizer)
}

// CommitPED64 commits to at most 64 bits with Pedersen
func (c *Console) CommitPED64(domain Domain, input []bool, randomizer Scalar) (Field, error) {
	return c.Commit(CommitPED64Scheme, domain, input, randomizer)
}

// CommitPED128 commits to at most 128 bits with Pedersen
func (c *Console) CommitPED128(domain Domain, input []bool, randomizer Scalar) (Field, error) {
	return c.Commit(CommitPED128Scheme, domain, input, randomizer)
}

// CommitField commits to the bits of a field element with BHP1024 under
// DomainProgramValue
func (c *Console) CommitField(value Field, randomizer Scalar) (Field, error) {
	com, err := c.committer(CommitBHP1024Scheme)
	if err != nil {
		return Field{}, err
	}
	return algorithms.CommitField(com, DomainProgramValue, value, randomizer)
}

// VerifyFieldCommitment is the counterpart of CommitField
func (c *Console) VerifyFieldCommitment(commitment, value Field, randomizer Scalar) bool {
	com, err := c.committer(CommitBHP1024Scheme)
	if err != nil {
		return false
	}
	return algorithms.VerifyField(com, DomainProgramValue, commitment, value, randomizer)
}
