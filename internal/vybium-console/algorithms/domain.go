// Package algorithms implements the native hash, commitment and PRF
// primitives. Every entry point takes an explicit Domain.
package algorithms

import (
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// DomainVersion is the version of the domain tag set. Changing the meaning
// of any tag requires bumping it.
const DomainVersion = 1

// Domain identifies the purpose of a hash invocation
type Domain uint16

const (
	// DomainAccountKey derives account keys from a seed
	DomainAccountKey Domain = iota + 1
	// DomainAccountViewKey derives account view keys
	DomainAccountViewKey
	// DomainCommitment commits to arbitrary values
	DomainCommitment
	// DomainProgramValue commits to program values
	DomainProgramValue
	// DomainPRF keys the pseudorandom function
	DomainPRF
	// DomainSignatureChallenge computes Schnorr challenges
	DomainSignatureChallenge
	// DomainMerkleLeaf hashes Merkle leaves
	DomainMerkleLeaf
	// DomainMerkleNode hashes Merkle internal nodes
	DomainMerkleNode
	// DomainMerklePadding produces the padding digest of empty leaf slots
	DomainMerklePadding
	// DomainLedgerTree hashes ledger state tree nodes
	DomainLedgerTree
	// DomainBlockHash links block headers
	DomainBlockHash
	// DomainHomomorphic seeds bounded-homomorphic generators
	DomainHomomorphic
	// DomainSerialNumber derives record serial numbers
	DomainSerialNumber

	domainEnd
)

var domainNames = map[Domain]string{
	DomainAccountKey:         "account-key",
	DomainAccountViewKey:     "account-view-key",
	DomainCommitment:         "commitment",
	DomainProgramValue:       "program-value",
	DomainPRF:                "prf",
	DomainSignatureChallenge: "signature-challenge",
	DomainMerkleLeaf:         "merkle-leaf",
	DomainMerkleNode:         "merkle-node",
	DomainMerklePadding:      "merkle-padding",
	DomainLedgerTree:         "ledger-tree",
	DomainBlockHash:          "block-hash",
	DomainHomomorphic:        "homomorphic",
	DomainSerialNumber:       "serial-number",
}

// domainFields holds the field encoding of every tag, computed once
var domainFields = func() map[Domain]core.Field {
	m := make(map[Domain]core.Field, len(domainNames))
	for d := range domainNames {
		m[d] = core.FieldFromBytesLEMod([]byte(d.Label()))
	}
	return m
}()

// Domains returns every defined domain in tag order
func Domains() []Domain {
	out := make([]Domain, 0, len(domainNames))
	for d := Domain(1); d < domainEnd; d++ {
		out = append(out, d)
	}
	return out
}

// String returns the short name of the domain
func (d Domain) String() string {
	if name, ok := domainNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Domain(%d)", uint16(d))
}

// ParseDomain returns the domain with the given short name
func ParseDomain(name string) (Domain, error) {
	for d, n := range domainNames {
		if n == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown domain %q: %w", name, core.ErrInvalidDomain)
}

// Label returns the versioned label the tag is derived from
func (d Domain) Label() string {
	return fmt.Sprintf("vybium.console.v%d/%s", DomainVersion, d)
}

// Valid returns ErrInvalidDomain for values outside the defined set
func (d Domain) Valid() error {
	if _, ok := domainNames[d]; !ok {
		return fmt.Errorf("domain %d: %w", uint16(d), core.ErrInvalidDomain)
	}
	return nil
}

// Field returns the field element bound into sponge capacities and
// Pedersen offsets
func (d Domain) Field() core.Field {
	return domainFields[d]
}

// Tag64 returns the 64-bit tag prefixed to bit-oriented hash preimages
func (d Domain) Tag64() uint64 {
	return uint64(DomainVersion)<<16 | uint64(d)
}
