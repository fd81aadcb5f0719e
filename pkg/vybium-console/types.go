package vybiumconsole

import (
	"io"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/collections/merkle"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
	"github.com/vybium/vybium-console/internal/vybium-console/signature"
	"github.com/vybium/vybium-console/internal/vybium-console/statepath"
	"github.com/vybium/vybium-console/internal/vybium-console/storage"
	"github.com/vybium/vybium-console/internal/vybium-console/utils"
)

// Field is an element of the BLS12-377 scalar field
type Field = core.Field

// Scalar is an element of the prime-order subgroup's scalar field
type Scalar = core.Scalar

// Group is a point of the twisted Edwards curve
type Group = core.Group

// Domain identifies the purpose of a hash invocation
type Domain = algorithms.Domain

// DomainVersion is the version of the domain tag set
const DomainVersion = algorithms.DomainVersion

// Domain tags
const (
	DomainAccountKey         = algorithms.DomainAccountKey
	DomainAccountViewKey     = algorithms.DomainAccountViewKey
	DomainCommitment         = algorithms.DomainCommitment
	DomainProgramValue       = algorithms.DomainProgramValue
	DomainPRF                = algorithms.DomainPRF
	DomainSignatureChallenge = algorithms.DomainSignatureChallenge
	DomainMerkleLeaf         = algorithms.DomainMerkleLeaf
	DomainMerkleNode         = algorithms.DomainMerkleNode
	DomainMerklePadding      = algorithms.DomainMerklePadding
	DomainLedgerTree         = algorithms.DomainLedgerTree
	DomainBlockHash          = algorithms.DomainBlockHash
	DomainHomomorphic        = algorithms.DomainHomomorphic
	DomainSerialNumber       = algorithms.DomainSerialNumber
)

// Domains returns every defined domain in tag order
func Domains() []Domain {
	return algorithms.Domains()
}

// ParseDomain returns the domain with the given short name
func ParseDomain(name string) (Domain, error) {
	return algorithms.ParseDomain(name)
}

// Signature is a Schnorr signature
type Signature = signature.Signature

// KeyPair is a signing key with its verifying key
type KeyPair = signature.KeyPair

// SignatureBytes is the encoded size of a Signature
const SignatureBytes = signature.SignatureBytes

// MerklePath is an inclusion path over field digests
type MerklePath = merkle.Path[Field]

// GoldilocksPath is an inclusion path over Tip5 digests
type GoldilocksPath = merkle.Path[hash.Digest]

// BHPTree is a Merkle tree over bit-string leaves
type BHPTree = merkle.Tree[[]bool, Field]

// PSDTree is a Merkle tree over field-element leaves
type PSDTree = merkle.Tree[[]Field, Field]

// GoldilocksTree is a Merkle tree over Goldilocks leaves
type GoldilocksTree = merkle.Tree[[]field.Element, hash.Digest]

// MerkleProfile names the hash family of a tree
type MerkleProfile = merkle.Profile

// Merkle profiles
const (
	ProfileBHP        = merkle.ProfileBHP
	ProfilePoseidon   = merkle.ProfilePoseidon
	ProfilePoseidon2  = merkle.ProfilePoseidon2
	ProfileGoldilocks = merkle.ProfileGoldilocks
)

// StatePath is a verified ledger inclusion proof
type StatePath = statepath.StatePath

// StatePathComponents are the parts of a state path
type StatePathComponents = statepath.Components

// HeaderLeaf, TransactionLeaf and TransitionLeaf are ledger tree leaves
type (
	HeaderLeaf      = statepath.HeaderLeaf
	TransactionLeaf = statepath.TransactionLeaf
	TransitionLeaf  = statepath.TransitionLeaf
)

// Snapshot is the persisted form of a tree
type Snapshot = storage.Snapshot

// SnapshotStore saves and loads snapshots
type SnapshotStore = storage.SnapshotStore

// Config holds the fixed parameters of a console
type Config = utils.Config

// DefaultConfig returns the parameters of the current network profile
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// LoadConfig reads a YAML configuration file
func LoadConfig(path string) (*Config, error) {
	return utils.LoadConfig(path)
}

// FieldFromUint64 returns v as a field element
func FieldFromUint64(v uint64) Field {
	return core.FieldFromUint64(v)
}

// FieldFromBytesLE decodes a canonical 32-byte little-endian field element
func FieldFromBytesLE(b []byte) (Field, error) {
	return core.FieldFromBytesLE(b)
}

// RandomField samples a uniform field element from rng
func RandomField(rng io.Reader) (Field, error) {
	return core.RandomField(rng)
}

// RandomScalar samples a uniform scalar from rng
func RandomScalar(rng io.Reader) (Scalar, error) {
	return core.RandomScalar(rng)
}

// ScalarFromUint64 returns v as a scalar
func ScalarFromUint64(v uint64) Scalar {
	return core.ScalarFromUint64(v)
}

// ScalarFromBytesLE decodes a canonical 32-byte little-endian scalar
func ScalarFromBytesLE(b []byte) (Scalar, error) {
	return core.ScalarFromBytesLE(b)
}

// GroupFromBytes decodes a point and checks subgroup membership
func GroupFromBytes(b []byte) (Group, error) {
	return core.GroupFromBytes(b)
}

// Generator returns the subgroup generator
func Generator() Group {
	return core.Generator()
}

// SignatureFromBytes decodes a signature
func SignatureFromBytes(b []byte) (Signature, error) {
	return signature.SignatureFromBytes(b)
}
