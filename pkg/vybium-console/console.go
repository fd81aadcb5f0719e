package vybiumconsole

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/signature"
	"github.com/vybium/vybium-console/internal/vybium-console/statepath"
)

// Console bundles every primitive instance of one network profile. It is
// immutable after New and safe for concurrent use.
type Console struct {
	config *Config
	logger *zap.Logger

	psd2, psd4, psd8 *algorithms.Poseidon
	poseidon2        *algorithms.Poseidon2MD

	bhp256, bhp512, bhp768, bhp1024 *algorithms.BHP
	ped64, ped128                   *algorithms.Pedersen

	commitments map[CommitmentScheme]*algorithms.Commitment
	homomorphic *algorithms.HomomorphicHash
	prf         *algorithms.PRF
	signer      *signature.Signer

	trees  *treeHashers
	ledger *statepath.Hashers
}

// Option configures a Console
type Option func(*Console)

// WithLogger sets the logger used by the console and the trees it builds
func WithLogger(logger *zap.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// New builds a console from config. The config is copied; later changes to
// it have no effect.
func New(config *Config, opts ...Option) (*Console, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	c := &Console{
		config: config.Clone(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	if c.psd2, err = algorithms.NewPoseidon(2, c.config.Poseidon); err != nil {
		return nil, err
	}
	if c.psd4, err = algorithms.NewPoseidon(4, c.config.Poseidon); err != nil {
		return nil, err
	}
	if c.psd8, err = algorithms.NewPoseidon(8, c.config.Poseidon); err != nil {
		return nil, err
	}
	c.poseidon2 = algorithms.NewPoseidon2MD()

	if c.bhp256, err = algorithms.NewBHP256(); err != nil {
		return nil, err
	}
	if c.bhp512, err = algorithms.NewBHP512(); err != nil {
		return nil, err
	}
	if c.bhp768, err = algorithms.NewBHP768(); err != nil {
		return nil, err
	}
	if c.bhp1024, err = algorithms.NewBHP1024(); err != nil {
		return nil, err
	}
	if c.ped64, err = algorithms.NewPedersen64(); err != nil {
		return nil, err
	}
	if c.ped128, err = algorithms.NewPedersen128(); err != nil {
		return nil, err
	}

	c.commitments = make(map[CommitmentScheme]*algorithms.Commitment, len(commitmentSchemes))
	for _, scheme := range commitmentSchemes {
		com, err := algorithms.NewCommitment(c.uncompressed(scheme))
		if err != nil {
			return nil, err
		}
		c.commitments[scheme] = com
	}

	if c.homomorphic, err = algorithms.NewHomomorphicHash(c.config.HomomorphicCapacity, c.config.GeneratorCacheSize); err != nil {
		return nil, err
	}
	c.prf = algorithms.NewPRF(c.psd2)
	c.signer = signature.NewSigner(c.psd8)

	if c.trees, err = newTreeHashers(c); err != nil {
		return nil, err
	}
	if c.ledger, err = statepath.NewHashers(); err != nil {
		return nil, err
	}

	c.logger.Info("console initialized",
		zap.Int("domain_version", c.config.DomainVersion),
		zap.String("merkle_profile", string(c.config.MerkleProfile)),
		zap.Int("merkle_depth", c.config.MerkleDepth),
	)
	return c, nil
}

// Config returns a copy of the console configuration
func (c *Console) Config() *Config {
	return c.config.Clone()
}

// Logger returns the console logger
func (c *Console) Logger() *zap.Logger {
	return c.logger
}

// HashPSD2 hashes with Poseidon rate 2
func (c *Console) HashPSD2(domain Domain, input []Field) (Field, error) {
	return c.psd2.Hash(domain, input)
}

// HashPSD4 hashes with Poseidon rate 4
func (c *Console) HashPSD4(domain Domain, input []Field) (Field, error) {
	return c.psd4.Hash(domain, input)
}

// HashPSD8 hashes with Poseidon rate 8
func (c *Console) HashPSD8(domain Domain, input []Field) (Field, error) {
	return c.psd8.Hash(domain, input)
}

// HashManyPSD2 squeezes n outputs with Poseidon rate 2
func (c *Console) HashManyPSD2(domain Domain, input []Field, n int) ([]Field, error) {
	return c.psd2.HashMany(domain, input, n)
}

// HashManyPSD4 squeezes n outputs with Poseidon rate 4
func (c *Console) HashManyPSD4(domain Domain, input []Field, n int) ([]Field, error) {
	return c.psd4.HashMany(domain, input, n)
}

// HashManyPSD8 squeezes n outputs with Poseidon rate 8
func (c *Console) HashManyPSD8(domain Domain, input []Field, n int) ([]Field, error) {
	return c.psd8.HashMany(domain, input, n)
}

// HashToScalarPSD2 hashes to a scalar with Poseidon rate 2
func (c *Console) HashToScalarPSD2(domain Domain, input []Field) (Scalar, error) {
	return c.psd2.HashToScalar(domain, input)
}

// HashToScalarPSD4 hashes to a scalar with Poseidon rate 4
func (c *Console) HashToScalarPSD4(domain Domain, input []Field) (Scalar, error) {
	return c.psd4.HashToScalar(domain, input)
}

// HashToScalarPSD8 hashes to a scalar with Poseidon rate 8
func (c *Console) HashToScalarPSD8(domain Domain, input []Field) (Scalar, error) {
	return c.psd8.HashToScalar(domain, input)
}

// HashToGroupPSD2 hashes to a subgroup point with Poseidon rate 2
func (c *Console) HashToGroupPSD2(domain Domain, input []Field) (Group, error) {
	return c.psd2.HashToGroup(domain, input)
}

// HashToGroupPSD4 hashes to a subgroup point with Poseidon rate 4
func (c *Console) HashToGroupPSD4(domain Domain, input []Field) (Group, error) {
	return c.psd4.HashToGroup(domain, input)
}

// HashToGroupPSD8 hashes to a subgroup point with Poseidon rate 8
func (c *Console) HashToGroupPSD8(domain Domain, input []Field) (Group, error) {
	return c.psd8.HashToGroup(domain, input)
}

// HashPoseidon2 hashes with the Poseidon2 Merkle–Damgård construction
func (c *Console) HashPoseidon2(domain Domain, input []Field) (Field, error) {
	return c.poseidon2.Hash(domain, input)
}

// HashBHP256 hashes bits with BHP256
func (c *Console) HashBHP256(domain Domain, input []bool) (Field, error) {
	return c.bhp256.Hash(domain, input)
}

// HashBHP512 hashes bits with BHP512
func (c *Console) HashBHP512(domain Domain, input []bool) (Field, error) {
	return c.bhp512.Hash(domain, input)
}

// HashBHP768 hashes bits with BHP768
func (c *Console) HashBHP768(domain Domain, input []bool) (Field, error) {
	return c.bhp768.Hash(domain, input)
}

// HashBHP1024 hashes bits with BHP1024
func (c *Console) HashBHP1024(domain Domain, input []bool) (Field, error) {
	return c.bhp1024.Hash(domain, input)
}

// HashPED64 hashes at most 64 bits with Pedersen
func (c *Console) HashPED64(domain Domain, input []bool) (Field, error) {
	return c.ped64.Hash(domain, input)
}

// HashPED128 hashes at most 128 bits with Pedersen
func (c *Console) HashPED128(domain Domain, input []bool) (Field, error) {
	return c.ped128.Hash(domain, input)
}

// HomomorphicHash hashes a sequence of at most HomomorphicCapacity values
func (c *Console) HomomorphicHash(domain Domain, values []Field) (Group, error) {
	return c.homomorphic.Hash(domain, values)
}

// HomomorphicUpdate replaces the value at position in digest
func (c *Console) HomomorphicUpdate(domain Domain, digest Group, position int, oldValue, newValue Field) (Group, error) {
	return c.homomorphic.Update(domain, digest, position, oldValue, newValue)
}

// PRF evaluates the Poseidon PRF
func (c *Console) PRF(key Field, input []Field) (Field, error) {
	return c.prf.Evaluate(key, input)
}

// SerialNumber evaluates the PRF under DomainSerialNumber
func (c *Console) SerialNumber(key Field, input []Field) (Field, error) {
	return c.prf.EvaluateWithDomain(DomainSerialNumber, key, input)
}

// GenerateKeyPair samples a fresh key pair
func (c *Console) GenerateKeyPair(rng io.Reader) (*KeyPair, error) {
	return signature.GenerateKeyPair(rng)
}

// KeyPairFromSeed derives a key pair from a seed
func (c *Console) KeyPairFromSeed(seed Field) (*KeyPair, error) {
	return c.signer.KeyPairFromSeed(seed)
}

// Sign signs message with a fresh nonce from rng
func (c *Console) Sign(sk Scalar, message []Field, rng io.Reader) (Signature, error) {
	return c.signer.Sign(sk, message, rng)
}

// Verify checks a signature; invalid input is reported as false
func (c *Console) Verify(vk Group, message []Field, sig Signature) bool {
	return c.signer.Verify(vk, message, sig)
}

// NewStatePath verifies a ledger state path
func (c *Console) NewStatePath(components StatePathComponents) (*StatePath, error) {
	return statepath.New(c.ledger, components)
}

// UnmarshalStatePath decodes and verifies a ledger state path
func (c *Console) UnmarshalStatePath(b []byte) (*StatePath, error) {
	return statepath.UnmarshalStatePath(c.ledger, b)
}

// BlockHash links a header root to the previous block hash
func (c *Console) BlockHash(previous, headerRoot Field) (Field, error) {
	return c.ledger.BlockHash(previous, headerRoot)
}

func (c *Console) String() string {
	return fmt.Sprintf("vybium-console v%d (%s, depth %d)", c.config.DomainVersion, c.config.MerkleProfile, c.config.MerkleDepth)
}
