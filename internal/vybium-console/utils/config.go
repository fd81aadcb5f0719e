package utils

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/collections/merkle"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

const (
	// DefaultMerkleDepth is the depth of trees built without an explicit depth
	DefaultMerkleDepth = 32
	// DefaultHomomorphicCapacity bounds the leaf-set accumulator
	DefaultHomomorphicCapacity = 1 << 16
	// DefaultLogLevel is the zap level used when none is configured
	DefaultLogLevel = "info"
)

// Config represents the fixed parameters of a console instance. A Config is
// read once at construction; later changes do not affect built instances.
type Config struct {
	// Hash permutation parameters
	Poseidon algorithms.PoseidonParameters `yaml:"poseidon"`

	// Domain tag set version; must match algorithms.DomainVersion
	DomainVersion int `yaml:"domain_version"`

	// Merkle parameters
	MerkleDepth   int            `yaml:"merkle_depth"`
	MerkleProfile merkle.Profile `yaml:"merkle_profile"`

	// Bounded-homomorphic hash parameters
	HomomorphicCapacity int `yaml:"homomorphic_capacity"`
	GeneratorCacheSize  int `yaml:"generator_cache_size"`

	// Ambient
	LogLevel    string `yaml:"log_level"`
	SnapshotDir string `yaml:"snapshot_dir"`
}

// DefaultConfig returns the parameters of the current network profile
func DefaultConfig() *Config {
	return &Config{
		Poseidon:            algorithms.DefaultPoseidonParameters(),
		DomainVersion:       algorithms.DomainVersion,
		MerkleDepth:         DefaultMerkleDepth,
		MerkleProfile:       merkle.ProfileBHP,
		HomomorphicCapacity: DefaultHomomorphicCapacity,
		GeneratorCacheSize:  algorithms.DefaultGeneratorCacheSize,
		LogLevel:            DefaultLogLevel,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Poseidon.Validate(); err != nil {
		return err
	}

	if c.DomainVersion != algorithms.DomainVersion {
		return fmt.Errorf("domain version %d is not supported, want %d: %w", c.DomainVersion, algorithms.DomainVersion, core.ErrInvalidConfig)
	}

	if c.MerkleDepth < merkle.MinDepth || c.MerkleDepth > merkle.MaxDepth {
		return fmt.Errorf("merkle depth must be in [%d, %d], got %d: %w", merkle.MinDepth, merkle.MaxDepth, c.MerkleDepth, core.ErrInvalidConfig)
	}

	if err := c.MerkleProfile.Valid(); err != nil {
		return err
	}

	if c.HomomorphicCapacity <= 0 {
		return fmt.Errorf("homomorphic capacity must be positive: %w", core.ErrInvalidConfig)
	}

	if c.GeneratorCacheSize < 2 {
		return fmt.Errorf("generator cache size must be at least 2, got %d: %w", c.GeneratorCacheSize, core.ErrInvalidConfig)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// WithPoseidon sets the Poseidon parameters
func (c *Config) WithPoseidon(params algorithms.PoseidonParameters) *Config {
	c.Poseidon = params
	return c
}

// WithMerkleDepth sets the default tree depth
func (c *Config) WithMerkleDepth(depth int) *Config {
	c.MerkleDepth = depth
	return c
}

// WithMerkleProfile sets the default tree profile
func (c *Config) WithMerkleProfile(profile merkle.Profile) *Config {
	c.MerkleProfile = profile
	return c
}

// WithHomomorphicCapacity sets the accumulator capacity
func (c *Config) WithHomomorphicCapacity(capacity int) *Config {
	c.HomomorphicCapacity = capacity
	return c
}

// WithGeneratorCacheSize sets the generator cache size
func (c *Config) WithGeneratorCacheSize(size int) *Config {
	c.GeneratorCacheSize = size
	return c
}

// WithLogLevel sets the log level
func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}

// WithSnapshotDir sets the snapshot directory; empty keeps snapshots in memory
func (c *Config) WithSnapshotDir(dir string) *Config {
	c.SnapshotDir = dir
	return c
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// LoadConfig reads a YAML file over the defaults and validates the result
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(raw)
}

// ParseConfig decodes YAML over the defaults and validates the result
func ParseConfig(raw []byte) (*Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse config: %v: %w", err, core.ErrInvalidConfig)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
