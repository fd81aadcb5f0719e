package algorithms

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

const (
	// homomorphicLowBits is the size of the low limb of each value
	homomorphicLowBits = 126
	// DefaultGeneratorCacheSize bounds the homomorphic generator cache
	DefaultGeneratorCacheSize = 4096
)

type generatorKey struct {
	domain Domain
	index  int
}

// HomomorphicHash is a bounded-homomorphic hash over at most Capacity field
// elements: H(v) = D + Σ lo(vⱼ)·G₂ⱼ + hi(vⱼ)·G₂ⱼ₊₁, where D is the per-domain
// offset generator. Each value is split into a 126-bit and a 127-bit limb so
// the map is injective on limbs. Positions past len(v) count as zero, so
// trailing zeros do not change the digest. Changing one position updates the
// digest in O(1) through Update.
//
// Generators are derived per domain on first use and kept in an LRU cache.
// HomomorphicHash is safe for concurrent use.
type HomomorphicHash struct {
	capacity   int
	generators *lru.Cache[generatorKey, core.Group]
	offsets    map[Domain]core.Group
}

// NewHomomorphicHash creates a hash over at most capacity values
func NewHomomorphicHash(capacity, cacheSize int) (*HomomorphicHash, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("homomorphic capacity must be positive, got %d: %w", capacity, core.ErrInvalidConfig)
	}
	if cacheSize < 2 {
		return nil, fmt.Errorf("generator cache size must be at least 2, got %d: %w", cacheSize, core.ErrInvalidConfig)
	}
	cache, err := lru.New[generatorKey, core.Group](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator cache: %w", err)
	}
	h := &HomomorphicHash{
		capacity:   capacity,
		generators: cache,
		offsets:    make(map[Domain]core.Group, len(domainNames)),
	}
	for _, d := range Domains() {
		g, err := core.HashToGroup([]byte(d.Label() + "/homomorphic/offset"))
		if err != nil {
			return nil, fmt.Errorf("homomorphic offset for %s: %w", d, err)
		}
		h.offsets[d] = g
	}
	return h, nil
}

// Capacity returns the maximum number of values
func (h *HomomorphicHash) Capacity() int {
	return h.capacity
}

// Empty returns the digest of the all-zero input under domain
func (h *HomomorphicHash) Empty(domain Domain) (core.Group, error) {
	if err := domain.Valid(); err != nil {
		return core.Group{}, err
	}
	return h.offsets[domain], nil
}

// Hash computes the digest of values; positions past len(values) are zero
func (h *HomomorphicHash) Hash(domain Domain, values []core.Field) (core.Group, error) {
	if err := domain.Valid(); err != nil {
		return core.Group{}, err
	}
	if len(values) > h.capacity {
		return core.Group{}, fmt.Errorf("homomorphic hash accepts at most %d values, got %d: %w", h.capacity, len(values), core.ErrInvalidInputLength)
	}
	acc := h.offsets[domain]
	for i, v := range values {
		term, err := h.term(domain, i, v)
		if err != nil {
			return core.Group{}, err
		}
		acc = acc.Add(term)
	}
	return acc, nil
}

// Update replaces the value at position without touching any other position.
// oldValue must be the value that digest currently commits to at position.
func (h *HomomorphicHash) Update(domain Domain, digest core.Group, position int, oldValue, newValue core.Field) (core.Group, error) {
	if err := domain.Valid(); err != nil {
		return core.Group{}, err
	}
	if position < 0 || position >= h.capacity {
		return core.Group{}, fmt.Errorf("position %d outside capacity %d: %w", position, h.capacity, core.ErrIndexOutOfRange)
	}
	oldTerm, err := h.term(domain, position, oldValue)
	if err != nil {
		return core.Group{}, err
	}
	newTerm, err := h.term(domain, position, newValue)
	if err != nil {
		return core.Group{}, err
	}
	return digest.Sub(oldTerm).Add(newTerm), nil
}

// Compress returns the x-coordinate of a digest
func (h *HomomorphicHash) Compress(digest core.Group) core.Field {
	return digest.X()
}

func (h *HomomorphicHash) term(domain Domain, position int, v core.Field) (core.Group, error) {
	bits := v.ToBitsLE()
	lo, err := core.ScalarFromBitsLE(bits[:homomorphicLowBits])
	if err != nil {
		return core.Group{}, err
	}
	hi, err := core.ScalarFromBitsLE(bits[homomorphicLowBits:])
	if err != nil {
		return core.Group{}, err
	}
	gLo, err := h.generator(domain, 2*position)
	if err != nil {
		return core.Group{}, err
	}
	gHi, err := h.generator(domain, 2*position+1)
	if err != nil {
		return core.Group{}, err
	}
	return gLo.ScalarMul(lo).Add(gHi.ScalarMul(hi)), nil
}

func (h *HomomorphicHash) generator(domain Domain, index int) (core.Group, error) {
	key := generatorKey{domain: domain, index: index}
	if g, ok := h.generators.Get(key); ok {
		return g, nil
	}
	g, err := core.HashToGroup([]byte(fmt.Sprintf("%s/homomorphic/%d", domain.Label(), index)))
	if err != nil {
		return core.Group{}, fmt.Errorf("homomorphic generator %d: %w", index, err)
	}
	h.generators.Add(key, g)
	return g, nil
}
