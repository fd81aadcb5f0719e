package algorithms

import (
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// Pedersen hashes up to N bits as Σ bᵢ·Gᵢ + D, where D is the per-domain
// offset generator. Inputs shorter than N are zero-extended, so the digest
// does not commit to the input length: [] and [0, 0] hash alike, and so do
// any two inputs that differ only in trailing zeros. Callers that need
// length binding encode the length in the input or use BHP, which hashes a
// length prefix.
type Pedersen struct {
	name       string
	generators []core.Group
	offsets    map[Domain]core.Group
}

// NewPedersen creates a Pedersen hash over numBits input bits
func NewPedersen(numBits int) (*Pedersen, error) {
	if numBits < 1 {
		return nil, fmt.Errorf("pedersen input size must be positive, got %d: %w", numBits, core.ErrInvalidConfig)
	}
	name := fmt.Sprintf("PED%d", numBits)
	h := &Pedersen{
		name:       name,
		generators: make([]core.Group, numBits),
		offsets:    make(map[Domain]core.Group, len(domainNames)),
	}
	for i := range h.generators {
		g, err := core.HashToGroup([]byte(fmt.Sprintf("vybium.console.v%d/pedersen/%s/%d", DomainVersion, name, i)))
		if err != nil {
			return nil, fmt.Errorf("%s generator %d: %w", name, i, err)
		}
		h.generators[i] = g
	}
	for _, d := range Domains() {
		g, err := core.HashToGroup([]byte(fmt.Sprintf("%s/pedersen/%s/offset", d.Label(), name)))
		if err != nil {
			return nil, fmt.Errorf("%s offset for %s: %w", name, d, err)
		}
		h.offsets[d] = g
	}
	return h, nil
}

// NewPedersen64 creates Pedersen over 64 bits
func NewPedersen64() (*Pedersen, error) { return NewPedersen(64) }

// NewPedersen128 creates Pedersen over 128 bits
func NewPedersen128() (*Pedersen, error) { return NewPedersen(128) }

// Name returns the instance name
func (h *Pedersen) Name() string {
	return h.name
}

// MaxInputBits returns N
func (h *Pedersen) MaxInputBits() int {
	return len(h.generators)
}

// Hash returns the x-coordinate of HashUncompressed
func (h *Pedersen) Hash(domain Domain, input []bool) (core.Field, error) {
	p, err := h.HashUncompressed(domain, input)
	if err != nil {
		return core.Field{}, err
	}
	return p.X(), nil
}

// HashUncompressed returns the curve point. Every generator is added, masked
// to the identity when its bit is clear.
func (h *Pedersen) HashUncompressed(domain Domain, input []bool) (core.Group, error) {
	if err := domain.Valid(); err != nil {
		return core.Group{}, err
	}
	if len(input) > len(h.generators) {
		return core.Group{}, fmt.Errorf("%s accepts at most %d bits, got %d: %w", h.name, len(h.generators), len(input), core.ErrInvalidInputLength)
	}
	acc := h.offsets[domain]
	identity := core.Identity()
	for i, g := range h.generators {
		var bit uint64
		if i < len(input) {
			bit = boolBit(input[i])
		}
		acc = acc.Add(core.SelectGroup(bit, identity, g))
	}
	return acc, nil
}
