package algorithms

import (
	"encoding/binary"
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

const (
	// bhpChunkBits is the size of one signed digit
	bhpChunkBits = 3
	// bhpPrefixBits is the domain tag plus the input length
	bhpPrefixBits = 128
)

// BHP is the Bowe–Hopwood–Pedersen hash with a fixed number of windows and
// chunks per window. Every 3-bit chunk encodes the signed digit
// (1 + b0 + 2·b1)·(-1)^b2 weighted by 16^j inside its window, and window w
// multiplies its own generator.
//
// Preimage: 64-bit LE domain tag ‖ 64-bit LE input length ‖ input bits,
// zero-padded to windows·chunks·3 bits. Inputs that do not fit fail with
// ErrInvalidInputLength.
type BHP struct {
	name       string
	windows    int
	chunks     int
	generators []core.Group
	powers     []core.Scalar
}

// NewBHP creates a BHP instance with its own generators
func NewBHP(name string, windows, chunks int) (*BHP, error) {
	if windows < 1 || chunks < 1 || 4*chunks >= core.ScalarDataBits {
		return nil, fmt.Errorf("bhp %s: invalid shape %dx%d: %w", name, windows, chunks, core.ErrInvalidConfig)
	}
	h := &BHP{
		name:       name,
		windows:    windows,
		chunks:     chunks,
		generators: make([]core.Group, windows),
		powers:     make([]core.Scalar, chunks),
	}
	for w := range h.generators {
		g, err := core.HashToGroup([]byte(fmt.Sprintf("vybium.console.v%d/bhp/%s/%d", DomainVersion, name, w)))
		if err != nil {
			return nil, fmt.Errorf("bhp %s window %d: %w", name, w, err)
		}
		h.generators[w] = g
	}
	sixteen := core.ScalarFromUint64(16)
	pow := core.ScalarOne()
	for j := range h.powers {
		h.powers[j] = pow
		pow = pow.Mul(sixteen)
	}
	return h, nil
}

// NewBHP256 creates BHP with 3 windows of 57 chunks
func NewBHP256() (*BHP, error) { return NewBHP("BHP256", 3, 57) }

// NewBHP512 creates BHP with 6 windows of 43 chunks
func NewBHP512() (*BHP, error) { return NewBHP("BHP512", 6, 43) }

// NewBHP768 creates BHP with 15 windows of 23 chunks
func NewBHP768() (*BHP, error) { return NewBHP("BHP768", 15, 23) }

// NewBHP1024 creates BHP with 8 windows of 54 chunks
func NewBHP1024() (*BHP, error) { return NewBHP("BHP1024", 8, 54) }

// Name returns the instance name
func (h *BHP) Name() string {
	return h.name
}

// Capacity returns the padded preimage size in bits
func (h *BHP) Capacity() int {
	return h.windows * h.chunks * bhpChunkBits
}

// MaxInputBits returns the largest accepted input
func (h *BHP) MaxInputBits() int {
	return h.Capacity() - bhpPrefixBits
}

// Hash returns the x-coordinate of HashUncompressed
func (h *BHP) Hash(domain Domain, input []bool) (core.Field, error) {
	p, err := h.HashUncompressed(domain, input)
	if err != nil {
		return core.Field{}, err
	}
	return p.X(), nil
}

// HashUncompressed returns the curve point
func (h *BHP) HashUncompressed(domain Domain, input []bool) (core.Group, error) {
	if err := domain.Valid(); err != nil {
		return core.Group{}, err
	}
	if len(input) > h.MaxInputBits() {
		return core.Group{}, fmt.Errorf("%s accepts at most %d bits, got %d: %w", h.name, h.MaxInputBits(), len(input), core.ErrInvalidInputLength)
	}
	pre := h.preimage(domain, input)

	acc := core.Identity()
	windowBits := h.chunks * bhpChunkBits
	for w := 0; w < h.windows; w++ {
		s := h.windowScalar(pre[w*windowBits : (w+1)*windowBits])
		acc = acc.Add(h.generators[w].ScalarMul(s))
	}
	return acc, nil
}

// windowScalar sums the signed digits of one window
func (h *BHP) windowScalar(bits []bool) core.Scalar {
	acc := core.ScalarZero()
	for j := 0; j < h.chunks; j++ {
		b0 := boolBit(bits[3*j])
		b1 := boolBit(bits[3*j+1])
		b2 := boolBit(bits[3*j+2])
		term := core.ScalarFromUint64(1 + b0 + 2*b1).Mul(h.powers[j])
		acc = acc.Add(core.SelectScalar(b2, term, term.Neg()))
	}
	return acc
}

func (h *BHP) preimage(domain Domain, input []bool) []bool {
	pre := make([]bool, h.Capacity())
	var prefix [16]byte
	binary.LittleEndian.PutUint64(prefix[:8], domain.Tag64())
	binary.LittleEndian.PutUint64(prefix[8:], uint64(len(input)))
	for i := 0; i < bhpPrefixBits; i++ {
		pre[i] = (prefix[i/8]>>(i%8))&1 == 1
	}
	copy(pre[bhpPrefixBits:], input)
	return pre
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
