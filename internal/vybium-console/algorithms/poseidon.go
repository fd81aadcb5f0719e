package algorithms

import (
	"fmt"
	"math/big"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

const (
	// DefaultPoseidonAlpha is the S-box exponent
	DefaultPoseidonAlpha = 17
	// DefaultPoseidonFullRounds is RF
	DefaultPoseidonFullRounds = 8
	// DefaultPoseidonPartialRounds is RP
	DefaultPoseidonPartialRounds = 31
	// PoseidonCapacity is the number of capacity elements
	PoseidonCapacity = 1
)

// PoseidonParameters fixes the permutation for one rate
type PoseidonParameters struct {
	Alpha         uint64 `yaml:"alpha"`
	FullRounds    int    `yaml:"full_rounds"`
	PartialRounds int    `yaml:"partial_rounds"`
}

// DefaultPoseidonParameters returns the parameters used by every network profile
func DefaultPoseidonParameters() PoseidonParameters {
	return PoseidonParameters{
		Alpha:         DefaultPoseidonAlpha,
		FullRounds:    DefaultPoseidonFullRounds,
		PartialRounds: DefaultPoseidonPartialRounds,
	}
}

// Validate checks that the S-box is a permutation and the round counts are usable
func (p PoseidonParameters) Validate() error {
	if p.Alpha < 3 {
		return fmt.Errorf("poseidon alpha must be at least 3, got %d: %w", p.Alpha, core.ErrInvalidConfig)
	}
	pm1 := new(big.Int).Sub(core.FieldModulus(), big.NewInt(1))
	gcd := new(big.Int).GCD(nil, nil, new(big.Int).SetUint64(p.Alpha), pm1)
	if gcd.Cmp(big.NewInt(1)) != 0 {
		return fmt.Errorf("poseidon alpha %d is not coprime to p-1: %w", p.Alpha, core.ErrInvalidConfig)
	}
	if p.FullRounds <= 0 || p.FullRounds%2 != 0 {
		return fmt.Errorf("poseidon full rounds must be positive and even, got %d: %w", p.FullRounds, core.ErrInvalidConfig)
	}
	if p.PartialRounds <= 0 {
		return fmt.Errorf("poseidon partial rounds must be positive, got %d: %w", p.PartialRounds, core.ErrInvalidConfig)
	}
	return nil
}

// Poseidon is the sponge hash over Field with capacity one.
//
// Padding rule: the capacity element starts as the domain field element and
// the absorbed preimage is [rate, len(input), input...] followed by zeros up
// to a multiple of the rate. Outputs are read from the rate part of the state.
type Poseidon struct {
	rate   int
	width  int
	params PoseidonParameters
	ark    [][]core.Field
	mds    [][]core.Field
}

// NewPoseidon creates a Poseidon instance for the given rate
func NewPoseidon(rate int, params PoseidonParameters) (*Poseidon, error) {
	if rate < 1 {
		return nil, fmt.Errorf("poseidon rate must be positive, got %d: %w", rate, core.ErrInvalidConfig)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	width := rate + PoseidonCapacity

	mds, err := generateMDSMatrix(width)
	if err != nil {
		return nil, fmt.Errorf("failed to generate MDS matrix: %w", err)
	}

	return &Poseidon{
		rate:   rate,
		width:  width,
		params: params,
		ark:    generateRoundConstants(width, params),
		mds:    mds,
	}, nil
}

// Rate returns the number of elements absorbed per permutation
func (p *Poseidon) Rate() int {
	return p.rate
}

// Hash returns a single field element
func (p *Poseidon) Hash(domain Domain, input []core.Field) (core.Field, error) {
	out, err := p.HashMany(domain, input, 1)
	if err != nil {
		return core.Field{}, err
	}
	return out[0], nil
}

// HashMany returns n field elements
func (p *Poseidon) HashMany(domain Domain, input []core.Field, n int) ([]core.Field, error) {
	if n < 1 {
		return nil, fmt.Errorf("poseidon output length must be positive, got %d: %w", n, core.ErrInvalidInputLength)
	}
	sponge, err := p.NewSponge(domain)
	if err != nil {
		return nil, err
	}
	sponge.Absorb(p.preimage(input)...)
	return sponge.Squeeze(n), nil
}

// HashToScalar hashes to a field element and keeps its low ScalarDataBits bits
func (p *Poseidon) HashToScalar(domain Domain, input []core.Field) (core.Scalar, error) {
	h, err := p.Hash(domain, input)
	if err != nil {
		return core.Scalar{}, err
	}
	return core.ScalarFromFieldTruncated(h), nil
}

// HashToGroup multiplies the generator by HashToScalar
func (p *Poseidon) HashToGroup(domain Domain, input []core.Field) (core.Group, error) {
	s, err := p.HashToScalar(domain, input)
	if err != nil {
		return core.Group{}, err
	}
	return core.Generator().ScalarMul(s), nil
}

// preimage prefixes the rate and the input length and pads with zeros
func (p *Poseidon) preimage(input []core.Field) []core.Field {
	n := 2 + len(input)
	if rem := n % p.rate; rem != 0 {
		n += p.rate - rem
	}
	pre := make([]core.Field, n)
	pre[0] = core.FieldFromUint64(uint64(p.rate))
	pre[1] = core.FieldFromUint64(uint64(len(input)))
	copy(pre[2:], input)
	return pre
}

// permute applies the Poseidon permutation in place
func (p *Poseidon) permute(state []core.Field) {
	half := p.params.FullRounds / 2
	round := 0
	for i := 0; i < half; i++ {
		p.fullRound(state, round)
		round++
	}
	for i := 0; i < p.params.PartialRounds; i++ {
		p.partialRound(state, round)
		round++
	}
	for i := 0; i < half; i++ {
		p.fullRound(state, round)
		round++
	}
}

// fullRound adds round constants, applies the S-box to every element and mixes
func (p *Poseidon) fullRound(state []core.Field, round int) {
	for i := range state {
		state[i] = p.sbox(state[i].Add(p.ark[round][i]))
	}
	p.applyMDS(state)
}

// partialRound applies the S-box to the first element only
func (p *Poseidon) partialRound(state []core.Field, round int) {
	for i := range state {
		state[i] = state[i].Add(p.ark[round][i])
	}
	state[0] = p.sbox(state[0])
	p.applyMDS(state)
}

// sbox computes x^alpha; alpha is public
func (p *Poseidon) sbox(x core.Field) core.Field {
	r := core.FieldOne()
	for i := 63; i >= 0; i-- {
		r = r.Square()
		if (p.params.Alpha>>uint(i))&1 == 1 {
			r = r.Mul(x)
		}
	}
	return r
}

func (p *Poseidon) applyMDS(state []core.Field) {
	next := make([]core.Field, p.width)
	for i := 0; i < p.width; i++ {
		acc := core.FieldZero()
		for j := 0; j < p.width; j++ {
			acc = acc.Add(state[j].Mul(p.mds[i][j]))
		}
		next[i] = acc
	}
	copy(state, next)
}

// generateMDSMatrix builds the Cauchy matrix M[i][j] = 1/(x_i + y_j) with
// x_i = i+1 and y_j = width+j+1, which is MDS since all sums are distinct and non-zero
func generateMDSMatrix(width int) ([][]core.Field, error) {
	matrix := make([][]core.Field, width)
	for i := 0; i < width; i++ {
		matrix[i] = make([]core.Field, width)
		for j := 0; j < width; j++ {
			sum := core.FieldFromUint64(uint64(i + 1)).Add(core.FieldFromUint64(uint64(width + j + 1)))
			inv, err := sum.Inverse()
			if err != nil {
				return nil, err
			}
			matrix[i][j] = inv
		}
	}
	return matrix, nil
}

// generateRoundConstants draws width constants per round from the Grain LFSR
func generateRoundConstants(width int, params PoseidonParameters) [][]core.Field {
	lfsr := newGrainLFSR(width, params)
	total := params.FullRounds + params.PartialRounds
	constants := make([][]core.Field, total)
	for round := range constants {
		constants[round] = make([]core.Field, width)
		for i := range constants[round] {
			constants[round][i] = lfsr.nextField()
		}
	}
	return constants
}

// grainLFSR is the 80-bit self-shrinking generator used to derive Poseidon
// round constants
type grainLFSR struct {
	state [80]bool
}

func newGrainLFSR(width int, params PoseidonParameters) *grainLFSR {
	g := &grainLFSR{}
	pos := 0
	put := func(v uint64, n int) {
		for i := n - 1; i >= 0; i-- {
			g.state[pos] = (v>>uint(i))&1 == 1
			pos++
		}
	}
	put(1, 2)  // prime field
	put(0, 4)  // x^alpha S-box
	put(uint64(core.FieldBits), 12)
	put(uint64(width), 12)
	put(uint64(params.FullRounds), 10)
	put(uint64(params.PartialRounds), 10)
	for pos < 80 {
		g.state[pos] = true
		pos++
	}
	for i := 0; i < 160; i++ {
		g.clock()
	}
	return g
}

// clock shifts the register: b[i+80] = b[i+62] ^ b[i+51] ^ b[i+38] ^ b[i+23] ^ b[i+13] ^ b[i]
func (g *grainLFSR) clock() bool {
	bit := g.state[62] != g.state[51] != g.state[38] != g.state[23] != g.state[13] != g.state[0]
	copy(g.state[:79], g.state[1:])
	g.state[79] = bit
	return bit
}

// nextBit outputs the second bit of each pair whose first bit is set
func (g *grainLFSR) nextBit() bool {
	for {
		first := g.clock()
		second := g.clock()
		if first {
			return second
		}
	}
}

// nextField samples FieldBits bits, most significant first, and rejects
// values not below the modulus
func (g *grainLFSR) nextField() core.Field {
	p := core.FieldModulus()
	for {
		v := new(big.Int)
		for i := 0; i < core.FieldBits; i++ {
			v.Lsh(v, 1)
			if g.nextBit() {
				v.SetBit(v, 0, 1)
			}
		}
		if v.Cmp(p) < 0 {
			return core.FieldFromBig(v)
		}
	}
}

// Sponge is an incremental Poseidon sponge. Absorb and Squeeze may be
// interleaved; switching from squeezing back to absorbing permutes first.
// A Sponge is not safe for concurrent use.
type Sponge struct {
	p         *Poseidon
	state     []core.Field
	pos       int
	squeezing bool
}

// NewSponge returns a sponge whose capacity holds the domain element
func (p *Poseidon) NewSponge(domain Domain) (*Sponge, error) {
	if err := domain.Valid(); err != nil {
		return nil, err
	}
	state := make([]core.Field, p.width)
	state[0] = domain.Field()
	return &Sponge{p: p, state: state}, nil
}

// Absorb adds elements into the rate part, permuting whenever it fills
func (s *Sponge) Absorb(inputs ...core.Field) {
	if s.squeezing {
		s.p.permute(s.state)
		s.squeezing = false
		s.pos = 0
	}
	for _, in := range inputs {
		s.state[PoseidonCapacity+s.pos] = s.state[PoseidonCapacity+s.pos].Add(in)
		s.pos++
		if s.pos == s.p.rate {
			s.p.permute(s.state)
			s.pos = 0
		}
	}
}

// Squeeze reads n elements from the rate part
func (s *Sponge) Squeeze(n int) []core.Field {
	if !s.squeezing {
		if s.pos != 0 {
			s.p.permute(s.state)
		}
		s.squeezing = true
		s.pos = 0
	}
	out := make([]core.Field, n)
	for i := range out {
		if s.pos == s.p.rate {
			s.p.permute(s.state)
			s.pos = 0
		}
		out[i] = s.state[PoseidonCapacity+s.pos]
		s.pos++
	}
	return out
}
