// Package merkle implements a fixed-depth binary Merkle tree with padded
// empty slots, incremental updates and detached inclusion paths.
package merkle

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

const (
	// MinDepth is the smallest supported tree depth
	MinDepth = 1
	// MaxDepth is the largest supported tree depth
	MaxDepth = 64
	// Arity is the number of children of every internal node
	Arity = 2
)

// LeafHasher maps a leaf value to its digest
type LeafHasher[L any, D comparable] interface {
	HashLeaf(leaf L) (D, error)
}

// PathHasher combines two child digests and supplies the padding digest of an
// empty leaf slot
type PathHasher[D comparable] interface {
	HashChildren(left, right D) (D, error)
	HashEmpty() D
}

// FieldConverter is implemented by path hashers whose digests map to a field
// element; it is required by the leaf-set accumulator
type FieldConverter[D comparable] interface {
	ToField(digest D) core.Field
}

// Tree is a binary Merkle tree of fixed depth. Leaves occupy the first
// NumLeaves slots; the remaining slots hold the padding digest. Only the
// populated part of each level is stored, empty subtrees are shared.
//
// Tree follows a single-writer, multiple-reader discipline enforced by an
// RWMutex: Root, Prove and Leaf may run concurrently, Update and Append are
// exclusive.
type Tree[L any, D comparable] struct {
	mu         sync.RWMutex
	leafHasher LeafHasher[L, D]
	pathHasher PathHasher[D]
	depth      int
	empty      []D
	levels     [][]D
	root       D

	logger *zap.Logger
	acc    *accumulator[D]
}

// Option configures a tree at construction
type Option func(*options)

type options struct {
	logger      *zap.Logger
	accumulator *algorithms.HomomorphicHash
}

// WithLogger sets the logger for build and update events
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAccumulator maintains a bounded-homomorphic digest of the leaf sequence
// next to the root. The hash capacity bounds the number of leaves.
func WithAccumulator(h *algorithms.HomomorphicHash) Option {
	return func(o *options) {
		o.accumulator = h
	}
}

// New builds a tree of the given depth over leaves
func New[L any, D comparable](leafHasher LeafHasher[L, D], pathHasher PathHasher[D], depth int, leaves []L, opts ...Option) (*Tree[L, D], error) {
	digests := make([]D, len(leaves))
	if err := checkCapacity(depth, uint64(len(leaves))); err != nil {
		return nil, err
	}
	for i, leaf := range leaves {
		d, err := leafHasher.HashLeaf(leaf)
		if err != nil {
			return nil, fmt.Errorf("hash leaf %d: %w", i, err)
		}
		digests[i] = d
	}
	return NewFromDigests(leafHasher, pathHasher, depth, digests, opts...)
}

// NewFromDigests builds a tree from already hashed leaves
func NewFromDigests[L any, D comparable](leafHasher LeafHasher[L, D], pathHasher PathHasher[D], depth int, digests []D, opts ...Option) (*Tree[L, D], error) {
	if err := checkCapacity(depth, uint64(len(digests))); err != nil {
		return nil, err
	}
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Tree[L, D]{
		leafHasher: leafHasher,
		pathHasher: pathHasher,
		depth:      depth,
		logger:     o.logger,
	}
	if err := t.computeEmpty(); err != nil {
		return nil, err
	}

	t.levels = make([][]D, depth+1)
	sp, err := t.computeSpine(0, digests)
	if err != nil {
		return nil, err
	}
	t.commitSpine(sp)

	if o.accumulator != nil {
		acc, err := newAccumulator(o.accumulator, pathHasher, digests)
		if err != nil {
			return nil, err
		}
		t.acc = acc
	}

	t.logger.Debug("merkle tree built",
		zap.Int("depth", depth),
		zap.Int("leaves", len(digests)),
	)
	return t, nil
}

// checkCapacity validates the depth and that n leaves fit into 2^depth slots
func checkCapacity(depth int, n uint64) error {
	if depth < MinDepth || depth > MaxDepth {
		return fmt.Errorf("merkle depth must be in [%d, %d], got %d: %w", MinDepth, MaxDepth, depth, core.ErrInvalidConfig)
	}
	if depth < 64 && n > uint64(1)<<uint(depth) {
		return fmt.Errorf("%d leaves exceed capacity 2^%d: %w", n, depth, core.ErrTooManyLeaves)
	}
	return nil
}

// computeEmpty fills empty[h], the root of an all-padding subtree of height h
func (t *Tree[L, D]) computeEmpty() error {
	t.empty = make([]D, t.depth+1)
	t.empty[0] = t.pathHasher.HashEmpty()
	for h := 1; h <= t.depth; h++ {
		d, err := t.pathHasher.HashChildren(t.empty[h-1], t.empty[h-1])
		if err != nil {
			return fmt.Errorf("hash empty subtree at height %d: %w", h, err)
		}
		t.empty[h] = d
	}
	return nil
}

// node returns the digest at (height, index), falling back to padding
func (t *Tree[L, D]) node(height int, index uint64) D {
	if index < uint64(len(t.levels[height])) {
		return t.levels[height][index]
	}
	return t.empty[height]
}

// spine holds recomputed digests for indices first[h] onwards at every height
type spine[D comparable] struct {
	first []uint64
	nodes [][]D
}

func (t *Tree[L, D]) spineNode(sp *spine[D], height int, index uint64) D {
	if index < sp.first[height] {
		return t.levels[height][index]
	}
	if k := index - sp.first[height]; k < uint64(len(sp.nodes[height])) {
		return sp.nodes[height][k]
	}
	return t.empty[height]
}

// computeSpine hashes every node above the leaves appended at start without
// touching the tree, so a failure leaves it unchanged
func (t *Tree[L, D]) computeSpine(start uint64, appended []D) (*spine[D], error) {
	sp := &spine[D]{
		first: make([]uint64, t.depth+1),
		nodes: make([][]D, t.depth+1),
	}
	sp.first[0] = start
	sp.nodes[0] = appended
	for h := 0; h < t.depth; h++ {
		count := sp.first[h] + uint64(len(sp.nodes[h]))
		parents := (count + 1) / 2
		first := sp.first[h] >> 1
		out := make([]D, parents-first)
		for i := first; i < parents; i++ {
			d, err := t.pathHasher.HashChildren(t.spineNode(sp, h, 2*i), t.spineNode(sp, h, 2*i+1))
			if err != nil {
				return nil, fmt.Errorf("hash node at height %d index %d: %w", h+1, i, err)
			}
			out[i-first] = d
		}
		sp.first[h+1] = first
		sp.nodes[h+1] = out
	}
	return sp, nil
}

func (t *Tree[L, D]) commitSpine(sp *spine[D]) {
	for h := range t.levels {
		t.levels[h] = append(t.levels[h][:sp.first[h]], sp.nodes[h]...)
	}
	if len(t.levels[t.depth]) > 0 {
		t.root = t.levels[t.depth][0]
	} else {
		t.root = t.empty[t.depth]
	}
}

// Root returns the root digest
func (t *Tree[L, D]) Root() D {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.root
}

// Depth returns the tree depth
func (t *Tree[L, D]) Depth() int {
	return t.depth
}

// NumLeaves returns the number of populated leaf slots
func (t *Tree[L, D]) NumLeaves() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return uint64(len(t.levels[0]))
}

// Capacity returns 2^depth, saturated at the largest uint64
func (t *Tree[L, D]) Capacity() uint64 {
	if t.depth >= 64 {
		return ^uint64(0)
	}
	return uint64(1) << uint(t.depth)
}

// PaddingDigest returns the digest stored in empty leaf slots
func (t *Tree[L, D]) PaddingDigest() D {
	return t.empty[0]
}

// Leaf returns the digest of a populated leaf
func (t *Tree[L, D]) Leaf(index uint64) (D, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index >= uint64(len(t.levels[0])) {
		var zero D
		return zero, fmt.Errorf("leaf %d of %d: %w", index, len(t.levels[0]), core.ErrIndexOutOfRange)
	}
	return t.levels[0][index], nil
}

// LeafDigests returns a copy of the populated leaf digests
func (t *Tree[L, D]) LeafDigests() []D {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]D(nil), t.levels[0]...)
}

// Prove returns the inclusion path of a populated leaf
func (t *Tree[L, D]) Prove(index uint64) (*Path[D], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index >= uint64(len(t.levels[0])) {
		return nil, fmt.Errorf("leaf %d of %d: %w", index, len(t.levels[0]), core.ErrIndexOutOfRange)
	}
	siblings := make([]D, t.depth)
	i := index
	for h := 0; h < t.depth; h++ {
		siblings[h] = t.node(h, i^1)
		i >>= 1
	}
	return &Path[D]{LeafIndex: index, Siblings: siblings}, nil
}

// Update replaces a populated leaf and returns the new root
func (t *Tree[L, D]) Update(index uint64, leaf L) (D, error) {
	d, err := t.leafHasher.HashLeaf(leaf)
	if err != nil {
		var zero D
		return zero, fmt.Errorf("hash leaf %d: %w", index, err)
	}
	return t.UpdateDigest(index, d)
}

// UpdateDigest replaces a populated leaf digest in O(depth)
func (t *Tree[L, D]) UpdateDigest(index uint64, digest D) (D, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero D
	if index >= uint64(len(t.levels[0])) {
		return zero, fmt.Errorf("leaf %d of %d: %w", index, len(t.levels[0]), core.ErrIndexOutOfRange)
	}

	path := make([]D, t.depth)
	cur := digest
	i := index
	for h := 0; h < t.depth; h++ {
		sibling := t.node(h, i^1)
		var err error
		if i&1 == 0 {
			cur, err = t.pathHasher.HashChildren(cur, sibling)
		} else {
			cur, err = t.pathHasher.HashChildren(sibling, cur)
		}
		if err != nil {
			return zero, fmt.Errorf("hash node at height %d index %d: %w", h+1, i>>1, err)
		}
		path[h] = cur
		i >>= 1
	}

	var accDigest core.Group
	if t.acc != nil {
		d, err := t.acc.replace(index, t.levels[0][index], digest)
		if err != nil {
			return zero, err
		}
		accDigest = d
	}

	t.levels[0][index] = digest
	i = index
	for h := 0; h < t.depth; h++ {
		i >>= 1
		t.levels[h+1][i] = path[h]
	}
	t.root = t.levels[t.depth][0]
	if t.acc != nil {
		t.acc.digest = accDigest
	}

	t.logger.Debug("merkle leaf updated", zap.Uint64("index", index))
	return t.root, nil
}

// Append adds leaves after the last populated slot and returns the new root
func (t *Tree[L, D]) Append(leaves ...L) (D, error) {
	digests := make([]D, len(leaves))
	for i, leaf := range leaves {
		d, err := t.leafHasher.HashLeaf(leaf)
		if err != nil {
			var zero D
			return zero, fmt.Errorf("hash appended leaf %d: %w", i, err)
		}
		digests[i] = d
	}
	return t.AppendDigests(digests...)
}

// AppendDigests adds already hashed leaves; only the affected spine is rehashed
func (t *Tree[L, D]) AppendDigests(digests ...D) (D, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var zero D

	start := uint64(len(t.levels[0]))
	total := start + uint64(len(digests))
	if total < start {
		return zero, fmt.Errorf("leaf count overflows: %w", core.ErrTooManyLeaves)
	}
	if err := checkCapacity(t.depth, total); err != nil {
		return zero, err
	}
	if len(digests) == 0 {
		return t.root, nil
	}

	sp, err := t.computeSpine(start, append([]D(nil), digests...))
	if err != nil {
		return zero, err
	}

	var accDigest core.Group
	if t.acc != nil {
		accDigest, err = t.acc.push(start, digests)
		if err != nil {
			return zero, err
		}
	}

	t.commitSpine(sp)
	if t.acc != nil {
		t.acc.digest = accDigest
	}

	t.logger.Debug("merkle leaves appended",
		zap.Uint64("first", start),
		zap.Int("count", len(digests)),
	)
	return t.root, nil
}

// Accumulator returns the compressed leaf-set digest when the tree was built
// WithAccumulator
func (t *Tree[L, D]) Accumulator() (core.Field, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.acc == nil {
		return core.Field{}, false
	}
	return t.acc.hash.Compress(t.acc.digest), true
}

// VerifyPath checks a path against root using this tree's hashers
func (t *Tree[L, D]) VerifyPath(path *Path[D], root D, leaf L) bool {
	return VerifyLeaf(path, t.leafHasher, t.pathHasher, root, leaf)
}

// accumulator tracks Σ term(position, leaf digest) under the homomorphic hash
type accumulator[D comparable] struct {
	hash    *algorithms.HomomorphicHash
	convert FieldConverter[D]
	digest  core.Group
}

func newAccumulator[D comparable](h *algorithms.HomomorphicHash, pathHasher PathHasher[D], digests []D) (*accumulator[D], error) {
	convert, ok := any(pathHasher).(FieldConverter[D])
	if !ok {
		return nil, fmt.Errorf("path hasher %T cannot feed an accumulator: %w", pathHasher, core.ErrInvalidConfig)
	}
	if len(digests) > h.Capacity() {
		return nil, fmt.Errorf("%d leaves exceed accumulator capacity %d: %w", len(digests), h.Capacity(), core.ErrTooManyLeaves)
	}
	var digest core.Group
	var err error
	if len(digests) == 0 {
		digest, err = h.Empty(algorithms.DomainMerkleLeaf)
	} else {
		values := make([]core.Field, len(digests))
		for i, d := range digests {
			values[i] = convert.ToField(d)
		}
		digest, err = h.Hash(algorithms.DomainMerkleLeaf, values)
	}
	if err != nil {
		return nil, fmt.Errorf("accumulate leaves: %w", err)
	}
	return &accumulator[D]{
		hash:    h,
		convert: convert,
		digest:  digest,
	}, nil
}

// replace returns the digest with one populated position swapped
func (a *accumulator[D]) replace(position uint64, old, next D) (core.Group, error) {
	if position >= uint64(a.hash.Capacity()) {
		return core.Group{}, fmt.Errorf("leaf %d exceeds accumulator capacity %d: %w", position, a.hash.Capacity(), core.ErrTooManyLeaves)
	}
	return a.hash.Update(algorithms.DomainMerkleLeaf, a.digest, int(position), a.convert.ToField(old), a.convert.ToField(next))
}

// push returns the digest with previously empty positions from start filled
func (a *accumulator[D]) push(start uint64, next []D) (core.Group, error) {
	if start+uint64(len(next)) > uint64(a.hash.Capacity()) {
		return core.Group{}, fmt.Errorf("%d leaves exceed accumulator capacity %d: %w", start+uint64(len(next)), a.hash.Capacity(), core.ErrTooManyLeaves)
	}
	digest := a.digest
	for i, d := range next {
		var err error
		digest, err = a.hash.Update(algorithms.DomainMerkleLeaf, digest, int(start)+i, core.FieldZero(), a.convert.ToField(d))
		if err != nil {
			return core.Group{}, err
		}
	}
	return digest, nil
}
