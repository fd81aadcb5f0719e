package vybiumconsole

import (
	"context"
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"

	"github.com/vybium/vybium-console/internal/vybium-console/collections/merkle"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
	"github.com/vybium/vybium-console/internal/vybium-console/storage"
)

type treeHashers struct {
	bhpLeaf    *merkle.BHPLeafHasher
	bhpPath    *merkle.BHPPathHasher
	psdLeaf    *merkle.PoseidonLeafHasher
	psdPath    *merkle.PoseidonPathHasher
	poseidon2  *merkle.Poseidon2Hasher
	goldilocks *merkle.GoldilocksHasher
}

func newTreeHashers(c *Console) (*treeHashers, error) {
	bhpPath, err := merkle.NewBHPPathHasher(c.bhp512, c.bhp256)
	if err != nil {
		return nil, err
	}
	psdPath, err := merkle.NewPoseidonPathHasher(c.psd2)
	if err != nil {
		return nil, err
	}
	p2, err := merkle.NewPoseidon2Hasher()
	if err != nil {
		return nil, err
	}
	return &treeHashers{
		bhpLeaf:    merkle.NewBHPLeafHasher(c.bhp1024),
		bhpPath:    bhpPath,
		psdLeaf:    merkle.NewPoseidonLeafHasher(c.psd4),
		psdPath:    psdPath,
		poseidon2:  p2,
		goldilocks: merkle.NewGoldilocksHasher(),
	}, nil
}

// TreeOption configures a tree built by the console
type TreeOption func(*treeOptions)

type treeOptions struct {
	accumulate bool
}

// WithAccumulator maintains a bounded-homomorphic digest of the leaf
// sequence next to the root
func WithAccumulator() TreeOption {
	return func(o *treeOptions) {
		o.accumulate = true
	}
}

func (c *Console) treeOptions(opts []TreeOption) []merkle.Option {
	var o treeOptions
	for _, opt := range opts {
		opt(&o)
	}
	out := []merkle.Option{merkle.WithLogger(c.logger)}
	if o.accumulate {
		out = append(out, merkle.WithAccumulator(c.homomorphic))
	}
	return out
}

func (c *Console) depth(depth int) int {
	if depth == 0 {
		return c.config.MerkleDepth
	}
	return depth
}

// MerkleTreeBHP builds a BHP tree; depth 0 selects the configured depth
func (c *Console) MerkleTreeBHP(depth int, leaves [][]bool, opts ...TreeOption) (*BHPTree, error) {
	return merkle.New[[]bool, Field](c.trees.bhpLeaf, c.trees.bhpPath, c.depth(depth), leaves, c.treeOptions(opts)...)
}

// MerkleTreePSD builds a Poseidon tree; depth 0 selects the configured depth
func (c *Console) MerkleTreePSD(depth int, leaves [][]Field, opts ...TreeOption) (*PSDTree, error) {
	return merkle.New[[]Field, Field](c.trees.psdLeaf, c.trees.psdPath, c.depth(depth), leaves, c.treeOptions(opts)...)
}

// MerkleTreePoseidon2 builds a Poseidon2 tree; depth 0 selects the configured depth
func (c *Console) MerkleTreePoseidon2(depth int, leaves [][]Field, opts ...TreeOption) (*PSDTree, error) {
	h := c.trees.poseidon2
	return merkle.New[[]Field, Field](h, h, c.depth(depth), leaves, c.treeOptions(opts)...)
}

// MerkleTreeGoldilocks builds a Tip5 tree; depth 0 selects the configured depth
func (c *Console) MerkleTreeGoldilocks(depth int, leaves [][]field.Element, opts ...TreeOption) (*GoldilocksTree, error) {
	h := c.trees.goldilocks
	return merkle.New[[]field.Element, hash.Digest](h, h, c.depth(depth), leaves, c.treeOptions(opts)...)
}

// VerifyMerklePathBHP checks a BHP path against root
func (c *Console) VerifyMerklePathBHP(path *MerklePath, root Field, leaf []bool) bool {
	return merkle.VerifyLeaf[[]bool, Field](path, c.trees.bhpLeaf, c.trees.bhpPath, root, leaf)
}

// VerifyMerklePathPSD checks a Poseidon path against root
func (c *Console) VerifyMerklePathPSD(path *MerklePath, root Field, leaf []Field) bool {
	return merkle.VerifyLeaf[[]Field, Field](path, c.trees.psdLeaf, c.trees.psdPath, root, leaf)
}

// VerifyMerklePathPoseidon2 checks a Poseidon2 path against root
func (c *Console) VerifyMerklePathPoseidon2(path *MerklePath, root Field, leaf []Field) bool {
	h := c.trees.poseidon2
	return merkle.VerifyLeaf[[]Field, Field](path, h, h, root, leaf)
}

// VerifyMerklePathGoldilocks checks a Tip5 path against root
func (c *Console) VerifyMerklePathGoldilocks(path *GoldilocksPath, root hash.Digest, leaf []field.Element) bool {
	h := c.trees.goldilocks
	return merkle.VerifyLeaf[[]field.Element, hash.Digest](path, h, h, root, leaf)
}

// PaddingDigest returns the published digest of an empty leaf slot for a
// field-digest profile
func (c *Console) PaddingDigest(profile MerkleProfile) (Field, error) {
	switch profile {
	case ProfileBHP:
		return c.trees.bhpPath.HashEmpty(), nil
	case ProfilePoseidon:
		return c.trees.psdPath.HashEmpty(), nil
	case ProfilePoseidon2:
		return c.trees.poseidon2.HashEmpty(), nil
	default:
		return Field{}, fmt.Errorf("profile %q has no field padding digest: %w", string(profile), core.ErrInvalidConfig)
	}
}

// MarshalMerklePath encodes a field-digest path
func MarshalMerklePath(path *MerklePath) ([]byte, error) {
	return merkle.MarshalPath[Field](merkle.FieldCodec{}, path)
}

// UnmarshalMerklePath decodes a field-digest path
func UnmarshalMerklePath(b []byte) (*MerklePath, error) {
	return merkle.UnmarshalPath[Field](merkle.FieldCodec{}, b)
}

// MarshalGoldilocksPath encodes a Tip5 path
func MarshalGoldilocksPath(path *GoldilocksPath) ([]byte, error) {
	return merkle.MarshalPath[hash.Digest](merkle.GoldilocksCodec{}, path)
}

// UnmarshalGoldilocksPath decodes a Tip5 path
func UnmarshalGoldilocksPath(b []byte) (*GoldilocksPath, error) {
	return merkle.UnmarshalPath[hash.Digest](merkle.GoldilocksCodec{}, b)
}

// OpenSnapshotStore opens the BadgerDB store in the configured snapshot
// directory, or an in-memory database when none is set
func (c *Console) OpenSnapshotStore() (SnapshotStore, error) {
	return storage.NewBadgerStore(c.config.SnapshotDir, c.logger)
}

// SaveBHPTree stores the leaves of a BHP tree under name
func (c *Console) SaveBHPTree(ctx context.Context, store SnapshotStore, name string, tree *BHPTree) error {
	return store.Save(ctx, name, storage.Capture[[]bool, Field](ProfileBHP, tree, merkle.FieldCodec{}))
}

// LoadBHPTree rebuilds a BHP tree stored under name
func (c *Console) LoadBHPTree(ctx context.Context, store SnapshotStore, name string, opts ...TreeOption) (*BHPTree, error) {
	s, err := c.loadSnapshot(ctx, store, name, ProfileBHP)
	if err != nil {
		return nil, err
	}
	return storage.Restore[[]bool, Field](s, c.trees.bhpLeaf, c.trees.bhpPath, merkle.FieldCodec{}, c.treeOptions(opts)...)
}

// SavePSDTree stores the leaves of a Poseidon tree under name. A tree built
// by MerkleTreePoseidon2 is rejected with ErrInvalidConfig.
func (c *Console) SavePSDTree(ctx context.Context, store SnapshotStore, name string, tree *PSDTree) error {
	return c.saveFieldTree(ctx, store, name, ProfilePoseidon, tree)
}

// LoadPSDTree rebuilds a Poseidon tree stored under name
func (c *Console) LoadPSDTree(ctx context.Context, store SnapshotStore, name string, opts ...TreeOption) (*PSDTree, error) {
	s, err := c.loadSnapshot(ctx, store, name, ProfilePoseidon)
	if err != nil {
		return nil, err
	}
	return storage.Restore[[]Field, Field](s, c.trees.psdLeaf, c.trees.psdPath, merkle.FieldCodec{}, c.treeOptions(opts)...)
}

// SavePoseidon2Tree stores the leaves of a Poseidon2 tree under name. A tree
// built by MerkleTreePSD is rejected with ErrInvalidConfig.
func (c *Console) SavePoseidon2Tree(ctx context.Context, store SnapshotStore, name string, tree *PSDTree) error {
	return c.saveFieldTree(ctx, store, name, ProfilePoseidon2, tree)
}

// LoadPoseidon2Tree rebuilds a Poseidon2 tree stored under name
func (c *Console) LoadPoseidon2Tree(ctx context.Context, store SnapshotStore, name string, opts ...TreeOption) (*PSDTree, error) {
	s, err := c.loadSnapshot(ctx, store, name, ProfilePoseidon2)
	if err != nil {
		return nil, err
	}
	h := c.trees.poseidon2
	return storage.Restore[[]Field, Field](s, h, h, merkle.FieldCodec{}, c.treeOptions(opts)...)
}

// saveFieldTree tells Poseidon and Poseidon2 trees apart by their padding
// digest, since both share the PSDTree type
func (c *Console) saveFieldTree(ctx context.Context, store SnapshotStore, name string, profile MerkleProfile, tree *PSDTree) error {
	padding, err := c.PaddingDigest(profile)
	if err != nil {
		return err
	}
	if !tree.PaddingDigest().Equal(padding) {
		return fmt.Errorf("tree was not built with the %s hashers: %w", profile, core.ErrInvalidConfig)
	}
	return store.Save(ctx, name, storage.Capture[[]Field, Field](profile, tree, merkle.FieldCodec{}))
}

// SaveGoldilocksTree stores the leaves of a Tip5 tree under name
func (c *Console) SaveGoldilocksTree(ctx context.Context, store SnapshotStore, name string, tree *GoldilocksTree) error {
	return store.Save(ctx, name, storage.Capture[[]field.Element, hash.Digest](ProfileGoldilocks, tree, merkle.GoldilocksCodec{}))
}

// LoadGoldilocksTree rebuilds a Tip5 tree stored under name
func (c *Console) LoadGoldilocksTree(ctx context.Context, store SnapshotStore, name string) (*GoldilocksTree, error) {
	s, err := c.loadSnapshot(ctx, store, name, ProfileGoldilocks)
	if err != nil {
		return nil, err
	}
	h := c.trees.goldilocks
	return storage.Restore[[]field.Element, hash.Digest](s, h, h, merkle.GoldilocksCodec{}, c.treeOptions(nil)...)
}

func (c *Console) loadSnapshot(ctx context.Context, store SnapshotStore, name string, profile MerkleProfile) (*Snapshot, error) {
	s, err := store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if s.Profile != profile {
		return nil, fmt.Errorf("snapshot %q uses profile %s, want %s: %w", name, s.Profile, profile, core.ErrInvalidConfig)
	}
	return s, nil
}
