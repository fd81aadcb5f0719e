package merkle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
	"go.uber.org/zap"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

type poseidonTree = Tree[[]core.Field, core.Field]

func poseidonHashers(t testing.TB) (*PoseidonLeafHasher, *PoseidonPathHasher) {
	t.Helper()
	lh, ph, err := NewPoseidonHashers(algorithms.DefaultPoseidonParameters())
	require.NoError(t, err)
	return lh, ph
}

func fieldLeaves(n int) [][]core.Field {
	leaves := make([][]core.Field, n)
	for i := range leaves {
		leaves[i] = []core.Field{core.FieldFromUint64(uint64(i + 1)), core.FieldFromUint64(uint64(100 * i))}
	}
	return leaves
}

func bitLeaves(n int) [][]bool {
	leaves := make([][]bool, n)
	for i := range leaves {
		leaves[i] = core.FieldFromUint64(uint64(i*7 + 3)).ToBitsLE()[:64]
	}
	return leaves
}

func TestProveVerifyFiveLeavesDepthThree(t *testing.T) {
	lh, ph := poseidonHashers(t)
	leaves := fieldLeaves(5)
	tree, err := New[[]core.Field, core.Field](lh, ph, 3, leaves)
	require.NoError(t, err)
	require.Equal(t, uint64(5), tree.NumLeaves())
	require.Equal(t, uint64(8), tree.Capacity())

	root := tree.Root()
	path, err := tree.Prove(2)
	require.NoError(t, err)
	require.Equal(t, 3, path.Depth())
	require.True(t, VerifyLeaf[[]core.Field, core.Field](path, lh, ph, root, leaves[2]))
	require.True(t, tree.VerifyPath(path, root, leaves[2]))

	require.False(t, tree.VerifyPath(path, root, leaves[3]), "wrong leaf")

	for i := range path.Siblings {
		flipped := &Path[core.Field]{LeafIndex: path.LeafIndex, Siblings: append([]core.Field(nil), path.Siblings...)}
		flipped.Siblings[i] = flipped.Siblings[i].Add(core.FieldOne())
		require.False(t, tree.VerifyPath(flipped, root, leaves[2]), "flipped sibling %d", i)
	}

	wrongIndex := &Path[core.Field]{LeafIndex: 3, Siblings: path.Siblings}
	require.False(t, tree.VerifyPath(wrongIndex, root, leaves[2]))
}

func TestEveryLeafProves(t *testing.T) {
	lh, ph := poseidonHashers(t)
	leaves := fieldLeaves(6)
	tree, err := New[[]core.Field, core.Field](lh, ph, 4, leaves)
	require.NoError(t, err)
	for i, leaf := range leaves {
		path, err := tree.Prove(uint64(i))
		require.NoError(t, err)
		require.True(t, tree.VerifyPath(path, tree.Root(), leaf), "leaf %d", i)
	}
}

func TestPaddingIsPublished(t *testing.T) {
	lh, ph := poseidonHashers(t)
	tree, err := New[[]core.Field, core.Field](lh, ph, 2, fieldLeaves(1))
	require.NoError(t, err)
	require.True(t, tree.PaddingDigest().Equal(ph.HashEmpty()))

	leafDigest, err := lh.HashLeaf(fieldLeaves(1)[0])
	require.NoError(t, err)
	pad := ph.HashEmpty()
	left, err := ph.HashChildren(leafDigest, pad)
	require.NoError(t, err)
	right, err := ph.HashChildren(pad, pad)
	require.NoError(t, err)
	root, err := ph.HashChildren(left, right)
	require.NoError(t, err)
	require.True(t, root.Equal(tree.Root()))

	empty, err := New[[]core.Field, core.Field](lh, ph, 2, nil)
	require.NoError(t, err)
	require.False(t, empty.Root().Equal(root))
	require.Equal(t, uint64(0), empty.NumLeaves())
}

func TestTooManyLeaves(t *testing.T) {
	lh, ph := poseidonHashers(t)
	_, err := New[[]core.Field, core.Field](lh, ph, 2, fieldLeaves(5))
	require.ErrorIs(t, err, core.ErrTooManyLeaves)

	_, err = New[[]core.Field, core.Field](lh, ph, 0, nil)
	require.ErrorIs(t, err, core.ErrInvalidConfig)
	_, err = New[[]core.Field, core.Field](lh, ph, MaxDepth+1, nil)
	require.ErrorIs(t, err, core.ErrInvalidConfig)

	tree, err := New[[]core.Field, core.Field](lh, ph, 2, fieldLeaves(3))
	require.NoError(t, err)
	before := tree.Root()
	_, err = tree.Append(fieldLeaves(2)...)
	require.ErrorIs(t, err, core.ErrTooManyLeaves)
	require.True(t, before.Equal(tree.Root()))
	require.Equal(t, uint64(3), tree.NumLeaves())
}

func TestIndexOutOfRange(t *testing.T) {
	lh, ph := poseidonHashers(t)
	tree, err := New[[]core.Field, core.Field](lh, ph, 3, fieldLeaves(5))
	require.NoError(t, err)

	_, err = tree.Prove(5)
	require.ErrorIs(t, err, core.ErrIndexOutOfRange)
	_, err = tree.Update(5, fieldLeaves(1)[0])
	require.ErrorIs(t, err, core.ErrIndexOutOfRange)
	_, err = tree.Leaf(7)
	require.ErrorIs(t, err, core.ErrIndexOutOfRange)
}

func TestUpdateMatchesRebuild(t *testing.T) {
	lh, ph := poseidonHashers(t)
	leaves := fieldLeaves(5)
	tree, err := New[[]core.Field, core.Field](lh, ph, 3, leaves)
	require.NoError(t, err)

	for i := range leaves {
		next := []core.Field{core.FieldFromUint64(uint64(1000 + i))}
		root, err := tree.Update(uint64(i), next)
		require.NoError(t, err)
		leaves[i] = next

		rebuilt, err := New[[]core.Field, core.Field](lh, ph, 3, leaves)
		require.NoError(t, err)
		require.True(t, rebuilt.Root().Equal(root), "update %d", i)
		require.True(t, tree.Root().Equal(root))

		path, err := tree.Prove(uint64(i))
		require.NoError(t, err)
		require.True(t, tree.VerifyPath(path, root, next))
	}
}

func TestAppendMatchesRebuild(t *testing.T) {
	lh, ph := poseidonHashers(t)
	all := fieldLeaves(11)
	tree, err := New[[]core.Field, core.Field](lh, ph, 4, all[:2])
	require.NoError(t, err)

	for _, cut := range [][2]int{{2, 3}, {3, 7}, {7, 7}, {7, 11}} {
		root, err := tree.Append(all[cut[0]:cut[1]]...)
		require.NoError(t, err)
		rebuilt, err := New[[]core.Field, core.Field](lh, ph, 4, all[:cut[1]])
		require.NoError(t, err)
		require.True(t, rebuilt.Root().Equal(root), "append up to %d", cut[1])
		require.Equal(t, uint64(cut[1]), tree.NumLeaves())
	}
	require.Equal(t, tree.LeafDigests(), mustTree(t, lh, ph, 4, all).LeafDigests())
}

func mustTree(t *testing.T, lh *PoseidonLeafHasher, ph *PoseidonPathHasher, depth int, leaves [][]core.Field) *poseidonTree {
	t.Helper()
	tree, err := New[[]core.Field, core.Field](lh, ph, depth, leaves)
	require.NoError(t, err)
	return tree
}

func TestBHPProfile(t *testing.T) {
	lh, ph, err := NewBHPHashers()
	require.NoError(t, err)
	leaves := bitLeaves(5)
	tree, err := New[[]bool, core.Field](lh, ph, 3, leaves, WithLogger(zap.NewNop()))
	require.NoError(t, err)

	path, err := tree.Prove(2)
	require.NoError(t, err)
	require.True(t, tree.VerifyPath(path, tree.Root(), leaves[2]))

	path.Siblings[1] = path.Siblings[1].Add(core.FieldOne())
	require.False(t, tree.VerifyPath(path, tree.Root(), leaves[2]))

	leaves[4] = bitLeaves(9)[8]
	root, err := tree.Update(4, leaves[4])
	require.NoError(t, err)
	rebuilt, err := New[[]bool, core.Field](lh, ph, 3, leaves)
	require.NoError(t, err)
	require.True(t, rebuilt.Root().Equal(root))
}

func TestPoseidon2Profile(t *testing.T) {
	h, err := NewPoseidon2Hasher()
	require.NoError(t, err)
	leaves := fieldLeaves(5)
	tree, err := New[[]core.Field, core.Field](h, h, 3, leaves)
	require.NoError(t, err)
	path, err := tree.Prove(2)
	require.NoError(t, err)
	require.True(t, tree.VerifyPath(path, tree.Root(), leaves[2]))

	lh, ph := poseidonHashers(t)
	other, err := New[[]core.Field, core.Field](lh, ph, 3, leaves)
	require.NoError(t, err)
	require.False(t, other.Root().Equal(tree.Root()))
}

func TestGoldilocksProfile(t *testing.T) {
	h := NewGoldilocksHasher()
	leaves := make([][]field.Element, 5)
	for i := range leaves {
		leaves[i] = []field.Element{field.New(uint64(i)), field.New(uint64(i * i))}
	}
	tree, err := New[[]field.Element, hash.Digest](h, h, 3, leaves)
	require.NoError(t, err)

	path, err := tree.Prove(2)
	require.NoError(t, err)
	require.True(t, tree.VerifyPath(path, tree.Root(), leaves[2]))
	require.False(t, tree.VerifyPath(path, tree.Root(), leaves[1]))

	leaves[0] = []field.Element{field.New(42)}
	root, err := tree.Update(0, leaves[0])
	require.NoError(t, err)
	rebuilt, err := New[[]field.Element, hash.Digest](h, h, 3, leaves)
	require.NoError(t, err)
	require.Equal(t, rebuilt.Root(), root)

	enc, err := MarshalPath[hash.Digest](GoldilocksCodec{}, path)
	require.NoError(t, err)
	dec, err := UnmarshalPath[hash.Digest](GoldilocksCodec{}, enc)
	require.NoError(t, err)
	require.Equal(t, path, dec)

	bad := GoldilocksCodec{}.Encode(path.Siblings[0])
	for i := 0; i < 8; i++ {
		bad[i] = 0xff
	}
	_, err = GoldilocksCodec{}.Decode(bad)
	require.ErrorIs(t, err, core.ErrInvalidEncoding)
}

func TestPathEncoding(t *testing.T) {
	lh, ph := poseidonHashers(t)
	leaves := fieldLeaves(5)
	tree := mustTree(t, lh, ph, 3, leaves)
	path, err := tree.Prove(4)
	require.NoError(t, err)

	enc, err := MarshalPath[core.Field](FieldCodec{}, path)
	require.NoError(t, err)
	require.Len(t, enc, 9+3*core.FieldBytes)
	dec, err := UnmarshalPath[core.Field](FieldCodec{}, enc)
	require.NoError(t, err)
	require.Equal(t, path.LeafIndex, dec.LeafIndex)
	require.True(t, tree.VerifyPath(dec, tree.Root(), leaves[4]))

	again, err := MarshalPath[core.Field](FieldCodec{}, dec)
	require.NoError(t, err)
	require.Equal(t, enc, again)

	_, err = UnmarshalPath[core.Field](FieldCodec{}, enc[:8])
	require.ErrorIs(t, err, core.ErrInvalidEncoding)
	_, err = UnmarshalPath[core.Field](FieldCodec{}, enc[:len(enc)-1])
	require.ErrorIs(t, err, core.ErrInvalidEncoding)

	badIndex := append([]byte(nil), enc...)
	badIndex[0] = 8
	_, err = UnmarshalPath[core.Field](FieldCodec{}, badIndex)
	require.ErrorIs(t, err, core.ErrInvalidEncoding)

	badDepth := append([]byte(nil), enc...)
	badDepth[8] = 0
	_, err = UnmarshalPath[core.Field](FieldCodec{}, badDepth)
	require.ErrorIs(t, err, core.ErrInvalidEncoding)

	badSibling := append([]byte(nil), enc...)
	for i := 9; i < 9+core.FieldBytes; i++ {
		badSibling[i] = 0xff
	}
	_, err = UnmarshalPath[core.Field](FieldCodec{}, badSibling)
	require.ErrorIs(t, err, core.ErrInvalidEncoding)
}

func TestVerifyRejectsMalformedPath(t *testing.T) {
	lh, ph := poseidonHashers(t)
	leaves := fieldLeaves(5)
	tree := mustTree(t, lh, ph, 3, leaves)
	path, err := tree.Prove(1)
	require.NoError(t, err)

	short := &Path[core.Field]{LeafIndex: 1, Siblings: path.Siblings[:2]}
	require.False(t, tree.VerifyPath(short, tree.Root(), leaves[1]))
	long := &Path[core.Field]{LeafIndex: 1, Siblings: append(append([]core.Field(nil), path.Siblings...), core.FieldZero())}
	require.False(t, tree.VerifyPath(long, tree.Root(), leaves[1]))
	require.False(t, tree.VerifyPath(&Path[core.Field]{LeafIndex: 1}, tree.Root(), leaves[1]))
	require.False(t, tree.VerifyPath(&Path[core.Field]{LeafIndex: 8, Siblings: path.Siblings}, tree.Root(), leaves[1]))
	require.False(t, tree.VerifyPath(nil, tree.Root(), leaves[1]))
}

func TestAccumulator(t *testing.T) {
	lh, ph := poseidonHashers(t)
	hh, err := algorithms.NewHomomorphicHash(16, algorithms.DefaultGeneratorCacheSize)
	require.NoError(t, err)
	leaves := fieldLeaves(3)

	tree, err := New[[]core.Field, core.Field](lh, ph, 4, leaves, WithAccumulator(hh))
	require.NoError(t, err)

	expected := func(digests []core.Field) core.Field {
		g, err := hh.Hash(algorithms.DomainMerkleLeaf, digests)
		require.NoError(t, err)
		return hh.Compress(g)
	}

	acc, ok := tree.Accumulator()
	require.True(t, ok)
	require.True(t, expected(tree.LeafDigests()).Equal(acc))

	_, err = tree.Update(1, []core.Field{core.FieldFromUint64(77)})
	require.NoError(t, err)
	acc, _ = tree.Accumulator()
	require.True(t, expected(tree.LeafDigests()).Equal(acc))

	_, err = tree.Append(fieldLeaves(5)[3:]...)
	require.NoError(t, err)
	acc, _ = tree.Accumulator()
	require.True(t, expected(tree.LeafDigests()).Equal(acc))

	// an empty tree starts from the domain offset and grows like a full build
	empty, err := New[[]core.Field, core.Field](lh, ph, 4, nil, WithAccumulator(hh))
	require.NoError(t, err)
	offset, err := hh.Empty(algorithms.DomainMerkleLeaf)
	require.NoError(t, err)
	acc, _ = empty.Accumulator()
	require.True(t, hh.Compress(offset).Equal(acc))
	_, err = empty.Append(leaves...)
	require.NoError(t, err)
	acc, _ = empty.Accumulator()
	require.True(t, expected(empty.LeafDigests()).Equal(acc))

	plain := mustTree(t, lh, ph, 4, leaves)
	_, ok = plain.Accumulator()
	require.False(t, ok)

	small, err := algorithms.NewHomomorphicHash(2, 16)
	require.NoError(t, err)
	_, err = New[[]core.Field, core.Field](lh, ph, 4, leaves, WithAccumulator(small))
	require.ErrorIs(t, err, core.ErrTooManyLeaves)
}

func TestConcurrentReaders(t *testing.T) {
	lh, ph := poseidonHashers(t)
	leaves := fieldLeaves(8)
	tree := mustTree(t, lh, ph, 3, leaves)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 8; i++ {
				idx := uint64((w + i) % 8)
				root := tree.Root()
				path, err := tree.Prove(idx)
				if err != nil {
					t.Error(err)
					return
				}
				if !VerifyLeaf[[]core.Field, core.Field](path, lh, ph, root, leaves[idx]) {
					t.Errorf("leaf %d does not verify", idx)
				}
			}
		}(w)
	}
	wg.Wait()
}

func TestConcurrentWriterAndReaders(t *testing.T) {
	lh, ph := poseidonHashers(t)
	tree := mustTree(t, lh, ph, 4, fieldLeaves(4))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 8; i++ {
			if _, err := tree.Append([]core.Field{core.FieldFromUint64(uint64(i))}); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	for r := 0; r < 3; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 16; i++ {
				_ = tree.Root()
				if _, err := tree.Prove(0); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(12), tree.NumLeaves())
}

func TestProfileValid(t *testing.T) {
	for _, p := range Profiles() {
		require.NoError(t, p.Valid())
	}
	require.ErrorIs(t, Profile("sha256").Valid(), core.ErrInvalidConfig)
}

func BenchmarkPoseidonUpdate(b *testing.B) {
	lh, ph := poseidonHashers(b)
	tree, err := New[[]core.Field, core.Field](lh, ph, 16, fieldLeaves(64))
	if err != nil {
		b.Fatal(err)
	}
	leaf := []core.Field{core.FieldFromUint64(9)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tree.Update(uint64(i%64), leaf); err != nil {
			b.Fatal(err)
		}
	}
}
