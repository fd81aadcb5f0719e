package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/collections/merkle"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

func stores(t *testing.T) map[string]SnapshotStore {
	t.Helper()
	inMemory, err := NewBadgerStore("", zap.NewNop())
	require.NoError(t, err)
	onDisk, err := NewBadgerStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return map[string]SnapshotStore{
		"memory":        NewMemoryStore(),
		"badger-memory": inMemory,
		"badger-disk":   onDisk,
	}
}

func sampleTree(t *testing.T) (*merkle.Tree[[]core.Field, core.Field], *merkle.PoseidonLeafHasher, *merkle.PoseidonPathHasher) {
	t.Helper()
	lh, ph, err := merkle.NewPoseidonHashers(algorithms.DefaultPoseidonParameters())
	require.NoError(t, err)
	leaves := make([][]core.Field, 5)
	for i := range leaves {
		leaves[i] = []core.Field{core.FieldFromUint64(uint64(i * 3))}
	}
	tree, err := merkle.New[[]core.Field, core.Field](lh, ph, 3, leaves)
	require.NoError(t, err)
	return tree, lh, ph
}

func TestSnapshotStores(t *testing.T) {
	ctx := context.Background()
	tree, lh, ph := sampleTree(t)
	snap := Capture[[]core.Field, core.Field](merkle.ProfilePoseidon, tree, merkle.FieldCodec{})
	require.Equal(t, 3, snap.Depth)
	require.Len(t, snap.Leaves, 5)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()

			require.NoError(t, store.Save(ctx, "ledger", snap))
			require.NoError(t, store.Save(ctx, "archive", snap))

			names, err := store.List(ctx)
			require.NoError(t, err)
			require.Equal(t, []string{"archive", "ledger"}, names)

			loaded, err := store.Load(ctx, "ledger")
			require.NoError(t, err)
			require.Equal(t, snap, loaded)

			restored, err := Restore[[]core.Field, core.Field](loaded, lh, ph, merkle.FieldCodec{})
			require.NoError(t, err)
			require.True(t, restored.Root().Equal(tree.Root()))

			_, err = store.Load(ctx, "missing")
			require.ErrorIs(t, err, ErrSnapshotNotFound)

			require.NoError(t, store.Delete(ctx, "ledger"))
			require.ErrorIs(t, store.Delete(ctx, "ledger"), ErrSnapshotNotFound)
			_, err = store.Load(ctx, "ledger")
			require.ErrorIs(t, err, ErrSnapshotNotFound)

			require.ErrorIs(t, store.Save(ctx, "", snap), core.ErrInvalidConfig)
			require.ErrorIs(t, store.Save(ctx, "bad", &Snapshot{Depth: 3, Profile: "sha1"}), core.ErrInvalidConfig)

			require.NoError(t, store.Close())
			_, err = store.Load(ctx, "archive")
			require.ErrorIs(t, err, ErrStoreClosed)
		})
	}
}

func TestBadgerPersists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	tree, _, _ := sampleTree(t)
	snap := Capture[[]core.Field, core.Field](merkle.ProfilePoseidon, tree, merkle.FieldCodec{})

	store, err := NewBadgerStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, "ledger", snap))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerStore(dir, nil)
	require.NoError(t, err)
	defer reopened.Close()
	loaded, err := reopened.Load(ctx, "ledger")
	require.NoError(t, err)
	require.Equal(t, snap, loaded)
}

func TestBadgerHonoursContext(t *testing.T) {
	store, err := NewBadgerStore("", nil)
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.List(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotValidate(t *testing.T) {
	require.ErrorIs(t, (&Snapshot{Depth: 0, Profile: merkle.ProfileBHP}).Validate(), core.ErrInvalidConfig)
	require.ErrorIs(t, (&Snapshot{Depth: 1, Profile: merkle.ProfileBHP, Leaves: make([][]byte, 3)}).Validate(), core.ErrTooManyLeaves)
	require.NoError(t, (&Snapshot{Depth: 64, Profile: merkle.ProfileGoldilocks}).Validate())

	_, err := unmarshalSnapshot([]byte("{"))
	require.ErrorIs(t, err, core.ErrInvalidEncoding)

	_, lh, ph := sampleTree(t)
	bad := &Snapshot{Depth: 2, Profile: merkle.ProfilePoseidon, Leaves: [][]byte{{1, 2, 3}}}
	_, err = Restore[[]core.Field, core.Field](bad, lh, ph, merkle.FieldCodec{})
	require.ErrorIs(t, err, core.ErrInvalidEncoding)
}

func TestRestoreChecksRoot(t *testing.T) {
	tree, lh, ph := sampleTree(t)
	snap := Capture[[]core.Field, core.Field](merkle.ProfilePoseidon, tree, merkle.FieldCodec{})
	require.Equal(t, merkle.FieldCodec{}.Encode(tree.Root()), snap.Root)

	// the same leaves hashed with Poseidon2 cannot come back as a Poseidon tree
	p2, err := merkle.NewPoseidon2Hasher()
	require.NoError(t, err)
	leaves := make([][]core.Field, 5)
	for i := range leaves {
		leaves[i] = []core.Field{core.FieldFromUint64(uint64(i * 3))}
	}
	other, err := merkle.New[[]core.Field, core.Field](p2, p2, 3, leaves)
	require.NoError(t, err)
	mislabelled := Capture[[]core.Field, core.Field](merkle.ProfilePoseidon, other, merkle.FieldCodec{})
	_, err = Restore[[]core.Field, core.Field](mislabelled, lh, ph, merkle.FieldCodec{})
	require.ErrorIs(t, err, core.ErrInvalidEncoding)

	restored, err := Restore[[]core.Field, core.Field](mislabelled, p2, p2, merkle.FieldCodec{})
	require.NoError(t, err)
	require.True(t, restored.Root().Equal(other.Root()))

	tampered := *snap
	tampered.Root = merkle.FieldCodec{}.Encode(core.FieldFromUint64(1))
	_, err = Restore[[]core.Field, core.Field](&tampered, lh, ph, merkle.FieldCodec{})
	require.ErrorIs(t, err, core.ErrInvalidEncoding)

	tampered.Root = nil
	_, err = Restore[[]core.Field, core.Field](&tampered, lh, ph, merkle.FieldCodec{})
	require.ErrorIs(t, err, core.ErrInvalidEncoding)
}
