// Package storage persists Merkle tree snapshots. A snapshot holds the
// encoded leaf digests and the root; the tree is rebuilt deterministically
// on load and must reproduce the stored root.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/collections/merkle"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// ErrSnapshotNotFound is returned by Load and Delete for unknown names
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrStoreClosed is returned after Close
var ErrStoreClosed = errors.New("snapshot store closed")

// Snapshot is the persisted form of a tree
type Snapshot struct {
	Depth   int            `json:"depth"`
	Profile merkle.Profile `json:"profile"`
	Leaves  [][]byte       `json:"leaves"`
	Root    []byte         `json:"root"`
}

// Validate checks the depth, profile and leaf count
func (s *Snapshot) Validate() error {
	if err := s.Profile.Valid(); err != nil {
		return err
	}
	if s.Depth < merkle.MinDepth || s.Depth > merkle.MaxDepth {
		return fmt.Errorf("snapshot depth %d outside [%d, %d]: %w", s.Depth, merkle.MinDepth, merkle.MaxDepth, core.ErrInvalidConfig)
	}
	if s.Depth < 64 && uint64(len(s.Leaves)) > uint64(1)<<uint(s.Depth) {
		return fmt.Errorf("snapshot holds %d leaves, capacity 2^%d: %w", len(s.Leaves), s.Depth, core.ErrTooManyLeaves)
	}
	return nil
}

func (s *Snapshot) marshal() ([]byte, error) {
	return json.Marshal(s)
}

func unmarshalSnapshot(b []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %v: %w", err, core.ErrInvalidEncoding)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// SnapshotStore saves and loads named snapshots
type SnapshotStore interface {
	Save(ctx context.Context, name string, snapshot *Snapshot) error
	Load(ctx context.Context, name string) (*Snapshot, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Capture encodes the populated leaves of tree
func Capture[L any, D comparable](profile merkle.Profile, tree *merkle.Tree[L, D], codec merkle.DigestCodec[D]) *Snapshot {
	digests := tree.LeafDigests()
	leaves := make([][]byte, len(digests))
	for i, d := range digests {
		leaves[i] = codec.Encode(d)
	}
	return &Snapshot{Depth: tree.Depth(), Profile: profile, Leaves: leaves, Root: codec.Encode(tree.Root())}
}

// Restore rebuilds the tree a snapshot was captured from. A rebuilt root
// that differs from the stored one fails with ErrInvalidEncoding; this
// catches snapshots restored with the wrong hashers.
func Restore[L any, D comparable](s *Snapshot, leafHasher merkle.LeafHasher[L, D], pathHasher merkle.PathHasher[D], codec merkle.DigestCodec[D], opts ...merkle.Option) (*merkle.Tree[L, D], error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	digests := make([]D, len(s.Leaves))
	for i, raw := range s.Leaves {
		d, err := codec.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("snapshot leaf %d: %w", i, err)
		}
		digests[i] = d
	}
	root, err := codec.Decode(s.Root)
	if err != nil {
		return nil, fmt.Errorf("snapshot root: %w", err)
	}
	tree, err := merkle.NewFromDigests(leafHasher, pathHasher, s.Depth, digests, opts...)
	if err != nil {
		return nil, err
	}
	if tree.Root() != root {
		return nil, fmt.Errorf("rebuilt root does not match the snapshot (profile %s): %w", s.Profile, core.ErrInvalidEncoding)
	}
	return tree, nil
}

func validName(name string) error {
	if name == "" {
		return fmt.Errorf("snapshot name must not be empty: %w", core.ErrInvalidConfig)
	}
	return nil
}
