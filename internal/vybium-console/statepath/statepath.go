// Package statepath verifies that an input or output ID is included in a
// ledger state root. The proof chains five BHP Merkle paths and the block
// hash that links a header root to the previous block.
package statepath

import (
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/collections/merkle"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// Tree depths of the ledger
const (
	TransitionTreeDepth   = 5
	TransactionTreeDepth  = 5
	TransactionsTreeDepth = 16
	HeaderTreeDepth       = 3
	BlockTreeDepth        = 32
)

// Path is a BHP Merkle path
type Path = merkle.Path[core.Field]

// Hashers bundles the BHP hashers the ledger trees are built with
type Hashers struct {
	Leaf    *merkle.BHPLeafHasher
	Path    *merkle.BHPPathHasher
	BHP1024 *algorithms.BHP
}

// NewHashers builds the ledger hashers
func NewHashers() (*Hashers, error) {
	bhp256, err := algorithms.NewBHP256()
	if err != nil {
		return nil, err
	}
	bhp512, err := algorithms.NewBHP512()
	if err != nil {
		return nil, err
	}
	bhp1024, err := algorithms.NewBHP1024()
	if err != nil {
		return nil, err
	}
	ph, err := merkle.NewBHPPathHasher(bhp512, bhp256)
	if err != nil {
		return nil, err
	}
	return &Hashers{
		Leaf:    merkle.NewBHPLeafHasher(bhp1024),
		Path:    ph,
		BHP1024: bhp1024,
	}, nil
}

// BlockHash links a block header root to the previous block hash
func (h *Hashers) BlockHash(previous, headerRoot core.Field) (core.Field, error) {
	preimage := append(previous.ToBitsLE(), headerRoot.ToBitsLE()...)
	return h.BHP1024.Hash(algorithms.DomainBlockHash, preimage)
}

// Components are the parts of a state path, from the state root down to the
// transition leaf
type Components struct {
	StateRoot         core.Field
	BlockPath         *Path
	BlockHash         core.Field
	PreviousBlockHash core.Field
	HeaderRoot        core.Field
	HeaderPath        *Path
	HeaderLeaf        HeaderLeaf
	TransactionsPath  *Path
	TransactionID     core.Field
	TransactionPath   *Path
	TransactionLeaf   TransactionLeaf
	TransitionPath    *Path
	TransitionLeaf    TransitionLeaf
}

// StatePath is a verified chain of inclusion proofs. It can only be obtained
// through New or UnmarshalStatePath.
type StatePath struct {
	c Components
}

// New verifies every link of the chain and returns the state path. Each
// failure wraps ErrInvalidStatePath and names the broken link.
func New(h *Hashers, c Components) (*StatePath, error) {
	for _, p := range []struct {
		name  string
		path  *Path
		depth int
	}{
		{"transition", c.TransitionPath, TransitionTreeDepth},
		{"transaction", c.TransactionPath, TransactionTreeDepth},
		{"transactions", c.TransactionsPath, TransactionsTreeDepth},
		{"header", c.HeaderPath, HeaderTreeDepth},
		{"block", c.BlockPath, BlockTreeDepth},
	} {
		if p.path == nil {
			return nil, fmt.Errorf("missing %s path: %w", p.name, core.ErrInvalidStatePath)
		}
		if p.path.Depth() != p.depth {
			return nil, fmt.Errorf("%s path has depth %d, want %d: %w", p.name, p.path.Depth(), p.depth, core.ErrInvalidStatePath)
		}
	}

	if !verify(h, c.TransitionPath, c.TransactionLeaf.ID, c.TransitionLeaf.ToBitsLE()) {
		return nil, fmt.Errorf("'%s' (an input or output ID) does not belong to '%s' (a transition): %w",
			c.TransitionLeaf.ID, c.TransactionLeaf.ID, core.ErrInvalidStatePath)
	}
	if !verify(h, c.TransactionPath, c.TransactionID, c.TransactionLeaf.ToBitsLE()) {
		return nil, fmt.Errorf("'%s' (a transition) does not belong to transaction '%s': %w",
			c.TransactionLeaf.ID, c.TransactionID, core.ErrInvalidStatePath)
	}
	if !verify(h, c.TransactionsPath, c.HeaderLeaf.ID, c.TransactionID.ToBitsLE()) {
		return nil, fmt.Errorf("transaction '%s' does not belong to %s: %w",
			c.TransactionID, c.HeaderLeaf, core.ErrInvalidStatePath)
	}
	if !verify(h, c.HeaderPath, c.HeaderRoot, c.HeaderLeaf.ToBitsLE()) {
		return nil, fmt.Errorf("%s does not belong to block '%s': %w",
			c.HeaderLeaf, c.BlockHash, core.ErrInvalidStatePath)
	}
	blockHash, err := h.BlockHash(c.PreviousBlockHash, c.HeaderRoot)
	if err != nil {
		return nil, fmt.Errorf("compute block hash: %w", err)
	}
	if !blockHash.Equal(c.BlockHash) {
		return nil, fmt.Errorf("block hash '%s' does not match the previous block hash and header root: %w",
			c.BlockHash, core.ErrInvalidStatePath)
	}
	if !verify(h, c.BlockPath, c.StateRoot, c.BlockHash.ToBitsLE()) {
		return nil, fmt.Errorf("block '%s' does not belong to state root '%s': %w",
			c.BlockHash, c.StateRoot, core.ErrInvalidStatePath)
	}
	return &StatePath{c: c.clone()}, nil
}

// clone deep-copies the paths
func (c Components) clone() Components {
	c.BlockPath = c.BlockPath.Clone()
	c.HeaderPath = c.HeaderPath.Clone()
	c.TransactionsPath = c.TransactionsPath.Clone()
	c.TransactionPath = c.TransactionPath.Clone()
	c.TransitionPath = c.TransitionPath.Clone()
	return c
}

func verify(h *Hashers, p *Path, root core.Field, leaf []bool) bool {
	return merkle.VerifyLeaf[[]bool, core.Field](p, h.Leaf, h.Path, root, leaf)
}

// StateRoot returns the state root
func (s *StatePath) StateRoot() core.Field { return s.c.StateRoot }

// BlockPath returns the path of the block hash in the block tree
func (s *StatePath) BlockPath() *Path { return s.c.BlockPath.Clone() }

// BlockHash returns the block hash
func (s *StatePath) BlockHash() core.Field { return s.c.BlockHash }

// PreviousBlockHash returns the previous block hash
func (s *StatePath) PreviousBlockHash() core.Field { return s.c.PreviousBlockHash }

// HeaderRoot returns the block header root
func (s *StatePath) HeaderRoot() core.Field { return s.c.HeaderRoot }

// HeaderPath returns the path of the header leaf
func (s *StatePath) HeaderPath() *Path { return s.c.HeaderPath.Clone() }

// HeaderLeaf returns the header leaf
func (s *StatePath) HeaderLeaf() HeaderLeaf { return s.c.HeaderLeaf }

// TransactionsPath returns the path of the transaction ID
func (s *StatePath) TransactionsPath() *Path { return s.c.TransactionsPath.Clone() }

// TransactionID returns the transaction ID
func (s *StatePath) TransactionID() core.Field { return s.c.TransactionID }

// TransactionPath returns the path of the transaction leaf
func (s *StatePath) TransactionPath() *Path { return s.c.TransactionPath.Clone() }

// TransactionLeaf returns the transaction leaf
func (s *StatePath) TransactionLeaf() TransactionLeaf { return s.c.TransactionLeaf }

// TransitionPath returns the path of the transition leaf
func (s *StatePath) TransitionPath() *Path { return s.c.TransitionPath.Clone() }

// TransitionLeaf returns the transition leaf
func (s *StatePath) TransitionLeaf() TransitionLeaf { return s.c.TransitionLeaf }

// Components returns a deep copy of the parts of the path
func (s *StatePath) Components() Components { return s.c.clone() }
