package merkle

import (
	"encoding/binary"
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// Path is an inclusion proof: the leaf index and the sibling digests from the
// leaf level up to the child of the root. A Path holds no reference to the
// tree that produced it.
type Path[D comparable] struct {
	LeafIndex uint64
	Siblings  []D
}

// Depth returns the number of sibling digests
func (p *Path[D]) Depth() int {
	return len(p.Siblings)
}

// Clone returns a copy that shares no memory with p
func (p *Path[D]) Clone() *Path[D] {
	if p == nil {
		return nil
	}
	return &Path[D]{LeafIndex: p.LeafIndex, Siblings: append([]D(nil), p.Siblings...)}
}

// VerifyDigest folds the siblings over leafDigest and compares with root.
// At every level an even index means the running node is the left child.
// Malformed paths and hashing failures are reported as false.
func (p *Path[D]) VerifyDigest(pathHasher PathHasher[D], root, leafDigest D) bool {
	depth := len(p.Siblings)
	if depth < MinDepth || depth > MaxDepth {
		return false
	}
	if depth < 64 && p.LeafIndex >= uint64(1)<<uint(depth) {
		return false
	}
	cur := leafDigest
	index := p.LeafIndex
	for _, sibling := range p.Siblings {
		var err error
		if index&1 == 0 {
			cur, err = pathHasher.HashChildren(cur, sibling)
		} else {
			cur, err = pathHasher.HashChildren(sibling, cur)
		}
		if err != nil {
			return false
		}
		index >>= 1
	}
	return cur == root
}

// VerifyLeaf hashes leaf and checks the path against root
func VerifyLeaf[L any, D comparable](p *Path[D], leafHasher LeafHasher[L, D], pathHasher PathHasher[D], root D, leaf L) bool {
	if p == nil {
		return false
	}
	d, err := leafHasher.HashLeaf(leaf)
	if err != nil {
		return false
	}
	return p.VerifyDigest(pathHasher, root, d)
}

// DigestCodec encodes digests of one fixed size
type DigestCodec[D comparable] interface {
	Size() int
	Encode(digest D) []byte
	Decode(b []byte) (D, error)
}

// pathHeaderBytes is the u64 index plus the u8 depth
const pathHeaderBytes = 9

// MarshalPath encodes a path as u64 LE index ‖ u8 depth ‖ siblings
func MarshalPath[D comparable](codec DigestCodec[D], p *Path[D]) ([]byte, error) {
	depth := len(p.Siblings)
	if depth < MinDepth || depth > MaxDepth {
		return nil, fmt.Errorf("path depth %d outside [%d, %d]: %w", depth, MinDepth, MaxDepth, core.ErrInvalidEncoding)
	}
	out := make([]byte, pathHeaderBytes, pathHeaderBytes+depth*codec.Size())
	binary.LittleEndian.PutUint64(out, p.LeafIndex)
	out[8] = byte(depth)
	for _, s := range p.Siblings {
		out = append(out, codec.Encode(s)...)
	}
	return out, nil
}

// UnmarshalPath decodes the MarshalPath format
func UnmarshalPath[D comparable](codec DigestCodec[D], b []byte) (*Path[D], error) {
	if len(b) < pathHeaderBytes {
		return nil, fmt.Errorf("path needs at least %d bytes, got %d: %w", pathHeaderBytes, len(b), core.ErrInvalidEncoding)
	}
	index := binary.LittleEndian.Uint64(b)
	depth := int(b[8])
	if depth < MinDepth || depth > MaxDepth {
		return nil, fmt.Errorf("path depth %d outside [%d, %d]: %w", depth, MinDepth, MaxDepth, core.ErrInvalidEncoding)
	}
	if depth < 64 && index >= uint64(1)<<uint(depth) {
		return nil, fmt.Errorf("leaf index %d does not fit depth %d: %w", index, depth, core.ErrInvalidEncoding)
	}
	size := codec.Size()
	if len(b) != pathHeaderBytes+depth*size {
		return nil, fmt.Errorf("path of depth %d must be %d bytes, got %d: %w", depth, pathHeaderBytes+depth*size, len(b), core.ErrInvalidEncoding)
	}
	siblings := make([]D, depth)
	for i := range siblings {
		off := pathHeaderBytes + i*size
		d, err := codec.Decode(b[off : off+size])
		if err != nil {
			return nil, fmt.Errorf("sibling %d: %w", i, err)
		}
		siblings[i] = d
	}
	return &Path[D]{LeafIndex: index, Siblings: siblings}, nil
}
