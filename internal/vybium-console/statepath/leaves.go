package statepath

import (
	"encoding/binary"
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
	"github.com/vybium/vybium-console/internal/vybium-console/utils"
)

const (
	// HeaderLeafBytes is the encoded size of a HeaderLeaf
	HeaderLeafBytes = 1 + core.FieldBytes
	// TransactionLeafBytes is the encoded size of a TransactionLeaf
	TransactionLeafBytes = 1 + 2 + core.FieldBytes
	// TransitionLeafBytes is the encoded size of a TransitionLeaf
	TransitionLeafBytes = 3 + core.FieldBytes
)

// HeaderLeaf is a leaf of the block header tree
type HeaderLeaf struct {
	Index uint8
	ID    core.Field
}

// ToBitsLE returns index ‖ id as little-endian bits
func (l HeaderLeaf) ToBitsLE() []bool {
	bits := utils.UintToBitsLE(uint64(l.Index), 8)
	return append(bits, l.ID.ToBitsLE()...)
}

// Bytes returns index ‖ id
func (l HeaderLeaf) Bytes() []byte {
	out := make([]byte, 0, HeaderLeafBytes)
	out = append(out, l.Index)
	id := l.ID.Bytes()
	return append(out, id[:]...)
}

func (l HeaderLeaf) String() string {
	return fmt.Sprintf("header leaf %d (%s)", l.Index, l.ID)
}

// HeaderLeafFromBytes decodes the Bytes format
func HeaderLeafFromBytes(b []byte) (HeaderLeaf, error) {
	if len(b) != HeaderLeafBytes {
		return HeaderLeaf{}, fmt.Errorf("header leaf must be %d bytes, got %d: %w", HeaderLeafBytes, len(b), core.ErrInvalidEncoding)
	}
	id, err := core.FieldFromBytesLE(b[1:])
	if err != nil {
		return HeaderLeaf{}, fmt.Errorf("header leaf id: %w", err)
	}
	return HeaderLeaf{Index: b[0], ID: id}, nil
}

// TransactionLeaf is a leaf of a transaction tree
type TransactionLeaf struct {
	Variant uint8
	Index   uint16
	ID      core.Field
}

// ToBitsLE returns variant ‖ index ‖ id as little-endian bits
func (l TransactionLeaf) ToBitsLE() []bool {
	bits := utils.UintToBitsLE(uint64(l.Variant), 8)
	bits = append(bits, utils.UintToBitsLE(uint64(l.Index), 16)...)
	return append(bits, l.ID.ToBitsLE()...)
}

// Bytes returns variant ‖ index (LE) ‖ id
func (l TransactionLeaf) Bytes() []byte {
	out := make([]byte, 3, TransactionLeafBytes)
	out[0] = l.Variant
	binary.LittleEndian.PutUint16(out[1:], l.Index)
	id := l.ID.Bytes()
	return append(out, id[:]...)
}

func (l TransactionLeaf) String() string {
	return fmt.Sprintf("transaction leaf %d/%d (%s)", l.Variant, l.Index, l.ID)
}

// TransactionLeafFromBytes decodes the Bytes format
func TransactionLeafFromBytes(b []byte) (TransactionLeaf, error) {
	if len(b) != TransactionLeafBytes {
		return TransactionLeaf{}, fmt.Errorf("transaction leaf must be %d bytes, got %d: %w", TransactionLeafBytes, len(b), core.ErrInvalidEncoding)
	}
	id, err := core.FieldFromBytesLE(b[3:])
	if err != nil {
		return TransactionLeaf{}, fmt.Errorf("transaction leaf id: %w", err)
	}
	return TransactionLeaf{Variant: b[0], Index: binary.LittleEndian.Uint16(b[1:3]), ID: id}, nil
}

// TransitionLeaf is a leaf of a transition tree; ID is an input or output ID
type TransitionLeaf struct {
	Version uint8
	Index   uint8
	Variant uint8
	ID      core.Field
}

// ToBitsLE returns version ‖ index ‖ variant ‖ id as little-endian bits
func (l TransitionLeaf) ToBitsLE() []bool {
	bits := utils.UintToBitsLE(uint64(l.Version), 8)
	bits = append(bits, utils.UintToBitsLE(uint64(l.Index), 8)...)
	bits = append(bits, utils.UintToBitsLE(uint64(l.Variant), 8)...)
	return append(bits, l.ID.ToBitsLE()...)
}

// Bytes returns version ‖ index ‖ variant ‖ id
func (l TransitionLeaf) Bytes() []byte {
	out := make([]byte, 0, TransitionLeafBytes)
	out = append(out, l.Version, l.Index, l.Variant)
	id := l.ID.Bytes()
	return append(out, id[:]...)
}

func (l TransitionLeaf) String() string {
	return fmt.Sprintf("transition leaf v%d %d/%d (%s)", l.Version, l.Index, l.Variant, l.ID)
}

// TransitionLeafFromBytes decodes the Bytes format
func TransitionLeafFromBytes(b []byte) (TransitionLeaf, error) {
	if len(b) != TransitionLeafBytes {
		return TransitionLeaf{}, fmt.Errorf("transition leaf must be %d bytes, got %d: %w", TransitionLeafBytes, len(b), core.ErrInvalidEncoding)
	}
	id, err := core.FieldFromBytesLE(b[3:])
	if err != nil {
		return TransitionLeaf{}, fmt.Errorf("transition leaf id: %w", err)
	}
	return TransitionLeaf{Version: b[0], Index: b[1], Variant: b[2], ID: id}, nil
}
