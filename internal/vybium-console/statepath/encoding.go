package statepath

import (
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/collections/merkle"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// MarshalBinary encodes the state path in chain order from the state root
// down to the transition leaf. Paths use the merkle path format.
func (s *StatePath) MarshalBinary() ([]byte, error) {
	w := &writer{}
	w.field(s.c.StateRoot)
	w.path(s.c.BlockPath)
	w.field(s.c.BlockHash)
	w.field(s.c.PreviousBlockHash)
	w.field(s.c.HeaderRoot)
	w.path(s.c.HeaderPath)
	w.out = append(w.out, s.c.HeaderLeaf.Bytes()...)
	w.path(s.c.TransactionsPath)
	w.field(s.c.TransactionID)
	w.path(s.c.TransactionPath)
	w.out = append(w.out, s.c.TransactionLeaf.Bytes()...)
	w.path(s.c.TransitionPath)
	w.out = append(w.out, s.c.TransitionLeaf.Bytes()...)
	if w.err != nil {
		return nil, w.err
	}
	return w.out, nil
}

// UnmarshalStatePath decodes and re-verifies a state path
func UnmarshalStatePath(h *Hashers, b []byte) (*StatePath, error) {
	r := &reader{in: b}
	var c Components
	c.StateRoot = r.field()
	c.BlockPath = r.path()
	c.BlockHash = r.field()
	c.PreviousBlockHash = r.field()
	c.HeaderRoot = r.field()
	c.HeaderPath = r.path()
	if raw := r.take(HeaderLeafBytes); r.err == nil {
		c.HeaderLeaf, r.err = HeaderLeafFromBytes(raw)
	}
	c.TransactionsPath = r.path()
	c.TransactionID = r.field()
	c.TransactionPath = r.path()
	if raw := r.take(TransactionLeafBytes); r.err == nil {
		c.TransactionLeaf, r.err = TransactionLeafFromBytes(raw)
	}
	c.TransitionPath = r.path()
	if raw := r.take(TransitionLeafBytes); r.err == nil {
		c.TransitionLeaf, r.err = TransitionLeafFromBytes(raw)
	}
	if r.err != nil {
		return nil, r.err
	}
	if len(r.in) != 0 {
		return nil, fmt.Errorf("%d trailing bytes after state path: %w", len(r.in), core.ErrInvalidEncoding)
	}
	return New(h, c)
}

type writer struct {
	out []byte
	err error
}

func (w *writer) field(f core.Field) {
	b := f.Bytes()
	w.out = append(w.out, b[:]...)
}

func (w *writer) path(p *Path) {
	if w.err != nil {
		return
	}
	b, err := merkle.MarshalPath[core.Field](merkle.FieldCodec{}, p)
	if err != nil {
		w.err = err
		return
	}
	w.out = append(w.out, b...)
}

type reader struct {
	in  []byte
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.in) < n {
		r.err = fmt.Errorf("state path truncated: need %d bytes, have %d: %w", n, len(r.in), core.ErrInvalidEncoding)
		return nil
	}
	b := r.in[:n]
	r.in = r.in[n:]
	return b
}

func (r *reader) field() core.Field {
	b := r.take(core.FieldBytes)
	if r.err != nil {
		return core.Field{}
	}
	f, err := core.FieldFromBytesLE(b)
	if err != nil {
		r.err = err
	}
	return f
}

func (r *reader) path() *Path {
	if r.err != nil {
		return nil
	}
	if len(r.in) < 9 {
		r.err = fmt.Errorf("state path truncated inside a merkle path: %w", core.ErrInvalidEncoding)
		return nil
	}
	depth := int(r.in[8])
	b := r.take(9 + depth*core.FieldBytes)
	if r.err != nil {
		return nil
	}
	p, err := merkle.UnmarshalPath[core.Field](merkle.FieldCodec{}, b)
	if err != nil {
		r.err = err
		return nil
	}
	return p
}
