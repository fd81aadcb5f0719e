package utils

import (
	"bytes"
	"testing"
)

// TestChannelDeterminism tests that equal transcripts derive equal values
func TestChannelDeterminism(t *testing.T) {
	a := NewChannel("vectors")
	b := NewChannel("vectors")
	c := NewChannel("other")

	if !bytes.Equal(a.State(), b.State()) {
		t.Fatal("equal labels should give equal states")
	}
	if bytes.Equal(a.State(), c.State()) {
		t.Fatal("different labels should give different states")
	}

	a.Send([]byte("data"))
	b.Send([]byte("data"))
	if !a.ReceiveField().Equal(b.ReceiveField()) {
		t.Error("ReceiveField should be deterministic")
	}
	if !a.ReceiveScalar().Equal(b.ReceiveScalar()) {
		t.Error("ReceiveScalar should be deterministic")
	}
	if a.String() != b.String() {
		t.Error("transcripts should match")
	}
}

// TestChannelRatchets tests that every receive changes the state
func TestChannelRatchets(t *testing.T) {
	ch := NewChannel("ratchet")
	first := ch.ReceiveField()
	second := ch.ReceiveField()
	if first.Equal(second) {
		t.Error("consecutive receives should differ")
	}

	before := ch.State()
	buf := make([]byte, 100)
	n, err := ch.Read(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	if bytes.Equal(before, ch.State()) {
		t.Error("Read should ratchet the state")
	}
	if bits := ch.ReceiveBits(13); len(bits) != 13 {
		t.Errorf("ReceiveBits(13) returned %d bits", len(bits))
	}
	if len(ch.Transcript()) == 0 {
		t.Error("transcript should record operations")
	}
}
