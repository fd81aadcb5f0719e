package utils

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// Channel is a deterministic transcript. Every Send absorbs data into the
// state; every Receive derives a value from the state and ratchets it. The
// channel also serves as a seeded io.Reader for reproducible test vectors.
type Channel struct {
	state []byte
	log   []string
}

// NewChannel creates a channel seeded with label
func NewChannel(label string) *Channel {
	c := &Channel{log: make([]string, 0, 64)}
	c.state = c.hash(append([]byte("vybium.console.channel/"), label...))
	return c
}

// Send absorbs data into the channel state
func (c *Channel) Send(data []byte) {
	c.log = append(c.log, fmt.Sprintf("send:%s", hex.EncodeToString(data)))
	c.state = c.hash(append(c.State(), data...))
}

// Read fills p from a SHAKE256 stream keyed by the state, then ratchets the
// state. It never fails.
func (c *Channel) Read(p []byte) (int, error) {
	xof := sha3.NewShake256()
	xof.Write([]byte("read"))
	xof.Write(c.state)
	if _, err := io.ReadFull(xof, p); err != nil {
		return 0, err
	}
	c.log = append(c.log, fmt.Sprintf("read:%d", len(p)))
	c.state = c.hash(c.state)
	return len(p), nil
}

// ReceiveField derives a uniformly distributed field element
func (c *Channel) ReceiveField() core.Field {
	f, err := core.RandomField(c)
	if err != nil {
		panic(fmt.Sprintf("channel reader failed: %v", err))
	}
	c.log = append(c.log, fmt.Sprintf("receiveField:%s", f))
	return f
}

// ReceiveScalar derives a uniformly distributed scalar
func (c *Channel) ReceiveScalar() core.Scalar {
	s, err := core.RandomScalar(c)
	if err != nil {
		panic(fmt.Sprintf("channel reader failed: %v", err))
	}
	c.log = append(c.log, fmt.Sprintf("receiveScalar:%s", s))
	return s
}

// ReceiveBits derives n bits
func (c *Channel) ReceiveBits(n int) []bool {
	buf := make([]byte, (n+7)/8)
	_, _ = c.Read(buf)
	c.log = append(c.log, fmt.Sprintf("receiveBits:%d", n))
	return BytesToBitsLE(buf)[:n]
}

// State returns the current channel state
func (c *Channel) State() []byte {
	return append([]byte(nil), c.state...)
}

// Transcript returns the recorded operations
func (c *Channel) Transcript() []string {
	return append([]string(nil), c.log...)
}

func (c *Channel) hash(data []byte) []byte {
	h := sha3.Sum256(data)
	return h[:]
}

// String returns the transcript joined by spaces
func (c *Channel) String() string {
	return strings.Join(c.log, " ")
}
