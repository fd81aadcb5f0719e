// Package signature implements Schnorr signatures over the Edwards group with
// a Poseidon Fiat–Shamir challenge.
package signature

import (
	"fmt"
	"io"

	"github.com/vybium/vybium-console/internal/vybium-console/algorithms"
	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// SignatureBytes is the size of an encoded signature
const SignatureBytes = 2 * core.ScalarBytes

// KeyPair holds a signing key and VerifyingKey = G·SigningKey
type KeyPair struct {
	SigningKey   core.Scalar
	VerifyingKey core.Group
}

// NewKeyPair derives the verifying key; a zero signing key is rejected
func NewKeyPair(sk core.Scalar) (*KeyPair, error) {
	if sk.IsZero() {
		return nil, fmt.Errorf("signing key is zero: %w", core.ErrInvalidKey)
	}
	return &KeyPair{SigningKey: sk, VerifyingKey: core.Generator().ScalarMul(sk)}, nil
}

// GenerateKeyPair samples a fresh key pair from rng
func GenerateKeyPair(rng io.Reader) (*KeyPair, error) {
	sk, err := core.RandomNonZeroScalar(rng)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	return NewKeyPair(sk)
}

// Signature is the pair (challenge, response)
type Signature struct {
	Challenge core.Scalar
	Response  core.Scalar
}

// Bytes returns challenge ‖ response, both little-endian
func (s Signature) Bytes() [SignatureBytes]byte {
	var out [SignatureBytes]byte
	c, r := s.Challenge.Bytes(), s.Response.Bytes()
	copy(out[:core.ScalarBytes], c[:])
	copy(out[core.ScalarBytes:], r[:])
	return out
}

// SignatureFromBytes decodes a signature, rejecting non-canonical scalars
func SignatureFromBytes(b []byte) (Signature, error) {
	if len(b) != SignatureBytes {
		return Signature{}, fmt.Errorf("signature must be %d bytes, got %d: %w", SignatureBytes, len(b), core.ErrInvalidEncoding)
	}
	c, err := core.ScalarFromBytesLE(b[:core.ScalarBytes])
	if err != nil {
		return Signature{}, fmt.Errorf("signature challenge: %w", err)
	}
	r, err := core.ScalarFromBytesLE(b[core.ScalarBytes:])
	if err != nil {
		return Signature{}, fmt.Errorf("signature response: %w", err)
	}
	return Signature{Challenge: c, Response: r}, nil
}

// Signer signs and verifies messages made of field elements
type Signer struct {
	poseidon *algorithms.Poseidon
}

// NewSigner creates a signer whose challenges are hashed with poseidon
func NewSigner(poseidon *algorithms.Poseidon) *Signer {
	return &Signer{poseidon: poseidon}
}

// KeyPairFromSeed derives a key pair deterministically from a seed
func (s *Signer) KeyPairFromSeed(seed core.Field) (*KeyPair, error) {
	sk, err := s.poseidon.HashToScalar(algorithms.DomainAccountKey, []core.Field{seed})
	if err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}
	return NewKeyPair(sk)
}

// Sign produces a signature on message. A fresh nonce is read from rng on
// every call; callers must never supply a reader that repeats output, since
// two signatures sharing a nonce reveal the signing key.
func (s *Signer) Sign(sk core.Scalar, message []core.Field, rng io.Reader) (Signature, error) {
	if sk.IsZero() {
		return Signature{}, fmt.Errorf("signing key is zero: %w", core.ErrInvalidKey)
	}
	k, err := core.RandomNonZeroScalar(rng)
	if err != nil {
		return Signature{}, fmt.Errorf("failed to sample nonce: %w", err)
	}
	g := core.Generator()
	r := g.ScalarMul(k)
	vk := g.ScalarMul(sk)

	c, err := s.challenge(r, vk, message)
	if err != nil {
		return Signature{}, err
	}
	return Signature{Challenge: c, Response: k.Sub(c.Mul(sk))}, nil
}

// Verify recomputes R = G·s + VK·c and accepts iff the challenge matches.
// It never fails with an error; every rejection is false.
func (s *Signer) Verify(vk core.Group, message []core.Field, sig Signature) bool {
	if vk.IsIdentity() || !vk.IsInSubgroup() {
		return false
	}
	r := core.Generator().ScalarMul(sig.Response).Add(vk.ScalarMul(sig.Challenge))
	c, err := s.challenge(r, vk, message)
	if err != nil {
		return false
	}
	return c.Equal(sig.Challenge)
}

func (s *Signer) challenge(r, vk core.Group, message []core.Field) (core.Scalar, error) {
	pre := make([]core.Field, 0, len(message)+3)
	pre = append(pre, r.X(), vk.X(), core.FieldFromUint64(uint64(len(message))))
	pre = append(pre, message...)
	c, err := s.poseidon.HashToScalar(algorithms.DomainSignatureChallenge, pre)
	if err != nil {
		return core.Scalar{}, fmt.Errorf("signature challenge: %w", err)
	}
	return c, nil
}
