package algorithms

import (
	"fmt"

	"github.com/vybium/vybium-console/internal/vybium-console/core"
)

// PRF is the keyed function Poseidon(domain, [key, input...])
type PRF struct {
	poseidon *Poseidon
}

// NewPRF creates a PRF over the given Poseidon instance
func NewPRF(poseidon *Poseidon) *PRF {
	return &PRF{poseidon: poseidon}
}

// Evaluate computes the PRF under DomainPRF
func (f *PRF) Evaluate(key core.Field, input []core.Field) (core.Field, error) {
	return f.EvaluateWithDomain(DomainPRF, key, input)
}

// EvaluateWithDomain computes the PRF under a derived domain such as
// DomainSerialNumber
func (f *PRF) EvaluateWithDomain(domain Domain, key core.Field, input []core.Field) (core.Field, error) {
	pre := make([]core.Field, 0, len(input)+1)
	pre = append(pre, key)
	pre = append(pre, input...)
	out, err := f.poseidon.Hash(domain, pre)
	if err != nil {
		return core.Field{}, fmt.Errorf("prf: %w", err)
	}
	return out, nil
}
