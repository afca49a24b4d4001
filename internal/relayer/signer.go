package relayer

import (
	"fmt"
	"sync"

	"github.com/daralabs/dara/internal/stealth"
)

// Signer is the relayer's custodial identity. Its mutex serializes whole
// swap-and-settle sequences: interleaving two pipelines on one custodial
// account would let one sequence settle the other's proceeds.
type Signer struct {
	mu       sync.Mutex
	identity *stealth.Identity
}

// NewSigner reconstructs the custodial identity from its base58 secret key.
func NewSigner(secretKey string) (*Signer, error) {
	id, err := stealth.FromSecretKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("load signer: %w", err)
	}
	return &Signer{identity: id}, nil
}

// PublicKey is the custodial account that receives deposits.
func (s *Signer) PublicKey() string { return s.identity.PublicKey }

// SecretKey is the base58 signing key passed to the chain client.
func (s *Signer) SecretKey() string { return s.identity.SecretKey }

// Acquire takes exclusive use of the custodial account; the returned
// function releases it.
func (s *Signer) Acquire() func() {
	s.mu.Lock()
	return s.mu.Unlock
}
