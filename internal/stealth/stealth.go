// Package stealth produces fresh, uncorrelated keypairs used as unlinked
// destinations for swap proceeds and claim payouts.
//
// A stealth identity has no record anywhere at creation time; it becomes
// observable only once it receives assets. The generator never retains the
// secret; it is returned to the caller exactly once.
package stealth

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// Identity is a freshly generated keypair. PublicKey is the base58
// destination identity; SecretKey is the base58 64-byte expanded key.
type Identity struct {
	PublicKey string
	SecretKey string
}

// Generate creates a new identity from the system entropy source.
func Generate() (*Identity, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	return &Identity{
		PublicKey: base58.Encode(pub),
		SecretKey: base58.Encode(priv),
	}, nil
}

// FromSecretKey reconstructs an identity from a base58-encoded secret key,
// as stored by the caller's wallet store.
func FromSecretKey(encoded string) (*Identity, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode secret key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("secret key is %d bytes, want %d", len(raw), ed25519.PrivateKeySize)
	}
	priv := ed25519.PrivateKey(raw)
	pub := priv.Public().(ed25519.PublicKey)
	return &Identity{
		PublicKey: base58.Encode(pub),
		SecretKey: encoded,
	}, nil
}

// PublicKeyBytes decodes the base58 public identity into raw bytes, the
// form consumed by the commitment scheme.
func (id *Identity) PublicKeyBytes() ([]byte, error) {
	raw, err := base58.Decode(id.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	return raw, nil
}
