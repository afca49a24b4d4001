// Package commitment implements the hiding/binding commitment scheme that
// links a deposit to its claim destination without revealing either.
//
// The scheme is stateless: hash = SHA-256(secret ‖ destination_bytes).
// Verification is recomputation and constant-time compare, never storage
// of the pre-image.
package commitment

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
)

// SecretSize is the byte length of a depositor secret.
const SecretSize = 32

// NewSecret returns a uniformly random 32-byte secret.
func NewSecret() ([SecretSize]byte, error) {
	var secret [SecretSize]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return secret, fmt.Errorf("read random secret: %w", err)
	}
	return secret, nil
}

// Hash computes SHA-256(secret ‖ destination). Any party holding both
// inputs reproduces the same digest bit for bit.
func Hash(secret [SecretSize]byte, destination []byte) [32]byte {
	h := sha256.New()
	h.Write(secret[:])
	h.Write(destination)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Verify reports whether (secret, destination) opens the given commitment.
func Verify(hash [32]byte, secret [SecretSize]byte, destination []byte) bool {
	computed := Hash(secret, destination)
	return subtle.ConstantTimeCompare(computed[:], hash[:]) == 1
}

// OrderHash computes the dark pool order commitment:
// SHA-256(secret ‖ side ‖ token_amount_le ‖ fund_amount_le ‖ maker).
// Side and amounts stay hidden until the taker reveals them at fill.
func OrderHash(secret [SecretSize]byte, side uint8, tokenAmount, fundAmount uint64, maker []byte) [32]byte {
	h := sha256.New()
	h.Write(secret[:])
	h.Write([]byte{side})
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], tokenAmount)
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], fundAmount)
	h.Write(buf[:])
	h.Write(maker)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// VerifyOrder reports whether the revealed order terms open the commitment.
func VerifyOrder(hash [32]byte, secret [SecretSize]byte, side uint8, tokenAmount, fundAmount uint64, maker []byte) bool {
	computed := OrderHash(secret, side, tokenAmount, fundAmount, maker)
	return subtle.ConstantTimeCompare(computed[:], hash[:]) == 1
}
