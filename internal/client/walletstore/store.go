// Package walletstore is the depositor-side encrypted record of burner
// identities, commitment secrets, and stealth wallets. Losing this file
// means losing the ability to claim, so everything sensitive is sealed
// under a passphrase-derived key while the lookup fields stay plain.
package walletstore

import (
	"crypto/cipher"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrRecordNotFound reports a lookup for an unknown record.
var ErrRecordNotFound = errors.New("record not found")

// DepositRecord tracks one commitment made through a burner identity.
// Sealed holds the encrypted DepositSecrets.
type DepositRecord struct {
	// ID is the caller-chosen label for this deposit.
	ID string `json:"id"`
	// Mint and Creator identify the presale.
	Mint    string `json:"mint"`
	Creator string `json:"creator"`
	// Participant is the burner public key that committed.
	Participant string `json:"participant"`
	// ClaimWallet is the destination bound into the commitment hash.
	ClaimWallet string `json:"claim_wallet"`
	// Hash is the hex commitment hash as submitted.
	Hash string `json:"hash"`
	// Amount committed, in fund units.
	Amount uint64 `json:"amount"`
	// Sealed is the encrypted secrets payload.
	Sealed    string `json:"sealed"`
	CreatedAt int64  `json:"created_at"`
}

// DepositSecrets is the sensitive half of a deposit record; it exists in
// plaintext only in memory.
type DepositSecrets struct {
	// BurnerSecretKey is the base58 secret of the burner identity.
	BurnerSecretKey string `json:"burner_secret_key"`
	// CommitSecret is the hex pre-image half of the commitment hash.
	CommitSecret string `json:"commit_secret"`
}

// WalletRecord tracks one stealth wallet returned by the swap pipeline.
type WalletRecord struct {
	// PublicKey is the stealth destination identity.
	PublicKey string `json:"public_key"`
	// Mint is the token the wallet holds.
	Mint string `json:"mint"`
	// Amount is the proceeds recorded at transfer time.
	Amount uint64 `json:"amount"`
	// Sealed is the encrypted WalletSecrets payload.
	Sealed    string `json:"sealed"`
	CreatedAt int64  `json:"created_at"`
}

// WalletSecrets is the sensitive half of a wallet record.
type WalletSecrets struct {
	// SecretKey is the base58 secret of the stealth identity.
	SecretKey string `json:"secret_key"`
}

// Store is the on-disk record set. Save rewrites the whole file.
type Store struct {
	Deposits []DepositRecord `json:"deposits"`
	Wallets  []WalletRecord  `json:"wallets"`

	path string
	mu   sync.Mutex
}

// Open loads the store at path, returning an empty store when the file
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("open wallet store: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(s); err != nil {
		return nil, fmt.Errorf("decode wallet store: %w", err)
	}
	return s, nil
}

// Save writes the store back to its file with owner-only permissions.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode wallet store: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write wallet store: %w", err)
	}
	return nil
}

// AddDeposit seals the secrets into the record and appends it.
func (s *Store) AddDeposit(aead cipher.AEAD, rec DepositRecord, secrets DepositSecrets) error {
	plain, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("encode deposit secrets: %w", err)
	}
	sealed, err := seal(aead, plain)
	if err != nil {
		return err
	}
	rec.Sealed = sealed

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deposits = append(s.Deposits, rec)
	return nil
}

// OpenDeposit finds a deposit by ID and decrypts its secrets.
func (s *Store) OpenDeposit(aead cipher.AEAD, id string) (*DepositRecord, *DepositSecrets, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Deposits {
		if s.Deposits[i].ID != id {
			continue
		}
		plain, err := open(aead, s.Deposits[i].Sealed)
		if err != nil {
			return nil, nil, err
		}
		var secrets DepositSecrets
		if err := json.Unmarshal(plain, &secrets); err != nil {
			return nil, nil, fmt.Errorf("decode deposit secrets: %w", err)
		}
		return &s.Deposits[i], &secrets, nil
	}
	return nil, nil, fmt.Errorf("%w: deposit %q", ErrRecordNotFound, id)
}

// AddWallet seals the secret key into the record and appends it.
func (s *Store) AddWallet(aead cipher.AEAD, rec WalletRecord, secrets WalletSecrets) error {
	plain, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("encode wallet secrets: %w", err)
	}
	sealed, err := seal(aead, plain)
	if err != nil {
		return err
	}
	rec.Sealed = sealed

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Wallets = append(s.Wallets, rec)
	return nil
}

// OpenWallet finds a stealth wallet by public key and decrypts its
// secret key.
func (s *Store) OpenWallet(aead cipher.AEAD, publicKey string) (*WalletRecord, *WalletSecrets, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Wallets {
		if s.Wallets[i].PublicKey != publicKey {
			continue
		}
		plain, err := open(aead, s.Wallets[i].Sealed)
		if err != nil {
			return nil, nil, err
		}
		var secrets WalletSecrets
		if err := json.Unmarshal(plain, &secrets); err != nil {
			return nil, nil, fmt.Errorf("decode wallet secrets: %w", err)
		}
		return &s.Wallets[i], &secrets, nil
	}
	return nil, nil, fmt.Errorf("%w: wallet %q", ErrRecordNotFound, publicKey)
}
