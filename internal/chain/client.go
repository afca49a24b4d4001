// Package chain is the port to the ledger of record. The settlement engine
// and relayer orchestrator talk only to the Client interface, never to a
// concrete RPC endpoint directly.
package chain

import (
	"context"
	"errors"
)

// ErrTxNotFound reports that a transaction signature is unknown to the
// ledger, typically because it has not confirmed yet.
var ErrTxNotFound = errors.New("transaction not found")

// TransactionInfo is a confirmed transaction with the balance movements
// needed to verify deposits.
type TransactionInfo struct {
	// Signature identifies the transaction.
	Signature string
	// Slot is the ledger position it confirmed at.
	Slot uint64
	// Failed is true when the ledger recorded the transaction as errored.
	Failed bool
	// AccountKeys lists the accounts touched, aligned with the balance
	// slices below.
	AccountKeys []string
	// PreBalances and PostBalances are the fund balances of AccountKeys
	// before and after execution.
	PreBalances  []uint64
	PostBalances []uint64
}

// ReceivedAmount returns how many fund units the transaction credited to
// account, zero if the account was not touched or was debited.
func (t *TransactionInfo) ReceivedAmount(account string) uint64 {
	for i, key := range t.AccountKeys {
		if key != account || i >= len(t.PreBalances) || i >= len(t.PostBalances) {
			continue
		}
		if t.PostBalances[i] > t.PreBalances[i] {
			return t.PostBalances[i] - t.PreBalances[i]
		}
	}
	return 0
}

// Client is the chain-agnostic contract for everything the pipeline needs
// from the ledger of record.
type Client interface {
	// GetTransaction fetches a confirmed transaction by signature.
	// Returns ErrTxNotFound while the signature is unresolved.
	GetTransaction(ctx context.Context, signature string) (*TransactionInfo, error)

	// GetTokenBalance reads owner's current balance for the given token.
	// A missing token account reads as zero, not an error.
	GetTokenBalance(ctx context.Context, owner, mint string) (uint64, error)

	// EnsureTokenAccount makes sure owner has a receiving slot for the
	// token, creating one (paid by the signer) if absent.
	EnsureTokenAccount(ctx context.Context, signerSecret, owner, mint string) error

	// TransferTokens moves tokens from the signer's account to the
	// destination owner and returns the transaction signature. Each call
	// obtains a fresh recency marker before signing.
	TransferTokens(ctx context.Context, signerSecret, destination, mint string, amount uint64) (string, error)

	// SubmitTransaction signs (when the payload requires it) and submits a
	// pre-built serialized transaction, returning its signature.
	SubmitTransaction(ctx context.Context, signerSecret, payload string) (string, error)

	// LatestBlockhash returns the current recency marker for signing.
	LatestBlockhash(ctx context.Context) (string, error)
}
