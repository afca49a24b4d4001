// Package settlement drives swap proceeds from the custodial account to
// their destination despite asynchronous external settlement: the balance
// may read zero for a while after a swap confirms, so the engine polls
// instead of assuming immediate consistency.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/daralabs/dara/internal/chain"
	"github.com/daralabs/dara/internal/retry"
)

// ErrSettlementTimeout is the terminal failure after the attempt ceiling
// is exhausted; it is always reported, never swallowed.
var ErrSettlementTimeout = errors.New("settlement timed out")

// Tuning defaults. Zero-balance polls are cheap reads and get a higher
// ceiling than transfer submissions.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxPolls     = 30
)

// Result reports a completed settlement transfer.
type Result struct {
	// TxRef is the transfer transaction signature.
	TxRef string
	// Amount is what was actually moved: min(observed balance, requested).
	Amount uint64
}

// Engine settles and transfers token proceeds with bounded retries.
type Engine struct {
	chain  chain.Client
	logger *zap.Logger

	// pollInterval spaces zero-balance reads; maxPolls bounds them.
	pollInterval time.Duration
	maxPolls     int

	// backoff shapes the delay between failed transfer submissions.
	backoff retry.Policy

	// sleep is injectable for tests.
	sleep retry.Sleeper
}

// NewEngine constructs an Engine over the given chain client.
func NewEngine(c chain.Client, logger *zap.Logger) *Engine {
	return &Engine{
		chain:        c,
		logger:       logger,
		pollInterval: DefaultPollInterval,
		maxPolls:     DefaultMaxPolls,
		backoff:      retry.Policy{BaseDelay: time.Second, MaxDelay: 30 * time.Second},
		sleep:        retry.Wait,
	}
}

// SettleAndTransfer waits for the custodial account to hold a non-zero
// balance of the token, then transfers min(balance, requestedAmount) to
// destination. Transfer submission errors consume attempts with capped
// exponential backoff; zero-balance reads only consume polls. Exhausting
// either ceiling returns ErrSettlementTimeout.
func (e *Engine) SettleAndTransfer(ctx context.Context, signerSecret, custodialOwner, destination, mint string, requestedAmount uint64, maxAttempts int) (*Result, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	polls := 0
	attempts := 0

	fail := func(step string, err error) error {
		attempts++
		e.logger.Warn("settlement attempt failed",
			zap.String("step", step),
			zap.Int("attempt", attempts),
			zap.Error(err),
		)
		if attempts >= maxAttempts {
			return fmt.Errorf("%w: %s after %d attempts: %v", ErrSettlementTimeout, step, attempts, err)
		}
		return e.sleep(ctx, e.backoff.Delay(attempts-1))
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// The destination needs a receiving slot before any transfer.
		if err := e.chain.EnsureTokenAccount(ctx, signerSecret, destination, mint); err != nil {
			if ferr := fail("ensure token account", err); ferr != nil {
				return nil, ferr
			}
			continue
		}

		balance, err := e.chain.GetTokenBalance(ctx, custodialOwner, mint)
		if err != nil {
			if ferr := fail("read balance", err); ferr != nil {
				return nil, ferr
			}
			continue
		}

		if balance == 0 {
			// Not a failure: proceeds simply have not landed yet.
			polls++
			if polls >= e.maxPolls {
				return nil, fmt.Errorf("%w: balance still zero after %d polls", ErrSettlementTimeout, polls)
			}
			if err := e.sleep(ctx, e.pollInterval); err != nil {
				return nil, err
			}
			continue
		}

		// Never transfer more than is actually available, so a race with
		// the true balance cannot fail the submission late.
		amount := requestedAmount
		if balance < amount {
			amount = balance
		}

		txRef, err := e.chain.TransferTokens(ctx, signerSecret, destination, mint, amount)
		if err != nil {
			if ferr := fail("transfer", err); ferr != nil {
				return nil, ferr
			}
			continue
		}

		e.logger.Info("settlement complete",
			zap.String("tx", txRef),
			zap.Uint64("amount", amount),
			zap.Int("polls", polls),
		)
		return &Result{TxRef: txRef, Amount: amount}, nil
	}
}
