// Package relayer orchestrates the deposit-verify, swap, settle and
// transfer pipeline. The relayer fronts all external interactions so the
// depositor's identity never appears on the swap or the payout.
package relayer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/daralabs/dara/internal/chain"
	"github.com/daralabs/dara/internal/launcher"
	"github.com/daralabs/dara/internal/models"
	"github.com/daralabs/dara/internal/retry"
	"github.com/daralabs/dara/internal/settlement"
	"github.com/daralabs/dara/internal/stealth"
	"github.com/daralabs/dara/internal/swapapi"
)

var (
	// ErrDepositNotFound reports that the claimed deposit transaction is
	// unknown to the ledger or recorded as failed.
	ErrDepositNotFound = errors.New("deposit transaction not found")
	// ErrInsufficientDeposit reports that the deposit credited less than
	// the requested swap amount plus the relayer fee.
	ErrInsufficientDeposit = errors.New("insufficient deposit")
	// ErrSwapExecutionFailed is the terminal error after every swap
	// submission attempt has failed.
	ErrSwapExecutionFailed = errors.New("swap execution failed")
)

// RelayerFeeFunds is the flat fee, in fund units, the relayer keeps from
// every deposit to cover submission costs.
const RelayerFeeFunds = 5000

// MaxPrebuyWallets caps the number of buyer identities in one prebuy run.
const MaxPrebuyWallets = 5

const (
	swapSendAttempts    = 3
	settleAttempts      = 10
	defaultIndexingWait = 5 * time.Second
	defaultInterBuyWait = 1500 * time.Millisecond
)

// SwapService prices swaps and builds swap transactions.
type SwapService interface {
	GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*swapapi.Quote, error)
	SwapTransaction(ctx context.Context, quote *swapapi.Quote, userPublicKey string) (string, error)
}

// TokenDeployer mints new tokens through the external deploy service.
type TokenDeployer interface {
	CreateToken(ctx context.Context, meta launcher.TokenMetadata) (*launcher.Deployment, error)
}

// Settler moves settled proceeds from the custodial account to a
// destination, retrying until the balance lands.
type Settler interface {
	SettleAndTransfer(ctx context.Context, signerSecret, custodialOwner, destination, mint string, requestedAmount uint64, maxAttempts int) (*settlement.Result, error)
}

// SwapRequest describes one deposit-backed swap.
type SwapRequest struct {
	// DepositSignature is the transaction that funded the custodial
	// account for this swap.
	DepositSignature string
	InputMint        string
	OutputMint       string
	// Amount is the input quantity to swap, excluding the relayer fee.
	Amount      uint64
	SlippageBps int
}

// SwapResult is the completed pipeline: proceeds rest at a fresh stealth
// identity whose secret is returned to the caller exactly once.
type SwapResult struct {
	StealthPublicKey string `json:"stealthPublicKey"`
	StealthSecretKey string `json:"stealthSecretKey"`
	Proceeds         uint64 `json:"proceeds"`
	SwapTxRef        string `json:"swapTxRef"`
	TransferTxRef    string `json:"transferTxRef"`
}

// Orchestrator runs swap and prebuy pipelines over one custodial signer.
type Orchestrator struct {
	chain    chain.Client
	swaps    SwapService
	deployer TokenDeployer
	settler  Settler
	signer   *Signer
	logger   *zap.Logger

	sendPolicy retry.Policy

	// indexingWait gives external indexers time to observe a new mint
	// before the first buy; interBuyWait spaces consecutive buys.
	indexingWait time.Duration
	interBuyWait time.Duration

	// sleep is injectable for tests.
	sleep retry.Sleeper
}

// NewOrchestrator wires the pipeline over its external dependencies.
func NewOrchestrator(c chain.Client, swaps SwapService, deployer TokenDeployer, settler Settler, signer *Signer, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		chain:        c,
		swaps:        swaps,
		deployer:     deployer,
		settler:      settler,
		signer:       signer,
		logger:       logger,
		sendPolicy:   retry.Policy{MaxAttempts: swapSendAttempts, BaseDelay: time.Second},
		indexingWait: defaultIndexingWait,
		interBuyWait: defaultInterBuyWait,
		sleep:        retry.Wait,
	}
}

// verifyDeposit confirms the deposit transaction exists, succeeded, and
// credited the custodial account with at least amount plus the fee.
func (o *Orchestrator) verifyDeposit(ctx context.Context, signature string, amount uint64) error {
	// amount+fee must not wrap around.
	if amount > math.MaxUint64-RelayerFeeFunds {
		return fmt.Errorf("%w: amount %d is too large", models.ErrInvalidAmount, amount)
	}
	tx, err := o.chain.GetTransaction(ctx, signature)
	if err != nil {
		if errors.Is(err, chain.ErrTxNotFound) {
			return fmt.Errorf("%w: %s", ErrDepositNotFound, signature)
		}
		return fmt.Errorf("look up deposit: %w", err)
	}
	if tx.Failed {
		return fmt.Errorf("%w: %s is recorded as failed", ErrDepositNotFound, signature)
	}
	received := tx.ReceivedAmount(o.signer.PublicKey())
	if received < amount+RelayerFeeFunds {
		return fmt.Errorf("%w: received %d, need %d", ErrInsufficientDeposit, received, amount+RelayerFeeFunds)
	}
	return nil
}

// executeSwapLocked runs quote, swap and settlement for one buy. The
// caller must hold the signer.
func (o *Orchestrator) executeSwapLocked(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*SwapResult, error) {
	quote, err := o.swaps.GetQuote(ctx, inputMint, outputMint, amount, slippageBps)
	if err != nil {
		// A quote failure means the route is unavailable right now;
		// retrying immediately would reprice against the same book.
		return nil, err
	}
	expected, err := quote.OutputAmount()
	if err != nil {
		return nil, err
	}

	var swapSig string
	err = retry.Do(ctx, o.sendPolicy, o.sleep, func(attempt int) error {
		// Rebuild the transaction each attempt so the recency marker and
		// priority fee are fresh.
		payload, serr := o.swaps.SwapTransaction(ctx, quote, o.signer.PublicKey())
		if serr != nil {
			return serr
		}
		swapSig, serr = o.chain.SubmitTransaction(ctx, o.signer.SecretKey(), payload)
		if serr != nil {
			o.logger.Warn("swap submission failed",
				zap.Int("attempt", attempt+1),
				zap.Error(serr),
			)
		}
		return serr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSwapExecutionFailed, err)
	}

	dest, err := stealth.Generate()
	if err != nil {
		return nil, err
	}

	settled, err := o.settler.SettleAndTransfer(ctx, o.signer.SecretKey(), o.signer.PublicKey(), dest.PublicKey, outputMint, expected, settleAttempts)
	if err != nil {
		return nil, err
	}

	return &SwapResult{
		StealthPublicKey: dest.PublicKey,
		StealthSecretKey: dest.SecretKey,
		Proceeds:         settled.Amount,
		SwapTxRef:        swapSig,
		TransferTxRef:    settled.TxRef,
	}, nil
}

// ExecuteSwap verifies the deposit, swaps the amount, and lands the
// proceeds at a fresh stealth identity.
func (o *Orchestrator) ExecuteSwap(ctx context.Context, req SwapRequest) (*SwapResult, error) {
	release := o.signer.Acquire()
	defer release()

	if err := o.verifyDeposit(ctx, req.DepositSignature, req.Amount); err != nil {
		return nil, err
	}

	result, err := o.executeSwapLocked(ctx, req.InputMint, req.OutputMint, req.Amount, req.SlippageBps)
	if err != nil {
		return nil, err
	}

	o.logger.Info("swap pipeline complete",
		zap.String("swap_tx", result.SwapTxRef),
		zap.String("transfer_tx", result.TransferTxRef),
		zap.Uint64("proceeds", result.Proceeds),
	)
	return result, nil
}

// PrebuyRequest describes a token launch with immediate buys from
// multiple fresh identities.
type PrebuyRequest struct {
	Metadata launcher.TokenMetadata
	// DepositSignature is the transaction funding all the buys.
	DepositSignature string
	// WalletCount is the number of buyer identities; clamped to
	// [1, MaxPrebuyWallets].
	WalletCount int
	// InputMint is the funding token; TotalAmount is split evenly
	// across the identities, floor per buy.
	InputMint   string
	TotalAmount uint64
	SlippageBps int
}

// PrebuyResult reports the deployed mint and every identity that
// completed its buy. A shorter identity list than requested means some
// buys failed and were skipped.
type PrebuyResult struct {
	Mint        string       `json:"mint"`
	DeployTxRef string       `json:"deployTxRef"`
	Identities  []SwapResult `json:"identities"`
}

// Prebuy deploys a new token and buys it from up to WalletCount fresh
// stealth identities. Individual buy failures are logged and skipped;
// the deploy itself failing is terminal.
func (o *Orchestrator) Prebuy(ctx context.Context, req PrebuyRequest) (*PrebuyResult, error) {
	count := req.WalletCount
	if count < 1 {
		count = 1
	}
	if count > MaxPrebuyWallets {
		count = MaxPrebuyWallets
	}

	release := o.signer.Acquire()
	defer release()

	perBuy := req.TotalAmount / uint64(count)
	if perBuy == 0 {
		return nil, models.ErrInvalidAmount
	}

	// The deposit must cover the whole run; if some buys fail the
	// surplus simply stays with the custodial account.
	if err := o.verifyDeposit(ctx, req.DepositSignature, req.TotalAmount); err != nil {
		return nil, err
	}

	deployment, err := o.deployer.CreateToken(ctx, req.Metadata)
	if err != nil {
		return nil, fmt.Errorf("deploy token: %w", err)
	}

	deploySig, err := o.chain.SubmitTransaction(ctx, o.signer.SecretKey(), deployment.SignedTransaction)
	if err != nil {
		return nil, fmt.Errorf("broadcast deploy: %w", err)
	}

	o.logger.Info("token deployed",
		zap.String("mint", deployment.MintAddress),
		zap.String("deploy_tx", deploySig),
		zap.Int("wallet_count", count),
	)

	// Let indexers pick up the mint before quoting against it.
	if err := o.sleep(ctx, o.indexingWait); err != nil {
		return nil, err
	}

	result := &PrebuyResult{
		Mint:        deployment.MintAddress,
		DeployTxRef: deploySig,
		Identities:  []SwapResult{},
	}

	for i := 0; i < count; i++ {
		buy, err := o.executeSwapLocked(ctx, req.InputMint, deployment.MintAddress, perBuy, req.SlippageBps)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			o.logger.Warn("prebuy identity failed",
				zap.Int("wallet", i+1),
				zap.Error(err),
			)
		} else {
			result.Identities = append(result.Identities, *buy)
		}

		if i < count-1 {
			if err := o.sleep(ctx, o.interBuyWait); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}
