// Package models defines the core ledger records for presales, commitments,
// and dark pool orders.
package models

// Presale is the permanent audit record of one fundraising campaign.
// There is exactly one per (mint, creator) pair.
type Presale struct {
	// ID is the unique identifier for the presale record.
	ID string `json:"id"`
	// Creator is the identity that initialized the presale and receives
	// raised funds and unsold tokens at finalize.
	Creator string `json:"creator"`
	// Mint is the identity of the token being sold.
	Mint string `json:"mint"`
	// HardCap is the maximum total deposit amount, in smallest currency units.
	HardCap uint64 `json:"hard_cap"`
	// TokensForSale is the token supply held in custody for claims,
	// in smallest token units.
	TokensForSale uint64 `json:"tokens_for_sale"`
	// StartTime and EndTime bound the commit window (unix seconds).
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`
	// TotalCommitted is the running deposit total. Monotonically
	// non-decreasing, frozen at finalize.
	TotalCommitted uint64 `json:"total_committed"`
	// FinalTotal is TotalCommitted frozen at finalize; zero until then.
	// All claim shares divide by this value, never a re-read total.
	FinalTotal uint64 `json:"final_total,omitempty"`
	// CommitmentCount is the number of accepted commitments.
	CommitmentCount uint32 `json:"commitment_count"`
	// Finalized flips false→true exactly once.
	Finalized bool `json:"finalized"`
}

// Presale status values returned by Status.
const (
	StatusUpcoming  = "upcoming"
	StatusOpen      = "open"
	StatusEnded     = "ended"
	StatusFinalized = "finalized"
)

// Status derives the presale lifecycle phase at the given unix time.
func (p *Presale) Status(now int64) string {
	switch {
	case p.Finalized:
		return StatusFinalized
	case now < p.StartTime:
		return StatusUpcoming
	case now > p.EndTime || p.TotalCommitted == p.HardCap:
		return StatusEnded
	default:
		return StatusOpen
	}
}

// Commitment records one accepted deposit, identified only by its hash.
type Commitment struct {
	// PresaleID references the owning presale.
	PresaleID string `json:"presale_id"`
	// Hash is H(secret ‖ destination), unique within the presale.
	Hash [32]byte `json:"-"`
	// Amount is the deposited amount, fixed at creation.
	Amount uint64 `json:"amount"`
	// Claimed flips false→true exactly once, at claim.
	Claimed bool `json:"claimed"`
}

// DarkPool aggregates hidden orders for one mint.
type DarkPool struct {
	// ID is the unique identifier for the pool record.
	ID string `json:"id"`
	// Mint is the token traded in this pool.
	Mint string `json:"mint"`
	// Authority is the identity that initialized the pool.
	Authority string `json:"authority"`
	// OrderCount is the number of orders ever placed.
	OrderCount uint64 `json:"order_count"`
	// TotalVolume is the cumulative fund volume of filled orders.
	TotalVolume uint64 `json:"total_volume"`
}

// DarkOrder is a hidden limit order. Price and side stay concealed inside
// the order hash until a taker reveals them at fill time.
type DarkOrder struct {
	// PoolID references the owning dark pool.
	PoolID string `json:"pool_id"`
	// Maker is the identity that placed and escrowed the order.
	Maker string `json:"maker"`
	// Hash binds secret, side, amounts and maker into one digest.
	Hash [32]byte `json:"-"`
	// EscrowFunds and EscrowTokens are the escrowed balances; at least
	// one is positive.
	EscrowFunds  uint64 `json:"escrow_funds"`
	EscrowTokens uint64 `json:"escrow_tokens"`
	// Filled and Cancelled are one-way terminal flags.
	Filled    bool `json:"filled"`
	Cancelled bool `json:"cancelled"`
	// OrderID is the pool-local sequence number.
	OrderID uint64 `json:"order_id"`
	// CreatedAt is the placement time (unix seconds).
	CreatedAt int64 `json:"created_at"`
}

// Order sides revealed at fill time.
const (
	// SideSellTokens: the maker sells escrowed tokens for the taker's funds.
	SideSellTokens uint8 = 0
	// SideBuyTokens: the maker buys tokens with escrowed funds.
	SideBuyTokens uint8 = 1
)

// Transfer is one custody movement on the ledger, kept as the audit trail
// that replaces the chain's implicit balance accounting.
type Transfer struct {
	// ID is the unique identifier for the transfer row.
	ID string
	// RefID references the presale or pool whose custody moved.
	RefID string
	// Kind describes the movement; see the Transfer* constants.
	Kind string
	// Asset is "funds" or the token mint identity.
	Asset string
	// From and To are identities; the ledger's own custody is "vault".
	From string
	To   string
	// Amount moved, in smallest units.
	Amount uint64
}

// Transfer kinds recorded by ledger operations.
const (
	TransferCommitDeposit = "commit_deposit"
	TransferTokenCustody  = "token_custody"
	TransferFundsPayout   = "funds_payout"
	TransferUnsoldReturn  = "unsold_return"
	TransferClaimPayout   = "claim_payout"
	TransferOrderEscrow   = "order_escrow"
	TransferOrderRelease  = "order_release"
)

// AssetFunds names the funding currency in transfer rows.
const AssetFunds = "funds"

// CustodyAccount is the reserved identity for ledger-held balances.
const CustodyAccount = "vault"
