package models

import "errors"

// Named invariant-violation conditions for the presale ledger. These are
// deterministic rejections: retrying with the same input always fails
// identically, so callers branch on them instead of retrying.
var (
	ErrPresaleNotFound     = errors.New("presale not found")
	ErrPresaleExists       = errors.New("presale already exists for mint and creator")
	ErrPresaleNotStarted   = errors.New("presale has not started yet")
	ErrPresaleEnded        = errors.New("presale has ended")
	ErrAlreadyFinalized    = errors.New("presale is already finalized")
	ErrHardCapExceeded     = errors.New("hard cap would be exceeded")
	ErrPresaleStillActive  = errors.New("presale is still active")
	ErrNotFinalized        = errors.New("presale not finalized yet")
	ErrAlreadyClaimed      = errors.New("already claimed")
	ErrInvalidProof        = errors.New("invalid proof: secret does not match commitment")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidTimeRange    = errors.New("invalid time range")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrDuplicateCommitment = errors.New("commitment hash already recorded")
)

// Named conditions for the dark pool.
var (
	ErrPoolNotFound       = errors.New("dark pool not found")
	ErrPoolExists         = errors.New("dark pool already exists for mint")
	ErrOrderNotFound      = errors.New("order not found")
	ErrDuplicateOrder     = errors.New("order hash already recorded")
	ErrOrderFilled        = errors.New("order already filled")
	ErrOrderCancelled     = errors.New("order is cancelled")
	ErrInvalidOrderProof  = errors.New("invalid proof: secret does not match order hash")
	ErrInvalidSide        = errors.New("invalid side")
	ErrInvalidOrderParams = errors.New("invalid order parameters")
	ErrInsufficientEscrow = errors.New("insufficient escrow balance")
)
