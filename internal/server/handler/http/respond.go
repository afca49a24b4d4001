// Package http exposes the presale ledger, dark pool, and relayer
// pipeline over a JSON API.
package http

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/daralabs/dara/internal/commitment"
	"github.com/daralabs/dara/internal/models"
	"github.com/daralabs/dara/internal/relayer"
)

// clientErrors are ledger invariant and validation failures: the request
// was understood but cannot be honored.
var clientErrors = []error{
	models.ErrPresaleNotFound,
	models.ErrPresaleExists,
	models.ErrPresaleNotStarted,
	models.ErrPresaleEnded,
	models.ErrAlreadyFinalized,
	models.ErrHardCapExceeded,
	models.ErrPresaleStillActive,
	models.ErrNotFinalized,
	models.ErrAlreadyClaimed,
	models.ErrInvalidProof,
	models.ErrInvalidAmount,
	models.ErrInvalidTimeRange,
	models.ErrUnauthorized,
	models.ErrDuplicateCommitment,
	models.ErrPoolNotFound,
	models.ErrPoolExists,
	models.ErrOrderNotFound,
	models.ErrDuplicateOrder,
	models.ErrOrderFilled,
	models.ErrOrderCancelled,
	models.ErrInvalidOrderProof,
	models.ErrInvalidSide,
	models.ErrInvalidOrderParams,
	models.ErrInsufficientEscrow,
	relayer.ErrDepositNotFound,
	relayer.ErrInsufficientDeposit,
}

// statusFor maps a service error onto an HTTP status. Invariant
// violations are the caller's fault; everything else is reported as an
// internal failure, including external service errors.
func statusFor(err error) int {
	for _, sentinel := range clientErrors {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err)
}

// parseHash decodes a hex-encoded 32-byte commitment hash.
func parseHash(s string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("hash is not hex: %w", err)
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("hash is %d bytes, want %d", len(raw), len(out))
	}
	copy(out[:], raw)
	return out, nil
}

// parseSecret decodes a hex-encoded commitment secret.
func parseSecret(s string) ([commitment.SecretSize]byte, error) {
	var out [commitment.SecretSize]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("secret is not hex: %w", err)
	}
	if len(raw) != len(out) {
		return out, fmt.Errorf("secret is %d bytes, want %d", len(raw), len(out))
	}
	copy(out[:], raw)
	return out, nil
}
