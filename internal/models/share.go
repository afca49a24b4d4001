package models

import "math/big"

// ProRataShare computes floor(amount * tokensForSale / total), the token
// allocation for one commitment against the finalized total. The product of
// two 64-bit amounts needs 128-bit intermediate precision.
func ProRataShare(amount, tokensForSale, total uint64) uint64 {
	if total == 0 {
		return 0
	}
	n := new(big.Int).SetUint64(amount)
	n.Mul(n, new(big.Int).SetUint64(tokensForSale))
	n.Div(n, new(big.Int).SetUint64(total))
	return n.Uint64()
}
