package engine

import "math/big"

// feeBpsDenominator is the basis-point scale for the taker fee rate.
const feeBpsDenominator = 10_000

// TakerFee returns the fee charged on top of a net stake, in lamports.
// The fee is retained by the system: it is never pooled and never refunded.
func TakerFee(stake, feeBps int64) int64 {
	return stake * feeBps / feeBpsDenominator
}

// Winnings returns the pari-mutuel payout for a winning stake.
//
// A winner holding stake v in winning pool W receives their stake back plus
// the share v/W of the losing pool L, computed with truncating integer
// division so the sum of all payouts never exceeds W + L. The remainder from
// truncation stays in the pool. winningPool must be positive; a claim can
// only exist for a wager that itself contributed to it.
func Winnings(stake, winningPool, losingPool int64) int64 {
	// v * L can exceed int64 for large pools, so the intermediate product
	// goes through big.Int. The quotient is at most L and fits.
	share := new(big.Int).Mul(big.NewInt(stake), big.NewInt(losingPool))
	share.Quo(share, big.NewInt(winningPool))
	return stake + share.Int64()
}
