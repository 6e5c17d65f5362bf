package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBetRequest is the payload for opening a new bet state.
// ReferencePrice is optional; when omitted the server snapshots the current
// spot price for Symbol before the bet is created.
type CreateBetRequest struct {
	Symbol          string           `json:"symbol" binding:"required"`
	BetRange        BetRange         `json:"bet_range" binding:"required"`
	DurationSeconds int64            `json:"duration_seconds" binding:"required"`
	ReferencePrice  *decimal.Decimal `json:"reference_price"`
}

// PlaceWagerRequest is the payload for staking on one party of a bet.
type PlaceWagerRequest struct {
	BetStateID uuid.UUID `json:"bet_state_id" binding:"required"`
	Party      Party     `json:"party" binding:"required"`
	Amount     int64     `json:"amount" binding:"required"`
}

// DecideOutcomeRequest carries the terminal outcome for a closed bet.
type DecideOutcomeRequest struct {
	Outcome BetOutcome `json:"outcome" binding:"required"`
}

// AmountRequest is the payload for deposits and withdrawals.
type AmountRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}
