package models

import (
	"time"

	"github.com/google/uuid"
)

// WagerDetail represents a single stake by one user on one party of one bet.
// BetValue is the net stake in lamports, taker fee excluded. The row survives
// a successful claim (with Claimed set) so that repeat claims can be rejected
// distinctly; settlement deletes all remaining rows for the bet.
type WagerDetail struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BetStateID uuid.UUID `gorm:"type:uuid;not null;index" json:"bet_state_id"`
	Bettor     string    `gorm:"size:64;not null;index" json:"bettor"`
	Party      Party     `gorm:"size:16;not null" json:"party"`
	BetValue   int64     `gorm:"not null" json:"bet_value"`
	Claimed    bool      `gorm:"not null;default:false" json:"claimed"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (WagerDetail) TableName() string {
	return "wager_details"
}

// ClaimResult reports the outcome of a successful winnings claim.
type ClaimResult struct {
	WagerID    uuid.UUID `json:"wager_id"`
	BetStateID uuid.UUID `json:"bet_state_id"`
	Winnings   int64     `json:"winnings"`
	Balance    int64     `json:"balance"`
	Wins       int64     `json:"wins"`
}
