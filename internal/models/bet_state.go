package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BetStatus string

const (
	BetStatusOpen    BetStatus = "OPEN"
	BetStatusClosed  BetStatus = "CLOSED"
	BetStatusSettled BetStatus = "SETTLED"
)

type BetOutcome string

const (
	BetOutcomeUndecided   BetOutcome = "UNDECIDED"
	BetOutcomePartyOneWin BetOutcome = "PARTY_ONE_WIN"
	BetOutcomePartyTwoWin BetOutcome = "PARTY_TWO_WIN"
)

type Party string

const (
	PartyOne Party = "PARTY_ONE"
	PartyTwo Party = "PARTY_TWO"
)

// WinningParty returns the party a decided outcome pays out to.
func (o BetOutcome) WinningParty() (Party, bool) {
	switch o {
	case BetOutcomePartyOneWin:
		return PartyOne, true
	case BetOutcomePartyTwoWin:
		return PartyTwo, true
	default:
		return "", false
	}
}

type BetRange string

const (
	BetRangeNegThreeAndOver BetRange = "NEG_THREE_AND_OVER"
	BetRangeNegTwoToThree   BetRange = "NEG_TWO_TO_THREE"
	BetRangeNegOneToTwo     BetRange = "NEG_ONE_TO_TWO"
	BetRangeNegOneToZero    BetRange = "NEG_ONE_TO_ZERO"
	BetRangeZeroToPosOne    BetRange = "ZERO_TO_POS_ONE"
	BetRangePosOneToTwo     BetRange = "POS_ONE_TO_TWO"
	BetRangePosTwoToThree   BetRange = "POS_TWO_TO_THREE"
	BetRangePosThreeAndOver BetRange = "POS_THREE_AND_OVER"
)

// Valid reports whether r is one of the eight supported price-move bands.
func (r BetRange) Valid() bool {
	switch r {
	case BetRangeNegThreeAndOver, BetRangeNegTwoToThree, BetRangeNegOneToTwo,
		BetRangeNegOneToZero, BetRangeZeroToPosOne, BetRangePosOneToTwo,
		BetRangePosTwoToThree, BetRangePosThreeAndOver:
		return true
	}
	return false
}

// BetState represents one two-party market event and its pooled stakes.
// All amounts are integer lamports.
type BetState struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Creator          string          `gorm:"size:64;not null;index" json:"creator"`
	Symbol           string          `gorm:"size:32;not null" json:"symbol"`
	ReferencePrice   decimal.Decimal `gorm:"type:decimal(30,10);not null" json:"reference_price"`
	BetRange         BetRange        `gorm:"size:32;not null" json:"bet_range"`
	Status           BetStatus       `gorm:"size:16;not null;default:OPEN;index" json:"status"`
	Outcome          BetOutcome      `gorm:"size:16;not null;default:UNDECIDED" json:"outcome"`
	PartyOnePool     int64           `gorm:"not null;default:0" json:"party_one_pool"`
	PartyTwoPool     int64           `gorm:"not null;default:0" json:"party_two_pool"`
	StaticTotalPool  int64           `gorm:"not null;default:0" json:"static_total_pool"`
	RunningTotalPool int64           `gorm:"not null;default:0" json:"running_total_pool"`
	StartTime        time.Time       `gorm:"not null" json:"start_time"`
	ClosesAt         time.Time       `gorm:"not null;index" json:"closes_at"`
	EndTime          *time.Time      `json:"end_time"`
	CreatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (BetState) TableName() string {
	return "bet_states"
}

// Pool returns the current net pool for the given party.
func (b *BetState) Pool(p Party) int64 {
	if p == PartyOne {
		return b.PartyOnePool
	}
	return b.PartyTwoPool
}
