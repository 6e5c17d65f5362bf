package models

import (
	"time"

	"github.com/google/uuid"
)

// UserAccount represents one participant's betting balance and record.
// CurrentBalance is integer lamports and is mutated only by engine operations.
type UserAccount struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	WalletAddress  string    `gorm:"size:64;uniqueIndex;not null" json:"wallet_address"`
	CurrentBalance int64     `gorm:"not null;default:0" json:"current_balance"`
	Wins           int64     `gorm:"not null;default:0" json:"wins"`
	Losses         int64     `gorm:"not null;default:0" json:"losses"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (UserAccount) TableName() string {
	return "user_accounts"
}

// ActiveWager is one entry in a user's active-wager set. It is membership
// only: the WagerDetail row is owned by the wager registry, and this table
// must mirror exactly the user's wagers that are neither cancelled nor
// claimed.
type ActiveWager struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	WagerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"wager_id"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (ActiveWager) TableName() string {
	return "active_wagers"
}
