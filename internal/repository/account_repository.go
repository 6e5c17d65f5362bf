package repository

import (
	"context"

	"juicybets/internal/models"

	"github.com/google/uuid"
)

// CreateUserAccount creates a new user account
func (r *Repository) CreateUserAccount(ctx context.Context, account *models.UserAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// GetUserAccountByWallet retrieves a user account by wallet address
func (r *Repository) GetUserAccountByWallet(ctx context.Context, wallet string) (*models.UserAccount, error) {
	var account models.UserAccount
	err := r.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateUserAccount persists all fields of a user account
func (r *Repository) UpdateUserAccount(ctx context.Context, account *models.UserAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// DeleteUserAccount removes a user account record
func (r *Repository) DeleteUserAccount(ctx context.Context, accountID uint) error {
	return r.db.WithContext(ctx).Delete(&models.UserAccount{}, "id = ?", accountID).Error
}

// AddActiveWager adds a wager to a user's active-wager set
func (r *Repository) AddActiveWager(ctx context.Context, userID uint, wagerID uuid.UUID) error {
	return r.db.WithContext(ctx).Create(&models.ActiveWager{
		UserID:  userID,
		WagerID: wagerID,
	}).Error
}

// RemoveActiveWager removes a wager from a user's active-wager set
func (r *Repository) RemoveActiveWager(ctx context.Context, wagerID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ActiveWager{}, "wager_id = ?", wagerID).Error
}

// CountActiveWagers counts the entries in a user's active-wager set
func (r *Repository) CountActiveWagers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ActiveWager{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ListActiveWagerIDs retrieves the wager IDs in a user's active-wager set
func (r *Repository) ListActiveWagerIDs(ctx context.Context, userID uint) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ActiveWager{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("wager_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
