package repository

import (
	"context"

	"juicybets/internal/models"

	"github.com/google/uuid"
)

// CreateWager creates a new wager detail
func (r *Repository) CreateWager(ctx context.Context, wager *models.WagerDetail) error {
	return r.db.WithContext(ctx).Create(wager).Error
}

// GetWagerByID retrieves a wager by ID
func (r *Repository) GetWagerByID(ctx context.Context, wagerID uuid.UUID) (*models.WagerDetail, error) {
	var wager models.WagerDetail
	err := r.db.WithContext(ctx).Where("id = ?", wagerID).First(&wager).Error
	if err != nil {
		return nil, err
	}
	return &wager, nil
}

// UpdateWager persists all fields of a wager detail
func (r *Repository) UpdateWager(ctx context.Context, wager *models.WagerDetail) error {
	return r.db.WithContext(ctx).Save(wager).Error
}

// DeleteWager removes a wager detail record
func (r *Repository) DeleteWager(ctx context.Context, wagerID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.WagerDetail{}, "id = ?", wagerID).Error
}

// ListWagersByBet retrieves all wagers registered against a bet state
func (r *Repository) ListWagersByBet(ctx context.Context, betID uuid.UUID) ([]*models.WagerDetail, error) {
	var wagers []*models.WagerDetail
	err := r.db.WithContext(ctx).
		Where("bet_state_id = ?", betID).
		Order("created_at ASC").
		Find(&wagers).Error
	if err != nil {
		return nil, err
	}
	return wagers, nil
}

// DeleteWagersByBet removes every wager registered against a bet state
func (r *Repository) DeleteWagersByBet(ctx context.Context, betID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.WagerDetail{}, "bet_state_id = ?", betID).Error
}

// ListWagersByIDs retrieves the wagers with the given IDs, oldest first
func (r *Repository) ListWagersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.WagerDetail, error) {
	var wagers []*models.WagerDetail
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&wagers).Error
	if err != nil {
		return nil, err
	}
	return wagers, nil
}

// ListWagersByBettor retrieves all wagers owned by a wallet, newest first
func (r *Repository) ListWagersByBettor(
	ctx context.Context,
	bettor string,
	limit int,
	offset int,
) ([]*models.WagerDetail, error) {
	var wagers []*models.WagerDetail
	err := r.db.WithContext(ctx).
		Where("bettor = ?", bettor).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&wagers).Error
	if err != nil {
		return nil, err
	}
	return wagers, nil
}
