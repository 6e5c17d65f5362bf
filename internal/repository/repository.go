package repository

import (
	"context"
	"time"

	"juicybets/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBetState creates a new bet state
func (r *Repository) CreateBetState(ctx context.Context, bet *models.BetState) error {
	return r.db.WithContext(ctx).Create(bet).Error
}

// GetBetStateByID retrieves a bet state by ID
func (r *Repository) GetBetStateByID(ctx context.Context, betID uuid.UUID) (*models.BetState, error) {
	var bet models.BetState
	err := r.db.WithContext(ctx).Where("id = ?", betID).First(&bet).Error
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// UpdateBetState persists all fields of a bet state
func (r *Repository) UpdateBetState(ctx context.Context, bet *models.BetState) error {
	return r.db.WithContext(ctx).Save(bet).Error
}

// DeleteBetState removes a bet state record
func (r *Repository) DeleteBetState(ctx context.Context, betID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.BetState{}, "id = ?", betID).Error
}

// ListBetStates retrieves bet states filtered by status, newest first
func (r *Repository) ListBetStates(
	ctx context.Context,
	status models.BetStatus,
	limit int,
	offset int,
) ([]*models.BetState, error) {
	var bets []*models.BetState
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bets).Error
	if err != nil {
		return nil, err
	}
	return bets, nil
}

// ListElapsedOpenBets retrieves open bets whose scheduled close time has passed
func (r *Repository) ListElapsedOpenBets(ctx context.Context, now time.Time, limit int) ([]*models.BetState, error) {
	var bets []*models.BetState
	err := r.db.WithContext(ctx).
		Where("status = ? AND closes_at <= ?", models.BetStatusOpen, now).
		Order("closes_at ASC").
		Limit(limit).
		Find(&bets).Error
	if err != nil {
		return nil, err
	}
	return bets, nil
}
