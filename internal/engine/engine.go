package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"juicybets/internal/models"
	"juicybets/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Engine is the single entry point for every mutation of bet states, wager
// details and user accounts. Each operation is one atomic transaction; all
// operations that touch the same bet state are serialized by a per-bet lock.
type Engine struct {
	db          *gorm.DB
	takerFeeBps int64
	locks       *betLocks
}

func NewEngine(db *gorm.DB, takerFeeBps int64) *Engine {
	return &Engine{
		db:          db,
		takerFeeBps: takerFeeBps,
		locks:       newBetLocks(),
	}
}

// TakerFeeBps returns the configured taker fee in basis points.
func (e *Engine) TakerFeeBps() int64 {
	return e.takerFeeBps
}

// withBet runs fn inside the bet's critical section: per-bet lock first,
// then one transaction for every read and write. No I/O other than the
// transaction itself happens under the lock.
func (e *Engine) withBet(ctx context.Context, betID uuid.UUID, fn func(repo *repository.Repository) error) error {
	e.locks.lock(betID)
	defer e.locks.unlock(betID)

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.NewRepository(tx))
	})
}

// withTx runs fn in a transaction without bet-level locking, for operations
// that touch no bet state.
func (e *Engine) withTx(ctx context.Context, fn func(repo *repository.Repository) error) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.NewRepository(tx))
	})
}

// notFoundOr maps gorm's record-not-found onto the engine taxonomy.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// InitializeBetState creates a new open bet state with empty pools.
func (e *Engine) InitializeBetState(
	ctx context.Context,
	creator string,
	start time.Time,
	duration time.Duration,
	symbol string,
	referencePrice decimal.Decimal,
	betRange models.BetRange,
) (*models.BetState, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidArgument)
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidArgument)
	}
	if !betRange.Valid() {
		return nil, fmt.Errorf("%w: unknown bet range %q", ErrInvalidArgument, betRange)
	}

	bet := &models.BetState{
		ID:             uuid.New(),
		Creator:        creator,
		Symbol:         symbol,
		ReferencePrice: referencePrice,
		BetRange:       betRange,
		Status:         models.BetStatusOpen,
		Outcome:        models.BetOutcomeUndecided,
		StartTime:      start,
		ClosesAt:       start.Add(duration),
	}

	err := e.withTx(ctx, func(repo *repository.Repository) error {
		return repo.CreateBetState(ctx, bet)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bet state: %w", err)
	}

	log.Printf("[Engine] Bet %s opened by %s on %s (closes %s)", bet.ID, creator, symbol, bet.ClosesAt)

	return bet, nil
}

// CloseBetState moves an open bet to CLOSED. Only the creator may close.
func (e *Engine) CloseBetState(
	ctx context.Context,
	caller string,
	betID uuid.UUID,
	endTime time.Time,
) (*models.BetState, error) {
	var bet *models.BetState

	err := e.withBet(ctx, betID, func(repo *repository.Repository) error {
		var err error
		bet, err = repo.GetBetStateByID(ctx, betID)
		if err != nil {
			return notFoundOr(err, "bet state")
		}

		if bet.Creator != caller {
			return fmt.Errorf("%w: only the bet creator can close it", ErrUnauthorized)
		}
		if bet.Status != models.BetStatusOpen {
			return fmt.Errorf("%w: cannot close a bet with status %s", ErrInvalidStateTransition, bet.Status)
		}

		bet.Status = models.BetStatusClosed
		bet.EndTime = &endTime

		return repo.UpdateBetState(ctx, bet)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Engine] Bet %s closed at %s", betID, endTime)

	return bet, nil
}

// DecideBetStateOutcome sets the terminal outcome of a closed bet.
func (e *Engine) DecideBetStateOutcome(
	ctx context.Context,
	caller string,
	betID uuid.UUID,
	outcome models.BetOutcome,
) (*models.BetState, error) {
	if _, ok := outcome.WinningParty(); !ok {
		return nil, fmt.Errorf("%w: %q is not a valid bet outcome", ErrInvalidArgument, outcome)
	}

	var bet *models.BetState

	err := e.withBet(ctx, betID, func(repo *repository.Repository) error {
		var err error
		bet, err = repo.GetBetStateByID(ctx, betID)
		if err != nil {
			return notFoundOr(err, "bet state")
		}

		if bet.Creator != caller {
			return fmt.Errorf("%w: only the bet creator can decide the outcome", ErrUnauthorized)
		}
		if bet.Status != models.BetStatusClosed {
			return fmt.Errorf("%w: cannot decide a bet with status %s", ErrInvalidStateTransition, bet.Status)
		}
		if bet.Outcome != models.BetOutcomeUndecided {
			return fmt.Errorf("%w: outcome already decided", ErrInvalidStateTransition)
		}

		bet.Outcome = outcome

		return repo.UpdateBetState(ctx, bet)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Engine] Bet %s decided: %s", betID, outcome)

	return bet, nil
}

// GetBetState retrieves a bet state by ID.
func (e *Engine) GetBetState(ctx context.Context, betID uuid.UUID) (*models.BetState, error) {
	bet, err := repository.NewRepository(e.db).GetBetStateByID(ctx, betID)
	if err != nil {
		return nil, notFoundOr(err, "bet state")
	}
	return bet, nil
}

// ListOpenBets retrieves open bets, newest first.
func (e *Engine) ListOpenBets(ctx context.Context, limit, offset int) ([]*models.BetState, error) {
	return repository.NewRepository(e.db).ListBetStates(ctx, models.BetStatusOpen, limit, offset)
}

// ListElapsedOpenBets retrieves open bets whose scheduled close time passed.
func (e *Engine) ListElapsedOpenBets(ctx context.Context, now time.Time, limit int) ([]*models.BetState, error) {
	return repository.NewRepository(e.db).ListElapsedOpenBets(ctx, now, limit)
}
