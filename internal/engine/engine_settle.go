package engine

import (
	"context"
	"fmt"
	"log"

	"juicybets/internal/models"
	"juicybets/internal/repository"

	"github.com/google/uuid"
)

// SettleBetState retires a closed, decided bet once both pools are empty.
// Every wager still registered against the bet belongs to a loser (winners
// were removed at claim time, cancellations at cancel time): each gets a
// loss recorded and its active-wager entry purged, then the wager rows and
// the bet record itself are destroyed.
func (e *Engine) SettleBetState(ctx context.Context, caller string, betID uuid.UUID) (*models.BetState, error) {
	var settled *models.BetState

	err := e.withBet(ctx, betID, func(repo *repository.Repository) error {
		bet, err := repo.GetBetStateByID(ctx, betID)
		if err != nil {
			return notFoundOr(err, "bet state")
		}

		if bet.Creator != caller {
			return fmt.Errorf("%w: only the bet creator can settle it", ErrUnauthorized)
		}
		if bet.Status != models.BetStatusClosed {
			return fmt.Errorf("%w: cannot settle a bet with status %s", ErrInvalidStateTransition, bet.Status)
		}
		if _, decided := bet.Outcome.WinningParty(); !decided {
			return fmt.Errorf("%w: outcome still undecided", ErrInvalidStateTransition)
		}
		if bet.PartyOnePool != 0 || bet.PartyTwoPool != 0 {
			return fmt.Errorf("%w: pools hold %d + %d lamports",
				ErrNotEmpty, bet.PartyOnePool, bet.PartyTwoPool)
		}

		wagers, err := repo.ListWagersByBet(ctx, bet.ID)
		if err != nil {
			return fmt.Errorf("failed to list wagers: %w", err)
		}

		for _, wager := range wagers {
			if wager.Claimed {
				continue
			}

			account, err := repo.GetUserAccountByWallet(ctx, wager.Bettor)
			if err != nil {
				return notFoundOr(err, "user account")
			}
			account.Losses++
			if err := repo.UpdateUserAccount(ctx, account); err != nil {
				return fmt.Errorf("failed to record loss: %w", err)
			}

			if err := repo.RemoveActiveWager(ctx, wager.ID); err != nil {
				return fmt.Errorf("failed to remove active wager: %w", err)
			}
		}

		if err := repo.DeleteWagersByBet(ctx, bet.ID); err != nil {
			return fmt.Errorf("failed to purge wagers: %w", err)
		}

		bet.Status = models.BetStatusSettled
		settled = bet

		if err := repo.DeleteBetState(ctx, bet.ID); err != nil {
			return fmt.Errorf("failed to release bet state: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	e.locks.drop(betID)

	log.Printf("[Engine] Bet %s settled and released", betID)

	return settled, nil
}
