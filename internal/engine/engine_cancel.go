package engine

import (
	"context"
	"fmt"
	"log"

	"juicybets/internal/models"
	"juicybets/internal/repository"

	"github.com/google/uuid"
)

// CancelWager withdraws a wager from a still-open bet. The net stake returns
// to the bettor's balance and leaves the party pool; the taker fee is not
// refunded.
func (e *Engine) CancelWager(ctx context.Context, bettor string, wagerID uuid.UUID) error {
	// One unlocked read to learn which bet to serialize on; everything is
	// re-read inside the critical section.
	probe, err := repository.NewRepository(e.db).GetWagerByID(ctx, wagerID)
	if err != nil {
		return notFoundOr(err, "wager")
	}
	betID := probe.BetStateID

	err = e.withBet(ctx, betID, func(repo *repository.Repository) error {
		wager, err := repo.GetWagerByID(ctx, wagerID)
		if err != nil {
			return notFoundOr(err, "wager")
		}
		if wager.Bettor != bettor {
			return fmt.Errorf("%w: wager belongs to another account", ErrUnauthorized)
		}

		bet, err := repo.GetBetStateByID(ctx, wager.BetStateID)
		if err != nil {
			return notFoundOr(err, "bet state")
		}
		if bet.Status != models.BetStatusOpen {
			return fmt.Errorf("%w: cannot cancel a wager on a closed or settled bet", ErrInvalidStateTransition)
		}

		account, err := repo.GetUserAccountByWallet(ctx, bettor)
		if err != nil {
			return notFoundOr(err, "user account")
		}

		if wager.Party == models.PartyOne {
			bet.PartyOnePool -= wager.BetValue
		} else {
			bet.PartyTwoPool -= wager.BetValue
		}
		bet.RunningTotalPool -= wager.BetValue

		if err := repo.UpdateBetState(ctx, bet); err != nil {
			return fmt.Errorf("failed to update bet pools: %w", err)
		}

		account.CurrentBalance += wager.BetValue
		if err := repo.UpdateUserAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to refund bettor: %w", err)
		}

		if err := repo.RemoveActiveWager(ctx, wager.ID); err != nil {
			return fmt.Errorf("failed to remove active wager: %w", err)
		}

		if err := repo.DeleteWager(ctx, wager.ID); err != nil {
			return fmt.Errorf("failed to delete wager: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[Engine] Wager %s cancelled by %s", wagerID, bettor)

	return nil
}
