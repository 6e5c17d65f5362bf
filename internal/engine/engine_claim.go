package engine

import (
	"context"
	"fmt"
	"log"

	"juicybets/internal/models"
	"juicybets/internal/repository"

	"github.com/google/uuid"
)

// ClaimWinnings pays out a winning wager on a closed, decided bet. The
// payout is computed here, inside the bet's critical section, against the
// pool sizes at claim time; claims drain the winner's own stake from the
// winning pool and their proportional share from the losing pool.
func (e *Engine) ClaimWinnings(ctx context.Context, bettor string, wagerID uuid.UUID) (*models.ClaimResult, error) {
	probe, err := repository.NewRepository(e.db).GetWagerByID(ctx, wagerID)
	if err != nil {
		return nil, notFoundOr(err, "wager")
	}
	betID := probe.BetStateID

	var result *models.ClaimResult

	err = e.withBet(ctx, betID, func(repo *repository.Repository) error {
		wager, err := repo.GetWagerByID(ctx, wagerID)
		if err != nil {
			return notFoundOr(err, "wager")
		}
		if wager.Bettor != bettor {
			return fmt.Errorf("%w: wager belongs to another account", ErrUnauthorized)
		}
		if wager.Claimed {
			return fmt.Errorf("%w: wager %s", ErrAlreadyClaimed, wager.ID)
		}

		bet, err := repo.GetBetStateByID(ctx, wager.BetStateID)
		if err != nil {
			return notFoundOr(err, "bet state")
		}
		if bet.Status == models.BetStatusOpen {
			return fmt.Errorf("%w: bet is still open", ErrInvalidStateTransition)
		}
		if bet.Status != models.BetStatusClosed {
			return fmt.Errorf("%w: cannot claim on a bet with status %s", ErrInvalidStateTransition, bet.Status)
		}

		winningParty, decided := bet.Outcome.WinningParty()
		if !decided {
			return fmt.Errorf("%w: outcome still undecided", ErrInvalidStateTransition)
		}
		if wager.Party != winningParty {
			return fmt.Errorf("%w: wager backed %s but %s won", ErrNotWinner, wager.Party, winningParty)
		}

		losingParty := models.PartyTwo
		if winningParty == models.PartyTwo {
			losingParty = models.PartyOne
		}

		winningPool := bet.Pool(winningParty)
		losingPool := bet.Pool(losingParty)

		winnings := Winnings(wager.BetValue, winningPool, losingPool)
		lossShare := winnings - wager.BetValue

		winningPool -= wager.BetValue
		losingPool -= lossShare
		bet.RunningTotalPool -= winnings

		// Once the last winner has claimed, whatever truncation dust is
		// left in the losing pool is retained by the system so the bet can
		// be settled.
		if winningPool == 0 && losingPool > 0 {
			bet.RunningTotalPool -= losingPool
			losingPool = 0
		}

		if winningParty == models.PartyOne {
			bet.PartyOnePool = winningPool
			bet.PartyTwoPool = losingPool
		} else {
			bet.PartyTwoPool = winningPool
			bet.PartyOnePool = losingPool
		}

		if err := repo.UpdateBetState(ctx, bet); err != nil {
			return fmt.Errorf("failed to update bet pools: %w", err)
		}

		account, err := repo.GetUserAccountByWallet(ctx, bettor)
		if err != nil {
			return notFoundOr(err, "user account")
		}

		account.CurrentBalance += winnings
		account.Wins++
		if err := repo.UpdateUserAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to credit winnings: %w", err)
		}

		wager.Claimed = true
		if err := repo.UpdateWager(ctx, wager); err != nil {
			return fmt.Errorf("failed to mark wager claimed: %w", err)
		}

		if err := repo.RemoveActiveWager(ctx, wager.ID); err != nil {
			return fmt.Errorf("failed to remove active wager: %w", err)
		}

		result = &models.ClaimResult{
			WagerID:    wager.ID,
			BetStateID: bet.ID,
			Winnings:   winnings,
			Balance:    account.CurrentBalance,
			Wins:       account.Wins,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Engine] Wager %s claimed by %s for %d lamports", wagerID, bettor, result.Winnings)

	return result, nil
}
