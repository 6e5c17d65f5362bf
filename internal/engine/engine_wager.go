package engine

import (
	"context"
	"fmt"
	"log"

	"juicybets/internal/models"
	"juicybets/internal/repository"

	"github.com/google/uuid"
)

// PlaceWager stakes amount lamports on one party of an open bet. The bettor
// is debited amount plus the taker fee; only the net stake enters the pool.
func (e *Engine) PlaceWager(
	ctx context.Context,
	bettor string,
	betID uuid.UUID,
	party models.Party,
	amount int64,
) (*models.WagerDetail, error) {
	if party != models.PartyOne && party != models.PartyTwo {
		return nil, fmt.Errorf("%w: %q is not a valid party", ErrInvalidArgument, party)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: stake must be positive", ErrInvalidArgument)
	}

	fee := TakerFee(amount, e.takerFeeBps)
	total := amount + fee

	var wager *models.WagerDetail

	err := e.withBet(ctx, betID, func(repo *repository.Repository) error {
		bet, err := repo.GetBetStateByID(ctx, betID)
		if err != nil {
			return notFoundOr(err, "bet state")
		}

		if bet.Status != models.BetStatusOpen {
			return fmt.Errorf("%w: cannot wager on a closed or settled bet", ErrInvalidStateTransition)
		}

		account, err := repo.GetUserAccountByWallet(ctx, bettor)
		if err != nil {
			return notFoundOr(err, "user account")
		}

		if account.CurrentBalance < total {
			return fmt.Errorf("%w: need %d lamports (stake %d + fee %d), have %d",
				ErrInsufficientFunds, total, amount, fee, account.CurrentBalance)
		}

		wager = &models.WagerDetail{
			ID:         uuid.New(),
			BetStateID: bet.ID,
			Bettor:     bettor,
			Party:      party,
			BetValue:   amount,
		}
		if err := repo.CreateWager(ctx, wager); err != nil {
			return fmt.Errorf("failed to create wager: %w", err)
		}

		// Net stake goes to the party pool; the gross debit (stake + fee)
		// is recorded in the monotonic audit total.
		if party == models.PartyOne {
			bet.PartyOnePool += amount
		} else {
			bet.PartyTwoPool += amount
		}
		bet.RunningTotalPool += amount
		bet.StaticTotalPool += total

		if err := repo.UpdateBetState(ctx, bet); err != nil {
			return fmt.Errorf("failed to update bet pools: %w", err)
		}

		account.CurrentBalance -= total
		if err := repo.UpdateUserAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to debit bettor: %w", err)
		}

		if err := repo.AddActiveWager(ctx, account.ID, wager.ID); err != nil {
			return fmt.Errorf("failed to register active wager: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Engine] Wager %s: %s staked %d on %s of bet %s (fee %d)",
		wager.ID, bettor, amount, party, betID, fee)

	return wager, nil
}
