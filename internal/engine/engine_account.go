package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"juicybets/internal/models"
	"juicybets/internal/repository"

	"gorm.io/gorm"
)

// InitializeUserAccount creates a zero-balance account for a wallet.
func (e *Engine) InitializeUserAccount(ctx context.Context, wallet string) (*models.UserAccount, error) {
	if wallet == "" {
		return nil, fmt.Errorf("%w: wallet address is required", ErrInvalidArgument)
	}

	account := &models.UserAccount{WalletAddress: wallet}

	err := e.withTx(ctx, func(repo *repository.Repository) error {
		_, err := repo.GetUserAccountByWallet(ctx, wallet)
		if err == nil {
			return fmt.Errorf("%w: account already exists for %s", ErrInvalidArgument, wallet)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return repo.CreateUserAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Engine] User account created for %s", wallet)

	return account, nil
}

// EnsureUserAccount returns the wallet's account, creating it on first use.
func (e *Engine) EnsureUserAccount(ctx context.Context, wallet string) (*models.UserAccount, error) {
	account, err := e.GetUserAccount(ctx, wallet)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return e.InitializeUserAccount(ctx, wallet)
}

// GetUserAccount retrieves an account by wallet address.
func (e *Engine) GetUserAccount(ctx context.Context, wallet string) (*models.UserAccount, error) {
	account, err := repository.NewRepository(e.db).GetUserAccountByWallet(ctx, wallet)
	if err != nil {
		return nil, notFoundOr(err, "user account")
	}
	return account, nil
}

// DepositIntoAccount credits lamports to a wallet's balance.
func (e *Engine) DepositIntoAccount(ctx context.Context, wallet string, amount int64) (*models.UserAccount, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit must be positive", ErrInvalidArgument)
	}

	var account *models.UserAccount

	err := e.withTx(ctx, func(repo *repository.Repository) error {
		var err error
		account, err = repo.GetUserAccountByWallet(ctx, wallet)
		if err != nil {
			return notFoundOr(err, "user account")
		}

		account.CurrentBalance += amount

		return repo.UpdateUserAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// WithdrawFromAccount debits lamports from a wallet's balance.
func (e *Engine) WithdrawFromAccount(ctx context.Context, wallet string, amount int64) (*models.UserAccount, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal must be positive", ErrInvalidArgument)
	}

	var account *models.UserAccount

	err := e.withTx(ctx, func(repo *repository.Repository) error {
		var err error
		account, err = repo.GetUserAccountByWallet(ctx, wallet)
		if err != nil {
			return notFoundOr(err, "user account")
		}

		if account.CurrentBalance < amount {
			return fmt.Errorf("%w: balance %d, requested %d",
				ErrInsufficientFunds, account.CurrentBalance, amount)
		}

		account.CurrentBalance -= amount

		return repo.UpdateUserAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// CloseUserAccount deletes an account once its balance is withdrawn and no
// wagers remain active.
func (e *Engine) CloseUserAccount(ctx context.Context, wallet string) error {
	err := e.withTx(ctx, func(repo *repository.Repository) error {
		account, err := repo.GetUserAccountByWallet(ctx, wallet)
		if err != nil {
			return notFoundOr(err, "user account")
		}

		if account.CurrentBalance != 0 {
			return fmt.Errorf("%w: balance must be withdrawn first", ErrNotEmpty)
		}

		active, err := repo.CountActiveWagers(ctx, account.ID)
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%w: %d wagers still active", ErrNotEmpty, active)
		}

		return repo.DeleteUserAccount(ctx, account.ID)
	})
	if err != nil {
		return err
	}

	log.Printf("[Engine] User account closed for %s", wallet)

	return nil
}

// ListWagers retrieves a wallet's wager records, newest first. Unlike the
// active set this includes wagers already claimed but not yet settled away.
func (e *Engine) ListWagers(ctx context.Context, wallet string, limit, offset int) ([]*models.WagerDetail, error) {
	return repository.NewRepository(e.db).ListWagersByBettor(ctx, wallet, limit, offset)
}

// ListActiveWagers retrieves the wager details in a wallet's active set.
func (e *Engine) ListActiveWagers(ctx context.Context, wallet string) ([]*models.WagerDetail, error) {
	repo := repository.NewRepository(e.db)

	account, err := repo.GetUserAccountByWallet(ctx, wallet)
	if err != nil {
		return nil, notFoundOr(err, "user account")
	}

	ids, err := repo.ListActiveWagerIDs(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.WagerDetail{}, nil
	}

	return repo.ListWagersByIDs(ctx, ids)
}
