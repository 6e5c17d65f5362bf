package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"juicybets/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testFeeBps = 200 // 2%

func setupTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	// Shared-cache memory DB so every pooled connection sees the same data.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.UserAccount{},
		&models.BetState{},
		&models.WagerDetail{},
		&models.ActiveWager{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	// The shared DB survives across tests in this package; start clean.
	db.Exec("DELETE FROM active_wagers")
	db.Exec("DELETE FROM wager_details")
	db.Exec("DELETE FROM bet_states")
	db.Exec("DELETE FROM user_accounts")

	return NewEngine(db, testFeeBps), db
}

func fundAccount(t *testing.T, e *Engine, wallet string, balance int64) *models.UserAccount {
	t.Helper()
	ctx := context.Background()

	if _, err := e.InitializeUserAccount(ctx, wallet); err != nil {
		t.Fatalf("failed to create account %s: %v", wallet, err)
	}
	account, err := e.DepositIntoAccount(ctx, wallet, balance)
	if err != nil {
		t.Fatalf("failed to fund account %s: %v", wallet, err)
	}
	return account
}

func openTestBet(t *testing.T, e *Engine, creator string) *models.BetState {
	t.Helper()

	bet, err := e.InitializeBetState(
		context.Background(),
		creator,
		time.Now(),
		time.Hour,
		"SOL",
		decimal.NewFromInt(150),
		models.BetRangeZeroToPosOne,
	)
	if err != nil {
		t.Fatalf("failed to create bet: %v", err)
	}
	return bet
}

func TestPlaceWagerDebitsFeeAndFundsPool(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 1_000_000_000)
	bet := openTestBet(t, e, "creator")

	wager, err := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 500_000_000)
	if err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}
	if wager.BetValue != 500_000_000 {
		t.Errorf("expected net stake 500000000, got %d", wager.BetValue)
	}

	// 2% fee on 500M is 10M; the debit is 510M.
	account, err := e.GetUserAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to get account: %v", err)
	}
	if account.CurrentBalance != 490_000_000 {
		t.Errorf("expected balance 490000000 after stake + fee, got %d", account.CurrentBalance)
	}

	got, err := e.GetBetState(ctx, bet.ID)
	if err != nil {
		t.Fatalf("failed to get bet: %v", err)
	}
	if got.PartyOnePool != 500_000_000 {
		t.Errorf("expected PartyOne pool 500000000, got %d", got.PartyOnePool)
	}
	if got.PartyTwoPool != 0 {
		t.Errorf("expected empty PartyTwo pool, got %d", got.PartyTwoPool)
	}
	if got.RunningTotalPool != 500_000_000 {
		t.Errorf("expected running total 500000000, got %d", got.RunningTotalPool)
	}
	if got.StaticTotalPool != 510_000_000 {
		t.Errorf("expected static total 510000000 (stake + fee), got %d", got.StaticTotalPool)
	}

	// The wager must be in alice's active set.
	active, err := e.ListActiveWagers(ctx, "alice")
	if err != nil {
		t.Fatalf("failed to list active wagers: %v", err)
	}
	if len(active) != 1 || active[0].ID != wager.ID {
		t.Errorf("expected active set [%s], got %v", wager.ID, active)
	}
}

func TestPlaceWagerValidation(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 100)
	bet := openTestBet(t, e, "creator")

	if _, err := e.PlaceWager(ctx, "alice", bet.ID, "PARTY_THREE", 50); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad party: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero stake: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, -5); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative stake: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := e.PlaceWager(ctx, "alice", uuid.New(), models.PartyOne, 50); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown bet: expected ErrNotFound, got %v", err)
	}
	// Balance 100 covers a stake of 100 but not its fee.
	if _, err := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 100); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("stake + fee over balance: expected ErrInsufficientFunds, got %v", err)
	}
}

func TestClaimPariMutuelPayout(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 1_000_000_000)
	fundAccount(t, e, "bob", 1_000_000_000)
	fundAccount(t, e, "carol", 1_000_000_000)
	bet := openTestBet(t, e, "creator")

	aliceWager, err := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 500_000_000)
	if err != nil {
		t.Fatalf("alice PlaceWager failed: %v", err)
	}
	bobWager, err := e.PlaceWager(ctx, "bob", bet.ID, models.PartyOne, 500_000_000)
	if err != nil {
		t.Fatalf("bob PlaceWager failed: %v", err)
	}
	carolWager, err := e.PlaceWager(ctx, "carol", bet.ID, models.PartyTwo, 500_000_000)
	if err != nil {
		t.Fatalf("carol PlaceWager failed: %v", err)
	}

	if _, err := e.CloseBetState(ctx, "creator", bet.ID, time.Now()); err != nil {
		t.Fatalf("CloseBetState failed: %v", err)
	}
	if _, err := e.DecideBetStateOutcome(ctx, "creator", bet.ID, models.BetOutcomePartyOneWin); err != nil {
		t.Fatalf("DecideBetStateOutcome failed: %v", err)
	}

	// Each PartyOne winner holds half the 1B winning pool, so each claim
	// pays the stake plus half the 500M losing pool.
	result, err := e.ClaimWinnings(ctx, "alice", aliceWager.ID)
	if err != nil {
		t.Fatalf("alice ClaimWinnings failed: %v", err)
	}
	if result.Winnings != 750_000_000 {
		t.Errorf("expected alice winnings 750000000, got %d", result.Winnings)
	}
	if result.Balance != 1_000_000_000-510_000_000+750_000_000 {
		t.Errorf("expected alice balance 1240000000, got %d", result.Balance)
	}
	if result.Wins != 1 {
		t.Errorf("expected alice wins 1, got %d", result.Wins)
	}

	result, err = e.ClaimWinnings(ctx, "bob", bobWager.ID)
	if err != nil {
		t.Fatalf("bob ClaimWinnings failed: %v", err)
	}
	if result.Winnings != 750_000_000 {
		t.Errorf("expected bob winnings 750000000, got %d", result.Winnings)
	}

	// The loser can never claim.
	if _, err := e.ClaimWinnings(ctx, "carol", carolWager.ID); !errors.Is(err, ErrNotWinner) {
		t.Errorf("carol claim: expected ErrNotWinner, got %v", err)
	}

	// Both pools drain to zero once every winner has claimed.
	got, err := e.GetBetState(ctx, bet.ID)
	if err != nil {
		t.Fatalf("failed to get bet: %v", err)
	}
	if got.PartyOnePool != 0 || got.PartyTwoPool != 0 {
		t.Errorf("expected empty pools, got %d / %d", got.PartyOnePool, got.PartyTwoPool)
	}
	if got.RunningTotalPool != 0 {
		t.Errorf("expected running total 0, got %d", got.RunningTotalPool)
	}
	// The gross audit total never decreases.
	if got.StaticTotalPool != 3*510_000_000 {
		t.Errorf("expected static total 1530000000, got %d", got.StaticTotalPool)
	}
}

func TestClaimRejectedTwice(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 1_000_000_000)
	fundAccount(t, e, "bob", 1_000_000_000)
	bet := openTestBet(t, e, "creator")

	aliceWager, _ := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 100_000)
	if _, err := e.PlaceWager(ctx, "bob", bet.ID, models.PartyTwo, 100_000); err != nil {
		t.Fatalf("bob PlaceWager failed: %v", err)
	}
	e.CloseBetState(ctx, "creator", bet.ID, time.Now())
	e.DecideBetStateOutcome(ctx, "creator", bet.ID, models.BetOutcomePartyOneWin)

	if _, err := e.ClaimWinnings(ctx, "alice", aliceWager.ID); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if _, err := e.ClaimWinnings(ctx, "alice", aliceWager.ID); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("second claim: expected ErrAlreadyClaimed, got %v", err)
	}
}

func TestClaimRequiresClosedDecidedBet(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 1_000_000_000)
	bet := openTestBet(t, e, "creator")
	wager, _ := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 100_000)

	// Still open.
	if _, err := e.ClaimWinnings(ctx, "alice", wager.ID); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("claim on open bet: expected ErrInvalidStateTransition, got %v", err)
	}

	e.CloseBetState(ctx, "creator", bet.ID, time.Now())

	// Closed but undecided.
	if _, err := e.ClaimWinnings(ctx, "alice", wager.ID); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("claim on undecided bet: expected ErrInvalidStateTransition, got %v", err)
	}

	// Someone else's wager.
	e.DecideBetStateOutcome(ctx, "creator", bet.ID, models.BetOutcomePartyOneWin)
	if _, err := e.ClaimWinnings(ctx, "mallory", wager.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("claim of foreign wager: expected ErrUnauthorized, got %v", err)
	}
}

func TestClaimTruncationConservesPool(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	// Uneven stakes force truncating payouts mid-sequence; the sum of all
	// payouts must still equal the two pools exactly, never more.
	stakes := map[string]int64{"w1": 100, "w2": 50, "w3": 37}
	fundAccount(t, e, "w1", 1_000)
	fundAccount(t, e, "w2", 1_000)
	fundAccount(t, e, "w3", 1_000)
	fundAccount(t, e, "loser", 2_000)

	bet := openTestBet(t, e, "creator")

	wagers := make(map[string]uuid.UUID)
	for _, wallet := range []string{"w1", "w2", "w3"} {
		w, err := e.PlaceWager(ctx, wallet, bet.ID, models.PartyOne, stakes[wallet])
		if err != nil {
			t.Fatalf("%s PlaceWager failed: %v", wallet, err)
		}
		wagers[wallet] = w.ID
	}
	if _, err := e.PlaceWager(ctx, "loser", bet.ID, models.PartyTwo, 1_000); err != nil {
		t.Fatalf("loser PlaceWager failed: %v", err)
	}

	e.CloseBetState(ctx, "creator", bet.ID, time.Now())
	e.DecideBetStateOutcome(ctx, "creator", bet.ID, models.BetOutcomePartyOneWin)

	var totalPaid int64
	for _, wallet := range []string{"w1", "w2", "w3"} {
		result, err := e.ClaimWinnings(ctx, wallet, wagers[wallet])
		if err != nil {
			t.Fatalf("%s ClaimWinnings failed: %v", wallet, err)
		}
		totalPaid += result.Winnings
	}

	if totalPaid > 187+1_000 {
		t.Errorf("payouts exceed the pools: paid %d of %d", totalPaid, 187+1_000)
	}

	got, err := e.GetBetState(ctx, bet.ID)
	if err != nil {
		t.Fatalf("failed to get bet: %v", err)
	}
	if got.PartyOnePool != 0 || got.PartyTwoPool != 0 {
		t.Errorf("expected empty pools after all claims, got %d / %d", got.PartyOnePool, got.PartyTwoPool)
	}
	if got.RunningTotalPool != 0 {
		t.Errorf("expected running total 0, got %d", got.RunningTotalPool)
	}
}

func TestSettleRequiresEmptyPools(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 1_000_000)
	fundAccount(t, e, "bob", 1_000_000)
	bet := openTestBet(t, e, "creator")

	aliceWager, _ := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 100_000)
	e.PlaceWager(ctx, "bob", bet.ID, models.PartyTwo, 100_000)
	e.CloseBetState(ctx, "creator", bet.ID, time.Now())
	e.DecideBetStateOutcome(ctx, "creator", bet.ID, models.BetOutcomePartyOneWin)

	// Winners have not claimed yet, pools are non-zero.
	if _, err := e.SettleBetState(ctx, "creator", bet.ID); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("settle with funded pools: expected ErrNotEmpty, got %v", err)
	}

	if _, err := e.ClaimWinnings(ctx, "alice", aliceWager.ID); err != nil {
		t.Fatalf("ClaimWinnings failed: %v", err)
	}

	if _, err := e.SettleBetState(ctx, "mallory", bet.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("settle by stranger: expected ErrUnauthorized, got %v", err)
	}

	settled, err := e.SettleBetState(ctx, "creator", bet.ID)
	if err != nil {
		t.Fatalf("SettleBetState failed: %v", err)
	}
	if settled.Status != models.BetStatusSettled {
		t.Errorf("expected status SETTLED, got %s", settled.Status)
	}

	// The bet record and its wagers are destroyed.
	if _, err := e.GetBetState(ctx, bet.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for settled bet, got %v", err)
	}
	if _, err := e.SettleBetState(ctx, "creator", bet.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double settle: expected ErrNotFound, got %v", err)
	}
}

func TestSettlePurgesLosers(t *testing.T) {
	e, db := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 1_000_000)
	fundAccount(t, e, "bob", 1_000_000)
	bet := openTestBet(t, e, "creator")

	aliceWager, _ := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 100_000)
	e.PlaceWager(ctx, "bob", bet.ID, models.PartyTwo, 100_000)
	e.CloseBetState(ctx, "creator", bet.ID, time.Now())
	e.DecideBetStateOutcome(ctx, "creator", bet.ID, models.BetOutcomePartyOneWin)
	if _, err := e.ClaimWinnings(ctx, "alice", aliceWager.ID); err != nil {
		t.Fatalf("ClaimWinnings failed: %v", err)
	}

	if _, err := e.SettleBetState(ctx, "creator", bet.ID); err != nil {
		t.Fatalf("SettleBetState failed: %v", err)
	}

	// Bob never claimed: his loss is recorded and his active set emptied.
	bob, err := e.GetUserAccount(ctx, "bob")
	if err != nil {
		t.Fatalf("failed to get bob: %v", err)
	}
	if bob.Losses != 1 {
		t.Errorf("expected bob losses 1, got %d", bob.Losses)
	}
	if bobActive, _ := e.ListActiveWagers(ctx, "bob"); len(bobActive) != 0 {
		t.Errorf("expected empty active set for bob, got %d entries", len(bobActive))
	}

	// Alice claimed before settle: no loss for her.
	alice, _ := e.GetUserAccount(ctx, "alice")
	if alice.Losses != 0 {
		t.Errorf("expected alice losses 0, got %d", alice.Losses)
	}

	var wagerCount int64
	db.Model(&models.WagerDetail{}).Where("bet_state_id = ?", bet.ID).Count(&wagerCount)
	if wagerCount != 0 {
		t.Errorf("expected all wager rows purged, found %d", wagerCount)
	}
}

func TestPlaceWagerAfterClose(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 1_000_000)
	bet := openTestBet(t, e, "creator")
	e.CloseBetState(ctx, "creator", bet.ID, time.Now())

	if _, err := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 100_000); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("wager on closed bet: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestCancelWagerAfterClose(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 1_000_000)
	bet := openTestBet(t, e, "creator")
	wager, _ := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 100_000)
	e.CloseBetState(ctx, "creator", bet.ID, time.Now())

	if err := e.CancelWager(ctx, "alice", wager.ID); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("cancel on closed bet: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestCancelWagerRefundsStakeOnly(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 1_000_000)
	bet := openTestBet(t, e, "creator")
	wager, err := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 100_000)
	if err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}

	if err := e.CancelWager(ctx, "mallory", wager.ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("cancel of foreign wager: expected ErrUnauthorized, got %v", err)
	}

	if err := e.CancelWager(ctx, "alice", wager.ID); err != nil {
		t.Fatalf("CancelWager failed: %v", err)
	}

	// The net stake comes back; the 2% fee does not.
	account, _ := e.GetUserAccount(ctx, "alice")
	if account.CurrentBalance != 1_000_000-2_000 {
		t.Errorf("expected balance 998000 (fee retained), got %d", account.CurrentBalance)
	}

	got, _ := e.GetBetState(ctx, bet.ID)
	if got.PartyOnePool != 0 || got.RunningTotalPool != 0 {
		t.Errorf("expected empty pools after cancel, got pool %d running %d",
			got.PartyOnePool, got.RunningTotalPool)
	}
	// The gross audit total keeps the cancelled stake and its fee.
	if got.StaticTotalPool != 102_000 {
		t.Errorf("expected static total 102000, got %d", got.StaticTotalPool)
	}

	if active, _ := e.ListActiveWagers(ctx, "alice"); len(active) != 0 {
		t.Errorf("expected empty active set after cancel, got %d entries", len(active))
	}
	if err := e.CancelWager(ctx, "alice", wager.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double cancel: expected ErrNotFound, got %v", err)
	}
}

func TestCloseAllowsFundedPools(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 1_000_000)
	bet := openTestBet(t, e, "creator")
	if _, err := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 100_000); err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}

	// Closing never requires empty pools; only settling does.
	closed, err := e.CloseBetState(ctx, "creator", bet.ID, time.Now())
	if err != nil {
		t.Fatalf("CloseBetState with funded pools failed: %v", err)
	}
	if closed.Status != models.BetStatusClosed {
		t.Errorf("expected status CLOSED, got %s", closed.Status)
	}
	if closed.EndTime == nil {
		t.Error("expected end time to be recorded")
	}
}

func TestCloseAndDecideTransitions(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	bet := openTestBet(t, e, "creator")

	if _, err := e.CloseBetState(ctx, "mallory", bet.ID, time.Now()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("close by stranger: expected ErrUnauthorized, got %v", err)
	}
	if _, err := e.DecideBetStateOutcome(ctx, "creator", bet.ID, models.BetOutcomePartyOneWin); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("decide while open: expected ErrInvalidStateTransition, got %v", err)
	}
	if _, err := e.DecideBetStateOutcome(ctx, "creator", bet.ID, models.BetOutcomeUndecided); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("decide to undecided: expected ErrInvalidArgument, got %v", err)
	}

	if _, err := e.CloseBetState(ctx, "creator", bet.ID, time.Now()); err != nil {
		t.Fatalf("CloseBetState failed: %v", err)
	}
	if _, err := e.CloseBetState(ctx, "creator", bet.ID, time.Now()); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("double close: expected ErrInvalidStateTransition, got %v", err)
	}

	if _, err := e.DecideBetStateOutcome(ctx, "mallory", bet.ID, models.BetOutcomePartyTwoWin); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("decide by stranger: expected ErrUnauthorized, got %v", err)
	}
	if _, err := e.DecideBetStateOutcome(ctx, "creator", bet.ID, models.BetOutcomePartyTwoWin); err != nil {
		t.Fatalf("DecideBetStateOutcome failed: %v", err)
	}
	if _, err := e.DecideBetStateOutcome(ctx, "creator", bet.ID, models.BetOutcomePartyOneWin); !errors.Is(err, ErrInvalidStateTransition) {
		t.Errorf("double decide: expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestInitializeBetStateValidation(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()
	price := decimal.NewFromInt(150)

	if _, err := e.InitializeBetState(ctx, "creator", time.Now(), 0, "SOL", price, models.BetRangeZeroToPosOne); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero duration: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := e.InitializeBetState(ctx, "creator", time.Now(), time.Hour, "", price, models.BetRangeZeroToPosOne); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty symbol: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := e.InitializeBetState(ctx, "creator", time.Now(), time.Hour, "SOL", price, "UP_ONLY"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("bad range: expected ErrInvalidArgument, got %v", err)
	}
}

func TestAccountLifecycle(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	account := fundAccount(t, e, "alice", 500)

	if _, err := e.InitializeUserAccount(ctx, "alice"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("duplicate account: expected ErrInvalidArgument, got %v", err)
	}

	// EnsureUserAccount is a no-op for an existing wallet.
	ensured, err := e.EnsureUserAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("EnsureUserAccount failed: %v", err)
	}
	if ensured.ID != account.ID {
		t.Errorf("expected existing account %d, got %d", account.ID, ensured.ID)
	}

	if _, err := e.WithdrawFromAccount(ctx, "alice", 600); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("overdraw: expected ErrInsufficientFunds, got %v", err)
	}
	if err := e.CloseUserAccount(ctx, "alice"); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("close with balance: expected ErrNotEmpty, got %v", err)
	}

	if _, err := e.WithdrawFromAccount(ctx, "alice", 500); err != nil {
		t.Fatalf("WithdrawFromAccount failed: %v", err)
	}
	if err := e.CloseUserAccount(ctx, "alice"); err != nil {
		t.Fatalf("CloseUserAccount failed: %v", err)
	}
	if _, err := e.GetUserAccount(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after close, got %v", err)
	}
}

func TestCloseAccountBlockedByActiveWager(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	fundAccount(t, e, "alice", 102_000)
	bet := openTestBet(t, e, "creator")
	if _, err := e.PlaceWager(ctx, "alice", bet.ID, models.PartyOne, 100_000); err != nil {
		t.Fatalf("PlaceWager failed: %v", err)
	}

	// Balance is zero but one wager is still active.
	if err := e.CloseUserAccount(ctx, "alice"); !errors.Is(err, ErrNotEmpty) {
		t.Errorf("close with active wager: expected ErrNotEmpty, got %v", err)
	}
}

func TestConcurrentWagersSerialize(t *testing.T) {
	e, _ := setupTestEngine(t)
	ctx := context.Background()

	const bettors = 8
	const stake = int64(10_000)
	fee := TakerFee(stake, testFeeBps)

	for i := 0; i < bettors; i++ {
		fundAccount(t, e, fmt.Sprintf("wallet%d", i), 1_000_000)
	}
	bet := openTestBet(t, e, "creator")

	var wg sync.WaitGroup
	var mu sync.Mutex
	wagerIDs := make(map[int]uuid.UUID)
	errs := make(chan error, 2*bettors)
	for i := 0; i < bettors; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			party := models.PartyOne
			if n%2 == 1 {
				party = models.PartyTwo
			}
			wager, err := e.PlaceWager(ctx, fmt.Sprintf("wallet%d", n), bet.ID, party, stake)
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			wagerIDs[n] = wager.ID
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	// Half the bettors cancel concurrently with two more placements.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if err := e.CancelWager(ctx, fmt.Sprintf("wallet%d", n), wagerIDs[n]); err != nil {
				errs <- err
			}
		}(i * 2)
	}
	for _, n := range []int{1, 3} {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := e.PlaceWager(ctx, fmt.Sprintf("wallet%d", n), bet.ID, models.PartyTwo, stake); err != nil {
				errs <- err
			}
		}(n)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent engine operation failed: %v", err)
	}

	// 10 placements total, 4 of them (all PartyOne) cancelled again.
	got, err := e.GetBetState(ctx, bet.ID)
	if err != nil {
		t.Fatalf("failed to get bet: %v", err)
	}
	if got.PartyOnePool != 0 || got.PartyTwoPool != 6*stake {
		t.Errorf("expected pools 0 / %d, got %d / %d",
			6*stake, got.PartyOnePool, got.PartyTwoPool)
	}
	if got.RunningTotalPool != 6*stake {
		t.Errorf("expected running total %d, got %d", 6*stake, got.RunningTotalPool)
	}
	// The gross audit total counts every placement, cancelled or not.
	if got.StaticTotalPool != 10*(stake+fee) {
		t.Errorf("expected static total %d, got %d", 10*(stake+fee), got.StaticTotalPool)
	}

	balances := map[int]int64{
		0: 1_000_000 - fee,             // placed and cancelled, fee retained
		1: 1_000_000 - 2*(stake + fee), // placed twice
		5: 1_000_000 - stake - fee,     // placed once
	}
	balances[2], balances[4], balances[6] = balances[0], balances[0], balances[0]
	balances[3] = balances[1]
	balances[7] = balances[5]
	for i := 0; i < bettors; i++ {
		account, err := e.GetUserAccount(ctx, fmt.Sprintf("wallet%d", i))
		if err != nil {
			t.Fatalf("failed to get wallet%d: %v", i, err)
		}
		if account.CurrentBalance != balances[i] {
			t.Errorf("wallet%d: expected balance %d, got %d",
				i, balances[i], account.CurrentBalance)
		}
	}
}
