package jobs

import (
	"context"
	"log"
	"time"

	"juicybets/internal/engine"
)

// BetCloser automatically closes open bets whose wagering window has elapsed
type BetCloser struct {
	engine   *engine.Engine
	interval time.Duration
	stopChan chan struct{}
}

// NewBetCloser creates a new bet closer job
func NewBetCloser(e *engine.Engine, interval time.Duration) *BetCloser {
	return &BetCloser{
		engine:   e,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the bet closing loop
func (bc *BetCloser) Start() {
	log.Printf("[BetCloser] Starting bet closer job (interval: %v)", bc.interval)

	ticker := time.NewTicker(bc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			bc.closeElapsedBets()
		case <-bc.stopChan:
			log.Println("[BetCloser] Stopping bet closer job")
			return
		}
	}
}

// Stop stops the bet closing loop
func (bc *BetCloser) Stop() {
	close(bc.stopChan)
}

// closeElapsedBets finds and closes all open bets past their closing time
func (bc *BetCloser) closeElapsedBets() {
	ctx := context.Background()
	now := time.Now()

	bets, err := bc.engine.ListElapsedOpenBets(ctx, now, 100)
	if err != nil {
		log.Printf("[BetCloser] Error fetching elapsed bets: %v", err)
		return
	}

	if len(bets) == 0 {
		return
	}

	log.Printf("[BetCloser] Closing %d elapsed bets", len(bets))

	closedCount := 0
	for _, bet := range bets {
		// Close as the bet's creator so the authorization check passes
		if _, err := bc.engine.CloseBetState(ctx, bet.Creator, bet.ID, now); err != nil {
			log.Printf("[BetCloser] Error closing bet %s: %v", bet.ID, err)
			continue
		}

		closedCount++
		log.Printf("[BetCloser] Closed bet %s (%s)", bet.ID, bet.Symbol)
	}

	if closedCount > 0 {
		log.Printf("[BetCloser] Closed %d bets", closedCount)
	}
}
