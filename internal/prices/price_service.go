package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// coinGeckoIDs maps supported tickers to CoinGecko coin ids.
var coinGeckoIDs = map[string]string{
	"SOL": "solana",
	"BTC": "bitcoin",
	"ETH": "ethereum",
}

// Service provides USD spot prices for supported symbols, cached briefly so
// bet creation never blocks on the upstream API while holding any lock.
type Service struct {
	mu        sync.RWMutex
	prices    map[string]decimal.Decimal
	lastFetch map[string]time.Time

	ttl    time.Duration
	client *http.Client
}

func NewService(ttl time.Duration) *Service {
	return &Service{
		prices:    make(map[string]decimal.Decimal),
		lastFetch: make(map[string]time.Time),
		ttl:       ttl,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// GetPrice returns the latest USD price for a ticker (e.g. "SOL").
func (s *Service) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	symbol = strings.ToUpper(symbol)
	coinID, ok := coinGeckoIDs[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("unsupported symbol: %s", symbol)
	}

	s.mu.RLock()
	price, hasPrice := s.prices[symbol]
	fetched, hasFetch := s.lastFetch[symbol]
	s.mu.RUnlock()

	if hasPrice && hasFetch && time.Since(fetched) < s.ttl {
		return price, nil
	}

	price, err := s.fetchCoinGeckoPrice(ctx, symbol, coinID)
	if err != nil {
		// Serve a stale price over failing the request outright.
		if hasPrice {
			log.Printf("[PriceService] Fetch failed for %s, serving cached price: %v", symbol, err)
			return price, nil
		}
		return decimal.Zero, err
	}

	return price, nil
}

// fetchCoinGeckoPrice fetches one coin's USD price and refreshes the cache.
func (s *Service) fetchCoinGeckoPrice(ctx context.Context, symbol, coinID string) (decimal.Decimal, error) {
	url := fmt.Sprintf("https://api.coingecko.com/api/v3/simple/price?ids=%s&vs_currencies=usd", coinID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch price: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read price response: %w", err)
	}

	var payload map[string]map[string]json.Number
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse price response: %w", err)
	}

	raw, ok := payload[coinID]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("price missing for %s", coinID)
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q for %s: %w", raw, coinID, err)
	}

	s.mu.Lock()
	s.prices[symbol] = price
	s.lastFetch[symbol] = time.Now()
	s.mu.Unlock()

	return price, nil
}
