// Package marketdata simulates a best-effort stock price feed. Prices start
// from fixed reference values and take a bounded random walk; lookups for
// symbols the feed does not track return zero, which callers treat as
// "price unavailable".
package marketdata

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Shuvra-458/Trading-Simulator/internal/models"
)

// Stock is one entry of the tradable symbol directory.
type Stock struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}

// Quote is one price update pushed to subscribers.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Change    float64         `json:"change"`
	Timestamp time.Time       `json:"timestamp"`
}

// listings is the curated directory of tradable symbols with their
// reference prices.
var listings = []struct {
	symbol string
	name   string
	price  float64
}{
	{"AAPL", "Apple Inc.", 150.00},
	{"TSLA", "Tesla Inc.", 250.00},
	{"GOOGL", "Alphabet Inc. (Google)", 140.00},
	{"AMZN", "Amazon.com Inc.", 180.00},
	{"MSFT", "Microsoft Corp.", 380.00},
	{"META", "Meta Platforms Inc.", 480.00},
	{"NVDA", "NVIDIA Corp.", 115.00},
	{"INTC", "Intel Corp.", 31.00},
	{"AMD", "AMD (Advanced Micro)", 160.00},
	{"CSCO", "Cisco Systems", 48.00},
	{"JPM", "JPMorgan Chase", 200.00},
	{"BAC", "Bank of America", 39.00},
	{"GS", "Goldman Sachs", 460.00},
	{"MS", "Morgan Stanley", 98.00},
	{"WFC", "Wells Fargo", 58.00},
	{"JNJ", "Johnson & Johnson", 155.00},
	{"PFE", "Pfizer Inc.", 28.00},
	{"MRNA", "Moderna Inc.", 120.00},
	{"LLY", "Eli Lilly", 800.00},
	{"WMT", "Walmart Inc.", 68.00},
	{"COST", "Costco Wholesale", 850.00},
	{"HD", "Home Depot", 340.00},
	{"NKE", "Nike Inc.", 94.00},
	{"MCD", "McDonald's Corp.", 260.00},
	{"XOM", "ExxonMobil", 115.00},
	{"CVX", "Chevron Corp.", 155.00},
}

// Feed owns the simulated prices and pushes a random-walk update to every
// subscriber on each tick.
type Feed struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
	names  map[string]string
	order  []string
	subs   map[chan Quote]struct{}

	rng    *rand.Rand
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewFeed() *Feed {
	f := &Feed{
		prices: make(map[string]decimal.Decimal, len(listings)),
		names:  make(map[string]string, len(listings)),
		order:  make([]string, 0, len(listings)),
		subs:   make(map[chan Quote]struct{}),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh: make(chan struct{}),
	}
	for _, l := range listings {
		f.prices[l.symbol] = decimal.NewFromFloat(l.price)
		f.names[l.symbol] = l.name
		f.order = append(f.order, l.symbol)
	}
	return f
}

// Start launches the price walk, emitting one quote per interval.
func (f *Feed) Start(interval time.Duration) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-f.stopCh:
				return
			case <-ticker.C:
				f.step()
			}
		}
	}()
	log.Info().Dur("interval", interval).Int("symbols", len(f.order)).
		Msg("market data feed started")
}

// Stop halts the walk and closes all subscriber channels.
func (f *Feed) Stop() {
	close(f.stopCh)
	f.wg.Wait()

	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		close(ch)
		delete(f.subs, ch)
	}
}

// step moves one random symbol by -2%..+2% and publishes the new quote.
func (f *Feed) step() {
	f.mu.Lock()

	symbol := f.order[f.rng.Intn(len(f.order))]
	changePercent := (f.rng.Float64() - 0.5) * 4
	factor := decimal.NewFromFloat(1 + changePercent/100)
	newPrice := f.prices[symbol].Mul(factor).Round(2)
	f.prices[symbol] = newPrice

	quote := Quote{
		Symbol:    symbol,
		Price:     newPrice,
		Change:    changePercent,
		Timestamp: time.Now().UTC(),
	}

	// Slow subscribers just miss updates; the walk never blocks on them.
	for ch := range f.subs {
		select {
		case ch <- quote:
		default:
		}
	}
	f.mu.Unlock()
}

// Price returns the current simulated price for symbol, or zero when the
// feed does not track it.
func (f *Feed) Price(symbol string) decimal.Decimal {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.prices[models.NormalizeSymbol(symbol)]
}

// Listings returns the symbol directory with current prices, in the fixed
// directory order.
func (f *Feed) Listings() []Stock {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Stock, 0, len(f.order))
	for _, sym := range f.order {
		out = append(out, Stock{Symbol: sym, Name: f.names[sym], Price: f.prices[sym]})
	}
	return out
}

// Subscribe registers a quote channel. The returned cancel func must be
// called when the consumer goes away.
func (f *Feed) Subscribe() (<-chan Quote, func()) {
	ch := make(chan Quote, 16)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subs[ch]; ok {
			delete(f.subs, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}
