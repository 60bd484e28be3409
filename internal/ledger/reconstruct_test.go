package ledger_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Shuvra-458/Trading-Simulator/internal/ledger"
	"github.com/Shuvra-458/Trading-Simulator/internal/models"
	"github.com/Shuvra-458/Trading-Simulator/internal/store"
)

func TestReconstruct_EmptyAccount(t *testing.T) {
	engine, _, acct := newTestEngine(t, 10000)

	replayed, err := engine.Reconstruct(context.Background(), acct.ID)
	require.NoError(t, err)
	require.Empty(t, replayed)
}

func TestReconstruct_AccountNotFound(t *testing.T) {
	engine := ledger.NewEngine(store.NewMemory())

	_, err := engine.Reconstruct(context.Background(), 424242)
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestReconstruct_MatchesMaintainedPositions(t *testing.T) {
	engine, _, acct := newTestEngine(t, 100000)
	ctx := context.Background()

	_, err := engine.Execute(ctx, acct.ID, "AAPL", models.SideBuy, 10, dec("100"))
	require.NoError(t, err)
	_, err = engine.Execute(ctx, acct.ID, "AAPL", models.SideBuy, 10, dec("200"))
	require.NoError(t, err)
	_, err = engine.Execute(ctx, acct.ID, "TSLA", models.SideBuy, 7, dec("251.13"))
	require.NoError(t, err)
	_, err = engine.Execute(ctx, acct.ID, "AAPL", models.SideSell, 4, dec("180"))
	require.NoError(t, err)
	_, err = engine.Execute(ctx, acct.ID, "MSFT", models.SideBuy, 3, dec("380.50"))
	require.NoError(t, err)
	_, err = engine.Execute(ctx, acct.ID, "MSFT", models.SideSell, 3, dec("390"))
	require.NoError(t, err)

	replayed, err := engine.Reconstruct(ctx, acct.ID)
	require.NoError(t, err)
	maintained, err := engine.Positions(ctx, acct.ID)
	require.NoError(t, err)

	// MSFT was fully exited and must be absent from both views.
	require.Len(t, maintained, 2)
	require.Len(t, replayed, 2)
	for _, pos := range maintained {
		r, ok := replayed[pos.Symbol]
		require.Truef(t, ok, "%s missing from replay", pos.Symbol)
		require.Equal(t, pos.Quantity, r.Quantity)
		requireDecimalEqual(t, pos.AvgCost, r.AvgCost)
	}

	require.NoError(t, engine.CheckConsistency(ctx, acct.ID))
}

func TestReconstruct_RandomHistoryStaysConsistent(t *testing.T) {
	engine, _, acct := newTestEngine(t, 1000000)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(42))
	symbols := []string{"AAPL", "TSLA", "GOOGL", "AMZN"}

	for i := 0; i < 500; i++ {
		symbol := symbols[rng.Intn(len(symbols))]
		quantity := int64(rng.Intn(20) + 1)
		price := decimal.NewFromFloat(float64(rng.Intn(40000)+100) / 100)

		side := models.SideBuy
		if rng.Intn(2) == 0 {
			side = models.SideSell
		}

		_, err := engine.Execute(ctx, acct.ID, symbol, side, quantity, price)
		if err != nil {
			// Overdrawn buys and oversold sells are expected along the way;
			// anything else is a real failure.
			require.Truef(t, ledger.IsRejection(err), "unexpected error: %v", err)
		}
	}

	require.NoError(t, engine.CheckConsistency(ctx, acct.ID))
}

func TestReplay_FoldsTradesInGivenOrder(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Identical timestamps are fine: the store hands Replay trades already
	// ordered by (created_at, id), so the buy precedes the sell here.
	buy := models.Trade{
		ID: "01AAAAAAAAAAAAAAAAAAAAAAAA", AccountID: 1, Symbol: "AAPL",
		Side: models.SideBuy, Quantity: 10, Price: dec("100"), Total: dec("1000"), CreatedAt: ts,
	}
	sell := models.Trade{
		ID: "01BBBBBBBBBBBBBBBBBBBBBBBB", AccountID: 1, Symbol: "AAPL",
		Side: models.SideSell, Quantity: 4, Price: dec("120"), Total: dec("480"), CreatedAt: ts,
	}

	positions := ledger.Replay([]models.Trade{buy, sell})
	require.Len(t, positions, 1)
	require.EqualValues(t, 6, positions["AAPL"].Quantity)
	requireDecimalEqual(t, dec("100"), positions["AAPL"].AvgCost)
}

func TestReplay_DropsFullyExitedSymbols(t *testing.T) {
	ts := time.Now().UTC()
	trades := []models.Trade{
		{ID: "01A", AccountID: 1, Symbol: "AAPL", Side: models.SideBuy, Quantity: 5, Price: dec("10"), CreatedAt: ts},
		{ID: "01B", AccountID: 1, Symbol: "AAPL", Side: models.SideSell, Quantity: 5, Price: dec("12"), CreatedAt: ts.Add(time.Second)},
	}

	require.Empty(t, ledger.Replay(trades))
}

func TestReplay_BuyAfterExitStartsFresh(t *testing.T) {
	ts := time.Now().UTC()
	trades := []models.Trade{
		{ID: "01A", AccountID: 1, Symbol: "AAPL", Side: models.SideBuy, Quantity: 10, Price: dec("100"), CreatedAt: ts},
		{ID: "01B", AccountID: 1, Symbol: "AAPL", Side: models.SideSell, Quantity: 10, Price: dec("90"), CreatedAt: ts.Add(time.Second)},
		{ID: "01C", AccountID: 1, Symbol: "AAPL", Side: models.SideBuy, Quantity: 2, Price: dec("50"), CreatedAt: ts.Add(2 * time.Second)},
	}

	positions := ledger.Replay(trades)
	require.Len(t, positions, 1)
	require.EqualValues(t, 2, positions["AAPL"].Quantity)
	requireDecimalEqual(t, dec("50"), positions["AAPL"].AvgCost)
}
