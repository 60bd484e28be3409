package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Shuvra-458/Trading-Simulator/internal/ledger"
	"github.com/Shuvra-458/Trading-Simulator/internal/models"
)

func TestMemory_AccountNotFound(t *testing.T) {
	mem := NewMemory()

	_, err := mem.Account(context.Background(), 1)
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)

	err = mem.ApplyTrade(context.Background(), models.TradeChange{AccountID: 1})
	require.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestMemory_CreateAndFetchAccount(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	acct, err := mem.CreateAccount(ctx, "alice", decimal.NewFromInt(100000))
	require.NoError(t, err)
	require.NotZero(t, acct.ID)

	got, err := mem.Account(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.True(t, got.CashBalance.Equal(decimal.NewFromInt(100000)))

	// Ids are unique per account.
	other, err := mem.CreateAccount(ctx, "bob", decimal.NewFromInt(500))
	require.NoError(t, err)
	require.NotEqual(t, acct.ID, other.ID)
}

func TestMemory_ApplyTradeCommitsAllThree(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	acct, err := mem.CreateAccount(ctx, "alice", decimal.NewFromInt(10000))
	require.NoError(t, err)

	now := time.Now().UTC()
	change := models.TradeChange{
		AccountID:  acct.ID,
		NewBalance: decimal.NewFromInt(8500),
		Position: models.Position{
			AccountID: acct.ID, Symbol: "AAPL", Quantity: 10,
			AvgCost: decimal.NewFromInt(150), UpdatedAt: now,
		},
		Trade: models.Trade{
			ID: "01TRADEA", AccountID: acct.ID, Symbol: "AAPL", Side: models.SideBuy,
			Quantity: 10, Price: decimal.NewFromInt(150), Total: decimal.NewFromInt(1500),
			CreatedAt: now,
		},
	}
	require.NoError(t, mem.ApplyTrade(ctx, change))

	got, err := mem.Account(ctx, acct.ID)
	require.NoError(t, err)
	require.True(t, got.CashBalance.Equal(decimal.NewFromInt(8500)))

	pos, ok, err := mem.Position(ctx, acct.ID, "AAPL")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 10, pos.Quantity)

	trades, err := mem.Trades(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, trades, 1)
}

func TestMemory_RemovePositionDeletesEntry(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	acct, err := mem.CreateAccount(ctx, "alice", decimal.NewFromInt(10000))
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, mem.ApplyTrade(ctx, models.TradeChange{
		AccountID:  acct.ID,
		NewBalance: decimal.NewFromInt(9000),
		Position: models.Position{
			AccountID: acct.ID, Symbol: "AAPL", Quantity: 10,
			AvgCost: decimal.NewFromInt(100), UpdatedAt: now,
		},
		Trade: models.Trade{ID: "01A", AccountID: acct.ID, Symbol: "AAPL",
			Side: models.SideBuy, Quantity: 10, Price: decimal.NewFromInt(100), CreatedAt: now},
	}))

	require.NoError(t, mem.ApplyTrade(ctx, models.TradeChange{
		AccountID:      acct.ID,
		NewBalance:     decimal.NewFromInt(10000),
		RemovePosition: true,
		Position:       models.Position{AccountID: acct.ID, Symbol: "AAPL"},
		Trade: models.Trade{ID: "01B", AccountID: acct.ID, Symbol: "AAPL",
			Side: models.SideSell, Quantity: 10, Price: decimal.NewFromInt(100), CreatedAt: now.Add(time.Second)},
	}))

	_, ok, err := mem.Position(ctx, acct.ID, "AAPL")
	require.NoError(t, err)
	require.False(t, ok)

	positions, err := mem.Positions(ctx, acct.ID)
	require.NoError(t, err)
	require.Empty(t, positions)

	// The trade log keeps both records regardless.
	trades, err := mem.Trades(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, trades, 2)
}

func TestMemory_TradesOrderedByTimestampThenID(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	acct, err := mem.CreateAccount(ctx, "alice", decimal.NewFromInt(10000))
	require.NoError(t, err)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	apply := func(id string, created time.Time) {
		require.NoError(t, mem.ApplyTrade(ctx, models.TradeChange{
			AccountID:  acct.ID,
			NewBalance: decimal.NewFromInt(10000),
			Position: models.Position{AccountID: acct.ID, Symbol: "AAPL", Quantity: 1,
				AvgCost: decimal.NewFromInt(1), UpdatedAt: created},
			Trade: models.Trade{ID: id, AccountID: acct.ID, Symbol: "AAPL",
				Side: models.SideBuy, Quantity: 1, Price: decimal.NewFromInt(1), CreatedAt: created},
		}))
	}

	// Committed out of order, with a timestamp tie between B and A.
	apply("01C", ts.Add(time.Second))
	apply("01B", ts)
	apply("01A", ts)

	trades, err := mem.Trades(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, trades, 3)
	require.Equal(t, []string{"01A", "01B", "01C"},
		[]string{trades[0].ID, trades[1].ID, trades[2].ID})

	desc, err := mem.TradesDesc(ctx, acct.ID, 2)
	require.NoError(t, err)
	require.Len(t, desc, 2)
	require.Equal(t, "01C", desc[0].ID)
	require.Equal(t, "01B", desc[1].ID)
}

func TestMemory_ReturnedSlicesAreCopies(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	acct, err := mem.CreateAccount(ctx, "alice", decimal.NewFromInt(10000))
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, mem.ApplyTrade(ctx, models.TradeChange{
		AccountID:  acct.ID,
		NewBalance: decimal.NewFromInt(9900),
		Position: models.Position{AccountID: acct.ID, Symbol: "AAPL", Quantity: 1,
			AvgCost: decimal.NewFromInt(100), UpdatedAt: now},
		Trade: models.Trade{ID: "01A", AccountID: acct.ID, Symbol: "AAPL",
			Side: models.SideBuy, Quantity: 1, Price: decimal.NewFromInt(100), CreatedAt: now},
	}))

	trades, err := mem.Trades(ctx, acct.ID)
	require.NoError(t, err)
	trades[0].Symbol = "MUTATED"

	again, err := mem.Trades(ctx, acct.ID)
	require.NoError(t, err)
	require.Equal(t, "AAPL", again[0].Symbol)
}
