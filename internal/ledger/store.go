package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Shuvra-458/Trading-Simulator/internal/models"
)

// Store is the durable state the engine runs against. Implementations must
// make ApplyTrade atomic: balance update, position upsert/delete and trade
// append commit together or not at all, and readers never observe a
// half-applied trade.
//
// Account lookups return ErrAccountNotFound for unknown ids. Trades returns
// the full log for an account ordered by (created_at, id) ascending — the
// replay order the reconstructor depends on.
type Store interface {
	CreateAccount(ctx context.Context, username string, balance decimal.Decimal) (models.Account, error)
	Account(ctx context.Context, accountID int64) (models.Account, error)

	Position(ctx context.Context, accountID int64, symbol string) (models.Position, bool, error)
	Positions(ctx context.Context, accountID int64) ([]models.Position, error)

	Trades(ctx context.Context, accountID int64) ([]models.Trade, error)
	TradesDesc(ctx context.Context, accountID int64, limit int) ([]models.Trade, error)

	ApplyTrade(ctx context.Context, change models.TradeChange) error
}
