package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NormalizeSymbol uppercases and trims a stock symbol. Every lookup and
// every stored record goes through this, so "aapl" and "AAPL" are the same
// holding.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Valid reports whether s is one of the two known trade sides.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Account holds the virtual cash balance trades settle against.
type Account struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Position is an account's current holding of one symbol. AvgCost is the
// quantity-weighted mean purchase price of the shares still held; it is
// recomputed on every BUY and untouched by SELLs. A position whose quantity
// reaches zero is removed — readers treat absence as "no holding".
type Position struct {
	AccountID int64           `json:"account_id"`
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	AvgCost   decimal.Decimal `json:"avg_cost"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Trade is one accepted buy or sell. Trades are append-only: once written
// they are never mutated or deleted, and the full ordered log is enough to
// rebuild every position from scratch.
//
// ID is a ULID, so later ids sort lexicographically after earlier ones;
// (CreatedAt, ID) gives a deterministic total order even when two trades
// land on the same timestamp.
type Trade struct {
	ID        string          `json:"id"`
	AccountID int64           `json:"account_id"`
	Symbol    string          `json:"symbol"`
	Side      Side            `json:"side"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// TradeChange is the atomic commit unit for one accepted trade: the new
// cash balance, the new (or removed) position, and the trade record to
// append. A store applies all three together or none of them.
type TradeChange struct {
	AccountID      int64
	NewBalance     decimal.Decimal
	Position       Position
	RemovePosition bool
	Trade          Trade
}
