package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Shuvra-458/Trading-Simulator/internal/models"
)

// Engine validates and executes trades against an account's cash balance
// and positions. Every accepted trade commits balance, position and trade
// record as one atomic unit through the store; a rejected trade changes
// nothing.
//
// Execute calls for the same account are serialized by a per-account lock,
// so the classic check-then-act race (two concurrent buys both observing
// enough cash before either commits) cannot happen. Different accounts
// share no mutable state and proceed in parallel.
type Engine struct {
	store Store
	locks *accountLocks
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store: store,
		locks: newAccountLocks(),
	}
}

// Execute runs one trade to a definite accept or reject outcome.
//
// The price is taken as given; whether it came from the user or from a
// market-data lookup is the caller's concern. The symbol is normalized to
// uppercase before any lookup or storage.
func (e *Engine) Execute(ctx context.Context, accountID int64, symbol string, side models.Side, quantity int64, price decimal.Decimal) (models.Trade, error) {
	if quantity <= 0 || !price.IsPositive() {
		return models.Trade{}, ErrInvalidQuantityOrPrice
	}
	if !side.Valid() {
		return models.Trade{}, errors.Wrapf(ErrInvalidQuantityOrPrice, "unknown trade side %q", side)
	}
	symbol = models.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.Trade{}, errors.Wrap(ErrInvalidQuantityOrPrice, "empty symbol")
	}

	e.locks.Lock(accountID)
	defer e.locks.Unlock(accountID)

	acct, err := e.store.Account(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return models.Trade{}, err
		}
		return models.Trade{}, storageFailure(err, "load account")
	}

	if side == models.SideBuy {
		return e.buy(ctx, acct, symbol, quantity, price)
	}
	return e.sell(ctx, acct, symbol, quantity, price)
}

func (e *Engine) buy(ctx context.Context, acct models.Account, symbol string, quantity int64, price decimal.Decimal) (models.Trade, error) {
	totalCost := price.Mul(decimal.NewFromInt(quantity))

	if acct.CashBalance.LessThan(totalCost) {
		return models.Trade{}, ErrInsufficientBalance
	}

	pos, ok, err := e.store.Position(ctx, acct.ID, symbol)
	if err != nil {
		return models.Trade{}, storageFailure(err, "load position")
	}

	now := time.Now().UTC()
	newPos := models.Position{
		AccountID: acct.ID,
		Symbol:    symbol,
		UpdatedAt: now,
	}
	if ok && pos.Quantity > 0 {
		oldQty := decimal.NewFromInt(pos.Quantity)
		newPos.Quantity = pos.Quantity + quantity
		// Weighted-average cost basis: old holding at its average price
		// plus the new lot at the fill price, over the combined quantity.
		newPos.AvgCost = oldQty.Mul(pos.AvgCost).Add(totalCost).
			Div(decimal.NewFromInt(newPos.Quantity))
	} else {
		newPos.Quantity = quantity
		newPos.AvgCost = price
	}

	trade := models.Trade{
		ID:        newTradeID(),
		AccountID: acct.ID,
		Symbol:    symbol,
		Side:      models.SideBuy,
		Quantity:  quantity,
		Price:     price,
		Total:     totalCost,
		CreatedAt: now,
	}

	change := models.TradeChange{
		AccountID:  acct.ID,
		NewBalance: acct.CashBalance.Sub(totalCost),
		Position:   newPos,
		Trade:      trade,
	}
	if err := e.store.ApplyTrade(ctx, change); err != nil {
		return models.Trade{}, storageFailure(err, "commit buy")
	}
	return trade, nil
}

func (e *Engine) sell(ctx context.Context, acct models.Account, symbol string, quantity int64, price decimal.Decimal) (models.Trade, error) {
	pos, ok, err := e.store.Position(ctx, acct.ID, symbol)
	if err != nil {
		return models.Trade{}, storageFailure(err, "load position")
	}
	if !ok || pos.Quantity == 0 {
		return models.Trade{}, ErrNoPosition
	}
	if pos.Quantity < quantity {
		return models.Trade{}, errors.Wrapf(ErrInsufficientShares,
			"own %d, trying to sell %d", pos.Quantity, quantity)
	}

	proceeds := price.Mul(decimal.NewFromInt(quantity))
	now := time.Now().UTC()

	// A sell reduces quantity only; the average cost of the remaining
	// shares stays what it was. Realized gain/loss is not tracked here —
	// it stays reconstructable from paired BUY/SELL records in the log.
	newPos := models.Position{
		AccountID: acct.ID,
		Symbol:    symbol,
		Quantity:  pos.Quantity - quantity,
		AvgCost:   pos.AvgCost,
		UpdatedAt: now,
	}

	trade := models.Trade{
		ID:        newTradeID(),
		AccountID: acct.ID,
		Symbol:    symbol,
		Side:      models.SideSell,
		Quantity:  quantity,
		Price:     price,
		Total:     proceeds,
		CreatedAt: now,
	}

	change := models.TradeChange{
		AccountID:      acct.ID,
		NewBalance:     acct.CashBalance.Add(proceeds),
		Position:       newPos,
		RemovePosition: newPos.Quantity == 0,
		Trade:          trade,
	}
	if err := e.store.ApplyTrade(ctx, change); err != nil {
		return models.Trade{}, storageFailure(err, "commit sell")
	}
	return trade, nil
}

// OpenAccount creates an account with the given starting balance.
func (e *Engine) OpenAccount(ctx context.Context, username string, startingBalance decimal.Decimal) (models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Account{}, errors.Wrap(ErrInvalidQuantityOrPrice, "empty username")
	}
	acct, err := e.store.CreateAccount(ctx, username, startingBalance)
	if err != nil {
		return models.Account{}, storageFailure(err, "create account")
	}
	return acct, nil
}

// Account returns the account's current state, cash balance included.
func (e *Engine) Account(ctx context.Context, accountID int64) (models.Account, error) {
	acct, err := e.store.Account(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return models.Account{}, err
		}
		return models.Account{}, storageFailure(err, "load account")
	}
	return acct, nil
}

// Positions returns the maintained position table for an account.
func (e *Engine) Positions(ctx context.Context, accountID int64) ([]models.Position, error) {
	if _, err := e.Account(ctx, accountID); err != nil {
		return nil, err
	}
	positions, err := e.store.Positions(ctx, accountID)
	if err != nil {
		return nil, storageFailure(err, "load positions")
	}
	return positions, nil
}

// History returns the account's trades newest first, capped at limit.
func (e *Engine) History(ctx context.Context, accountID int64, limit int) ([]models.Trade, error) {
	if _, err := e.Account(ctx, accountID); err != nil {
		return nil, err
	}
	trades, err := e.store.TradesDesc(ctx, accountID, limit)
	if err != nil {
		return nil, storageFailure(err, "load trade history")
	}
	return trades, nil
}
