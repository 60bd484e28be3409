// Package store holds the in-memory Store implementation. It backs unit
// tests and the STORE=memory demo mode; the durable implementation lives in
// the postgres subpackage.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shuvra-458/Trading-Simulator/internal/ledger"
	"github.com/Shuvra-458/Trading-Simulator/internal/models"
)

// Memory keeps all state in maps behind one RWMutex. ApplyTrade mutates
// balance, position and the trade log under the write lock, so readers
// either see a trade fully applied or not at all.
type Memory struct {
	mu            sync.RWMutex
	nextAccountID int64
	accounts      map[int64]models.Account
	positions     map[int64]map[string]models.Position
	trades        map[int64][]models.Trade
}

func NewMemory() *Memory {
	return &Memory{
		accounts:  make(map[int64]models.Account),
		positions: make(map[int64]map[string]models.Position),
		trades:    make(map[int64][]models.Trade),
	}
}

var _ ledger.Store = (*Memory)(nil)

func (m *Memory) CreateAccount(_ context.Context, username string, balance decimal.Decimal) (models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextAccountID++
	acct := models.Account{
		ID:          m.nextAccountID,
		Username:    username,
		CashBalance: balance,
		CreatedAt:   time.Now().UTC(),
	}
	m.accounts[acct.ID] = acct
	return acct, nil
}

func (m *Memory) Account(_ context.Context, accountID int64) (models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[accountID]
	if !ok {
		return models.Account{}, ledger.ErrAccountNotFound
	}
	return acct, nil
}

func (m *Memory) Position(_ context.Context, accountID int64, symbol string) (models.Position, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pos, ok := m.positions[accountID][symbol]
	return pos, ok, nil
}

func (m *Memory) Positions(_ context.Context, accountID int64) ([]models.Position, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Position, 0, len(m.positions[accountID]))
	for _, pos := range m.positions[accountID] {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (m *Memory) Trades(_ context.Context, accountID int64) ([]models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Trade, len(m.trades[accountID]))
	copy(out, m.trades[accountID])
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) TradesDesc(ctx context.Context, accountID int64, limit int) ([]models.Trade, error) {
	asc, err := m.Trades(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Trade, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		out = append(out, asc[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ApplyTrade(_ context.Context, change models.TradeChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[change.AccountID]
	if !ok {
		return ledger.ErrAccountNotFound
	}

	acct.CashBalance = change.NewBalance
	m.accounts[change.AccountID] = acct

	if change.RemovePosition {
		delete(m.positions[change.AccountID], change.Position.Symbol)
	} else {
		if m.positions[change.AccountID] == nil {
			m.positions[change.AccountID] = make(map[string]models.Position)
		}
		m.positions[change.AccountID][change.Position.Symbol] = change.Position
	}

	m.trades[change.AccountID] = append(m.trades[change.AccountID], change.Trade)
	return nil
}
