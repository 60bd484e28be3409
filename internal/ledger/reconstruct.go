package ledger

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Shuvra-458/Trading-Simulator/internal/models"
)

// Reconstruct recomputes an account's positions purely by replaying its
// trade log, ignoring the maintained position table. For any history
// produced through Execute the result is numerically identical to the
// maintained table — that identity is the correctness oracle for the whole
// ledger, and this read path is what audits or recovery use when the
// maintained table is suspect.
//
// An account with no trades yields an empty map. Reconstruct never mutates
// state.
func (e *Engine) Reconstruct(ctx context.Context, accountID int64) (map[string]models.Position, error) {
	if _, err := e.Account(ctx, accountID); err != nil {
		return nil, err
	}
	trades, err := e.store.Trades(ctx, accountID)
	if err != nil {
		return nil, storageFailure(err, "load trade log")
	}
	return Replay(trades), nil
}

// Replay folds an ordered trade log into positions using the same update
// rules Execute applies: a BUY recomputes the weighted-average cost, a SELL
// decrements quantity and leaves the average cost alone, and an entry is
// dropped the moment its quantity returns to zero. Only symbols with
// quantity > 0 appear in the result.
//
// Trades must already be in (created_at, id) ascending order, which is what
// Store.Trades guarantees.
func Replay(trades []models.Trade) map[string]models.Position {
	positions := make(map[string]models.Position)

	for _, t := range trades {
		pos := positions[t.Symbol]

		switch t.Side {
		case models.SideBuy:
			oldQty := decimal.NewFromInt(pos.Quantity)
			newQty := pos.Quantity + t.Quantity
			if pos.Quantity > 0 {
				pos.AvgCost = oldQty.Mul(pos.AvgCost).
					Add(t.Price.Mul(decimal.NewFromInt(t.Quantity))).
					Div(decimal.NewFromInt(newQty))
			} else {
				pos.AvgCost = t.Price
			}
			pos.Quantity = newQty
		case models.SideSell:
			pos.Quantity -= t.Quantity
		}

		if pos.Quantity <= 0 {
			delete(positions, t.Symbol)
			continue
		}
		pos.AccountID = t.AccountID
		pos.Symbol = t.Symbol
		pos.UpdatedAt = t.CreatedAt
		positions[t.Symbol] = pos
	}

	return positions
}

// CheckConsistency replays the trade log and compares the result against
// the maintained position table, failing on the first divergence in held
// symbols, quantity or average cost.
func (e *Engine) CheckConsistency(ctx context.Context, accountID int64) error {
	replayed, err := e.Reconstruct(ctx, accountID)
	if err != nil {
		return err
	}
	maintained, err := e.Positions(ctx, accountID)
	if err != nil {
		return err
	}

	if len(maintained) != len(replayed) {
		return errors.Errorf("position table has %d symbols, replay has %d",
			len(maintained), len(replayed))
	}
	for _, pos := range maintained {
		r, ok := replayed[pos.Symbol]
		if !ok {
			return errors.Errorf("%s: present in position table, absent from replay", pos.Symbol)
		}
		if r.Quantity != pos.Quantity {
			return errors.Errorf("%s: quantity %d in position table, %d from replay",
				pos.Symbol, pos.Quantity, r.Quantity)
		}
		if !r.AvgCost.Equal(pos.AvgCost) {
			return errors.Errorf("%s: avg cost %s in position table, %s from replay",
				pos.Symbol, pos.AvgCost, r.AvgCost)
		}
	}
	return nil
}
