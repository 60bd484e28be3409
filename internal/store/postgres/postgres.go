// Package postgres is the durable Store implementation on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Shuvra-458/Trading-Simulator/internal/ledger"
	"github.com/Shuvra-458/Trading-Simulator/internal/models"
)

type Store struct {
	db *sql.DB
}

// Open connects, configures the pool and applies the schema.
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "connect to database")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrate schema")
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Money columns are unconstrained NUMERIC so the exact decimal value the
// engine computed round-trips; a fixed scale would silently round the
// average cost and break the replay identity.
func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS accounts (
  id           BIGSERIAL PRIMARY KEY,
  username     TEXT NOT NULL UNIQUE,
  cash_balance NUMERIC NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS positions (
  account_id BIGINT NOT NULL REFERENCES accounts(id),
  symbol     TEXT NOT NULL,
  quantity   BIGINT NOT NULL,
  avg_cost   NUMERIC NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL,
  PRIMARY KEY (account_id, symbol)
);
CREATE TABLE IF NOT EXISTS trades (
  id         TEXT PRIMARY KEY,
  account_id BIGINT NOT NULL REFERENCES accounts(id),
  symbol     TEXT NOT NULL,
  side       TEXT NOT NULL,
  quantity   BIGINT NOT NULL,
  price      NUMERIC NOT NULL,
  total      NUMERIC NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_trades_account_order ON trades(account_id, created_at, id);
`)
	return err
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) CreateAccount(ctx context.Context, username string, balance decimal.Decimal) (models.Account, error) {
	acct := models.Account{Username: username, CashBalance: balance}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO accounts (username, cash_balance) VALUES ($1, $2) RETURNING id, created_at`,
		username, balance,
	).Scan(&acct.ID, &acct.CreatedAt)
	if err != nil {
		return models.Account{}, errors.Wrap(err, "insert account")
	}
	return acct, nil
}

func (s *Store) Account(ctx context.Context, accountID int64) (models.Account, error) {
	var acct models.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, cash_balance, created_at FROM accounts WHERE id = $1`,
		accountID,
	).Scan(&acct.ID, &acct.Username, &acct.CashBalance, &acct.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, errors.Wrap(err, "select account")
	}
	return acct, nil
}

func (s *Store) Position(ctx context.Context, accountID int64, symbol string) (models.Position, bool, error) {
	var pos models.Position
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id, symbol, quantity, avg_cost, updated_at
		   FROM positions WHERE account_id = $1 AND symbol = $2`,
		accountID, symbol,
	).Scan(&pos.AccountID, &pos.Symbol, &pos.Quantity, &pos.AvgCost, &pos.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Position{}, false, nil
	}
	if err != nil {
		return models.Position{}, false, errors.Wrap(err, "select position")
	}
	return pos, true, nil
}

func (s *Store) Positions(ctx context.Context, accountID int64) ([]models.Position, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id, symbol, quantity, avg_cost, updated_at
		   FROM positions WHERE account_id = $1 AND quantity > 0
		  ORDER BY symbol`,
		accountID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "select positions")
	}
	defer rows.Close()

	positions := make([]models.Position, 0)
	for rows.Next() {
		var pos models.Position
		if err := rows.Scan(&pos.AccountID, &pos.Symbol, &pos.Quantity, &pos.AvgCost, &pos.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan position")
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

func (s *Store) Trades(ctx context.Context, accountID int64) ([]models.Trade, error) {
	return s.trades(ctx,
		`SELECT id, account_id, symbol, side, quantity, price, total, created_at
		   FROM trades WHERE account_id = $1
		  ORDER BY created_at ASC, id ASC`,
		accountID,
	)
}

func (s *Store) TradesDesc(ctx context.Context, accountID int64, limit int) ([]models.Trade, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.trades(ctx,
		`SELECT id, account_id, symbol, side, quantity, price, total, created_at
		   FROM trades WHERE account_id = $1
		  ORDER BY created_at DESC, id DESC LIMIT $2`,
		accountID, limit,
	)
}

func (s *Store) trades(ctx context.Context, query string, args ...any) ([]models.Trade, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select trades")
	}
	defer rows.Close()

	trades := make([]models.Trade, 0)
	for rows.Next() {
		var t models.Trade
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Symbol, &t.Side,
			&t.Quantity, &t.Price, &t.Total, &t.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan trade")
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// ApplyTrade commits one accepted trade as a single transaction: balance
// update, position upsert or delete, trade append. The account row is
// locked FOR UPDATE for the duration, so no concurrent reader or writer
// sees a half-applied trade.
func (s *Store) ApplyTrade(ctx context.Context, change models.TradeChange) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback() // Rollback if we don't commit

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, change.AccountID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return ledger.ErrAccountNotFound
	}
	if err != nil {
		return errors.Wrap(err, "lock account")
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE accounts SET cash_balance = $1 WHERE id = $2`,
		change.NewBalance, change.AccountID,
	)
	if err != nil {
		return errors.Wrap(err, "update balance")
	}

	if change.RemovePosition {
		_, err = tx.ExecContext(ctx,
			`DELETE FROM positions WHERE account_id = $1 AND symbol = $2`,
			change.AccountID, change.Position.Symbol,
		)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO positions (account_id, symbol, quantity, avg_cost, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (account_id, symbol)
			DO UPDATE SET quantity = $3, avg_cost = $4, updated_at = $5`,
			change.AccountID, change.Position.Symbol,
			change.Position.Quantity, change.Position.AvgCost, change.Position.UpdatedAt,
		)
	}
	if err != nil {
		return errors.Wrap(err, "update position")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO trades (id, account_id, symbol, side, quantity, price, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		change.Trade.ID, change.Trade.AccountID, change.Trade.Symbol, change.Trade.Side,
		change.Trade.Quantity, change.Trade.Price, change.Trade.Total, change.Trade.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert trade")
	}

	return errors.Wrap(tx.Commit(), "commit transaction")
}
