package models

import "github.com/shopspring/decimal"

// TradeRequest - what the client sends to buy or sell stocks. Price carries
// no binding tag on purpose: a zero or negative price must reach the ledger
// engine so it is rejected with the proper reason instead of a bind error.
type TradeRequest struct {
	AccountID int64           `json:"account_id" binding:"required"`
	Symbol    string          `json:"symbol" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required"`
	Price     decimal.Decimal `json:"price"`
}

// CreateAccountRequest - what the client sends to open an account.
type CreateAccountRequest struct {
	Username string `json:"username" binding:"required"`
}

// PortfolioResponse - what we send back for a portfolio query.
type PortfolioResponse struct {
	Positions   []Position      `json:"positions"`
	CashBalance decimal.Decimal `json:"cash_balance"`
	TotalValue  decimal.Decimal `json:"total_value"`
}
