package handlers

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Shuvra-458/Trading-Simulator/internal/ledger"
	"github.com/Shuvra-458/Trading-Simulator/internal/marketdata"
	"github.com/Shuvra-458/Trading-Simulator/internal/models"
)

// Handler wires the ledger engine, trade processor and market data feed to
// the HTTP surface. It is glue only: every decision about a trade lives in
// the ledger package.
type Handler struct {
	engine          *ledger.Engine
	processor       *ledger.Processor
	feed            *marketdata.Feed
	startingBalance decimal.Decimal
}

func New(engine *ledger.Engine, processor *ledger.Processor, feed *marketdata.Feed, startingBalance decimal.Decimal) *Handler {
	return &Handler{
		engine:          engine,
		processor:       processor,
		feed:            feed,
		startingBalance: startingBalance,
	}
}

// Register mounts all routes on the router.
func (h *Handler) Register(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/accounts", h.CreateAccount)
		api.GET("/accounts/:accountId", h.GetAccount)

		api.POST("/trades/buy", h.BuyStock)
		api.POST("/trades/sell", h.SellStock)
		api.GET("/trades/:accountId", h.GetTradeHistory)

		api.GET("/portfolio/:accountId", h.GetPortfolio)
		api.GET("/portfolio/:accountId/reconstructed", h.GetReconstructedPortfolio)

		api.GET("/stocks", h.ListStocks)
	}

	router.GET("/ws/prices", h.StreamPrices)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
}

// CreateAccount handles POST /api/accounts
func (h *Handler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acct, err := h.engine.OpenAccount(c.Request.Context(), req.Username, h.startingBalance)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acct)
}

// GetAccount handles GET /api/accounts/:accountId
func (h *Handler) GetAccount(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}

	acct, err := h.engine.Account(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acct)
}

// BuyStock handles POST /api/trades/buy
func (h *Handler) BuyStock(c *gin.Context) {
	h.executeTrade(c, models.SideBuy)
}

// SellStock handles POST /api/trades/sell
func (h *Handler) SellStock(c *gin.Context) {
	h.executeTrade(c, models.SideSell)
}

func (h *Handler) executeTrade(c *gin.Context, side models.Side) {
	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.processor.Submit(c.Request.Context(), req, side)
	if result.Err != nil {
		respondError(c, result.Err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Trade executed successfully",
		"trade":   result.Trade,
	})
}

// GetTradeHistory handles GET /api/trades/:accountId
func (h *Handler) GetTradeHistory(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}

	trades, err := h.engine.History(c.Request.Context(), accountID, 50)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trades": trades,
		"count":  len(trades),
	})
}

// GetPortfolio handles GET /api/portfolio/:accountId
func (h *Handler) GetPortfolio(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	acct, err := h.engine.Account(ctx, accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	positions, err := h.engine.Positions(ctx, accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PortfolioResponse{
		Positions:   positions,
		CashBalance: acct.CashBalance,
		TotalValue:  h.totalValue(acct.CashBalance, positions),
	})
}

// GetReconstructedPortfolio handles GET /api/portfolio/:accountId/reconstructed.
// It answers from a full replay of the trade log instead of the maintained
// position table — the audit read path.
func (h *Handler) GetReconstructedPortfolio(c *gin.Context) {
	accountID, ok := accountParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	acct, err := h.engine.Account(ctx, accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	replayed, err := h.engine.Reconstruct(ctx, accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	positions := make([]models.Position, 0, len(replayed))
	for _, pos := range replayed {
		positions = append(positions, pos)
	}
	sortPositions(positions)

	c.JSON(http.StatusOK, models.PortfolioResponse{
		Positions:   positions,
		CashBalance: acct.CashBalance,
		TotalValue:  h.totalValue(acct.CashBalance, positions),
	})
}

// ListStocks handles GET /api/stocks
func (h *Handler) ListStocks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"stocks": h.feed.Listings()})
}

// totalValue prices holdings off the feed, falling back to average cost
// when the feed has no quote for a symbol.
func (h *Handler) totalValue(cash decimal.Decimal, positions []models.Position) decimal.Decimal {
	total := cash
	for _, pos := range positions {
		price := h.feed.Price(pos.Symbol)
		if price.IsZero() {
			price = pos.AvgCost
		}
		total = total.Add(price.Mul(decimal.NewFromInt(pos.Quantity)))
	}
	return total
}

func accountParam(c *gin.Context) (int64, bool) {
	accountID, err := strconv.ParseInt(c.Param("accountId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return 0, false
	}
	return accountID, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case ledger.IsRejection(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func sortPositions(positions []models.Position) {
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})
}
