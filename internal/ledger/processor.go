package ledger

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Shuvra-458/Trading-Simulator/internal/models"
)

// TradeResult is the outcome of one submitted trade intent.
type TradeResult struct {
	Trade models.Trade
	Err   error
}

type tradeJob struct {
	ctx      context.Context
	req      models.TradeRequest
	side     models.Side
	resultCh chan TradeResult
}

// Processor fans trade intents out to a fixed pool of workers that run them
// through the engine. The pool bounds how many trades execute at once; the
// per-account serialization itself lives in the engine, so workers handling
// the same account simply queue on its lock.
type Processor struct {
	engine  *Engine
	workers int
	queue   chan tradeJob
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewProcessor(engine *Engine, workers int) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{
		engine:  engine,
		workers: workers,
		queue:   make(chan tradeJob, 100),
		stopCh:  make(chan struct{}),
	}
}

// Start starts the worker pool.
func (p *Processor) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Info().Int("workers", p.workers).Msg("trade processor started")
}

// Stop stops all workers. In-flight trades finish first.
func (p *Processor) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	log.Info().Msg("trade processor stopped")
}

func (p *Processor) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopCh:
			return
		case job := <-p.queue:
			trade, err := p.engine.Execute(job.ctx, job.req.AccountID,
				job.req.Symbol, job.side, job.req.Quantity, job.req.Price)
			if err != nil {
				log.Debug().Int("worker", id).Int64("account", job.req.AccountID).
					Str("symbol", job.req.Symbol).Err(err).Msg("trade rejected")
			} else {
				log.Info().Int("worker", id).Int64("account", job.req.AccountID).
					Str("trade_id", trade.ID).Str("side", string(trade.Side)).
					Str("symbol", trade.Symbol).Int64("quantity", trade.Quantity).
					Msg("trade executed")
			}
			job.resultCh <- TradeResult{Trade: trade, Err: err}
		}
	}
}

// Submit queues a trade intent and blocks until a worker has run it to its
// accept or reject outcome.
func (p *Processor) Submit(ctx context.Context, req models.TradeRequest, side models.Side) TradeResult {
	resultCh := make(chan TradeResult)

	p.queue <- tradeJob{
		ctx:      ctx,
		req:      req,
		side:     side,
		resultCh: resultCh,
	}

	return <-resultCh
}
