package main

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Shuvra-458/Trading-Simulator/internal/config"
	"github.com/Shuvra-458/Trading-Simulator/internal/handlers"
	"github.com/Shuvra-458/Trading-Simulator/internal/ledger"
	"github.com/Shuvra-458/Trading-Simulator/internal/logger"
	"github.com/Shuvra-458/Trading-Simulator/internal/marketdata"
	"github.com/Shuvra-458/Trading-Simulator/internal/store"
	"github.com/Shuvra-458/Trading-Simulator/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel)

	// Pick the backing store. Memory mode runs without any database, handy
	// for demos and local poking; everything else is identical.
	var ledgerStore ledger.Store
	switch cfg.Store {
	case "memory":
		ledgerStore = store.NewMemory()
		log.Warn().Msg("using in-memory store, state is lost on exit")
	default:
		pg, err := postgres.Open(cfg.ConnString())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pg.Close()
		ledgerStore = pg
		log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("database connected")
	}

	engine := ledger.NewEngine(ledgerStore)

	processor := ledger.NewProcessor(engine, cfg.NumWorkers)
	processor.Start()
	defer processor.Stop()

	feed := marketdata.NewFeed()
	feed.Start(cfg.PriceInterval)
	defer feed.Stop()

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handlers.New(engine, processor, feed, cfg.StartingBalance).Register(router)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
