// Package arbitrage implements the opportunity pipeline bounded context.
package arbitrage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/quantfi/flasharb/business/arbitrage/app"
	arbitrageDI "github.com/quantfi/flasharb/business/arbitrage/di"
	"github.com/quantfi/flasharb/business/arbitrage/infra"
	executionDI "github.com/quantfi/flasharb/business/execution/di"
	scannerDI "github.com/quantfi/flasharb/business/scanner/di"
	"github.com/quantfi/flasharb/internal/config"
	"github.com/quantfi/flasharb/internal/di"
	"github.com/quantfi/flasharb/internal/logger"
	"github.com/quantfi/flasharb/internal/monolith"
)

// Module implements the arbitrage bounded context. It depends on the
// scanner module for price snapshots and on the execution module for
// settlement and route history.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register Detector - private dependency
	di.RegisterToken(c, arbitrageDI.Detector, func(sr di.ServiceRegistry) *app.Detector {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		detector, err := app.NewDetector(app.DetectorConfig{
			MinProfitBps:    cfg.Detector.MinProfitBpsDecimal(),
			MinLiquidityUSD: decimal.NewFromFloat(cfg.Detector.MinLiquidityUSD),
		}, buildRefPrices(cfg), log)
		if err != nil {
			panic("failed to create detector: " + err.Error())
		}
		return detector
	})

	// Register Store - private dependency
	di.RegisterToken(c, arbitrageDI.Store, func(sr di.ServiceRegistry) *app.Store {
		cfg := sr.Get("config").(*config.Config)
		return app.NewStore(cfg.Detector.OpportunityTTL)
	})

	// Register ScoringService - private dependency
	di.RegisterToken(c, arbitrageDI.ScoringService, func(sr di.ServiceRegistry) *app.ScoringService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		scoring, err := app.NewScoringService(app.ScoringConfig{
			Enabled:               cfg.Scoring.Enabled,
			RiskThreshold:         cfg.Scoring.RiskThreshold,
			MinSuccessProbability: cfg.Scoring.MinSuccessProbability,
		}, executionDI.GetExecutionEngine(sr), log)
		if err != nil {
			panic("failed to create scoring service: " + err.Error())
		}
		return scoring
	})

	// Register Optimizer - private dependency
	di.RegisterToken(c, arbitrageDI.Optimizer, func(sr di.ServiceRegistry) *app.Optimizer {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewOptimizer(log)
	})

	// Register Reporter - private dependency
	di.RegisterToken(c, arbitrageDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		if cfg.App.TUIMode {
			return infra.NewTUIReporter()
		}
		return infra.NewConsoleReporter()
	})

	// Register Runner (public - exposed to other modules)
	di.RegisterToken(c, arbitrageDI.PipelineRunner, func(sr di.ServiceRegistry) *app.Runner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		runner, err := app.NewRunner(
			app.RunnerConfig{ScanInterval: cfg.Detector.ScanInterval},
			scannerDI.GetScannerService(sr),
			arbitrageDI.GetDetector(sr),
			arbitrageDI.GetStore(sr),
			arbitrageDI.GetScoringService(sr),
			arbitrageDI.GetOptimizer(sr),
			executionDI.GetExecutionEngine(sr),
			arbitrageDI.GetReporter(sr),
			log,
		)
		if err != nil {
			panic("failed to create pipeline runner: " + err.Error())
		}
		return runner
	})

	return nil
}

// Startup resolves the runner eagerly so wiring failures surface at boot.
// The cycle loop itself is started by main, after the UI is ready.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	runner := arbitrageDI.GetPipelineRunner(mono.Services())
	cfg := mono.Config()

	mono.Logger().Info(ctx, "arbitrage module started",
		"scan_interval", cfg.Detector.ScanInterval,
		"min_profit_bps", cfg.Detector.MinProfitBps,
		"scoring_enabled", cfg.Scoring.Enabled,
		"paused", runner.Paused(),
	)
	return nil
}

// buildRefPrices collects configured USD reference prices by symbol.
func buildRefPrices(cfg *config.Config) map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(cfg.Tokens))
	for _, token := range cfg.Tokens {
		if token.RefPriceUSD > 0 {
			prices[token.Symbol] = decimal.NewFromFloat(token.RefPriceUSD)
		}
	}
	return prices
}
