// Package execution implements the settlement bounded context.
package execution

import (
	"context"

	"github.com/quantfi/flasharb/business/execution/app"
	executionDI "github.com/quantfi/flasharb/business/execution/di"
	"github.com/quantfi/flasharb/business/execution/infra"
	"github.com/quantfi/flasharb/business/execution/infra/relay"
	"github.com/quantfi/flasharb/business/execution/infra/storage"
	"github.com/quantfi/flasharb/internal/config"
	"github.com/quantfi/flasharb/internal/di"
	"github.com/quantfi/flasharb/internal/logger"
	"github.com/quantfi/flasharb/internal/monolith"
)

// Module implements the execution bounded context.
type Module struct{}

// RegisterServices registers all execution services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register relay submitter - private dependency
	di.RegisterToken(c, executionDI.Submitter, func(sr di.ServiceRegistry) app.Submitter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Execution.RelayURL == "" {
			// Dry runs never submit, no relay needed
			return nil
		}

		client, err := relay.NewClient(relay.Config{
			BaseURL: cfg.Execution.RelayURL,
			Timeout: cfg.Execution.SubmitTimeout,
		}, log)
		if err != nil {
			panic("failed to create relay client: " + err.Error())
		}
		return client
	})

	// Register Engine (public - exposed to other modules)
	di.RegisterToken(c, executionDI.ExecutionEngine, func(sr di.ServiceRegistry) *app.Engine {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var recorder app.ResultRecorder
		if cfg.Execution.HistoryPath != "" {
			store, err := storage.New(cfg.Execution.HistoryPath, cfg.Execution.HistorySize)
			if err != nil {
				panic("failed to open execution result store: " + err.Error())
			}
			recorder = store
		}
		if cfg.App.TUIMode {
			recorder = infra.NewUINotifier(recorder)
		}

		engine, err := app.NewEngine(app.Config{
			Contract:       cfg.Execution.ContractAddress,
			LoanPool:       cfg.Execution.LoanPoolAddress,
			MinProfitBps:   cfg.Execution.MinProfitBps,
			MaxSlippageBps: cfg.Execution.MaxSlippageBps,
			MaxConcurrent:  cfg.Execution.MaxConcurrent,
			MaxRetries:     cfg.Execution.MaxRetries,
			RetryDelay:     cfg.Execution.RetryDelay,
			SubmitTimeout:  cfg.Execution.SubmitTimeout,
			RequestMaxAge:  cfg.Execution.RequestMaxAge,
			OpportunityTTL: cfg.Detector.OpportunityTTL,
			DryRun:         cfg.Execution.DryRun,
			HistorySize:    cfg.Execution.HistorySize,
		}, executionDI.GetSubmitter(sr), recorder, log)
		if err != nil {
			panic("failed to create execution engine: " + err.Error())
		}
		return engine
	})

	return nil
}

// Startup resolves the engine so misconfiguration surfaces at boot rather
// than on the first dispatch.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	engine := executionDI.GetExecutionEngine(mono.Services())

	mono.Logger().Info(ctx, "execution module started",
		"dry_run", mono.Config().Execution.DryRun,
		"max_concurrent", mono.Config().Execution.MaxConcurrent,
		"in_flight", engine.InFlight(),
	)
	return nil
}
