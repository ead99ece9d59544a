// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/quantfi/flasharb/business/arbitrage/app"
	"github.com/quantfi/flasharb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PipelineRunner = di.NewToken[*app.Runner]("arbitrage.Runner")
)

// Private dependency tokens - internal to arbitrage module
var (
	Detector       = di.NewToken[*app.Detector]("arbitrage:detector")
	Store          = di.NewToken[*app.Store]("arbitrage:store")
	ScoringService = di.NewToken[*app.ScoringService]("arbitrage:scoring")
	Optimizer      = di.NewToken[*app.Optimizer]("arbitrage:optimizer")
	Reporter       = di.NewToken[app.Reporter]("arbitrage:reporter")
)

// Helper functions for type-safe access
func GetPipelineRunner(c di.ServiceRegistry) *app.Runner {
	return di.GetToken(c, PipelineRunner)
}

func GetDetector(c di.ServiceRegistry) *app.Detector {
	return di.GetToken(c, Detector)
}

func GetStore(c di.ServiceRegistry) *app.Store {
	return di.GetToken(c, Store)
}

func GetScoringService(c di.ServiceRegistry) *app.ScoringService {
	return di.GetToken(c, ScoringService)
}

func GetOptimizer(c di.ServiceRegistry) *app.Optimizer {
	return di.GetToken(c, Optimizer)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
