// Package di contains dependency injection tokens for the execution context.
package di

import (
	"github.com/quantfi/flasharb/business/execution/app"
	"github.com/quantfi/flasharb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ExecutionEngine = di.NewToken[*app.Engine]("execution.Engine")
)

// Private dependency tokens - internal to execution module
var (
	Submitter = di.NewToken[app.Submitter]("execution:submitter")
)

// Helper functions for type-safe access
func GetExecutionEngine(c di.ServiceRegistry) *app.Engine {
	return di.GetToken(c, ExecutionEngine)
}

func GetSubmitter(c di.ServiceRegistry) app.Submitter {
	return di.GetToken(c, Submitter)
}
