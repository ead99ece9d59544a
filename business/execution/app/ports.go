// Package app contains application services and port definitions for the execution context.
package app

import (
	"context"

	"github.com/quantfi/flasharb/business/execution/domain"
)

// Submitter hands a settlement request to the settlement relay and returns
// the settlement reference on success.
type Submitter interface {
	Submit(ctx context.Context, req *domain.SettlementRequest) (string, error)
}

// ResultRecorder persists execution results beyond the in-memory history.
type ResultRecorder interface {
	Record(ctx context.Context, result *domain.Result) error
	Close() error
}
