// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"

	"github.com/quantfi/flasharb/business/arbitrage/domain"
)

// Executor submits an approved opportunity for settlement. Implemented by
// the execution context.
type Executor interface {
	Execute(ctx context.Context, opp *domain.Opportunity) error
}

// RouteStatsProvider exposes past execution outcomes per route, feeding
// the risk model.
type RouteStatsProvider interface {
	StatsFor(routeID string) domain.RouteStats
}

// Reporter defines the interface for surfacing pipeline activity.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report sends a detected opportunity to be displayed/logged.
	Report(opp *domain.Opportunity)

	// UpdateCycle updates aggregate cycle statistics.
	UpdateCycle(stats CycleStats)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

// CycleStats summarizes one pipeline cycle.
type CycleStats struct {
	PricedPools   int
	Candidates    int
	Tracked       int
	Approved      int
	Submitted     int
	SweptExpired  int
	CycleDuration float64 // milliseconds
}
