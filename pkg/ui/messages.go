// Package ui provides the Bubble Tea TUI for the arbitrage pipeline.
package ui

import (
	arbitrageApp "github.com/quantfi/flasharb/business/arbitrage/app"
	arbitrageDomain "github.com/quantfi/flasharb/business/arbitrage/domain"
)

// Message types for TUI updates

// OpportunityMsg is sent when an arbitrage opportunity is detected.
type OpportunityMsg struct {
	Opportunity *arbitrageDomain.Opportunity
}

// CycleMsg is sent after every pipeline cycle with its statistics.
type CycleMsg struct {
	Stats arbitrageApp.CycleStats
}

// ExecutionMsg is sent when an execution attempt sequence completes.
type ExecutionMsg struct {
	RouteID   string
	Success   bool
	Ref       string
	ProfitUSD string
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}
