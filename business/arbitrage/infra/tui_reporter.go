package infra

import (
	"context"

	"github.com/quantfi/flasharb/business/arbitrage/app"
	"github.com/quantfi/flasharb/business/arbitrage/domain"
	"github.com/quantfi/flasharb/pkg/ui"
)

// TUIReporter implements Reporter by pushing messages into the Bubble Tea
// program. The program itself is owned by the entry point; messages sent
// before it is running are dropped.
type TUIReporter struct{}

// NewTUIReporter creates a new TUIReporter.
func NewTUIReporter() *TUIReporter {
	return &TUIReporter{}
}

// Start initializes the TUI reporter.
func (r *TUIReporter) Start(ctx context.Context) error {
	return nil
}

// Report sends a detected opportunity to the TUI.
func (r *TUIReporter) Report(opp *domain.Opportunity) {
	ui.Send(ui.OpportunityMsg{Opportunity: opp})
}

// UpdateCycle sends cycle statistics to the TUI.
func (r *TUIReporter) UpdateCycle(stats app.CycleStats) {
	ui.Send(ui.CycleMsg{Stats: stats})
}

// Stop gracefully shuts down the TUI reporter.
func (r *TUIReporter) Stop() error {
	return nil
}
