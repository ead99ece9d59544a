// Package infra contains execution adapters that live outside the app core.
package infra

import (
	"context"

	"github.com/quantfi/flasharb/business/execution/app"
	"github.com/quantfi/flasharb/business/execution/domain"
	"github.com/quantfi/flasharb/pkg/ui"
)

// UINotifier implements ResultRecorder by pushing settlement outcomes into
// the Bubble Tea program, then delegating to an optional inner recorder.
type UINotifier struct {
	next app.ResultRecorder
}

// NewUINotifier wraps next (which may be nil) with TUI notifications.
func NewUINotifier(next app.ResultRecorder) *UINotifier {
	return &UINotifier{next: next}
}

func (n *UINotifier) Record(ctx context.Context, result *domain.Result) error {
	ui.Send(ui.ExecutionMsg{
		RouteID:   result.RouteID,
		Success:   result.Success,
		Ref:       result.SettlementRef,
		ProfitUSD: result.ProfitUSD.StringFixed(2),
	})
	if n.next == nil {
		return nil
	}
	return n.next.Record(ctx, result)
}

func (n *UINotifier) Close() error {
	if n.next == nil {
		return nil
	}
	return n.next.Close()
}
