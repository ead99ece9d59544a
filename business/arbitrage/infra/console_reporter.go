// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/quantfi/flasharb/business/arbitrage/app"
	"github.com/quantfi/flasharb/business/arbitrage/domain"
	"github.com/quantfi/flasharb/internal/asset"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter.
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{
		out: os.Stdout,
	}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Flash Loan Arbitrage Pipeline Started")
	fmt.Fprintln(r.out, "=====================================")
	return nil
}

// Report outputs a detected opportunity to the console.
func (r *ConsoleReporter) Report(opp *domain.Opportunity) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintln(r.out, "ARBITRAGE OPPORTUNITY DETECTED")
	fmt.Fprintln(r.out, "================================================================================")
	fmt.Fprintf(r.out, "Route:          %s\n", opp.ID)
	fmt.Fprintf(r.out, "Detected:       %s\n", opp.DetectedAt.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Pair:           %s\n", opp.Pair)
	fmt.Fprintf(r.out, "Direction:      borrow %s, swap via %s\n", opp.Borrow.Symbol(), opp.Intermediate.Symbol())
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "ROUTE")
	fmt.Fprintf(r.out, "  Buy:            %s @ %s (inverse %s)\n",
		opp.Buy.Pool.String(), opp.Buy.PriceAB().String(), opp.Buy.PriceBA().String())
	fmt.Fprintf(r.out, "  Sell:           %s @ %s (inverse %s)\n",
		opp.Sell.Pool.String(), opp.Sell.PriceAB().String(), opp.Sell.PriceBA().String())
	fmt.Fprintf(r.out, "  Borrow Amount:  %s\n", asset.NewAmount(opp.Borrow, opp.BorrowAmount).String())
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintln(r.out, "PROFIT")
	fmt.Fprintf(r.out, "  Net:            %s, $%s (%s%%)\n",
		asset.NewAmount(opp.Borrow, opp.NetProfit).String(), opp.ProfitUSD.StringFixed(2), opp.ProfitPct.StringFixed(3))
	if opp.Score != nil {
		fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
		fmt.Fprintln(r.out, "SCORE")
		fmt.Fprintf(r.out, "  Composite:      %.1f (profit %.1f, liquidity %.1f, risk %.1f)\n",
			opp.Score.Composite, opp.Score.Profit, opp.Score.Liquidity, opp.Score.Risk)
		fmt.Fprintf(r.out, "  Probability:    %.2f\n", opp.Score.SuccessProbability)
	}
	fmt.Fprintln(r.out, "================================================================================")
}

// UpdateCycle outputs a one-line cycle summary.
func (r *ConsoleReporter) UpdateCycle(stats app.CycleStats) {
	fmt.Fprintf(r.out, "[%s] pools=%d candidates=%d tracked=%d approved=%d submitted=%d swept=%d (%.0fms)\n",
		time.Now().Format("15:04:05"),
		stats.PricedPools,
		stats.Candidates,
		stats.Tracked,
		stats.Approved,
		stats.Submitted,
		stats.SweptExpired,
		stats.CycleDuration,
	)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Flash Loan Arbitrage Pipeline Stopped")
	return nil
}
