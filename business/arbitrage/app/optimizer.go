package app

import (
	"context"
	"math/big"

	"github.com/quantfi/flasharb/business/arbitrage/domain"
	"github.com/quantfi/flasharb/internal/logger"
)

// optimizer sweep bounds, in percent of the detected borrow amount.
const (
	optimizeMinPct  = 50
	optimizeMaxPct  = 150
	optimizeStepPct = 10
)

// Optimizer refines the borrow amount of a detected opportunity by
// re-simulating the route across a sweep of trade sizes. It never fails:
// when no sweep point beats the original, the opportunity is returned
// unchanged.
type Optimizer struct {
	logger logger.LoggerInterface
}

// NewOptimizer creates an optimizer.
func NewOptimizer(log logger.LoggerInterface) *Optimizer {
	return &Optimizer{logger: log}
}

// Optimize returns the opportunity resized to the most profitable borrow
// amount found in the sweep.
func (o *Optimizer) Optimize(ctx context.Context, opp *domain.Opportunity) *domain.Opportunity {
	bestAmount := opp.BorrowAmount
	bestNet := opp.NetProfit
	improved := false

	for pct := optimizeMinPct; pct <= optimizeMaxPct; pct += optimizeStepPct {
		amount := new(big.Int).Mul(opp.BorrowAmount, big.NewInt(int64(pct)))
		amount.Div(amount, big.NewInt(100))
		if amount.Sign() <= 0 {
			continue
		}

		route, err := domain.SimulateRoute(opp.Buy, opp.Sell, opp.Borrow, amount)
		if err != nil {
			continue
		}

		if route.NetProfit.Cmp(bestNet) > 0 {
			bestAmount = amount
			bestNet = route.NetProfit
			improved = true
		}
	}

	if !improved {
		return opp
	}

	route, err := domain.SimulateRoute(opp.Buy, opp.Sell, opp.Borrow, bestAmount)
	if err != nil {
		return opp
	}

	resized := *opp
	resized.BorrowAmount = route.BorrowAmount
	resized.FinalAmount = route.FinalAmount
	resized.NetProfit = route.NetProfit
	resized.ProfitPct = route.ProfitPct
	if opp.NetProfit.Sign() > 0 {
		// Scale the USD estimate with the profit improvement
		resized.ProfitUSD = opp.ProfitUSD.
			Mul(decimalFromBig(route.NetProfit)).
			Div(decimalFromBig(opp.NetProfit))
	}

	o.logger.Debug(ctx, "resized borrow amount",
		"id", opp.ID,
		"from", opp.BorrowAmount.String(),
		"to", bestAmount.String(),
		"net_before", opp.NetProfit.String(),
		"net_after", bestNet.String(),
	)

	return &resized
}
