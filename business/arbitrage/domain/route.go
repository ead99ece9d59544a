package domain

import (
	"math/big"

	"github.com/shopspring/decimal"

	scannerDomain "github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/internal/apperror"
	"github.com/quantfi/flasharb/internal/asset"
)

// RouteResult is the outcome of simulating a two-hop flash loan round trip.
type RouteResult struct {
	BorrowAmount *big.Int
	Intermediate *big.Int // output of the first hop
	FinalAmount  *big.Int // output of the second hop
	NetProfit    *big.Int // FinalAmount - BorrowAmount - flash loan fee
	ProfitPct    decimal.Decimal
}

// SimulateRoute runs borrow -> buy pool -> sell pool -> repay entirely
// against the captured reserve snapshots. Both pools must trade the
// borrow token.
func SimulateRoute(
	buy, sell scannerDomain.PricedPool,
	borrow *asset.Asset,
	borrowAmount *big.Int,
) (RouteResult, error) {
	if !buy.Pool.HasToken(borrow) || !sell.Pool.HasToken(borrow) {
		return RouteResult{}, apperror.New(apperror.CodeSimulationFailed,
			apperror.WithContext("borrow token not traded by both pools"))
	}

	inA, outA := orientReserves(buy, borrow)
	intermediate, err := scannerDomain.AmountOut(borrowAmount, inA, outA, buy.Pool.FeeBps)
	if err != nil {
		return RouteResult{}, err
	}
	if intermediate.Sign() == 0 {
		return RouteResult{}, apperror.New(apperror.CodeSimulationFailed,
			apperror.WithContext("first hop produced zero output"))
	}

	// Second hop swaps back toward the borrow token.
	outB, inB := orientReserves(sell, borrow)
	final, err := scannerDomain.AmountOut(intermediate, inB, outB, sell.Pool.FeeBps)
	if err != nil {
		return RouteResult{}, err
	}

	repay := scannerDomain.RepayAmount(borrowAmount)
	net := new(big.Int).Sub(final, repay)

	profitPct := decimal.Zero
	if borrowAmount.Sign() > 0 {
		profitPct = decimal.NewFromBigInt(net, 0).
			DivRound(decimal.NewFromBigInt(borrowAmount, 0), 8).
			Mul(decimal.NewFromInt(100))
	}

	return RouteResult{
		BorrowAmount: new(big.Int).Set(borrowAmount),
		Intermediate: intermediate,
		FinalAmount:  final,
		NetProfit:    net,
		ProfitPct:    profitPct,
	}, nil
}

// orientReserves returns (reserveIn, reserveOut) for swapping the given
// token into the pool.
func orientReserves(p scannerDomain.PricedPool, tokenIn *asset.Asset) (*big.Int, *big.Int) {
	if p.Pool.TokenA.ID().Equals(tokenIn.ID()) {
		return p.State.ReserveA, p.State.ReserveB
	}
	return p.State.ReserveB, p.State.ReserveA
}

// BorrowReserve returns the pool reserve on the borrow token side.
func BorrowReserve(p scannerDomain.PricedPool, borrow *asset.Asset) *big.Int {
	in, _ := orientReserves(p, borrow)
	return in
}
