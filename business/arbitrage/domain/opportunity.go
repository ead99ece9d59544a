// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	scannerDomain "github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/internal/asset"
)

// Opportunity is a profitable cross-venue round trip: borrow the base
// token, swap through the buy pool, swap back through the sell pool,
// repay the loan plus fee and keep the difference.
type Opportunity struct {
	// ID is the lexicographically ordered pool address pair. Rediscovering
	// the same route updates the existing opportunity instead of creating
	// a duplicate.
	ID   string
	Pair string

	Borrow       *asset.Asset
	Intermediate *asset.Asset

	Buy  scannerDomain.PricedPool
	Sell scannerDomain.PricedPool

	BorrowAmount *big.Int // raw units of Borrow
	FinalAmount  *big.Int // raw units of Borrow after the round trip
	NetProfit    *big.Int // FinalAmount - BorrowAmount - flash loan fee

	ProfitPct decimal.Decimal // net profit as a percentage of the borrow
	ProfitUSD decimal.Decimal

	DetectedAt time.Time
	LastSeenAt time.Time

	Score *Score
}

// NewOpportunity builds an opportunity for a buy/sell pool pair.
func NewOpportunity(
	buy, sell scannerDomain.PricedPool,
	borrow, intermediate *asset.Asset,
	route RouteResult,
	now time.Time,
) *Opportunity {
	return &Opportunity{
		ID:           scannerDomain.NormalizeAddressPair(buy.Pool.Address, sell.Pool.Address),
		Pair:         buy.Pool.PairKey(),
		Borrow:       borrow,
		Intermediate: intermediate,
		Buy:          buy,
		Sell:         sell,
		BorrowAmount: route.BorrowAmount,
		FinalAmount:  route.FinalAmount,
		NetProfit:    route.NetProfit,
		ProfitPct:    route.ProfitPct,
		DetectedAt:   now,
		LastSeenAt:   now,
	}
}

// Age returns time since first detection.
func (o *Opportunity) Age(now time.Time) time.Duration {
	return now.Sub(o.DetectedAt)
}

// IsExpired reports whether the opportunity outlived its TTL without
// being re-observed.
func (o *Opportunity) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(o.LastSeenAt) > ttl
}

// MinLiquidityUSD returns the thinner side of the route.
func (o *Opportunity) MinLiquidityUSD() decimal.Decimal {
	if o.Buy.LiquidityUSD.LessThan(o.Sell.LiquidityUSD) {
		return o.Buy.LiquidityUSD
	}
	return o.Sell.LiquidityUSD
}

// AvgLiquidityUSD returns the average of both sides of the route.
func (o *Opportunity) AvgLiquidityUSD() decimal.Decimal {
	return o.Buy.LiquidityUSD.Add(o.Sell.LiquidityUSD).Div(decimal.NewFromInt(2))
}

// Refresh carries over the original detection time from a previous
// sighting of the same route, so age reflects how long the spread has
// actually persisted.
func (o *Opportunity) Refresh(previous *Opportunity) {
	if previous != nil && previous.ID == o.ID {
		o.DetectedAt = previous.DetectedAt
	}
}

// IsProfitable reports whether the route clears zero after the flash
// loan fee.
func (o *Opportunity) IsProfitable() bool {
	return o.NetProfit != nil && o.NetProfit.Sign() > 0
}
