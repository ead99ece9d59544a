package app

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/quantfi/flasharb/business/arbitrage/domain"
	scannerDomain "github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/internal/asset"
	"github.com/quantfi/flasharb/internal/logger"
)

const (
	tracerName = "arbitrage"
	meterName  = "arbitrage"

	// trialBorrowDivisor sets the probe size: one percent of the
	// borrow-side reserve of the buy pool. A larger probe drowns in
	// slippage and hides real spreads; the optimizer refines the amount
	// once a route is approved.
	trialBorrowDivisor = 100
)

// DetectorConfig holds detection thresholds.
type DetectorConfig struct {
	MinProfitBps    decimal.Decimal
	MinLiquidityUSD decimal.Decimal
}

// detectorMetrics holds OTEL metric instruments.
type detectorMetrics struct {
	candidatesTotal metric.Int64Counter
	rejectedTotal   metric.Int64Counter
}

// Detector finds profitable cross-venue round trips in a priced pool
// snapshot.
type Detector struct {
	config    DetectorConfig
	refPrices map[string]decimal.Decimal

	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *detectorMetrics
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(config DetectorConfig, refPrices map[string]decimal.Decimal, log logger.LoggerInterface) (*Detector, error) {
	d := &Detector{
		config:    config,
		refPrices: refPrices,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}

	if err := d.initMetrics(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Detector) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	d.metrics = &detectorMetrics{}

	d.metrics.candidatesTotal, err = meter.Int64Counter(
		"arbitrage_candidates_total",
		metric.WithDescription("Opportunities surviving all detection filters"),
	)
	if err != nil {
		return err
	}

	d.metrics.rejectedTotal, err = meter.Int64Counter(
		"arbitrage_rejected_total",
		metric.WithDescription("Candidate routes rejected by a filter"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Detect groups pools by token pair, tries every cross-venue pool pair in
// both directions and with either token borrowed, and returns the best
// route per pool pair.
func (d *Detector) Detect(ctx context.Context, pools []scannerDomain.PricedPool) []*domain.Opportunity {
	ctx, span := d.tracer.Start(ctx, "arbitrage.detect",
		trace.WithAttributes(attribute.Int("pools", len(pools))),
	)
	defer span.End()

	byPair := make(map[string][]scannerDomain.PricedPool)
	for _, p := range pools {
		key := p.Pool.PairKey()
		byPair[key] = append(byPair[key], p)
	}

	now := time.Now()
	best := make(map[string]*domain.Opportunity)

	for _, group := range byPair {
		for i := range group {
			for j := range group {
				if i == j {
					continue
				}
				buy, sell := group[i], group[j]
				if buy.Pool.Address == sell.Pool.Address {
					continue
				}

				for _, borrow := range []*asset.Asset{buy.Pool.TokenA, buy.Pool.TokenB} {
					opp := d.tryRoute(ctx, buy, sell, borrow, now)
					if opp == nil {
						continue
					}
					if prev, ok := best[opp.ID]; !ok || betterRoute(opp, prev) {
						best[opp.ID] = opp
					}
				}
			}
		}
	}

	opps := make([]*domain.Opportunity, 0, len(best))
	for _, opp := range best {
		opps = append(opps, opp)
		d.metrics.candidatesTotal.Add(ctx, 1)
	}

	span.SetAttributes(attribute.Int("candidates", len(opps)))
	return opps
}

// tryRoute simulates one direction of one pool pair and applies the
// profit and liquidity filters.
func (d *Detector) tryRoute(
	ctx context.Context,
	buy, sell scannerDomain.PricedPool,
	borrow *asset.Asset,
	now time.Time,
) *domain.Opportunity {
	if !sell.Pool.HasToken(borrow) {
		return nil
	}

	trial := new(big.Int).Div(domain.BorrowReserve(buy, borrow), big.NewInt(trialBorrowDivisor))
	if trial.Sign() <= 0 {
		return nil
	}

	route, err := domain.SimulateRoute(buy, sell, borrow, trial)
	if err != nil {
		d.metrics.rejectedTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", "simulation"),
		))
		return nil
	}

	if route.NetProfit.Sign() <= 0 {
		return nil
	}

	minProfitPct := d.config.MinProfitBps.Div(decimal.NewFromInt(100))
	if route.ProfitPct.LessThan(minProfitPct) {
		d.metrics.rejectedTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", "profit_below_minimum"),
		))
		return nil
	}

	if buy.LiquidityUSD.LessThan(d.config.MinLiquidityUSD) ||
		sell.LiquidityUSD.LessThan(d.config.MinLiquidityUSD) {
		d.metrics.rejectedTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("reason", "insufficient_liquidity"),
		))
		return nil
	}

	intermediate := buy.Pool.TokenA
	if intermediate.ID().Equals(borrow.ID()) {
		intermediate = buy.Pool.TokenB
	}

	opp := domain.NewOpportunity(buy, sell, borrow, intermediate, route, now)
	opp.ProfitUSD = d.profitUSD(borrow, route.NetProfit)

	d.logger.Debug(ctx, "candidate route",
		"id", opp.ID,
		"pair", opp.Pair,
		"borrow", borrow.Symbol(),
		"profit_pct", route.ProfitPct.StringFixed(4),
		"profit_usd", opp.ProfitUSD.StringFixed(2),
	)

	return opp
}

// betterRoute compares two candidates for the same pool pair. Raw profits
// are denominated in whichever token was borrowed, so they only compare
// through their USD value; when neither side has a reference price the
// profit percentage breaks the tie.
func betterRoute(a, b *domain.Opportunity) bool {
	if cmp := a.ProfitUSD.Cmp(b.ProfitUSD); cmp != 0 {
		return cmp > 0
	}
	return a.ProfitPct.GreaterThan(b.ProfitPct)
}

// profitUSD values a raw borrow-token amount at the reference price.
func (d *Detector) profitUSD(borrow *asset.Asset, raw *big.Int) decimal.Decimal {
	price, ok := d.refPrices[borrow.Symbol()]
	if !ok {
		return decimal.Zero
	}
	return asset.NewAmount(borrow, raw).ToDecimal().Mul(price)
}
