package app

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	scannerDomain "github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/internal/asset"
	"github.com/quantfi/flasharb/internal/logger"
)

var (
	xlm  = asset.NewAsset(asset.NewNativeAssetID("stellar"), "XLM", 7)
	usdc = asset.NewAsset(asset.NewTokenAssetID("stellar", "CUSDC000"), "USDC", 7)
)

// pricedPool builds an XLM/USDC pool snapshot with the given raw reserves
// and a fixed USD liquidity estimate.
func pricedPool(venue, address string, reserveXLM, reserveUSDC, liquidityUSD int64) scannerDomain.PricedPool {
	pool := scannerDomain.Pool{
		Venue:   venue,
		Address: address,
		TokenA:  xlm,
		TokenB:  usdc,
		FeeBps:  30,
	}
	state := scannerDomain.PoolState{
		PoolAddress: address,
		ReserveA:    big.NewInt(reserveXLM),
		ReserveB:    big.NewInt(reserveUSDC),
		ObservedAt:  time.Now(),
	}
	return scannerDomain.PricedPool{
		Pool:         pool,
		State:        state,
		MidPrice:     scannerDomain.MidPrice(pool, state),
		LiquidityUSD: decimal.NewFromInt(liquidityUSD),
	}
}

func newDetector(t *testing.T, minProfitBps, minLiquidityUSD int64) *Detector {
	t.Helper()

	refPrices := map[string]decimal.Decimal{
		"XLM":  decimal.RequireFromString("0.09"),
		"USDC": decimal.NewFromInt(1),
	}
	d, err := NewDetector(DetectorConfig{
		MinProfitBps:    decimal.NewFromInt(minProfitBps),
		MinLiquidityUSD: decimal.NewFromInt(minLiquidityUSD),
	}, refPrices, logger.Discard())
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	return d
}

func TestDetector_FindsCrossVenueSpread(t *testing.T) {
	// XLM at 0.089 USDC on soroswap, 0.092 on aquarius: a 3.4% spread
	pools := []scannerDomain.PricedPool{
		pricedPool("soroswap", "CPOOL0001", 1000000000, 89000000, 50000),
		pricedPool("aquarius", "CPOOL0002", 1000000000, 92000000, 50000),
	}

	d := newDetector(t, 50, 10000)
	opps := d.Detect(context.Background(), pools)

	if len(opps) != 1 {
		t.Fatalf("expected 1 opportunity, got %d", len(opps))
	}

	opp := opps[0]
	if opp.ID != "CPOOL0001:CPOOL0002" {
		t.Errorf("ID = %s, want CPOOL0001:CPOOL0002", opp.ID)
	}
	if opp.Pair != "USDC/XLM" {
		t.Errorf("Pair = %s, want USDC/XLM", opp.Pair)
	}
	if !opp.IsProfitable() {
		t.Errorf("expected positive net profit, got %s", opp.NetProfit)
	}
	if !opp.ProfitUSD.IsPositive() {
		t.Errorf("expected a USD profit estimate, got %s", opp.ProfitUSD)
	}
	if opp.Borrow == nil || opp.Intermediate == nil {
		t.Fatal("opportunity missing borrow or intermediate token")
	}
	if opp.Borrow.ID().Equals(opp.Intermediate.ID()) {
		t.Error("borrow and intermediate must differ")
	}
	// Borrowing USDC nets more dollars than borrowing XLM on this spread,
	// even though the XLM route's raw integer profit is larger.
	if opp.Borrow.Symbol() != "USDC" {
		t.Errorf("Borrow = %s, want the USD-richer USDC route", opp.Borrow.Symbol())
	}
}

func TestDetector_IdenticalPricesYieldNothing(t *testing.T) {
	pools := []scannerDomain.PricedPool{
		pricedPool("soroswap", "CPOOL0001", 1000000000, 90000000, 50000),
		pricedPool("aquarius", "CPOOL0002", 1000000000, 90000000, 50000),
	}

	d := newDetector(t, 50, 10000)
	if opps := d.Detect(context.Background(), pools); len(opps) != 0 {
		t.Errorf("expected no opportunities with no spread, got %d", len(opps))
	}
}

func TestDetector_ProfitFloorFiltersThinSpread(t *testing.T) {
	pools := []scannerDomain.PricedPool{
		pricedPool("soroswap", "CPOOL0001", 1000000000, 89000000, 50000),
		pricedPool("aquarius", "CPOOL0002", 1000000000, 92000000, 50000),
	}

	// The 3.4% spread nets well under 2% after fees and slippage
	d := newDetector(t, 200, 10000)
	if opps := d.Detect(context.Background(), pools); len(opps) != 0 {
		t.Errorf("expected profit floor to reject the route, got %d opportunities", len(opps))
	}
}

func TestDetector_LiquidityFloorFiltersShallowPool(t *testing.T) {
	pools := []scannerDomain.PricedPool{
		pricedPool("soroswap", "CPOOL0001", 1000000000, 89000000, 5000),
		pricedPool("aquarius", "CPOOL0002", 1000000000, 92000000, 50000),
	}

	d := newDetector(t, 50, 10000)
	if opps := d.Detect(context.Background(), pools); len(opps) != 0 {
		t.Errorf("expected liquidity floor to reject the route, got %d opportunities", len(opps))
	}
}

func TestDetector_SinglePoolYieldsNothing(t *testing.T) {
	pools := []scannerDomain.PricedPool{
		pricedPool("soroswap", "CPOOL0001", 1000000000, 89000000, 50000),
	}

	d := newDetector(t, 50, 10000)
	if opps := d.Detect(context.Background(), pools); len(opps) != 0 {
		t.Errorf("a lone pool cannot arbitrage against itself, got %d opportunities", len(opps))
	}
}
