package domain

import (
	"math/big"
	"testing"
	"time"

	scannerDomain "github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/internal/apperror"
	"github.com/quantfi/flasharb/internal/asset"
)

var (
	xlm  = asset.NewAsset(asset.NewNativeAssetID("stellar"), "XLM", 7)
	usdc = asset.NewAsset(asset.NewTokenAssetID("stellar", "CUSDC000"), "USDC", 7)
	aqua = asset.NewAsset(asset.NewTokenAssetID("stellar", "CAQUA000"), "AQUA", 7)
)

// pricedPool builds an XLM/USDC pool snapshot with the given raw reserves.
func pricedPool(venue, address string, reserveXLM, reserveUSDC int64) scannerDomain.PricedPool {
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
		Pool:     pool,
		State:    state,
		MidPrice: scannerDomain.MidPrice(pool, state),
	}
}

func TestSimulateRoute_ProfitableSpread(t *testing.T) {
	// XLM at 0.089 USDC on the buy side, 0.092 on the sell side
	buy := pricedPool("soroswap", "CPOOL0001", 1000000000, 89000000)
	sell := pricedPool("aquarius", "CPOOL0002", 1000000000, 92000000)

	borrowAmount := big.NewInt(1000000) // ~1.1% of the buy pool's USDC side

	result, err := SimulateRoute(buy, sell, usdc, borrowAmount)
	if err != nil {
		t.Fatalf("SimulateRoute failed: %v", err)
	}

	if result.NetProfit.Sign() <= 0 {
		t.Fatalf("expected positive net profit on a 3.4%% spread, got %s", result.NetProfit)
	}
	if result.FinalAmount.Cmp(borrowAmount) <= 0 {
		t.Errorf("final amount %s should exceed borrow %s", result.FinalAmount, borrowAmount)
	}
	if result.ProfitPct.IsNegative() || result.ProfitPct.IsZero() {
		t.Errorf("expected positive profit pct, got %s", result.ProfitPct)
	}
}

func TestSimulateRoute_IdenticalPricesUnprofitable(t *testing.T) {
	buy := pricedPool("soroswap", "CPOOL0001", 1000000000, 90000000)
	sell := pricedPool("aquarius", "CPOOL0002", 1000000000, 90000000)

	result, err := SimulateRoute(buy, sell, usdc, big.NewInt(1000000))
	if err != nil {
		t.Fatalf("SimulateRoute failed: %v", err)
	}

	// Fees and the flash loan premium guarantee a loss with no spread
	if result.NetProfit.Sign() >= 0 {
		t.Fatalf("expected negative net profit with identical prices, got %s", result.NetProfit)
	}
}

func TestSimulateRoute_DirectionMatters(t *testing.T) {
	cheap := pricedPool("soroswap", "CPOOL0001", 1000000000, 89000000)
	rich := pricedPool("aquarius", "CPOOL0002", 1000000000, 92000000)

	borrowAmount := big.NewInt(1000000)

	forward, err := SimulateRoute(cheap, rich, usdc, borrowAmount)
	if err != nil {
		t.Fatalf("forward SimulateRoute failed: %v", err)
	}
	backward, err := SimulateRoute(rich, cheap, usdc, borrowAmount)
	if err != nil {
		t.Fatalf("backward SimulateRoute failed: %v", err)
	}

	if forward.NetProfit.Cmp(backward.NetProfit) <= 0 {
		t.Errorf("buying on the cheap pool should beat the reverse: %s vs %s",
			forward.NetProfit, backward.NetProfit)
	}
}

func TestSimulateRoute_ForeignBorrowToken(t *testing.T) {
	buy := pricedPool("soroswap", "CPOOL0001", 1000000000, 89000000)
	sell := pricedPool("aquarius", "CPOOL0002", 1000000000, 92000000)

	_, err := SimulateRoute(buy, sell, aqua, big.NewInt(1000000))
	if !apperror.HasCode(err, apperror.CodeSimulationFailed) {
		t.Errorf("expected CodeSimulationFailed, got %v", err)
	}
}

func TestOpportunity_Lifecycle(t *testing.T) {
	buy := pricedPool("soroswap", "CPOOL0001", 1000000000, 89000000)
	sell := pricedPool("aquarius", "CPOOL0002", 1000000000, 92000000)

	route, err := SimulateRoute(buy, sell, usdc, big.NewInt(1000000))
	if err != nil {
		t.Fatalf("SimulateRoute failed: %v", err)
	}

	now := time.Now()
	opp := NewOpportunity(buy, sell, usdc, xlm, route, now)

	if opp.ID != "CPOOL0001:CPOOL0002" {
		t.Errorf("ID = %s, want CPOOL0001:CPOOL0002", opp.ID)
	}

	// Identity is direction independent
	reversed := NewOpportunity(sell, buy, usdc, xlm, route, now)
	if reversed.ID != opp.ID {
		t.Errorf("reversed route should share identity: %s vs %s", reversed.ID, opp.ID)
	}

	if opp.IsExpired(now.Add(29*time.Second), 30*time.Second) {
		t.Error("opportunity expired before its TTL")
	}
	if !opp.IsExpired(now.Add(31*time.Second), 30*time.Second) {
		t.Error("opportunity should expire after its TTL")
	}

	// Rediscovery preserves original detection time
	later := NewOpportunity(buy, sell, usdc, xlm, route, now.Add(10*time.Second))
	later.Refresh(opp)
	if !later.DetectedAt.Equal(now) {
		t.Error("Refresh should keep the first detection time")
	}
	if later.Age(now.Add(12*time.Second)) != 12*time.Second {
		t.Errorf("Age = %v, want 12s", later.Age(now.Add(12*time.Second)))
	}
}
