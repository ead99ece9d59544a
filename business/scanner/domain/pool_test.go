package domain

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantfi/flasharb/internal/asset"
)

var (
	testXLM  = asset.NewAsset(asset.NewNativeAssetID("stellar"), "XLM", 7)
	testUSDC = asset.NewAsset(asset.NewTokenAssetID("stellar", "CUSDC000"), "USDC", 7)
)

func testPool(venue, address string, reserveA, reserveB int64) (Pool, PoolState) {
	pool := Pool{
		Venue:   venue,
		Address: address,
		TokenA:  testXLM,
		TokenB:  testUSDC,
		FeeBps:  30,
	}
	state := PoolState{
		PoolAddress: address,
		ReserveA:    big.NewInt(reserveA),
		ReserveB:    big.NewInt(reserveB),
		ObservedAt:  time.Now(),
	}
	return pool, state
}

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal fixture %q: %v", s, err)
	}
	return d
}

func TestPool_PairKey(t *testing.T) {
	pool := Pool{TokenA: testXLM, TokenB: testUSDC}
	reversed := Pool{TokenA: testUSDC, TokenB: testXLM}

	if pool.PairKey() != reversed.PairKey() {
		t.Errorf("pair key should be order independent: %s vs %s", pool.PairKey(), reversed.PairKey())
	}
	if pool.PairKey() != "USDC/XLM" {
		t.Errorf("PairKey() = %s, want USDC/XLM", pool.PairKey())
	}
}

func TestPool_HasToken(t *testing.T) {
	pool := Pool{TokenA: testXLM, TokenB: testUSDC}

	if !pool.HasToken(testXLM) || !pool.HasToken(testUSDC) {
		t.Error("pool should report both of its tokens")
	}

	other := asset.NewAsset(asset.NewTokenAssetID("stellar", "CAQUA000"), "AQUA", 7)
	if pool.HasToken(other) {
		t.Error("pool should not report a foreign token")
	}
}

func TestPricedPool_DirectionalPrices(t *testing.T) {
	pool, state := testPool("soroswap", "CPOOL0001", 1000000000, 89000000)
	pp := PricedPool{
		Pool:     pool,
		State:    state,
		MidPrice: MidPrice(pool, state),
	}

	ab := pp.PriceAB()
	if !ab.Rate().Equal(pp.MidPrice) {
		t.Errorf("PriceAB rate = %s, want the mid price %s", ab.Rate(), pp.MidPrice)
	}
	if ab.Pair() != "XLM/USDC" {
		t.Errorf("PriceAB pair = %s, want XLM/USDC", ab.Pair())
	}

	ba := pp.PriceBA()
	if ba.Pair() != "USDC/XLM" {
		t.Errorf("PriceBA pair = %s, want USDC/XLM", ba.Pair())
	}

	// The two directions are inverses of each other
	product := ab.Rate().Mul(ba.Rate())
	tolerance := decimalFromString(t, "0.0000000000001")
	if product.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(tolerance) {
		t.Errorf("PriceAB * PriceBA = %s, want 1", product)
	}

	if !ba.Timestamp().Equal(state.ObservedAt) {
		t.Error("directional prices should carry the snapshot time")
	}
}

func TestPoolState_Age(t *testing.T) {
	now := time.Now()
	state := PoolState{ObservedAt: now.Add(-8 * time.Second)}

	if age := state.Age(now); age != 8*time.Second {
		t.Errorf("Age() = %v, want 8s", age)
	}
}
