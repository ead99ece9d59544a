package app

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/internal/apperror"
	"github.com/quantfi/flasharb/internal/asset"
	"github.com/quantfi/flasharb/internal/logger"
)

var (
	xlm  = asset.NewAsset(asset.NewNativeAssetID("stellar"), "XLM", 7)
	usdc = asset.NewAsset(asset.NewTokenAssetID("stellar", "CUSDC000"), "USDC", 7)
)

// fakeVenueClient serves canned states and errors per pool address.
type fakeVenueClient struct {
	venue  string
	states map[string]domain.PoolState
	errs   map[string]error
	closed bool
}

func (f *fakeVenueClient) Venue() string { return f.venue }

func (f *fakeVenueClient) FetchPoolState(_ context.Context, pool domain.Pool) (domain.PoolState, error) {
	if err, ok := f.errs[pool.Address]; ok {
		return domain.PoolState{}, err
	}
	return f.states[pool.Address], nil
}

func (f *fakeVenueClient) Close() error {
	f.closed = true
	return nil
}

func pool(venue, address string) domain.Pool {
	return domain.Pool{
		Venue:   venue,
		Address: address,
		TokenA:  xlm,
		TokenB:  usdc,
		FeeBps:  30,
	}
}

func state(address string, ra, rb int64) domain.PoolState {
	return domain.PoolState{
		PoolAddress: address,
		ReserveA:    big.NewInt(ra),
		ReserveB:    big.NewInt(rb),
		ObservedAt:  time.Now(),
	}
}

func TestScanner_Scan(t *testing.T) {
	client := &fakeVenueClient{
		venue: "soroswap",
		states: map[string]domain.PoolState{
			"P1": state("P1", 10000000, 920000),
			"P2": state("P2", 20000000, 1900000),
		},
	}

	pools := []domain.Pool{pool("soroswap", "P1"), pool("soroswap", "P2")}
	refPrices := map[string]decimal.Decimal{
		"XLM":  decimal.NewFromFloat(0.09),
		"USDC": decimal.NewFromInt(1),
	}

	s, err := NewScanner([]VenueClient{client}, pools, refPrices, logger.Discard())
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	priced := s.Scan(context.Background())
	if len(priced) != 2 {
		t.Fatalf("expected 2 priced pools, got %d", len(priced))
	}

	for _, p := range priced {
		if p.MidPrice.IsZero() {
			t.Errorf("pool %s has zero mid price", p.Pool.Address)
		}
		if p.LiquidityUSD.IsZero() {
			t.Errorf("pool %s has zero liquidity estimate", p.Pool.Address)
		}
	}
}

func TestScanner_PartialFailure(t *testing.T) {
	healthy := &fakeVenueClient{
		venue: "soroswap",
		states: map[string]domain.PoolState{
			"P1": state("P1", 10000000, 920000),
		},
	}
	failing := &fakeVenueClient{
		venue: "aquarius",
		errs: map[string]error{
			"P2": apperror.New(apperror.CodeVenueRPCError),
		},
	}

	pools := []domain.Pool{pool("soroswap", "P1"), pool("aquarius", "P2")}

	s, err := NewScanner([]VenueClient{healthy, failing}, pools, nil, logger.Discard())
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	priced := s.Scan(context.Background())
	if len(priced) != 1 {
		t.Fatalf("expected 1 priced pool after venue failure, got %d", len(priced))
	}
	if priced[0].Pool.Address != "P1" {
		t.Errorf("expected surviving pool P1, got %s", priced[0].Pool.Address)
	}
}

func TestScanner_SkipsEmptyReserves(t *testing.T) {
	client := &fakeVenueClient{
		venue: "soroswap",
		states: map[string]domain.PoolState{
			"P1": state("P1", 0, 920000),
		},
	}

	s, err := NewScanner([]VenueClient{client}, []domain.Pool{pool("soroswap", "P1")}, nil, logger.Discard())
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	if priced := s.Scan(context.Background()); len(priced) != 0 {
		t.Fatalf("expected empty-reserve pool to be dropped, got %d pools", len(priced))
	}
}

func TestScanner_UnknownVenue(t *testing.T) {
	client := &fakeVenueClient{venue: "soroswap"}
	pools := []domain.Pool{pool("phantom", "P1")}

	if _, err := NewScanner([]VenueClient{client}, pools, nil, logger.Discard()); err == nil {
		t.Fatal("expected error for pool on unconfigured venue")
	}
}

func TestScanner_LiquidityEstimate(t *testing.T) {
	client := &fakeVenueClient{
		venue: "soroswap",
		states: map[string]domain.PoolState{
			// 1000 XLM and 92 USDC at 7 decimals
			"P1": state("P1", 10000000000, 920000000),
		},
	}

	refPrices := map[string]decimal.Decimal{
		"XLM":  decimal.NewFromFloat(0.09),
		"USDC": decimal.NewFromInt(1),
	}

	s, err := NewScanner([]VenueClient{client}, []domain.Pool{pool("soroswap", "P1")}, refPrices, logger.Discard())
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	priced := s.Scan(context.Background())
	if len(priced) != 1 {
		t.Fatalf("expected 1 priced pool, got %d", len(priced))
	}

	// 1000 * 0.09 + 92 * 1 = 182
	want := decimal.NewFromInt(182)
	if !priced[0].LiquidityUSD.Equal(want) {
		t.Errorf("LiquidityUSD = %s, want %s", priced[0].LiquidityUSD, want)
	}
}

func TestScanner_Close(t *testing.T) {
	client := &fakeVenueClient{venue: "soroswap", states: map[string]domain.PoolState{}}

	s, err := NewScanner([]VenueClient{client}, []domain.Pool{pool("soroswap", "P1")}, nil, logger.Discard())
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !client.closed {
		t.Error("expected venue client to be closed")
	}
}
