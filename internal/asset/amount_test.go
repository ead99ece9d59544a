package asset_test

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

func TestAmount_Basic(t *testing.T) {
	// 1 XLM = 1e7 stroops
	oneXLM := asset.NewAmount(testXLM, big.NewInt(1e7))

	if oneXLM.IsZero() {
		t.Error("expected non-zero amount")
	}

	// ToDecimal should return 1.0
	d := oneXLM.ToDecimal()
	if !d.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", d.String())
	}

	// String should be "1 XLM"
	if oneXLM.String() != "1 XLM" {
		t.Errorf("expected '1 XLM', got '%s'", oneXLM.String())
	}
}

func TestAmount_CannotAddDifferentAssets(t *testing.T) {
	oneXLM := asset.NewAmount(testXLM, big.NewInt(1e7))
	oneUSDC := asset.NewAmount(testUSDC, big.NewInt(1e7))

	_, err := oneXLM.Add(oneUSDC)
	if err == nil {
		t.Error("expected error when adding different assets")
	}
}

func TestAmount_ParseDecimalRoundTrip(t *testing.T) {
	parsed, err := asset.ParseDecimal(testUSDC, decimal.RequireFromString("12.3456789"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Raw().Int64() != 123456789 {
		t.Errorf("expected 123456789 raw, got %s", parsed.Raw())
	}

	// Too many fractional digits for the asset
	_, err = asset.ParseDecimal(testUSDC, decimal.RequireFromString("1.00000001"))
	if err == nil {
		t.Error("expected error for sub-unit precision")
	}
}

func TestPrice_Invert(t *testing.T) {
	p := asset.NewPrice(testXLM, testUSDC, decimal.RequireFromString("0.089"), time.Now())

	inv := p.Invert()
	if inv.Pair() != "USDC/XLM" {
		t.Errorf("expected USDC/XLM, got %s", inv.Pair())
	}

	product := p.Rate().Mul(inv.Rate())
	tolerance := decimal.RequireFromString("0.0000000000001")
	if product.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(tolerance) {
		t.Errorf("price times inverse = %s, want 1", product)
	}
}

func TestPrice_Convert(t *testing.T) {
	p := asset.NewPrice(testXLM, testUSDC, decimal.RequireFromString("0.09"), time.Now())

	// 100 XLM at 0.09 = 9 USDC
	hundredXLM := asset.NewAmount(testXLM, big.NewInt(100e7))
	got, err := p.Convert(hundredXLM)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.ToDecimal().Equal(decimal.NewFromInt(9)) {
		t.Errorf("expected 9 USDC, got %s", got.String())
	}

	// Converting the quote asset is a denomination mismatch
	if _, err := p.Convert(asset.NewAmount(testUSDC, big.NewInt(1e7))); err == nil {
		t.Error("expected error converting an amount in the quote asset")
	}
}
