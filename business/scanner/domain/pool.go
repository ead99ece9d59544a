// Package domain contains pool entities and swap math for the scanner context.
package domain

import (
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantfi/flasharb/internal/asset"
)

// Pool identifies a constant-product liquidity pool on a venue.
type Pool struct {
	Venue   string
	Address string
	TokenA  *asset.Asset
	TokenB  *asset.Asset
	FeeBps  uint32
}

// PairKey returns a canonical key for the unordered token pair, so pools
// quoting the same pair group together regardless of token order.
func (p Pool) PairKey() string {
	a, b := p.TokenA.Symbol(), p.TokenB.Symbol()
	if a > b {
		a, b = b, a
	}
	return a + "/" + b
}

// HasToken reports whether the pool trades the given asset.
func (p Pool) HasToken(a *asset.Asset) bool {
	return p.TokenA.ID().Equals(a.ID()) || p.TokenB.ID().Equals(a.ID())
}

// String returns venue:address.
func (p Pool) String() string {
	return p.Venue + ":" + p.Address
}

// PoolState is a point-in-time snapshot of a pool's reserves.
type PoolState struct {
	PoolAddress string
	ReserveA    *big.Int
	ReserveB    *big.Int
	ObservedAt  time.Time
}

// Age returns how long ago the snapshot was taken.
func (s PoolState) Age(now time.Time) time.Duration {
	return now.Sub(s.ObservedAt)
}

// PricedPool pairs a pool with its latest state, derived mid price and
// USD liquidity estimate.
type PricedPool struct {
	Pool         Pool
	State        PoolState
	MidPrice     decimal.Decimal // price of TokenA quoted in TokenB
	LiquidityUSD decimal.Decimal
}

// PriceAB returns the directional price of TokenA quoted in TokenB,
// stamped with the snapshot time.
func (pp PricedPool) PriceAB() asset.Price {
	return asset.NewPrice(pp.Pool.TokenA, pp.Pool.TokenB, pp.MidPrice, pp.State.ObservedAt)
}

// PriceBA returns the directional price of TokenB quoted in TokenA.
func (pp PricedPool) PriceBA() asset.Price {
	return pp.PriceAB().Invert()
}

// MidPrice computes the instantaneous price of TokenA in units of TokenB,
// adjusted for token decimals. Returns zero when either reserve is empty.
func MidPrice(pool Pool, state PoolState) decimal.Decimal {
	if state.ReserveA == nil || state.ReserveB == nil ||
		state.ReserveA.Sign() <= 0 || state.ReserveB.Sign() <= 0 {
		return decimal.Zero
	}

	ra := decimal.NewFromBigInt(state.ReserveA, -int32(pool.TokenA.Decimals()))
	rb := decimal.NewFromBigInt(state.ReserveB, -int32(pool.TokenB.Decimals()))

	return rb.DivRound(ra, 18)
}

// NormalizeAddressPair returns the two pool addresses in lexicographic
// order joined by ":". Used as the stable identity of a cross-venue route.
func NormalizeAddressPair(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
