// Package domain contains the core domain types for the execution context.
package domain

import (
	"math/big"
	"time"

	arbitrageDomain "github.com/quantfi/flasharb/business/arbitrage/domain"
	"github.com/quantfi/flasharb/internal/apperror"
)

// SettlementRequest is the payload handed to the settlement contract: take
// a flash loan, run both swaps and repay atomically. Requests age out
// quickly; a stale one must be rebuilt, never submitted.
type SettlementRequest struct {
	RouteID   string `json:"route_id"`
	AttemptID string `json:"attempt_id"`

	Contract string `json:"contract"`
	LoanPool string `json:"loan_pool"`

	BorrowToken       string   `json:"borrow_token"`
	IntermediateToken string   `json:"intermediate_token"`
	Amount            *big.Int `json:"amount"`

	BuyVenue  string `json:"buy_venue"`
	BuyPool   string `json:"buy_pool"`
	SellVenue string `json:"sell_venue"`
	SellPool  string `json:"sell_pool"`

	MinProfitBps   uint32 `json:"min_profit_bps"`
	MaxSlippageBps uint32 `json:"max_slippage_bps"`

	BuiltAt time.Time `json:"built_at"`
}

// RequestParams holds the static pieces of every settlement request.
type RequestParams struct {
	Contract       string
	LoanPool       string
	MinProfitBps   uint32
	MaxSlippageBps uint32
}

// NewSettlementRequest builds a settlement request for one attempt at an
// opportunity.
func NewSettlementRequest(opp *arbitrageDomain.Opportunity, attemptID string, params RequestParams, now time.Time) *SettlementRequest {
	return &SettlementRequest{
		RouteID:           opp.ID,
		AttemptID:         attemptID,
		Contract:          params.Contract,
		LoanPool:          params.LoanPool,
		BorrowToken:       opp.Borrow.ID().String(),
		IntermediateToken: opp.Intermediate.ID().String(),
		Amount:            new(big.Int).Set(opp.BorrowAmount),
		BuyVenue:          opp.Buy.Pool.Venue,
		BuyPool:           opp.Buy.Pool.Address,
		SellVenue:         opp.Sell.Pool.Venue,
		SellPool:          opp.Sell.Pool.Address,
		MinProfitBps:      params.MinProfitBps,
		MaxSlippageBps:    params.MaxSlippageBps,
		BuiltAt:           now,
	}
}

// Validate checks structural well-formedness and freshness. maxAge bounds
// how long ago the request may have been built.
func (r *SettlementRequest) Validate(now time.Time, maxAge time.Duration) error {
	required := map[string]string{
		"route_id":           r.RouteID,
		"attempt_id":         r.AttemptID,
		"borrow_token":       r.BorrowToken,
		"intermediate_token": r.IntermediateToken,
		"buy_venue":          r.BuyVenue,
		"buy_pool":           r.BuyPool,
		"sell_venue":         r.SellVenue,
		"sell_pool":          r.SellPool,
	}
	for field, value := range required {
		if value == "" {
			return apperror.New(apperror.CodeRequiredField,
				apperror.WithContext("settlement request missing "+field))
		}
	}

	if r.BuyPool == r.SellPool {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("settlement request routes through a single pool"))
	}
	if r.Amount == nil || r.Amount.Sign() <= 0 {
		return apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext("settlement request amount must be positive"))
	}

	if age := now.Sub(r.BuiltAt); age > maxAge {
		return apperror.New(apperror.CodeRequestStale,
			apperror.WithContext("settlement request built "+age.String()+" ago"))
	}

	return nil
}
