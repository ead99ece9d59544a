package domain

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantfi/flasharb/internal/apperror"
)

func validRequest(now time.Time) *SettlementRequest {
	return &SettlementRequest{
		RouteID:           "CPOOL0001:CPOOL0002",
		AttemptID:         "a1",
		Contract:          "CCONTRACT",
		LoanPool:          "CLOANPOOL",
		BorrowToken:       "stellar:CUSDC000",
		IntermediateToken: "stellar:native",
		Amount:            big.NewInt(1000000),
		BuyVenue:          "soroswap",
		BuyPool:           "CPOOL0001",
		SellVenue:         "aquarius",
		SellPool:          "CPOOL0002",
		MinProfitBps:      50,
		MaxSlippageBps:    100,
		BuiltAt:           now,
	}
}

func TestSettlementRequest_Validate(t *testing.T) {
	now := time.Now()
	maxAge := 10 * time.Second

	if err := validRequest(now).Validate(now, maxAge); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*SettlementRequest)
		code   apperror.Code
	}{
		{
			name:   "missing route",
			mutate: func(r *SettlementRequest) { r.RouteID = "" },
			code:   apperror.CodeRequiredField,
		},
		{
			name:   "missing borrow token",
			mutate: func(r *SettlementRequest) { r.BorrowToken = "" },
			code:   apperror.CodeRequiredField,
		},
		{
			name:   "missing sell pool",
			mutate: func(r *SettlementRequest) { r.SellPool = "" },
			code:   apperror.CodeRequiredField,
		},
		{
			name:   "same pool twice",
			mutate: func(r *SettlementRequest) { r.SellPool = r.BuyPool },
			code:   apperror.CodeInvalidInput,
		},
		{
			name:   "nil amount",
			mutate: func(r *SettlementRequest) { r.Amount = nil },
			code:   apperror.CodeInvalidInput,
		},
		{
			name:   "zero amount",
			mutate: func(r *SettlementRequest) { r.Amount = big.NewInt(0) },
			code:   apperror.CodeInvalidInput,
		},
		{
			name:   "stale request",
			mutate: func(r *SettlementRequest) { r.BuiltAt = now.Add(-11 * time.Second) },
			code:   apperror.CodeRequestStale,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(now)
			tt.mutate(req)
			err := req.Validate(now, maxAge)
			if !apperror.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestSettlementRequest_FreshnessBoundary(t *testing.T) {
	now := time.Now()
	req := validRequest(now.Add(-10 * time.Second))

	// Exactly at the bound is still acceptable
	if err := req.Validate(now, 10*time.Second); err != nil {
		t.Errorf("request at the freshness bound rejected: %v", err)
	}
}

func TestHistory_BoundedAppend(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append(&Result{RouteID: "A:B", AttemptID: string(rune('a' + i)), Success: true})
	}

	recent := h.Recent(10)
	if len(recent) != 3 {
		t.Fatalf("history kept %d entries, want 3", len(recent))
	}
	if recent[0].AttemptID != "e" {
		t.Errorf("newest first: got %s, want e", recent[0].AttemptID)
	}

	// Eviction must not lose the counters
	if stats := h.StatsFor("A:B"); stats.Attempts != 5 || stats.Successes != 5 {
		t.Errorf("stats = %+v, want 5 attempts and 5 successes", stats)
	}
}

func TestHistory_RouteCounters(t *testing.T) {
	h := NewHistory(10)
	h.Append(&Result{RouteID: "A:B", Success: true})
	h.Append(&Result{RouteID: "A:B", Success: false})
	h.Append(&Result{RouteID: "A:B", Success: false})

	stats := h.StatsFor("A:B")
	if stats.Attempts != 3 || stats.Successes != 1 || stats.ConsecutiveFailures != 2 {
		t.Errorf("stats = %+v, want 3 attempts, 1 success, 2 consecutive failures", stats)
	}

	// A success resets the failure streak
	h.Append(&Result{RouteID: "A:B", Success: true})
	if stats := h.StatsFor("A:B"); stats.ConsecutiveFailures != 0 {
		t.Errorf("ConsecutiveFailures = %d after a success, want 0", stats.ConsecutiveFailures)
	}

	if stats := h.StatsFor("unknown"); stats.Attempts != 0 {
		t.Errorf("unknown route should have zero stats, got %+v", stats)
	}

	summary := h.Summarize()
	if summary.Total != 4 || summary.Successes != 2 || summary.SuccessRate != 0.5 {
		t.Errorf("summary = %+v, want 4 total, 2 successes, rate 0.5", summary)
	}
}

func TestHistory_SummaryAggregates(t *testing.T) {
	h := NewHistory(10)
	h.Append(&Result{
		RouteID:   "A:B",
		Success:   true,
		ProfitUSD: decimal.RequireFromString("10.50"),
		CostUSD:   decimal.RequireFromString("0.90"),
		Duration:  100 * time.Millisecond,
	})
	h.Append(&Result{
		RouteID:   "C:D",
		Success:   true,
		ProfitUSD: decimal.RequireFromString("4.25"),
		CostUSD:   decimal.RequireFromString("0.35"),
		Duration:  200 * time.Millisecond,
	})
	// A reverted settlement contributes latency but no profit or fee
	h.Append(&Result{
		RouteID:   "A:B",
		Success:   false,
		ProfitUSD: decimal.RequireFromString("3.00"),
		CostUSD:   decimal.RequireFromString("0.25"),
		Duration:  300 * time.Millisecond,
	})

	summary := h.Summarize()
	if !summary.ProfitUSD.Equal(decimal.RequireFromString("14.75")) {
		t.Errorf("ProfitUSD = %s, want 14.75", summary.ProfitUSD)
	}
	if !summary.CostUSD.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("CostUSD = %s, want 1.25", summary.CostUSD)
	}
	if summary.AvgLatency != 200*time.Millisecond {
		t.Errorf("AvgLatency = %v, want 200ms", summary.AvgLatency)
	}
}
