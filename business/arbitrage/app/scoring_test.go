package app

import (
	"context"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantfi/flasharb/business/arbitrage/domain"
	"github.com/quantfi/flasharb/internal/logger"
)

type stubStats struct {
	stats domain.RouteStats
}

func (s stubStats) StatsFor(string) domain.RouteStats { return s.stats }

// scorableOpp builds an opportunity with the given profit percentage, per
// side USD liquidity and age. The notional works out to roughly $1000.
func scorableOpp(profitPct float64, liquidityUSD int64, age time.Duration, now time.Time) *domain.Opportunity {
	buy := pricedPool("soroswap", "CPOOL0001", 1000000000, 89000000, liquidityUSD)
	sell := pricedPool("aquarius", "CPOOL0002", 1000000000, 92000000, liquidityUSD)

	detected := now.Add(-age)
	return &domain.Opportunity{
		ID:           "CPOOL0001:CPOOL0002",
		Pair:         "USDC/XLM",
		Borrow:       usdc,
		Intermediate: xlm,
		Buy:          buy,
		Sell:         sell,
		BorrowAmount: big.NewInt(100000000),
		FinalAmount:  big.NewInt(101000000),
		NetProfit:    big.NewInt(1000000),
		ProfitPct:    decimal.NewFromFloat(profitPct),
		ProfitUSD:    decimal.NewFromInt(10),
		DetectedAt:   detected,
		LastSeenAt:   now,
	}
}

func newScoring(t *testing.T, enabled bool, stats RouteStatsProvider) *ScoringService {
	t.Helper()
	s, err := NewScoringService(ScoringConfig{
		Enabled:               enabled,
		RiskThreshold:         70,
		MinSuccessProbability: 0.4,
	}, stats, logger.Discard())
	if err != nil {
		t.Fatalf("NewScoringService failed: %v", err)
	}
	return s
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoring_DisabledPassesEverything(t *testing.T) {
	now := time.Now()
	opp := scorableOpp(0.1, 1000, 20*time.Second, now)

	score := newScoring(t, false, nil).Score(context.Background(), opp, now)

	if !score.Approved {
		t.Error("disabled scoring must approve everything")
	}
	if score.Composite != 100 || score.Risk != 0 || score.SuccessProbability != 1 {
		t.Errorf("expected pass-through marks, got composite=%v risk=%v prob=%v",
			score.Composite, score.Risk, score.SuccessProbability)
	}
	if opp.Score != score {
		t.Error("score should be attached to the opportunity")
	}
}

func TestScoring_ApprovesHealthyRoute(t *testing.T) {
	now := time.Now()
	opp := scorableOpp(1.0, 100000, 0, now)

	score := newScoring(t, true, nil).Score(context.Background(), opp, now)

	if !floatEq(score.Profit, 75) {
		t.Errorf("Profit = %v, want 75", score.Profit)
	}
	if !floatEq(score.Liquidity, 75) {
		t.Errorf("Liquidity = %v, want 75", score.Liquidity)
	}
	if !floatEq(score.Risk, 0) {
		t.Errorf("Risk = %v, want 0", score.Risk)
	}
	if !floatEq(score.Composite, 82.5) {
		t.Errorf("Composite = %v, want 82.5", score.Composite)
	}
	if !floatEq(score.SuccessProbability, 0.825) {
		t.Errorf("SuccessProbability = %v, want 0.825", score.SuccessProbability)
	}
	if !score.Approved {
		t.Errorf("expected approval, rejected for %v", score.Reasons)
	}
}

func TestScoring_RejectsStaleThinRoute(t *testing.T) {
	now := time.Now()
	// 20s old, 0.2% margin, $10k liquidity per side
	opp := scorableOpp(0.2, 10000, 20*time.Second, now)

	score := newScoring(t, true, nil).Score(context.Background(), opp, now)

	if !floatEq(score.Risk, 85) {
		t.Errorf("Risk = %v, want 85 (age 30 + thin liquidity 30 + thin margin 25)", score.Risk)
	}
	if score.Approved {
		t.Error("stale thin route must not be approved")
	}
	if len(score.Reasons) != 3 {
		t.Errorf("expected composite, risk and probability reasons, got %v", score.Reasons)
	}
}

func TestScoring_ExecutionHistoryRaisesRisk(t *testing.T) {
	now := time.Now()
	opp := scorableOpp(1.0, 100000, 0, now)

	stats := stubStats{stats: domain.RouteStats{
		Attempts:            5,
		Successes:           1,
		ConsecutiveFailures: 3,
	}}
	score := newScoring(t, true, stats).Score(context.Background(), opp, now)

	// 20 for the failure streak, 15 for the poor success rate
	if !floatEq(score.Risk, 35) {
		t.Errorf("Risk = %v, want 35", score.Risk)
	}
	if !score.Approved {
		t.Errorf("risk 35 is still under the threshold, rejected for %v", score.Reasons)
	}
}
