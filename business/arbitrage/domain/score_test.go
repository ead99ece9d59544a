package domain

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreProfit(t *testing.T) {
	tests := []struct {
		profitPct float64
		want      float64
	}{
		{0, 0},
		{-1, 0},
		{0.25, 25},
		{0.5, 50},
		{0.75, 62.5},
		{1.0, 75},
		{1.5, 87.5},
		{2.0, 100},
		{5.0, 100},
	}

	for _, tt := range tests {
		if got := ScoreProfit(tt.profitPct); !almostEqual(got, tt.want) {
			t.Errorf("ScoreProfit(%v) = %v, want %v", tt.profitPct, got, tt.want)
		}
	}
}

func TestScoreLiquidity(t *testing.T) {
	tests := []struct {
		avgUSD float64
		want   float64
	}{
		{0, 0},
		{25000, 25},
		{50000, 50},
		{75000, 62.5},
		{100000, 75},
		{150000, 87.5},
		{200000, 100},
		{1000000, 100},
	}

	for _, tt := range tests {
		if got := ScoreLiquidity(tt.avgUSD); !almostEqual(got, tt.want) {
			t.Errorf("ScoreLiquidity(%v) = %v, want %v", tt.avgUSD, got, tt.want)
		}
	}
}

func TestScoreRisk(t *testing.T) {
	tests := []struct {
		name string
		in   RiskInputs
		want float64
	}{
		{
			name: "fresh deep small profitable route",
			in: RiskInputs{
				Age:             2 * time.Second,
				NotionalUSD:     5000,
				MinLiquidityUSD: 100000,
				ProfitPct:       1.0,
			},
			want: 0,
		},
		{
			name: "slightly aged",
			in: RiskInputs{
				Age:             6 * time.Second,
				NotionalUSD:     5000,
				MinLiquidityUSD: 100000,
				ProfitPct:       1.0,
			},
			want: 10,
		},
		{
			name: "aged past ten seconds",
			in: RiskInputs{
				Age:             12 * time.Second,
				NotionalUSD:     5000,
				MinLiquidityUSD: 100000,
				ProfitPct:       1.0,
			},
			want: 20,
		},
		{
			name: "very stale",
			in: RiskInputs{
				Age:             16 * time.Second,
				NotionalUSD:     5000,
				MinLiquidityUSD: 100000,
				ProfitPct:       1.0,
			},
			want: 30,
		},
		{
			name: "large notional",
			in: RiskInputs{
				Age:             1 * time.Second,
				NotionalUSD:     60000,
				MinLiquidityUSD: 100000,
				ProfitPct:       1.0,
			},
			want: 30,
		},
		{
			name: "thin pool",
			in: RiskInputs{
				Age:             1 * time.Second,
				NotionalUSD:     5000,
				MinLiquidityUSD: 10000,
				ProfitPct:       1.0,
			},
			want: 30,
		},
		{
			name: "moderately thin pool",
			in: RiskInputs{
				Age:             1 * time.Second,
				NotionalUSD:     5000,
				MinLiquidityUSD: 30000,
				ProfitPct:       1.0,
			},
			want: 15,
		},
		{
			name: "razor thin margin",
			in: RiskInputs{
				Age:             1 * time.Second,
				NotionalUSD:     5000,
				MinLiquidityUSD: 100000,
				ProfitPct:       0.2,
			},
			want: 25,
		},
		{
			name: "failing route",
			in: RiskInputs{
				Age:             1 * time.Second,
				NotionalUSD:     5000,
				MinLiquidityUSD: 100000,
				ProfitPct:       1.0,
				Stats:           RouteStats{Attempts: 3, Successes: 0, ConsecutiveFailures: 3},
			},
			want: 20,
		},
		{
			name: "poor success rate",
			in: RiskInputs{
				Age:             1 * time.Second,
				NotionalUSD:     5000,
				MinLiquidityUSD: 100000,
				ProfitPct:       1.0,
				Stats:           RouteStats{Attempts: 6, Successes: 2},
			},
			want: 15,
		},
		{
			name: "everything wrong caps at 100",
			in: RiskInputs{
				Age:             20 * time.Second,
				NotionalUSD:     100000,
				MinLiquidityUSD: 5000,
				ProfitPct:       0.1,
				Stats:           RouteStats{Attempts: 10, Successes: 1, ConsecutiveFailures: 5},
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreRisk(tt.in); !almostEqual(got, tt.want) {
				t.Errorf("ScoreRisk() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompositeScore(t *testing.T) {
	if got := CompositeScore(100, 100, 0); !almostEqual(got, 100) {
		t.Errorf("perfect inputs should score 100, got %v", got)
	}
	if got := CompositeScore(50, 50, 50); !almostEqual(got, 50) {
		t.Errorf("CompositeScore(50,50,50) = %v, want 50", got)
	}
	if got := CompositeScore(75, 60, 20); !almostEqual(got, 0.4*75+0.3*60+0.3*80) {
		t.Errorf("CompositeScore(75,60,20) = %v", got)
	}
}

func TestSuccessProbability(t *testing.T) {
	if got := SuccessProbability(100, time.Second, 1.0); !almostEqual(got, 1.0) {
		t.Errorf("fresh perfect route should have probability 1, got %v", got)
	}
	if got := SuccessProbability(80, 12*time.Second, 1.0); !almostEqual(got, 0.64) {
		t.Errorf("aged route: got %v, want 0.64", got)
	}
	if got := SuccessProbability(80, time.Second, 0.2); !almostEqual(got, 0.56) {
		t.Errorf("thin margin: got %v, want 0.56", got)
	}
	// Discounts compound
	if got := SuccessProbability(80, 12*time.Second, 0.2); !almostEqual(got, 0.448) {
		t.Errorf("aged thin route: got %v, want 0.448", got)
	}
}

func TestRouteStats_SuccessRate(t *testing.T) {
	if got := (RouteStats{}).SuccessRate(); !almostEqual(got, 1.0) {
		t.Errorf("untried route should rate 1.0, got %v", got)
	}
	if got := (RouteStats{Attempts: 4, Successes: 1}).SuccessRate(); !almostEqual(got, 0.25) {
		t.Errorf("SuccessRate = %v, want 0.25", got)
	}
}

func TestPassThroughScore(t *testing.T) {
	s := PassThroughScore()
	if !s.Approved || s.Composite != 100 || s.SuccessProbability != 1 {
		t.Errorf("pass-through score should approve with max marks: %+v", s)
	}
}
