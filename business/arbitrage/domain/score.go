package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Score is the decision engine's assessment of an opportunity.
type Score struct {
	Profit             float64
	Liquidity          float64
	Risk               float64
	Composite          float64
	SuccessProbability float64
	Approved           bool
	Reasons            []string
}

// RouteStats summarizes past execution attempts for a route. The zero
// value means the route has never been tried.
type RouteStats struct {
	Attempts            int
	Successes           int
	ConsecutiveFailures int
}

// SuccessRate returns successes over attempts, 1.0 for untried routes.
func (s RouteStats) SuccessRate() float64 {
	if s.Attempts == 0 {
		return 1.0
	}
	return float64(s.Successes) / float64(s.Attempts)
}

// ScoreProfit maps net profit percentage onto a 0-100 scale. The ramp is
// piecewise linear through (0.5%, 50), (1%, 75) and saturates at 2%.
func ScoreProfit(profitPct float64) float64 {
	switch {
	case profitPct <= 0:
		return 0
	case profitPct < 0.5:
		return profitPct / 0.5 * 50
	case profitPct < 1.0:
		return 50 + (profitPct-0.5)/0.5*25
	case profitPct < 2.0:
		return 75 + (profitPct-1.0)/1.0*25
	default:
		return 100
	}
}

// ScoreLiquidity maps the average USD liquidity of both pools onto a
// 0-100 scale, saturating at $200k.
func ScoreLiquidity(avgLiquidityUSD float64) float64 {
	switch {
	case avgLiquidityUSD <= 0:
		return 0
	case avgLiquidityUSD < 50000:
		return avgLiquidityUSD / 50000 * 50
	case avgLiquidityUSD < 100000:
		return 50 + (avgLiquidityUSD-50000)/50000*25
	case avgLiquidityUSD < 200000:
		return 75 + (avgLiquidityUSD-100000)/100000*25
	default:
		return 100
	}
}

// RiskInputs feeds the risk model.
type RiskInputs struct {
	Age             time.Duration
	NotionalUSD     float64 // borrow amount valued in USD
	MinLiquidityUSD float64 // thinner side of the route
	ProfitPct       float64
	Stats           RouteStats
}

// ScoreRisk accumulates additive penalties, capped at 100. Higher is
// riskier.
func ScoreRisk(in RiskInputs) float64 {
	risk := 0.0

	switch {
	case in.Age > 15*time.Second:
		risk += 30
	case in.Age > 10*time.Second:
		risk += 20
	case in.Age > 5*time.Second:
		risk += 10
	}

	switch {
	case in.NotionalUSD > 50000:
		risk += 30
	case in.NotionalUSD > 25000:
		risk += 20
	case in.NotionalUSD > 10000:
		risk += 10
	}

	switch {
	case in.MinLiquidityUSD < 20000:
		risk += 30
	case in.MinLiquidityUSD < 50000:
		risk += 15
	}

	switch {
	case in.ProfitPct < 0.3:
		risk += 25
	case in.ProfitPct < 0.5:
		risk += 15
	}

	if in.Stats.ConsecutiveFailures >= 3 {
		risk += 20
	}
	if in.Stats.Attempts >= 5 && in.Stats.SuccessRate() < 0.5 {
		risk += 15
	}

	if risk > 100 {
		risk = 100
	}
	return risk
}

// CompositeScore blends the three component scores: profit weighs 0.4,
// liquidity 0.3 and safety (inverted risk) 0.3.
func CompositeScore(profit, liquidity, risk float64) float64 {
	return 0.4*profit + 0.3*liquidity + 0.3*(100-risk)
}

// SuccessProbability derives an execution success estimate from the
// composite score, discounted for aged spreads and thin margins.
func SuccessProbability(composite float64, age time.Duration, profitPct float64) float64 {
	prob := composite / 100

	if age > 10*time.Second {
		prob *= 0.8
	}
	if profitPct < 0.3 {
		prob *= 0.7
	}

	return prob
}

// PassThroughScore is used when scoring is disabled: every opportunity
// is approved with maximum marks.
func PassThroughScore() *Score {
	return &Score{
		Profit:             100,
		Liquidity:          100,
		Risk:               0,
		Composite:          100,
		SuccessProbability: 1,
		Approved:           true,
		Reasons:            []string{"scoring disabled"},
	}
}

// DecimalToFloat converts a decimal to float64, tolerating precision loss.
func DecimalToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
