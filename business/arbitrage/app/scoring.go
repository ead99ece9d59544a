package app

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/quantfi/flasharb/business/arbitrage/domain"
	"github.com/quantfi/flasharb/internal/logger"
)

// ScoringConfig holds the decision engine gate thresholds.
type ScoringConfig struct {
	Enabled               bool
	RiskThreshold         float64
	MinSuccessProbability float64
}

// scoringMetrics holds OTEL metric instruments.
type scoringMetrics struct {
	scoredTotal   metric.Int64Counter
	approvedTotal metric.Int64Counter
}

// ScoringService scores opportunities and decides which ones may execute.
type ScoringService struct {
	config ScoringConfig
	stats  RouteStatsProvider

	logger  logger.LoggerInterface
	metrics *scoringMetrics
}

// NewScoringService creates the decision engine. stats may be nil when no
// execution history is available.
func NewScoringService(config ScoringConfig, stats RouteStatsProvider, log logger.LoggerInterface) (*ScoringService, error) {
	s := &ScoringService{
		config: config,
		stats:  stats,
		logger: log,
	}

	meter := otel.Meter(meterName)
	var err error

	s.metrics = &scoringMetrics{}

	s.metrics.scoredTotal, err = meter.Int64Counter(
		"arbitrage_scored_total",
		metric.WithDescription("Opportunities scored"),
	)
	if err != nil {
		return nil, err
	}

	s.metrics.approvedTotal, err = meter.Int64Counter(
		"arbitrage_approved_total",
		metric.WithDescription("Opportunities approved for execution"),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Score evaluates an opportunity and attaches the result. With scoring
// disabled every opportunity passes with maximum marks.
func (s *ScoringService) Score(ctx context.Context, opp *domain.Opportunity, now time.Time) *domain.Score {
	s.metrics.scoredTotal.Add(ctx, 1)

	if !s.config.Enabled {
		score := domain.PassThroughScore()
		opp.Score = score
		s.metrics.approvedTotal.Add(ctx, 1)
		return score
	}

	profitPct := domain.DecimalToFloat(opp.ProfitPct)
	age := opp.Age(now)

	var routeStats domain.RouteStats
	if s.stats != nil {
		routeStats = s.stats.StatsFor(opp.ID)
	}

	profitScore := domain.ScoreProfit(profitPct)
	liquidityScore := domain.ScoreLiquidity(domain.DecimalToFloat(opp.AvgLiquidityUSD()))
	riskScore := domain.ScoreRisk(domain.RiskInputs{
		Age:             age,
		NotionalUSD:     notionalUSD(opp),
		MinLiquidityUSD: domain.DecimalToFloat(opp.MinLiquidityUSD()),
		ProfitPct:       profitPct,
		Stats:           routeStats,
	})

	composite := domain.CompositeScore(profitScore, liquidityScore, riskScore)
	probability := domain.SuccessProbability(composite, age, profitPct)

	score := &domain.Score{
		Profit:             profitScore,
		Liquidity:          liquidityScore,
		Risk:               riskScore,
		Composite:          composite,
		SuccessProbability: probability,
	}

	if composite < 50 {
		score.Reasons = append(score.Reasons, fmt.Sprintf("composite %.1f below 50", composite))
	}
	if riskScore > s.config.RiskThreshold {
		score.Reasons = append(score.Reasons, fmt.Sprintf("risk %.1f above threshold %.1f", riskScore, s.config.RiskThreshold))
	}
	if probability < s.config.MinSuccessProbability {
		score.Reasons = append(score.Reasons, fmt.Sprintf("success probability %.2f below %.2f", probability, s.config.MinSuccessProbability))
	}

	score.Approved = len(score.Reasons) == 0
	opp.Score = score

	if score.Approved {
		s.metrics.approvedTotal.Add(ctx, 1)
	} else {
		s.logger.Debug(ctx, "opportunity rejected",
			"id", opp.ID,
			"composite", composite,
			"risk", riskScore,
			"probability", probability,
			"reasons", score.Reasons,
		)
	}

	return score
}

// notionalUSD values the borrow amount in USD, falling back to the profit
// based estimate when the route carries no USD pricing.
func notionalUSD(opp *domain.Opportunity) float64 {
	if opp.ProfitUSD.IsZero() || opp.NetProfit == nil || opp.NetProfit.Sign() == 0 {
		return 0
	}
	// profitUSD / netProfit * borrowAmount, all in raw units of the
	// borrow token
	perUnit := opp.ProfitUSD.Div(decimalFromBig(opp.NetProfit))
	return domain.DecimalToFloat(perUnit.Mul(decimalFromBig(opp.BorrowAmount)))
}

func decimalFromBig(v *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(v, 0)
}
