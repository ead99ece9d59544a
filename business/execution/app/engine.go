package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	arbitrageDomain "github.com/quantfi/flasharb/business/arbitrage/domain"
	"github.com/quantfi/flasharb/business/execution/domain"
	scannerDomain "github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/internal/apperror"
	"github.com/quantfi/flasharb/internal/logger"
)

const (
	tracerName = "execution"
	meterName  = "execution"
)

// Config holds execution engine settings.
type Config struct {
	Contract       string
	LoanPool       string
	MinProfitBps   uint32
	MaxSlippageBps uint32
	MaxConcurrent  int
	MaxRetries     int
	RetryDelay     time.Duration
	SubmitTimeout  time.Duration
	RequestMaxAge  time.Duration
	OpportunityTTL time.Duration
	DryRun         bool
	HistorySize    int
}

// engineMetrics holds OTEL metric instruments.
type engineMetrics struct {
	executionsTotal  metric.Int64Counter
	attemptsTotal    metric.Int64Counter
	inFlightGauge    metric.Int64Gauge
	executionLatency metric.Float64Histogram
}

// Engine submits approved opportunities for settlement. One route executes
// at most once at a time, and the number of concurrent executions never
// exceeds the configured cap. Each execution runs in its own goroutine so
// the pipeline keeps scanning while settlements are in flight.
type Engine struct {
	config    Config
	submitter Submitter
	recorder  ResultRecorder
	history   *domain.History

	mu       sync.Mutex
	inFlight map[string]struct{}

	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *engineMetrics
}

// NewEngine creates the execution engine. recorder may be nil when no
// persistent result store is configured.
func NewEngine(config Config, submitter Submitter, recorder ResultRecorder, log logger.LoggerInterface) (*Engine, error) {
	e := &Engine{
		config:    config,
		submitter: submitter,
		recorder:  recorder,
		history:   domain.NewHistory(config.HistorySize),
		inFlight:  make(map[string]struct{}),
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}

	if err := e.initMetrics(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	e.metrics = &engineMetrics{}

	e.metrics.executionsTotal, err = meter.Int64Counter(
		"execution_runs_total",
		metric.WithDescription("Completed execution attempt sequences"),
	)
	if err != nil {
		return err
	}

	e.metrics.attemptsTotal, err = meter.Int64Counter(
		"execution_attempts_total",
		metric.WithDescription("Individual settlement attempts"),
	)
	if err != nil {
		return err
	}

	e.metrics.inFlightGauge, err = meter.Int64Gauge(
		"execution_in_flight",
		metric.WithDescription("Executions currently in flight"),
	)
	if err != nil {
		return err
	}

	e.metrics.executionLatency, err = meter.Float64Histogram(
		"execution_latency_ms",
		metric.WithDescription("End-to-end execution latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Execute dispatches an opportunity for settlement. It returns immediately
// once the execution is admitted; the attempt sequence runs in the
// background. Expired opportunities, routes already in flight and
// submissions past the concurrency cap are rejected, not queued.
func (e *Engine) Execute(ctx context.Context, opp *arbitrageDomain.Opportunity) error {
	if e.config.OpportunityTTL > 0 && opp.IsExpired(time.Now(), e.config.OpportunityTTL) {
		return apperror.New(apperror.CodeOpportunityExpired,
			apperror.WithContext("route "+opp.ID+" last seen "+opp.LastSeenAt.Format(time.RFC3339)))
	}

	profitBps := opp.ProfitPct.Mul(decimal.NewFromInt(100))
	if profitBps.LessThan(decimal.NewFromInt(int64(e.config.MinProfitBps))) {
		return apperror.New(apperror.CodeProfitBelowMinimum,
			apperror.WithContext("route "+opp.ID+" at "+profitBps.StringFixed(1)+" bps"))
	}

	e.mu.Lock()
	if _, busy := e.inFlight[opp.ID]; busy {
		e.mu.Unlock()
		return apperror.New(apperror.CodeExecutionInFlight,
			apperror.WithContext("route "+opp.ID))
	}
	if len(e.inFlight) >= e.config.MaxConcurrent {
		e.mu.Unlock()
		return apperror.New(apperror.CodeExecutionCapReached)
	}
	e.inFlight[opp.ID] = struct{}{}
	count := len(e.inFlight)
	e.mu.Unlock()

	e.metrics.inFlightGauge.Record(ctx, int64(count))

	go e.run(ctx, opp)
	return nil
}

func (e *Engine) run(ctx context.Context, opp *arbitrageDomain.Opportunity) {
	defer e.release(ctx, opp.ID)

	ctx, span := e.tracer.Start(ctx, "execution.run",
		trace.WithAttributes(attribute.String("route", opp.ID)),
	)
	defer span.End()

	start := time.Now()
	ref, attemptID, attempts, err := e.executeWithRetry(ctx, opp)
	elapsed := time.Since(start)

	result := &domain.Result{
		RouteID:       opp.ID,
		AttemptID:     attemptID,
		Success:       err == nil,
		SettlementRef: ref,
		Profit:        opp.NetProfit,
		ProfitUSD:     opp.ProfitUSD,
		CostUSD:       loanCostUSD(opp),
		Attempts:      attempts,
		Duration:      elapsed,
		CompletedAt:   time.Now(),
	}
	if err != nil {
		result.Err = err.Error()
	}

	e.recordResult(ctx, result)

	if err != nil {
		e.logger.Error(ctx, "execution failed",
			"route", opp.ID, "attempts", attempts, "error", err)
		return
	}
	e.logger.Info(ctx, "execution settled",
		"route", opp.ID,
		"ref", ref,
		"attempts", attempts,
		"profit_usd", opp.ProfitUSD.StringFixed(2),
		"duration", elapsed,
	)
}

// loanCostUSD values the flash loan fee at the opportunity's own USD rate,
// the same per-raw-unit rate behind its ProfitUSD estimate.
func loanCostUSD(opp *arbitrageDomain.Opportunity) decimal.Decimal {
	if opp.BorrowAmount == nil || opp.NetProfit == nil || opp.NetProfit.Sign() <= 0 {
		return decimal.Zero
	}
	fee := scannerDomain.FlashLoanFee(opp.BorrowAmount)
	return opp.ProfitUSD.
		Mul(decimal.NewFromBigInt(fee, 0)).
		Div(decimal.NewFromBigInt(opp.NetProfit, 0))
}

// executeWithRetry runs attempts up to the configured maximum with a fixed
// delay in between, returning the first success or an aggregate failure
// carrying the last error.
func (e *Engine) executeWithRetry(ctx context.Context, opp *arbitrageDomain.Opportunity) (ref, attemptID string, attempts int, err error) {
	var lastErr error

	for attempt := 1; attempt <= e.config.MaxRetries; attempt++ {
		attempts = attempt
		ref, attemptID, err = e.attempt(ctx, opp)
		e.metrics.attemptsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("success", err == nil),
		))
		if err == nil {
			return ref, attemptID, attempts, nil
		}

		lastErr = err
		e.logger.Warn(ctx, "settlement attempt failed",
			"route", opp.ID, "attempt", attempt, "error", err)

		if attempt < e.config.MaxRetries {
			select {
			case <-ctx.Done():
				return "", attemptID, attempts, apperror.New(apperror.CodeRetriesExhausted,
					apperror.WithCause(ctx.Err()))
			case <-time.After(e.config.RetryDelay):
			}
		}
	}

	return "", attemptID, attempts, apperror.New(apperror.CodeRetriesExhausted,
		apperror.WithCause(lastErr))
}

// attempt builds, validates and submits one settlement request. The
// request is rebuilt fresh every attempt so a retry never reuses a stale
// payload.
func (e *Engine) attempt(ctx context.Context, opp *arbitrageDomain.Opportunity) (string, string, error) {
	attemptID := uuid.NewString()
	now := time.Now()

	req := domain.NewSettlementRequest(opp, attemptID, domain.RequestParams{
		Contract:       e.config.Contract,
		LoanPool:       e.config.LoanPool,
		MinProfitBps:   e.config.MinProfitBps,
		MaxSlippageBps: e.config.MaxSlippageBps,
	}, now)

	if err := req.Validate(now, e.config.RequestMaxAge); err != nil {
		return "", attemptID, err
	}

	if e.config.DryRun {
		e.logger.Info(ctx, "dry run, settlement not submitted",
			"route", opp.ID,
			"amount", req.Amount.String(),
			"profit_usd", opp.ProfitUSD.StringFixed(2),
		)
		return "dry-run:" + attemptID, attemptID, nil
	}

	submitCtx, cancel := context.WithTimeout(ctx, e.config.SubmitTimeout)
	defer cancel()

	ref, err := e.submitter.Submit(submitCtx, req)
	if err != nil {
		return "", attemptID, err
	}
	return ref, attemptID, nil
}

func (e *Engine) recordResult(ctx context.Context, result *domain.Result) {
	e.history.Append(result)

	e.metrics.executionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", result.Success),
	))
	e.metrics.executionLatency.Record(ctx, float64(result.Duration.Milliseconds()))

	if e.recorder != nil {
		if err := e.recorder.Record(ctx, result); err != nil {
			e.logger.Warn(ctx, "failed to persist execution result",
				"route", result.RouteID, "error", err)
		}
	}
}

func (e *Engine) release(ctx context.Context, routeID string) {
	e.mu.Lock()
	delete(e.inFlight, routeID)
	count := len(e.inFlight)
	e.mu.Unlock()

	e.metrics.inFlightGauge.Record(ctx, int64(count))
}

// StatsFor returns the accumulated execution counters for a route,
// feeding the scoring engine's risk model.
func (e *Engine) StatsFor(routeID string) arbitrageDomain.RouteStats {
	return e.history.StatsFor(routeID)
}

// History returns the bounded execution result log.
func (e *Engine) History() *domain.History {
	return e.history
}

// InFlight returns the number of executions currently running.
func (e *Engine) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inFlight)
}

// Close releases the persistent result store.
func (e *Engine) Close() error {
	if e.recorder != nil {
		return e.recorder.Close()
	}
	return nil
}
