package app

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/quantfi/flasharb/business/arbitrage/domain"
	scannerApp "github.com/quantfi/flasharb/business/scanner/app"
	"github.com/quantfi/flasharb/internal/apperror"
	"github.com/quantfi/flasharb/internal/logger"
)

// RunnerConfig holds pipeline cycle settings.
type RunnerConfig struct {
	ScanInterval time.Duration
}

// runnerMetrics holds OTEL metric instruments.
type runnerMetrics struct {
	cyclesTotal  metric.Int64Counter
	cycleLatency metric.Float64Histogram
	sweptTotal   metric.Int64Counter
	trackedGauge metric.Int64Gauge
	submitsTotal metric.Int64Counter
	submitErrors metric.Int64Counter
}

// Runner drives the pipeline: scan, detect, track, score, optimize,
// execute. One cycle per tick; a paused runner keeps scanning but stops
// submitting.
type Runner struct {
	config    RunnerConfig
	scanner   *scannerApp.Scanner
	detector  *Detector
	store     *Store
	scoring   *ScoringService
	optimizer *Optimizer
	executor  Executor
	reporter  Reporter

	paused atomic.Bool

	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *runnerMetrics
}

// NewRunner wires the pipeline together.
func NewRunner(
	config RunnerConfig,
	scanner *scannerApp.Scanner,
	detector *Detector,
	store *Store,
	scoring *ScoringService,
	optimizer *Optimizer,
	executor Executor,
	reporter Reporter,
	log logger.LoggerInterface,
) (*Runner, error) {
	r := &Runner{
		config:    config,
		scanner:   scanner,
		detector:  detector,
		store:     store,
		scoring:   scoring,
		optimizer: optimizer,
		executor:  executor,
		reporter:  reporter,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}

	if err := r.initMetrics(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &runnerMetrics{}

	r.metrics.cyclesTotal, err = meter.Int64Counter(
		"arbitrage_cycles_total",
		metric.WithDescription("Pipeline cycles run"),
	)
	if err != nil {
		return err
	}

	r.metrics.cycleLatency, err = meter.Float64Histogram(
		"arbitrage_cycle_latency_ms",
		metric.WithDescription("Pipeline cycle latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	r.metrics.sweptTotal, err = meter.Int64Counter(
		"arbitrage_swept_total",
		metric.WithDescription("Expired opportunities swept"),
	)
	if err != nil {
		return err
	}

	r.metrics.trackedGauge, err = meter.Int64Gauge(
		"arbitrage_tracked_opportunities",
		metric.WithDescription("Opportunities currently tracked"),
	)
	if err != nil {
		return err
	}

	r.metrics.submitsTotal, err = meter.Int64Counter(
		"arbitrage_submits_total",
		metric.WithDescription("Opportunities submitted for execution"),
	)
	if err != nil {
		return err
	}

	r.metrics.submitErrors, err = meter.Int64Counter(
		"arbitrage_submit_errors_total",
		metric.WithDescription("Execution submissions rejected or failed"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Start begins the pipeline loop.
func (r *Runner) Start(ctx context.Context) error {
	if err := r.reporter.Start(ctx); err != nil {
		return err
	}

	go r.run(ctx)

	r.logger.Info(ctx, "pipeline started", "scan_interval", r.config.ScanInterval)
	return nil
}

func (r *Runner) run(ctx context.Context) {
	ticker := time.NewTicker(r.config.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info(ctx, "pipeline stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			r.Cycle(ctx)
		}
	}
}

// Cycle runs one full pipeline pass.
func (r *Runner) Cycle(ctx context.Context) CycleStats {
	ctx, span := r.tracer.Start(ctx, "arbitrage.cycle")
	defer span.End()

	start := time.Now()
	r.metrics.cyclesTotal.Add(ctx, 1)

	priced := r.scanner.Scan(ctx)
	candidates := r.detector.Detect(ctx, priced)

	for _, opp := range candidates {
		r.store.Upsert(opp)
		r.reporter.Report(opp)
	}

	swept := r.store.SweepExpired(time.Now())
	if swept > 0 {
		r.metrics.sweptTotal.Add(ctx, int64(swept))
	}

	tracked := r.store.List()
	r.metrics.trackedGauge.Record(ctx, int64(len(tracked)))

	approved, submitted := 0, 0
	if !r.paused.Load() {
		approved, submitted = r.dispatch(ctx, tracked)
	}

	stats := CycleStats{
		PricedPools:   len(priced),
		Candidates:    len(candidates),
		Tracked:       len(tracked),
		Approved:      approved,
		Submitted:     submitted,
		SweptExpired:  swept,
		CycleDuration: float64(time.Since(start).Milliseconds()),
	}

	r.metrics.cycleLatency.Record(ctx, stats.CycleDuration)
	r.reporter.UpdateCycle(stats)

	span.SetAttributes(
		attribute.Int("candidates", stats.Candidates),
		attribute.Int("submitted", stats.Submitted),
	)

	return stats
}

// dispatch scores tracked opportunities best first and submits the
// approved ones. A route already in flight is skipped quietly.
func (r *Runner) dispatch(ctx context.Context, tracked []*domain.Opportunity) (approved, submitted int) {
	now := time.Now()

	for _, opp := range tracked {
		score := r.scoring.Score(ctx, opp, now)
		if !score.Approved {
			continue
		}
		approved++

		sized := r.optimizer.Optimize(ctx, opp)

		r.metrics.submitsTotal.Add(ctx, 1)
		if err := r.executor.Execute(ctx, sized); err != nil {
			r.metrics.submitErrors.Add(ctx, 1)
			switch {
			case apperror.HasCode(err, apperror.CodeExecutionInFlight):
				// Already executing this route, nothing to do
			case apperror.HasCode(err, apperror.CodeExecutionCapReached):
				r.logger.Warn(ctx, "execution cap reached, deferring remaining routes")
				return approved, submitted
			default:
				r.logger.Error(ctx, "execution submit failed", "id", sized.ID, "error", err)
			}
			continue
		}
		submitted++
	}

	return approved, submitted
}

// Pause stops submissions while keeping detection alive.
func (r *Runner) Pause() {
	r.paused.Store(true)
}

// Resume re-enables submissions.
func (r *Runner) Resume() {
	r.paused.Store(false)
}

// Paused reports whether submissions are paused.
func (r *Runner) Paused() bool {
	return r.paused.Load()
}

// Stop shuts down the reporter.
func (r *Runner) Stop() error {
	return r.reporter.Stop()
}
