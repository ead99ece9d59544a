package app

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/internal/apperror"
	"github.com/quantfi/flasharb/internal/asset"
	"github.com/quantfi/flasharb/internal/logger"
)

const (
	tracerName = "scanner"
	meterName  = "scanner"
)

// scannerMetrics holds OTEL metric instruments.
type scannerMetrics struct {
	scansTotal   metric.Int64Counter
	poolsFetched metric.Int64Counter
	fetchErrors  metric.Int64Counter
	scanLatency  metric.Float64Histogram
}

// Scanner fans out across all configured pools each cycle and returns
// whatever it managed to price. A venue failing never fails the scan:
// its pools are skipped and the rest of the snapshot is still usable.
type Scanner struct {
	pools     []domain.Pool
	clients   map[string]VenueClient
	refPrices map[string]decimal.Decimal // USD per whole token, by symbol

	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *scannerMetrics
}

// NewScanner creates a scanner over the given pools and venue clients.
func NewScanner(
	clients []VenueClient,
	pools []domain.Pool,
	refPrices map[string]decimal.Decimal,
	log logger.LoggerInterface,
) (*Scanner, error) {
	byVenue := make(map[string]VenueClient, len(clients))
	for _, c := range clients {
		byVenue[c.Venue()] = c
	}

	for _, pool := range pools {
		if _, ok := byVenue[pool.Venue]; !ok {
			return nil, apperror.New(apperror.CodeVenueFetchFailed,
				apperror.WithContext("no client for venue "+pool.Venue))
		}
	}

	s := &Scanner{
		pools:     pools,
		clients:   byVenue,
		refPrices: refPrices,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}

	if err := s.initMetrics(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scanner) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &scannerMetrics{}

	s.metrics.scansTotal, err = meter.Int64Counter(
		"scanner_scans_total",
		metric.WithDescription("Total scan cycles"),
	)
	if err != nil {
		return err
	}

	s.metrics.poolsFetched, err = meter.Int64Counter(
		"scanner_pools_fetched_total",
		metric.WithDescription("Pool states fetched successfully"),
	)
	if err != nil {
		return err
	}

	s.metrics.fetchErrors, err = meter.Int64Counter(
		"scanner_fetch_errors_total",
		metric.WithDescription("Pool state fetch failures"),
	)
	if err != nil {
		return err
	}

	s.metrics.scanLatency, err = meter.Float64Histogram(
		"scanner_scan_latency_ms",
		metric.WithDescription("Scan cycle latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Scan fetches all pool states concurrently and returns priced pools.
// Pools whose venue errored, or whose reserves are empty, are dropped.
func (s *Scanner) Scan(ctx context.Context) []domain.PricedPool {
	ctx, span := s.tracer.Start(ctx, "scanner.scan",
		trace.WithAttributes(attribute.Int("pools", len(s.pools))),
	)
	defer span.End()

	start := time.Now()
	s.metrics.scansTotal.Add(ctx, 1)

	type result struct {
		pool  domain.Pool
		state domain.PoolState
		err   error
	}

	results := make(chan result, len(s.pools))
	var wg sync.WaitGroup

	for _, pool := range s.pools {
		wg.Add(1)
		go func(pool domain.Pool) {
			defer wg.Done()
			state, err := s.clients[pool.Venue].FetchPoolState(ctx, pool)
			results <- result{pool: pool, state: state, err: err}
		}(pool)
	}

	wg.Wait()
	close(results)

	priced := make([]domain.PricedPool, 0, len(s.pools))
	for r := range results {
		if r.err != nil {
			s.metrics.fetchErrors.Add(ctx, 1, metric.WithAttributes(
				attribute.String("venue", r.pool.Venue),
			))
			s.logger.Warn(ctx, "pool fetch failed",
				"venue", r.pool.Venue,
				"pool", r.pool.Address,
				"error", r.err,
			)
			continue
		}

		mid := domain.MidPrice(r.pool, r.state)
		if mid.IsZero() {
			s.logger.Warn(ctx, "skipping pool with empty reserves",
				"venue", r.pool.Venue,
				"pool", r.pool.Address,
			)
			continue
		}

		s.metrics.poolsFetched.Add(ctx, 1, metric.WithAttributes(
			attribute.String("venue", r.pool.Venue),
		))

		priced = append(priced, domain.PricedPool{
			Pool:         r.pool,
			State:        r.state,
			MidPrice:     mid,
			LiquidityUSD: s.estimateLiquidityUSD(r.pool, r.state),
		})
	}

	latency := float64(time.Since(start).Milliseconds())
	s.metrics.scanLatency.Record(ctx, latency)

	span.SetAttributes(attribute.Int("priced_pools", len(priced)))

	s.logger.Debug(ctx, "scan complete",
		"pools", len(s.pools),
		"priced", len(priced),
		"latency_ms", latency,
	)

	return priced
}

// estimateLiquidityUSD values both reserves at the configured reference
// prices. Tokens without a reference price contribute zero.
func (s *Scanner) estimateLiquidityUSD(pool domain.Pool, state domain.PoolState) decimal.Decimal {
	total := decimal.Zero

	if price, ok := s.refPrices[pool.TokenA.Symbol()]; ok {
		ra := asset.NewAmount(pool.TokenA, state.ReserveA).ToDecimal()
		total = total.Add(ra.Mul(price))
	}
	if price, ok := s.refPrices[pool.TokenB.Symbol()]; ok {
		rb := asset.NewAmount(pool.TokenB, state.ReserveB).ToDecimal()
		total = total.Add(rb.Mul(price))
	}

	return total
}

// Close closes all venue clients.
func (s *Scanner) Close() error {
	var firstErr error
	for _, c := range s.clients {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
