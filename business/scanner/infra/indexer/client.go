package indexer

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/quantfi/flasharb/business/scanner/app"
	"github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/internal/apperror"
	"github.com/quantfi/flasharb/internal/logger"
	"github.com/quantfi/flasharb/internal/wsconn"
)

const (
	meterName = "indexer_venue"

	// stateCacheSize bounds the latest-state cache. Well above any sane
	// pool count, it only guards against an indexer pushing junk pools.
	stateCacheSize = 512

	defaultStaleTimeout = 30 * time.Second
)

// Ensure Client implements VenueClient.
var _ app.VenueClient = (*Client)(nil)

// clientMetrics holds OTEL metric instruments.
type clientMetrics struct {
	updatesTotal  metric.Int64Counter
	invalidTotal  metric.Int64Counter
	staleRequests metric.Int64Counter
}

// Client consumes a pool indexer's WebSocket feed and serves the latest
// reserve snapshot per pool. FetchPoolState never hits the network: it
// answers from the cache and rejects stale entries.
type Client struct {
	venue        string
	ws           *wsconn.Client
	states       *lru.Cache[string, domain.PoolState]
	staleTimeout time.Duration

	logger  logger.LoggerInterface
	metrics *clientMetrics
}

// Config holds indexer venue client settings.
type Config struct {
	Venue        string
	WSURL        string
	Pools        []string
	StaleTimeout time.Duration
}

// NewClient creates the client. Call Start to connect and begin consuming.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	states, err := lru.New[string, domain.PoolState](stateCacheSize)
	if err != nil {
		return nil, err
	}

	staleTimeout := cfg.StaleTimeout
	if staleTimeout <= 0 {
		staleTimeout = defaultStaleTimeout
	}

	c := &Client{
		venue:        cfg.Venue,
		ws:           wsconn.New(wsconn.DefaultConfig(cfg.WSURL)),
		states:       states,
		staleTimeout: staleTimeout,
		logger:       log,
	}

	if err := c.initMetrics(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.updatesTotal, err = meter.Int64Counter(
		"indexer_updates_total",
		metric.WithDescription("Pool updates consumed from the feed"),
	)
	if err != nil {
		return err
	}

	c.metrics.invalidTotal, err = meter.Int64Counter(
		"indexer_invalid_messages_total",
		metric.WithDescription("Feed messages that failed to parse"),
	)
	if err != nil {
		return err
	}

	c.metrics.staleRequests, err = meter.Int64Counter(
		"indexer_stale_requests_total",
		metric.WithDescription("State requests rejected as stale"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Start connects, subscribes to the configured pools and begins consuming
// updates until ctx is cancelled.
func (c *Client) Start(ctx context.Context, pools []string) error {
	if err := c.ws.Connect(ctx); err != nil {
		return err
	}

	sub, err := json.Marshal(subscribeMessage{Action: "subscribe", Pools: pools})
	if err != nil {
		return err
	}
	if err := c.ws.Send(ctx, sub); err != nil {
		return err
	}

	go c.consume(ctx)

	c.logger.Info(ctx, "indexer feed started", "venue", c.venue, "pools", len(pools))
	return nil
}

func (c *Client) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-c.ws.Messages():
			if !ok {
				return
			}
			c.handleMessage(ctx, raw)
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, raw []byte) {
	var msg poolUpdateMessage
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Pool == "" {
		c.metrics.invalidTotal.Add(ctx, 1)
		c.logger.Warn(ctx, "dropping unparseable feed message", "venue", c.venue, "error", err)
		return
	}
	if msg.Event != "" && msg.Event != "pool_update" {
		return
	}

	reserveA, okA := new(big.Int).SetString(msg.ReserveA, 10)
	reserveB, okB := new(big.Int).SetString(msg.ReserveB, 10)
	if !okA || !okB {
		c.metrics.invalidTotal.Add(ctx, 1)
		c.logger.Warn(ctx, "dropping update with bad reserves", "venue", c.venue, "pool", msg.Pool)
		return
	}

	observedAt := time.Now()
	if msg.Timestamp > 0 {
		observedAt = time.UnixMilli(msg.Timestamp)
	}

	c.states.Add(msg.Pool, domain.PoolState{
		PoolAddress: msg.Pool,
		ReserveA:    reserveA,
		ReserveB:    reserveB,
		ObservedAt:  observedAt,
	})

	c.metrics.updatesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("venue", c.venue),
	))
}

// Venue returns the venue name this client serves.
func (c *Client) Venue() string {
	return c.venue
}

// FetchPoolState answers from the streaming cache.
func (c *Client) FetchPoolState(ctx context.Context, pool domain.Pool) (domain.PoolState, error) {
	state, ok := c.states.Get(pool.Address)
	if !ok {
		return domain.PoolState{}, apperror.New(apperror.CodePoolNotFound,
			apperror.WithContext(pool.Address))
	}

	if state.Age(time.Now()) > c.staleTimeout {
		c.metrics.staleRequests.Add(ctx, 1)
		return domain.PoolState{}, apperror.New(apperror.CodeVenueFetchFailed,
			apperror.WithContext("stale state for pool "+pool.Address))
	}

	return state, nil
}

// Close closes the feed connection.
func (c *Client) Close() error {
	return c.ws.Close()
}
