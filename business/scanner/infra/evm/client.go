package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/quantfi/flasharb/business/scanner/app"
	"github.com/quantfi/flasharb/business/scanner/domain"
	"github.com/quantfi/flasharb/internal/apperror"
	"github.com/quantfi/flasharb/internal/circuitbreaker"
	"github.com/quantfi/flasharb/internal/logger"
	"github.com/quantfi/flasharb/internal/ratelimit"
)

const (
	tracerName = "evm_venue"
	meterName  = "evm_venue"
)

// Ensure Client implements VenueClient.
var _ app.VenueClient = (*Client)(nil)

// clientMetrics holds OTEL metric instruments.
type clientMetrics struct {
	callsTotal  metric.Int64Counter
	callErrors  metric.Int64Counter
	callLatency metric.Float64Histogram
}

// Client reads pool reserves from V2-style pairs over JSON-RPC.
type Client struct {
	venue   string
	eth     *ethclient.Client
	pairABI abi.ABI
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[[]byte]

	// token0 per pool address, resolved once
	token0Mu sync.Mutex
	token0   map[string]common.Address

	logger  logger.LoggerInterface
	tracer  trace.Tracer
	metrics *clientMetrics
}

// Config holds EVM venue client settings.
type Config struct {
	Venue             string
	RPCURL            string
	RequestsPerMinute int
}

// NewClient dials the RPC endpoint and prepares the pair ABI.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	eth, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, apperror.New(apperror.CodeVenueRPCError,
			apperror.WithCause(err),
			apperror.WithContext("dial "+cfg.RPCURL))
	}

	parsedABI, err := abi.JSON(strings.NewReader(PairABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pair ABI: %w", err)
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 600
	}

	c := &Client{
		venue:   cfg.Venue,
		eth:     eth,
		pairABI: parsedABI,
		limiter: ratelimit.PerMinute(rpm),
		cb:      circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig(cfg.Venue + "-rpc")),
		token0:  make(map[string]common.Address),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}

	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	return c, nil
}

func (c *Client) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &clientMetrics{}

	c.metrics.callsTotal, err = meter.Int64Counter(
		"evm_venue_calls_total",
		metric.WithDescription("Total contract calls"),
	)
	if err != nil {
		return err
	}

	c.metrics.callErrors, err = meter.Int64Counter(
		"evm_venue_call_errors_total",
		metric.WithDescription("Total contract call errors"),
	)
	if err != nil {
		return err
	}

	c.metrics.callLatency, err = meter.Float64Histogram(
		"evm_venue_call_latency_ms",
		metric.WithDescription("Contract call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Venue returns the venue name this client serves.
func (c *Client) Venue() string {
	return c.venue
}

// FetchPoolState reads getReserves and maps reserve0/reserve1 onto the
// pool's TokenA/TokenB order.
func (c *Client) FetchPoolState(ctx context.Context, pool domain.Pool) (domain.PoolState, error) {
	ctx, span := c.tracer.Start(ctx, "evm_venue.fetch_pool_state",
		trace.WithAttributes(
			attribute.String("venue", c.venue),
			attribute.String("pool", pool.Address),
		),
	)
	defer span.End()

	start := time.Now()
	c.metrics.callsTotal.Add(ctx, 1)

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.PoolState{}, err
	}

	pairAddr := common.HexToAddress(pool.Address)

	reserve0, reserve1, err := c.getReserves(ctx, pairAddr)
	if err != nil {
		c.metrics.callErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return domain.PoolState{}, err
	}

	token0, err := c.getToken0(ctx, pairAddr)
	if err != nil {
		c.metrics.callErrors.Add(ctx, 1)
		span.SetStatus(codes.Error, err.Error())
		return domain.PoolState{}, err
	}

	reserveA, reserveB := reserve0, reserve1
	if !strings.EqualFold(token0.Hex(), pool.TokenA.Address()) {
		reserveA, reserveB = reserve1, reserve0
	}

	c.metrics.callLatency.Record(ctx, float64(time.Since(start).Milliseconds()))

	state := domain.PoolState{
		PoolAddress: pool.Address,
		ReserveA:    reserveA,
		ReserveB:    reserveB,
		ObservedAt:  time.Now(),
	}

	c.logger.Debug(ctx, "fetched pool state",
		"venue", c.venue,
		"pool", pool.Address,
		"reserve_a", reserveA.String(),
		"reserve_b", reserveB.String(),
	)

	return state, nil
}

func (c *Client) getReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	callData, err := c.pairABI.Pack("getReserves")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := c.cb.Execute(func() ([]byte, error) {
		return c.eth.CallContract(ctx, ethereum.CallMsg{
			To:   &pair,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return nil, nil, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("getReserves "+pair.Hex()))
	}

	outputs, err := c.pairABI.Unpack("getReserves", result)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode result: %w", err)
	}
	if len(outputs) < 2 {
		return nil, nil, fmt.Errorf("unexpected output length: %d", len(outputs))
	}

	return outputs[0].(*big.Int), outputs[1].(*big.Int), nil
}

// getToken0 resolves and caches the pair's token0 address.
func (c *Client) getToken0(ctx context.Context, pair common.Address) (common.Address, error) {
	c.token0Mu.Lock()
	cached, ok := c.token0[pair.Hex()]
	c.token0Mu.Unlock()
	if ok {
		return cached, nil
	}

	callData, err := c.pairABI.Pack("token0")
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to encode call: %w", err)
	}

	result, err := c.cb.Execute(func() ([]byte, error) {
		return c.eth.CallContract(ctx, ethereum.CallMsg{
			To:   &pair,
			Data: callData,
		}, nil)
	})
	if err != nil {
		return common.Address{}, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext("token0 "+pair.Hex()))
	}

	outputs, err := c.pairABI.Unpack("token0", result)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to decode result: %w", err)
	}
	if len(outputs) < 1 {
		return common.Address{}, fmt.Errorf("empty token0 result")
	}

	token0 := outputs[0].(common.Address)

	c.token0Mu.Lock()
	c.token0[pair.Hex()] = token0
	c.token0Mu.Unlock()

	return token0, nil
}

// Close closes the RPC connection.
func (c *Client) Close() error {
	c.eth.Close()
	return nil
}
