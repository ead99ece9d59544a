// Package relay submits settlement requests to the settlement relay over HTTP.
package relay

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/quantfi/flasharb/business/execution/domain"
	"github.com/quantfi/flasharb/internal/apperror"
	"github.com/quantfi/flasharb/internal/circuitbreaker"
	"github.com/quantfi/flasharb/internal/httpclient"
	"github.com/quantfi/flasharb/internal/logger"
)

const (
	tracerName     = "execution.relay"
	submitPath     = "/v1/settlements"
	defaultTimeout = 15 * time.Second
)

// Config holds relay client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// submitResponse is the relay's reply to a settlement submission.
type submitResponse struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Error     string `json:"error,omitempty"`
}

// Client submits settlement requests to the relay. Submissions run behind
// a circuit breaker so a dead relay fails fast instead of eating the
// retry budget of every route.
type Client struct {
	client  httpclient.Client
	breaker *circuitbreaker.CircuitBreaker[string]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates a relay client.
func NewClient(cfg Config, log logger.LoggerInterface) (*Client, error) {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName("settlement-relay"),
		httpclient.WithBaseURL(cfg.BaseURL),
		httpclient.WithRequestTimeout(timeout),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		client:  client,
		breaker: circuitbreaker.New[string](circuitbreaker.DefaultConfig("settlement-relay")),
		logger:  log,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Submit posts a settlement request and returns the relay's settlement
// reference.
func (c *Client) Submit(ctx context.Context, req *domain.SettlementRequest) (string, error) {
	ctx, span := c.tracer.Start(ctx, "relay.submit",
		trace.WithAttributes(
			attribute.String("route", req.RouteID),
			attribute.String("attempt", req.AttemptID),
		),
	)
	defer span.End()

	return c.breaker.Execute(func() (string, error) {
		return c.submit(ctx, req)
	})
}

func (c *Client) submit(ctx context.Context, req *domain.SettlementRequest) (string, error) {
	var result submitResponse
	resp, err := c.client.NewRequest().
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&result).
		Post(ctx, submitPath)
	if err != nil {
		return "", apperror.New(apperror.CodeSettlementFailed,
			apperror.WithCause(err),
			apperror.WithContext("relay submit for route "+req.RouteID))
	}

	if resp.IsError() {
		return "", apperror.New(apperror.CodeSettlementFailed,
			apperror.WithContext("relay returned "+resp.String()))
	}

	switch result.Status {
	case "settled", "accepted":
		c.logger.Debug(ctx, "settlement accepted",
			"route", req.RouteID, "ref", result.Reference)
		return result.Reference, nil
	case "rejected":
		return "", apperror.New(apperror.CodeSettlementFailed,
			apperror.WithContext("relay rejected settlement: "+result.Error))
	default:
		return "", apperror.New(apperror.CodeSettlementFailed,
			apperror.WithContext("unexpected relay status "+result.Status))
	}
}
