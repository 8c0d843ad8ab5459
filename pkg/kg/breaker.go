package kg

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/semtab/linker/pkg/config"
)

// BreakerClient wraps a Client with circuit breaking logic so that a
// misbehaving endpoint fails fast instead of stalling a whole dataset run.
type BreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

var _ Client = (*BreakerClient)(nil)

// NewBreakerClient creates a circuit breaking wrapper around client.
func NewBreakerClient(client Client, cfg config.CircuitBreakerConfig, logger *slog.Logger, name string) *BreakerClient {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen && logger != nil {
				logger.Warn("circuit breaker tripped",
					slog.String("name", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			}
		},
	}

	return &BreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
		logger: logger,
	}
}

// Labels implements Client.
func (c *BreakerClient) Labels(ctx context.Context, uri string) ([]string, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Labels(ctx, uri)
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

// Types implements Client.
func (c *BreakerClient) Types(ctx context.Context, uri string) ([]string, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Types(ctx, uri)
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

// Descriptions implements Client.
func (c *BreakerClient) Descriptions(ctx context.Context, uri string) ([]string, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Descriptions(ctx, uri)
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

// LongAbstracts implements Client.
func (c *BreakerClient) LongAbstracts(ctx context.Context, uris []string) (map[string]string, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.LongAbstracts(ctx, uris)
	})
	if err != nil {
		return nil, err
	}
	return res.(map[string]string), nil
}

// ShortAbstracts implements Client.
func (c *BreakerClient) ShortAbstracts(ctx context.Context, uris []string) (map[string]string, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.ShortAbstracts(ctx, uris)
	})
	if err != nil {
		return nil, err
	}
	return res.(map[string]string), nil
}

// Relations implements Client.
func (c *BreakerClient) Relations(ctx context.Context, pairs []SubjectValuePair) (map[SubjectValuePair][]string, error) {
	res, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Relations(ctx, pairs)
	})
	if err != nil {
		return nil, err
	}
	return res.(map[SubjectValuePair][]string), nil
}
