// Package httpclient builds the outbound HTTP clients used by carrier adapters.
package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// LoggingRoundTripper captures request details for debugging.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
	Carrier string
	Logger  *otelzap.Logger
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := lrt.Logger.Ctx(req.Context())

	log.Debug("Carrier request started",
		zap.String("carrier", lrt.Carrier),
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		log.Error("Carrier request failed",
			zap.String("carrier", lrt.Carrier),
			zap.String("method", req.Method),
			zap.String("url", req.URL.Redacted()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	log.Debug("Carrier request completed",
		zap.String("carrier", lrt.Carrier),
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// RateLimitedRoundTripper waits for a token before each request.
type RateLimitedRoundTripper struct {
	Proxied http.RoundTripper
	Limiter *rate.Limiter
}

// RoundTrip blocks until the limiter allows the request or the request
// context ends.
func (rrt *RateLimitedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := rrt.Limiter.Wait(req.Context()); err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", carrier.ErrRateLimitExceeded, err)
	}
	return rrt.Proxied.RoundTrip(req)
}

// Options configures NewClient.
type Options struct {
	Carrier           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int

	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// NewClient returns an http.Client with logging and, when configured,
// rate limiting.
func NewClient(opts Options, logger *otelzap.Logger) *http.Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	var rt http.RoundTripper = &LoggingRoundTripper{
		Proxied: base,
		Carrier: opts.Carrier,
		Logger:  logger,
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		rt = &RateLimitedRoundTripper{
			Proxied: rt,
			Limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst),
		}
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Transport: rt,
		Timeout:   timeout,
	}
}
