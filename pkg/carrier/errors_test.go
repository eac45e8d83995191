package carrier_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := carrier.NewError("acs", carrier.CodeInvalidInput, "Invalid postal code")
	assert.Equal(t, "acs error (INVALID_INPUT): Invalid postal code", err.Error())
}

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("network timeout")
	err := carrier.NewError("acs", carrier.CodeAPIError, "API call failed").WithCause(cause)
	assert.Contains(t, err.Error(), "API call failed")
	assert.Contains(t, err.Error(), "network timeout")
	assert.True(t, errors.Is(err, cause))
}

func TestError_IsMatchesCode(t *testing.T) {
	err1 := carrier.NewError("acs", carrier.CodeTimeout, "slow")
	err2 := carrier.NewError("elta", carrier.CodeTimeout, "different message")
	err3 := carrier.NewError("acs", carrier.CodeAuthFailed, "bad key")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestError_Builders(t *testing.T) {
	err := carrier.NewError("speedex", carrier.CodeRateLimited, "Too many requests").
		WithStatusCode(429).
		WithRetryable(true)
	assert.Equal(t, 429, err.StatusCode)
	assert.True(t, err.Retryable)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"retryable carrier error", carrier.NewError("acs", carrier.CodeUnavailable, "down").WithRetryable(true), true},
		{"non retryable carrier error", carrier.NewError("acs", carrier.CodeInvalidInput, "bad"), false},
		{"service unavailable", carrier.ErrServiceUnavailable, true},
		{"rate limit", fmt.Errorf("wrapped: %w", carrier.ErrRateLimitExceeded), true},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, carrier.IsRetryable(tt.err))
		})
	}
}

func TestAsError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), carrier.CodeTimeout},
		{"rate limit", carrier.ErrRateLimitExceeded, carrier.CodeRateLimited},
		{"auth", carrier.ErrAuthenticationFailed, carrier.CodeAuthFailed},
		{"not found", carrier.ErrTrackingNotFound, carrier.CodeNotFound},
		{"other", errors.New("boom"), carrier.CodeAPIError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := carrier.AsError("elta", tt.err)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, "elta", got.Carrier)
		})
	}

	original := carrier.NewError("", carrier.CodeInvalidInput, "bad weight")
	assert.Same(t, original, carrier.AsError("acs", original))
	assert.Equal(t, "acs", original.Carrier)
}

func TestHTTPError(t *testing.T) {
	assert.Equal(t, carrier.CodeAuthFailed, carrier.HTTPError("acs", 401, "").Code)
	assert.ErrorIs(t, carrier.HTTPError("acs", 404, ""), carrier.ErrTrackingNotFound)
	assert.True(t, carrier.HTTPError("acs", 429, "").Retryable)
	assert.True(t, carrier.HTTPError("acs", 503, "").Retryable)
	assert.False(t, carrier.HTTPError("acs", 400, "").Retryable)
}
