package carrier_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke_Success(t *testing.T) {
	res := carrier.Invoke(context.Background(), "acs", time.Second, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	require.True(t, res.OK())
	assert.Equal(t, 42, res.Value)
	assert.Equal(t, "acs", res.Provider)
}

func TestInvoke_Error(t *testing.T) {
	res := carrier.Invoke(context.Background(), "acs", time.Second, func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	require.False(t, res.OK())
	assert.Equal(t, carrier.CodeAPIError, res.Err.Code)
	assert.Equal(t, "acs", res.Err.Carrier)
}

func TestInvoke_Timeout(t *testing.T) {
	res := carrier.Invoke(context.Background(), "elta", 10*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	require.False(t, res.OK())
	assert.Equal(t, carrier.CodeTimeout, res.Err.Code)
	assert.True(t, res.Err.Retryable)
}

func TestInvoke_RecoversPanic(t *testing.T) {
	res := carrier.Invoke(context.Background(), "speedex", 0, func(ctx context.Context) (*carrier.RateQuote, error) {
		panic("nil map")
	})

	require.False(t, res.OK())
	assert.Equal(t, carrier.CodePanic, res.Err.Code)
	assert.Contains(t, res.Err.Message, "nil map")
}

func TestInvoke_NilResponse(t *testing.T) {
	res := carrier.Invoke(context.Background(), "elta", time.Second, func(ctx context.Context) (*carrier.RateQuote, error) {
		return nil, nil
	})

	require.False(t, res.OK())
	assert.Equal(t, carrier.CodeAPIError, res.Err.Code)
	assert.Equal(t, "elta", res.Err.Carrier)
	assert.Nil(t, res.Value)
}

func TestInvoke_ZeroValueIsNotNil(t *testing.T) {
	res := carrier.Invoke(context.Background(), "acs", time.Second, func(ctx context.Context) (bool, error) {
		return false, nil
	})

	assert.True(t, res.OK())
}
