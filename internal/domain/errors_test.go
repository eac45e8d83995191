package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dixis/shipping/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := domain.NewError(domain.KindZoneNotFound, "no zone for postal code %s", "99999")
	assert.Equal(t, "zone_not_found: no zone for postal code 99999", err.Error())
}

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := domain.NewError(domain.KindProviderUnavailable, "acs failed").WithCause(cause)
	assert.Contains(t, err.Error(), "acs failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))
}

func TestError_IsMatchesKind(t *testing.T) {
	err := domain.NewError(domain.KindDuplicateShipment, "order 42 already shipped")
	assert.True(t, errors.Is(err, domain.ErrDuplicateShipment))
	assert.False(t, errors.Is(err, domain.ErrOrderNotFound))
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("creating shipment: %w", domain.NewError(domain.KindInvalidAddress, "postal code"))
	assert.True(t, errors.Is(err, domain.ErrInvalidAddress))
	assert.Equal(t, domain.KindInvalidAddress, domain.KindOf(err))
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, domain.ErrorKind(""), domain.KindOf(errors.New("boom")))
}

func TestParseTenantID(t *testing.T) {
	id, err := domain.ParseTenantID("7")
	assert.NoError(t, err)
	assert.Equal(t, domain.TenantID(7), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := domain.ParseTenantID(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, bad)
	}
}
