package carrier_test

import (
	"errors"
	"testing"

	"github.com/dixis/shipping/pkg/carrier"
	"github.com/dixis/shipping/pkg/carrier/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func TestRegistry_Register(t *testing.T) {
	registry := carrier.NewRegistry()
	registry.Register(mock.New("acs"))

	got, err := registry.Get("acs")
	require.NoError(t, err)
	assert.Equal(t, "acs", got.Name())
}

func TestRegistry_GetUnknown(t *testing.T) {
	_, err := carrier.NewRegistry().Get("dhl")
	assert.ErrorIs(t, err, carrier.ErrCarrierNotFound)
}

func TestRegistry_KeepsRegistrationOrder(t *testing.T) {
	registry := carrier.NewRegistry()
	for _, name := range []string{"elta", "acs", "speedex", "courier_center"} {
		registry.Register(mock.New(name))
	}
	registry.Register(mock.New("acs"))

	assert.Equal(t, []string{"elta", "acs", "speedex", "courier_center"}, registry.Names())
	assert.Equal(t, 4, registry.Count())

	all := registry.All()
	require.Len(t, all, 4)
	assert.Equal(t, "speedex", all[2].Name())
}

func TestBuildRegistry(t *testing.T) {
	logger := otelzap.New(zap.NewNop())
	entries := []carrier.Entry{
		{Key: "elta", Enabled: true, New: func() (carrier.Adapter, error) { return mock.New("elta"), nil }},
		{Key: "acs", Enabled: false, New: func() (carrier.Adapter, error) { return mock.New("acs"), nil }},
		{Key: "speedex", Enabled: true, New: func() (carrier.Adapter, error) { return nil, errors.New("missing api key") }},
		{Key: "courier_center", Enabled: true, New: func() (carrier.Adapter, error) { return mock.New("courier_center"), nil }},
	}

	registry := carrier.BuildRegistry(entries, logger)

	assert.Equal(t, []string{"elta", "courier_center"}, registry.Names())
}

func TestDescribe(t *testing.T) {
	d := carrier.Describe(mock.New("speedex"))

	assert.Equal(t, carrier.Descriptor{
		Key:               "speedex",
		DisplayName:       "SPEEDEX",
		SupportedServices: []string{"standard"},
		CoverageAreas:     []string{"GR"},
	}, d)
}
