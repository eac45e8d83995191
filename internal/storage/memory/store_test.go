package memory_test

import (
	"context"
	"testing"

	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tenant domain.TenantID = 1

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New(memory.GreekReferenceData())
	for _, o := range memory.SampleOrders(tenant) {
		s.PutOrder(o)
	}
	return s
}

func TestGetOrder_ReturnsCopy(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	order, err := s.GetOrder(ctx, tenant, 1001)
	require.NoError(t, err)
	order.Items[0].Name = "changed"
	order.Status = domain.OrderCancelled

	again, err := s.GetOrder(ctx, tenant, 1001)
	require.NoError(t, err)
	assert.Equal(t, "Θυμαρίσιο μέλι 1kg", again.Items[0].Name)
	assert.Equal(t, domain.OrderConfirmed, again.Status)
}

func TestGetOrder_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.GetOrder(context.Background(), tenant, 9999)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = s.GetOrder(context.Background(), 2, 1001)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound, "orders are tenant scoped")
}

func TestRecordShipment(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	sh := &domain.Shipment{TenantID: tenant, OrderID: 1001, Carrier: "acs", TrackingNumber: "ACS1"}
	require.NoError(t, s.RecordShipment(ctx, sh, domain.OrderShipped))
	assert.Equal(t, int64(1), sh.ID)

	order, err := s.GetOrder(ctx, tenant, 1001)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, order.Status)
	require.NotNil(t, order.Shipment)
	assert.Equal(t, "ACS1", order.Shipment.TrackingNumber)

	err = s.RecordShipment(ctx, &domain.Shipment{TenantID: tenant, OrderID: 1001, Carrier: "elta", TrackingNumber: "EL1"}, domain.OrderShipped)
	assert.ErrorIs(t, err, domain.ErrDuplicateShipment)

	err = s.RecordShipment(ctx, &domain.Shipment{TenantID: tenant, OrderID: 1002, Carrier: "acs", TrackingNumber: "ACS1"}, domain.OrderShipped)
	assert.ErrorIs(t, err, domain.ErrDuplicateShipment, "tracking numbers are unique per carrier")

	err = s.RecordShipment(ctx, &domain.Shipment{TenantID: tenant, OrderID: 42, Carrier: "acs", TrackingNumber: "ACS2"}, domain.OrderShipped)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateStatus(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	err := s.UpdateStatus(ctx, tenant, 1001, domain.OrderDelivered, "DELIVERED", "Αθήνα")
	assert.ErrorIs(t, err, domain.ErrNoShipment)

	require.NoError(t, s.RecordShipment(ctx, &domain.Shipment{TenantID: tenant, OrderID: 1001, Carrier: "acs", TrackingNumber: "ACS1"}, domain.OrderShipped))
	require.NoError(t, s.UpdateStatus(ctx, tenant, 1001, domain.OrderDelivered, "DELIVERED", "Αθήνα"))

	order, err := s.GetOrder(ctx, tenant, 1001)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, order.Status)
	assert.Equal(t, domain.OrderDelivered, order.Shipment.Status)
	assert.Equal(t, "DELIVERED", order.Shipment.CarrierStatus)
	assert.Equal(t, "Αθήνα", order.Shipment.Location)
}

func TestIntegrationSettingsAndLogs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	s.PutIntegrationSetting(domain.IntegrationSetting{TenantID: tenant, Service: "acs", Active: true, APIKey: "k"})
	settings, err := s.IntegrationSettings(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, "k", settings["acs"].APIKey)

	other, err := s.IntegrationSettings(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, s.Append(ctx, domain.IntegrationLog{ID: "a", TenantID: tenant, Action: "create_shipment"}))
	require.NoError(t, s.Append(ctx, domain.IntegrationLog{ID: "b", TenantID: 2, Action: "create_shipment"}))
	logs := s.Logs(tenant)
	require.Len(t, logs, 1)
	assert.Equal(t, "a", logs[0].ID)
	assert.False(t, logs[0].CreatedAt.IsZero())
}

func TestGreekReferenceData(t *testing.T) {
	ref := memory.GreekReferenceData()

	assert.Len(t, ref.Zones, 7)
	assert.Len(t, ref.WeightTiers, 4)
	assert.Len(t, ref.DeliveryMethods, 3)
	assert.Len(t, ref.Rates, 7*3*4)

	for _, r := range ref.Rates {
		if r.ZoneID == memory.ZoneAthens && r.MethodID == memory.MethodHome && r.WeightTierID == 1 {
			assert.Equal(t, "3", r.Price.String())
			require.NotNil(t, r.MultiProducerDiscount)
			assert.Equal(t, 2, r.MinProducersForDiscount)
		}
	}
}
