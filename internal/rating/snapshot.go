package rating

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dixis/shipping/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot is an immutable, validated view of the reference data. One snapshot
// serves a whole request.
type Snapshot struct {
	Version  string
	LoadedAt time.Time

	Zones     *ZoneResolver
	Tiers     *WeightTierResolver
	Rates     *RateTable
	Overrides *ProducerOverrides

	methods      map[string]domain.DeliveryMethod
	freeShipping map[int64][]domain.ProducerFreeShipping
	extraWeight  []domain.ExtraWeightCharge
	data         *domain.ReferenceData
}

// NewSnapshot validates data and builds the resolvers. Every configuration
// problem is reported, joined into one ErrInvalidConfiguration.
func NewSnapshot(data *domain.ReferenceData) (*Snapshot, error) {
	if data == nil {
		return nil, domain.NewError(domain.KindInvalidConfiguration, "no reference data")
	}

	var errs []error
	s := &Snapshot{
		LoadedAt:     time.Now(),
		methods:      make(map[string]domain.DeliveryMethod, len(data.DeliveryMethods)),
		freeShipping: make(map[int64][]domain.ProducerFreeShipping),
		extraWeight:  data.ExtraWeightCharges,
		data:         data,
	}

	var err error
	if s.Zones, err = NewZoneResolver(data.Zones, data.PostalCodeZones); err != nil {
		errs = append(errs, fmt.Errorf("zones: %w", err))
	}
	if s.Tiers, err = NewWeightTierResolver(data.WeightTiers); err != nil {
		errs = append(errs, fmt.Errorf("weight tiers: %w", err))
	}
	if s.Rates, err = NewRateTable(data.Rates); err != nil {
		errs = append(errs, fmt.Errorf("rates: %w", err))
	}
	if s.Overrides, err = NewProducerOverrides(data.Producers, data.ProducerShippingMethods, data.ProducerShippingRates); err != nil {
		errs = append(errs, fmt.Errorf("producer overrides: %w", err))
	}

	for _, m := range data.DeliveryMethods {
		code := strings.ToUpper(m.Code)
		if _, dup := s.methods[code]; dup {
			errs = append(errs, fmt.Errorf("delivery method %s defined twice", code))
			continue
		}
		s.methods[code] = m
	}
	for _, f := range data.FreeShipping {
		if f.Threshold.IsNegative() {
			errs = append(errs, fmt.Errorf("negative free shipping threshold for producer %d", f.ProducerID))
			continue
		}
		s.freeShipping[f.ProducerID] = append(s.freeShipping[f.ProducerID], f)
	}

	if len(errs) > 0 {
		return nil, domain.NewError(domain.KindInvalidConfiguration, "reference data rejected").WithCause(errors.Join(errs...))
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("hashing reference data: %w", err)
	}
	sum := sha256.Sum256(raw)
	s.Version = hex.EncodeToString(sum[:6])
	return s, nil
}

// Method returns a delivery method by code, case-insensitively.
func (s *Snapshot) Method(code string) (domain.DeliveryMethod, bool) {
	m, ok := s.methods[strings.ToUpper(strings.TrimSpace(code))]
	return m, ok
}

// Data returns the reference data the snapshot was built from.
func (s *Snapshot) Data() *domain.ReferenceData {
	return s.data
}

// FreeShippingThreshold picks the most specific rule of a producer:
// zone and method, then zone, then method, then general.
func (s *Snapshot) FreeShippingThreshold(producerID, zoneID, methodID int64) (decimal.Decimal, bool) {
	best, bestRank := decimal.Zero, -1
	for _, r := range s.freeShipping[producerID] {
		if r.ZoneID != nil && *r.ZoneID != zoneID {
			continue
		}
		if r.MethodID != nil && *r.MethodID != methodID {
			continue
		}
		rank := 0
		if r.ZoneID != nil {
			rank += 2
		}
		if r.MethodID != nil {
			rank++
		}
		if rank > bestRank {
			best, bestRank = r.Threshold, rank
		}
	}
	return best, bestRank >= 0
}

// ExtraWeightRate returns the per-kg rate for (zone, method), falling back to
// the zone-wide rate.
func (s *Snapshot) ExtraWeightRate(zoneID, methodID int64) (decimal.Decimal, bool) {
	var zoneWide *decimal.Decimal
	for i := range s.extraWeight {
		c := s.extraWeight[i]
		if c.ZoneID != zoneID {
			continue
		}
		if c.MethodID != nil && *c.MethodID == methodID {
			return c.RatePerKG, true
		}
		if c.MethodID == nil {
			zoneWide = &s.extraWeight[i].RatePerKG
		}
	}
	if zoneWide != nil {
		return *zoneWide, true
	}
	return decimal.Zero, false
}
