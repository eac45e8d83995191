package rating

import (
	"fmt"
	"strings"

	"github.com/dixis/shipping/internal/domain"
)

// ZoneResolver maps postal codes to zones by longest matching prefix.
type ZoneResolver struct {
	zones    map[int64]domain.ShippingZone
	prefixes map[string]int64
	maxLen   int
}

// NewZoneResolver indexes the prefixes of active zones. A prefix mapped to two
// different zones, an empty prefix or a mapping to an unknown zone is rejected.
func NewZoneResolver(zones []domain.ShippingZone, mappings []domain.PostalCodeZone) (*ZoneResolver, error) {
	r := &ZoneResolver{
		zones:    make(map[int64]domain.ShippingZone, len(zones)),
		prefixes: make(map[string]int64, len(mappings)),
	}
	for _, z := range zones {
		if _, dup := r.zones[z.ID]; dup {
			return nil, fmt.Errorf("zone %d defined twice", z.ID)
		}
		r.zones[z.ID] = z
	}

	for _, m := range mappings {
		prefix := strings.TrimSpace(m.Prefix)
		if prefix == "" {
			return nil, fmt.Errorf("empty postal code prefix for zone %d", m.ZoneID)
		}
		zone, ok := r.zones[m.ZoneID]
		if !ok {
			return nil, fmt.Errorf("prefix %q references unknown zone %d", prefix, m.ZoneID)
		}
		if existing, dup := r.prefixes[prefix]; dup && existing != m.ZoneID {
			return nil, fmt.Errorf("prefix %q mapped to zones %d and %d", prefix, existing, m.ZoneID)
		}
		if !zone.Active {
			continue
		}
		r.prefixes[prefix] = m.ZoneID
		if len(prefix) > r.maxLen {
			r.maxLen = len(prefix)
		}
	}
	return r, nil
}

// Resolve returns the zone of the longest configured prefix of postalCode.
func (r *ZoneResolver) Resolve(postalCode string) (domain.ShippingZone, error) {
	pc := strings.ReplaceAll(strings.TrimSpace(postalCode), " ", "")

	n := len(pc)
	if n > r.maxLen {
		n = r.maxLen
	}
	for l := n; l > 0; l-- {
		if id, ok := r.prefixes[pc[:l]]; ok {
			return r.zones[id], nil
		}
	}
	return domain.ShippingZone{}, domain.NewError(domain.KindZoneNotFound, "no zone for postal code %q", postalCode)
}

// Zone returns an active zone by id.
func (r *ZoneResolver) Zone(id int64) (domain.ShippingZone, bool) {
	z, ok := r.zones[id]
	if !ok || !z.Active {
		return domain.ShippingZone{}, false
	}
	return z, true
}
