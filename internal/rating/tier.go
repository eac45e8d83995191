package rating

import (
	"fmt"
	"sort"

	"github.com/dixis/shipping/internal/domain"
)

// WeightTierResolver maps grams to the tier containing them.
type WeightTierResolver struct {
	tiers []domain.WeightTier
}

// NewWeightTierResolver checks that tiers partition [0, top) without gaps or
// overlaps. An empty set is accepted; Resolve then always fails.
func NewWeightTierResolver(tiers []domain.WeightTier) (*WeightTierResolver, error) {
	sorted := make([]domain.WeightTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinGrams < sorted[j].MinGrams })

	for i, t := range sorted {
		if t.MaxGrams <= t.MinGrams {
			return nil, fmt.Errorf("tier %s: max %d must exceed min %d", t.Code, t.MaxGrams, t.MinGrams)
		}
		if i == 0 {
			if t.MinGrams != 0 {
				return nil, fmt.Errorf("tier %s: lowest tier must start at 0, got %d", t.Code, t.MinGrams)
			}
			continue
		}
		prev := sorted[i-1]
		if prev.MaxGrams < t.MinGrams {
			return nil, fmt.Errorf("gap between tier %s and %s: [%d, %d)", prev.Code, t.Code, prev.MaxGrams, t.MinGrams)
		}
		if prev.MaxGrams > t.MinGrams {
			return nil, fmt.Errorf("tier %s overlaps tier %s", prev.Code, t.Code)
		}
	}
	return &WeightTierResolver{tiers: sorted}, nil
}

// Resolve returns the tier for grams. Weights at or above the top tier's max
// are clamped to the top tier.
func (r *WeightTierResolver) Resolve(grams int64) (domain.WeightTier, error) {
	if len(r.tiers) == 0 {
		return domain.WeightTier{}, domain.ErrWeightTierNotFound
	}
	if grams < 0 {
		return domain.WeightTier{}, domain.NewError(domain.KindWeightTierNotFound, "negative weight %d g", grams)
	}

	i := sort.Search(len(r.tiers), func(i int) bool { return r.tiers[i].MaxGrams > grams })
	if i == len(r.tiers) {
		return r.tiers[len(r.tiers)-1], nil
	}
	return r.tiers[i], nil
}

// Tiers returns the tiers in ascending order.
func (r *WeightTierResolver) Tiers() []domain.WeightTier {
	out := make([]domain.WeightTier, len(r.tiers))
	copy(out, r.tiers)
	return out
}
