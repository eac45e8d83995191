package orchestrator

import (
	"errors"

	"github.com/dixis/shipping/internal/domain"
	"github.com/dixis/shipping/pkg/carrier"
	"github.com/shopspring/decimal"
)

// Sort modes for Criteria.SortBy. The empty value selects by composite score.
const (
	SortByScore        = ""
	SortByCost         = "cost"
	SortByDeliveryTime = "delivery_time"
)

const (
	costWeight        = 0.4
	speedWeight       = 0.3
	reliabilityWeight = 0.3
)

// Criteria controls SelectBest.
type Criteria struct {
	SortBy string `json:"sort_by,omitempty"`
}

// Candidate is one successful rate with its score.
type Candidate struct {
	Provider     string          `json:"provider"`
	Cost         decimal.Decimal `json:"cost"`
	DeliveryDays int             `json:"delivery_time"`
	Reliability  float64         `json:"reliability"`
	Score        float64         `json:"score"`
}

// Selection is the chosen carrier plus every candidate considered, in
// registration order.
type Selection struct {
	Candidate
	Candidates []Candidate `json:"candidates"`
}

// Score is the composite ranking: 0.4 cost + 0.3 speed + 0.3 reliability, with
// cost scored as 10 - cost/10 and speed as 10 - days.
func Score(cost decimal.Decimal, days int, reliability float64) float64 {
	costScore := 10 - cost.InexactFloat64()/10
	speedScore := 10 - float64(days)
	return costWeight*costScore + speedWeight*speedScore + reliabilityWeight*reliability
}

// SelectBest picks the best successful result. Results must be in registration
// order; ties go to the earlier carrier.
func (o *Orchestrator) SelectBest(results []carrier.Result[*carrier.RateQuote], criteria Criteria) (*Selection, error) {
	better, err := comparator(criteria.SortBy)
	if err != nil {
		return nil, err
	}

	var (
		candidates []Candidate
		failures   []error
	)
	for _, r := range results {
		if !r.OK() {
			failures = append(failures, domain.NewError(domain.KindProviderUnavailable, "%s", r.Provider).WithCause(r.Err))
			continue
		}
		if r.Value == nil {
			failures = append(failures, domain.NewError(domain.KindProviderUnavailable, "%s returned no rate", r.Provider))
			continue
		}
		rel := o.Reliability(r.Provider)
		candidates = append(candidates, Candidate{
			Provider:     r.Provider,
			Cost:         r.Value.Cost,
			DeliveryDays: r.Value.DeliveryDays,
			Reliability:  rel,
			Score:        Score(r.Value.Cost, r.Value.DeliveryDays, rel),
		})
	}
	if len(candidates) == 0 {
		e := domain.NewError(domain.KindNoCarrierAvailable, "none of %d carriers returned a rate", len(results))
		if len(failures) > 0 {
			e = e.WithCause(errors.Join(failures...))
		}
		return nil, e
	}

	best := 0
	for i := 1; i < len(candidates); i++ {
		if better(candidates[i], candidates[best]) {
			best = i
		}
	}
	return &Selection{Candidate: candidates[best], Candidates: candidates}, nil
}

// comparator returns a strict "a beats b" so equal candidates keep the first.
func comparator(sortBy string) (func(a, b Candidate) bool, error) {
	switch sortBy {
	case SortByScore:
		return func(a, b Candidate) bool { return a.Score > b.Score }, nil
	case SortByCost:
		return func(a, b Candidate) bool { return a.Cost.LessThan(b.Cost) }, nil
	case SortByDeliveryTime:
		return func(a, b Candidate) bool { return a.DeliveryDays < b.DeliveryDays }, nil
	default:
		return nil, domain.NewError(domain.KindInvalidInput, "unknown sort_by %q", sortBy)
	}
}
