package bandit

import (
	"time"

	"github.com/google/uuid"

	"myCampaignEngine/domain"
)

const meanEpsilon = 1e-12

// Selector picks one action per request with Thompson Sampling.
type Selector struct {
	beliefs *BeliefStore
	sampler *sampler
	now     func() time.Time
	newID   func() string
}

func NewSelector(beliefs *BeliefStore, seed uint64) *Selector {
	return &Selector{
		beliefs: beliefs,
		sampler: newSampler(seed),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

type selection struct {
	decision domain.Decision
	belief   domain.BeliefParameters
	samples  []float64
}

// Select draws from each eligible action's posterior and builds a pending
// decision for the winner. ok is false when actions is empty.
func (s *Selector) Select(userID string, actions []domain.Action) (selection, bool) {
	if len(actions) == 0 {
		return selection{}, false
	}

	beliefs := make([]domain.BeliefParameters, len(actions))
	for i, a := range actions {
		beliefs[i] = s.beliefs.GetOrInit(userID, a.Key())
	}

	winner, samples := s.sampler.thompson(beliefs)
	if winner < 0 {
		return selection{}, false
	}

	chosen := beliefs[winner]
	d := domain.Decision{
		ID:            s.newID(),
		UserID:        userID,
		OfferID:       chosen.OfferID,
		Channel:       chosen.Channel,
		Partner:       chosen.Partner,
		SampledScore:  samples[winner],
		Confidence:    chosen.Mean(),
		IsExploration: s.isExploration(beliefs, winner),
		Outcome:       domain.OutcomePending,
		CreatedAt:     s.now(),
	}

	return selection{decision: d, belief: chosen, samples: samples}, true
}

// isExploration classifies a pick. It is exploitation only when the winner
// has been observed at least once and its posterior mean is strictly the
// highest among the candidates; cold-start picks and mean ties explore.
func (s *Selector) isExploration(beliefs []domain.BeliefParameters, winner int) bool {
	w := beliefs[winner]
	priorA, priorB := s.beliefs.Prior()
	if w.Alpha+w.Beta <= priorA+priorB {
		return true
	}
	wm := w.Mean()
	for i, b := range beliefs {
		if i == winner {
			continue
		}
		if b.Mean()+meanEpsilon >= wm {
			return true
		}
	}
	return false
}
