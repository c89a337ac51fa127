package bandit

import (
	"time"

	"myCampaignEngine/domain"
)

// OutcomeRecorder closes decisions and feeds labelled outcomes into the
// belief store.
type OutcomeRecorder struct {
	log     *DecisionLog
	beliefs *BeliefStore
	now     func() time.Time
}

func NewOutcomeRecorder(log *DecisionLog, beliefs *BeliefStore) *OutcomeRecorder {
	return &OutcomeRecorder{
		log:     log,
		beliefs: beliefs,
		now:     time.Now,
	}
}

// RecordOutcome applies outcome to the decision exactly once. Converted bumps
// α, ignored bumps β, suppressed only closes the decision. The returned bool
// reports whether beliefs changed.
func (r *OutcomeRecorder) RecordOutcome(decisionID string, outcome domain.Outcome) (domain.Decision, domain.BeliefParameters, bool, error) {
	if !outcome.Terminal() {
		return domain.Decision{}, domain.BeliefParameters{}, false, ErrInvalidOutcome
	}

	d, err := r.log.CompareAndSetOutcome(decisionID, outcome, r.now())
	if err != nil {
		return d, domain.BeliefParameters{}, false, err
	}

	switch outcome {
	case domain.OutcomeConverted:
		return d, r.beliefs.RecordSuccess(d.UserID, d.Key()), true, nil
	case domain.OutcomeIgnored:
		return d, r.beliefs.RecordFailure(d.UserID, d.Key()), true, nil
	default:
		return d, domain.BeliefParameters{}, false, nil
	}
}
