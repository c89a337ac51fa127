package bandit

import "myCampaignEngine/domain"

// BeliefDelta turns an outcome into the α/β increments it contributes.
// ok is false for outcomes that carry no learning signal.
func (cfg Config) BeliefDelta(o domain.Outcome) (dAlpha, dBeta float64, ok bool) {
	switch o {
	case domain.OutcomeConverted:
		return cfg.SuccessWeight, 0, true
	case domain.OutcomeIgnored:
		return 0, cfg.FailureWeight, true
	default:
		return 0, 0, false
	}
}
