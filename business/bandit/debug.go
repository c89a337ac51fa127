package bandit

import (
	"context"
	"fmt"

	"myCampaignEngine/domain"
	"myCampaignEngine/pkg/logger"
)

// DebugDecide shows what a decide call would see for userID: every catalog
// action with its belief, one posterior draw and the guardrail that excluded
// it, if any. It creates no beliefs and no decision.
func (s *BanditService) DebugDecide(ctx context.Context, userID string) (domain.DebugDecision, error) {
	if err := ctx.Err(); err != nil {
		return domain.DebugDecision{}, fmt.Errorf("context error: %w", err)
	}
	if userID == "" {
		return domain.DebugDecision{}, ErrUserRequired
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return domain.DebugDecision{}, err
	}

	out := domain.DebugDecision{
		UserID:  userID,
		Holdout: s.catalog.InHoldout(userID),
	}

	eligible := map[domain.ActionKey]bool{}
	excluded := map[domain.ActionKey]string{}
	if !out.Holdout {
		elig, err := s.catalog.EligibleActions(ctx, user)
		if err != nil {
			return domain.DebugDecision{}, err
		}
		for _, a := range elig.Actions {
			eligible[a.Key()] = true
		}
		excluded = elig.Excluded
	}

	logger.Debug("bandit_debug_decide",
		"trace_id", TraceIDFromContext(ctx),
		"user_id", userID,
		"holdout", out.Holdout,
		"eligible", len(eligible),
	)

	for _, a := range s.catalog.Actions() {
		k := a.Key()
		b, _ := s.beliefs.Peek(userID, k)
		c := domain.DebugCandidate{
			Action:   k,
			Alpha:    b.Alpha,
			Beta:     b.Beta,
			Mean:     b.Mean(),
			Sample:   s.selector.sampler.beta(b.Alpha, b.Beta),
			Eligible: eligible[k],
		}
		switch {
		case out.Holdout:
			c.ExcludedBy = ReasonHoldout
		case !a.Active:
			c.ExcludedBy = "inactive"
		default:
			c.ExcludedBy = excluded[k]
		}
		out.Candidates = append(out.Candidates, c)
	}

	return out, nil
}
