package bandit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myCampaignEngine/domain"
)

func belief(offer string, a, b float64) domain.BeliefParameters {
	return domain.BeliefParameters{UserID: "U-1", OfferID: offer, Channel: "sms", Partner: "p", Alpha: a, Beta: b}
}

func TestSelector_IsExploration(t *testing.T) {
	sel := NewSelector(NewBeliefStore(DefaultConfig()), 1)

	cases := []struct {
		name    string
		beliefs []domain.BeliefParameters
		winner  int
		want    bool
	}{
		{"cold start", []domain.BeliefParameters{belief("a", 1, 1), belief("b", 1, 1)}, 0, true},
		{"single unobserved action", []domain.BeliefParameters{belief("a", 1, 1)}, 0, true},
		{"single observed action", []domain.BeliefParameters{belief("a", 2, 1)}, 0, false},
		{"best mean wins", []domain.BeliefParameters{belief("a", 10, 2), belief("b", 1, 1)}, 0, false},
		{"weaker mean wins", []domain.BeliefParameters{belief("a", 10, 2), belief("b", 1, 1)}, 1, true},
		{"tied means", []domain.BeliefParameters{belief("a", 2, 2), belief("b", 3, 3)}, 1, true},
		{"observed but below prior mean", []domain.BeliefParameters{belief("a", 1, 4), belief("b", 1, 1)}, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sel.isExploration(tc.beliefs, tc.winner))
		})
	}
}

func TestSelector_Select(t *testing.T) {
	store := NewBeliefStore(DefaultConfig())
	sel := NewSelector(store, 5)
	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	sel.now = func() time.Time { return fixed }
	sel.newID = func() string { return "dec-1" }

	_, ok := sel.Select("U-1", nil)
	assert.False(t, ok)

	actions := []domain.Action{testAction("o1", "sms", "p1"), testAction("o2", "email", "p2")}
	s, ok := sel.Select("U-1", actions)
	require.True(t, ok)

	d := s.decision
	assert.Equal(t, "dec-1", d.ID)
	assert.Equal(t, "U-1", d.UserID)
	assert.Equal(t, domain.OutcomePending, d.Outcome)
	assert.Equal(t, fixed, d.CreatedAt)
	assert.True(t, d.IsExploration)
	assert.Equal(t, 0.5, d.Confidence)
	assert.Len(t, s.samples, 2)
	assert.Contains(t, s.samples, d.SampledScore)
	assert.Equal(t, 2, store.Len(), "every candidate gets a belief")
}

func TestSelector_ExploitsDominantAction(t *testing.T) {
	store := NewBeliefStore(DefaultConfig())
	strong := testAction("strong", "sms", "p1")
	weak := testAction("weak", "email", "p1")
	store.Restore([]domain.BeliefParameters{
		{UserID: "U-1", OfferID: "strong", Channel: "sms", Partner: "p1", Alpha: 200, Beta: 5},
		{UserID: "U-1", OfferID: "weak", Channel: "email", Partner: "p1", Alpha: 2, Beta: 60},
	})
	sel := NewSelector(store, 8)

	for i := 0; i < 50; i++ {
		s, ok := sel.Select("U-1", []domain.Action{weak, strong})
		require.True(t, ok)
		assert.Equal(t, strong.Key(), s.decision.Key())
		assert.False(t, s.decision.IsExploration)
	}
}
