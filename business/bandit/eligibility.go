package bandit

import (
	"context"
	"sync"
	"time"

	"myCampaignEngine/domain"
)

// Guardrail is a hard rule that can exclude an action for a user regardless
// of what the bandit believes.
type Guardrail interface {
	Name() string
	Allow(ctx context.Context, user domain.User, action domain.Action, now time.Time) (bool, error)
}

// OptOutGuardrail honours global opt-outs and per-channel DND registries.
type OptOutGuardrail struct{}

func (OptOutGuardrail) Name() string { return "opt_out" }

func (OptOutGuardrail) Allow(_ context.Context, user domain.User, action domain.Action, _ time.Time) (bool, error) {
	if user.OptedOut {
		return false, nil
	}
	return !user.BlocksChannel(action.Channel), nil
}

// NoIncentiveGuardrail blocks incentive offers while the user sits in a
// no-incentive window.
type NoIncentiveGuardrail struct{}

func (NoIncentiveGuardrail) Name() string { return "no_incentive_window" }

func (NoIncentiveGuardrail) Allow(_ context.Context, user domain.User, action domain.Action, now time.Time) (bool, error) {
	if !action.Incentive {
		return true, nil
	}
	return !user.InNoIncentiveWindow(now), nil
}

// CreditScoreGuardrail enforces an action's minimum credit score.
type CreditScoreGuardrail struct{}

func (CreditScoreGuardrail) Name() string { return "credit_score" }

func (CreditScoreGuardrail) Allow(_ context.Context, user domain.User, action domain.Action, _ time.Time) (bool, error) {
	return action.MinCreditScore <= 0 || user.CreditScore >= action.MinCreditScore, nil
}

// FrequencyCounter counts contacts per user, channel and day.
type FrequencyCounter interface {
	Count(ctx context.Context, userID, channel string, day time.Time) (int64, error)
	Incr(ctx context.Context, userID, channel string, day time.Time) (int64, error)
}

// FrequencyCapGuardrail excludes channels whose daily contact budget for the
// user is spent.
type FrequencyCapGuardrail struct {
	Counter FrequencyCounter
	Cap     int
}

func (FrequencyCapGuardrail) Name() string { return "frequency_cap" }

func (g FrequencyCapGuardrail) Allow(ctx context.Context, user domain.User, action domain.Action, now time.Time) (bool, error) {
	if g.Cap <= 0 || g.Counter == nil {
		return true, nil
	}
	n, err := g.Counter.Count(ctx, user.ID, action.Channel, now)
	if err != nil {
		return false, err
	}
	return n < int64(g.Cap), nil
}

// DefaultGuardrails returns the attribute-based rules plus a frequency cap
// when counter is set.
func DefaultGuardrails(counter FrequencyCounter, capPerDay int) []Guardrail {
	g := []Guardrail{OptOutGuardrail{}, NoIncentiveGuardrail{}, CreditScoreGuardrail{}}
	if counter != nil && capPerDay > 0 {
		g = append(g, FrequencyCapGuardrail{Counter: counter, Cap: capPerDay})
	}
	return g
}

type freqKey struct {
	userID, channel, day string
}

// MemoryFrequencyCounter is an in-process FrequencyCounter for tests and
// single-node deployments without redis.
type MemoryFrequencyCounter struct {
	mu     sync.Mutex
	counts map[freqKey]int64
}

func NewMemoryFrequencyCounter() *MemoryFrequencyCounter {
	return &MemoryFrequencyCounter{counts: make(map[freqKey]int64)}
}

func (c *MemoryFrequencyCounter) key(userID, channel string, day time.Time) freqKey {
	return freqKey{userID: userID, channel: channel, day: day.UTC().Format("20060102")}
}

func (c *MemoryFrequencyCounter) Count(_ context.Context, userID, channel string, day time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[c.key(userID, channel, day)], nil
}

func (c *MemoryFrequencyCounter) Incr(_ context.Context, userID, channel string, day time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.key(userID, channel, day)
	c.counts[k]++
	return c.counts[k], nil
}
