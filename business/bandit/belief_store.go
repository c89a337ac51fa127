package bandit

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"myCampaignEngine/domain"
)

const beliefShardCount = 64

type beliefKey struct {
	userID string
	action domain.ActionKey
}

type beliefEntry struct {
	mu        sync.Mutex
	alpha     float64
	beta      float64
	updatedAt time.Time
}

type beliefShard struct {
	mu      sync.RWMutex
	entries map[beliefKey]*beliefEntry
}

// BeliefStore keeps Beta(α, β) parameters per (user, action).
//
// Entries are spread over shards by key hash. A shard lock only guards
// insertion; updates to an existing entry take that entry's own lock, so
// writers on different keys never wait on each other.
type BeliefStore struct {
	priorAlpha    float64
	priorBeta     float64
	successWeight float64
	failureWeight float64
	now           func() time.Time

	shards [beliefShardCount]beliefShard
}

func NewBeliefStore(cfg Config) *BeliefStore {
	s := &BeliefStore{
		priorAlpha:    cfg.PriorAlpha,
		priorBeta:     cfg.PriorBeta,
		successWeight: cfg.SuccessWeight,
		failureWeight: cfg.FailureWeight,
		now:           time.Now,
	}
	if s.priorAlpha < 1 {
		s.priorAlpha = defaultPriorAlpha
	}
	if s.priorBeta < 1 {
		s.priorBeta = defaultPriorBeta
	}
	if s.successWeight <= 0 {
		s.successWeight = defaultSuccessWeight
	}
	if s.failureWeight <= 0 {
		s.failureWeight = defaultFailureWeight
	}
	for i := range s.shards {
		s.shards[i].entries = make(map[beliefKey]*beliefEntry)
	}
	return s
}

func (s *BeliefStore) Prior() (alpha, beta float64) {
	return s.priorAlpha, s.priorBeta
}

func (s *BeliefStore) shardFor(k beliefKey) *beliefShard {
	d := xxhash.New()
	_, _ = d.WriteString(k.userID)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(k.action.OfferID)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(k.action.Channel)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(k.action.Partner)
	return &s.shards[d.Sum64()%beliefShardCount]
}

// entry returns the entry for k, creating it at the prior when missing.
func (s *BeliefStore) entry(k beliefKey) *beliefEntry {
	sh := s.shardFor(k)

	sh.mu.RLock()
	e, ok := sh.entries[k]
	sh.mu.RUnlock()
	if ok {
		return e
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if e, ok = sh.entries[k]; ok {
		return e
	}
	e = &beliefEntry{
		alpha:     s.priorAlpha,
		beta:      s.priorBeta,
		updatedAt: s.now(),
	}
	sh.entries[k] = e
	return e
}

func (s *BeliefStore) lookup(k beliefKey) (*beliefEntry, bool) {
	sh := s.shardFor(k)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	e, ok := sh.entries[k]
	return e, ok
}

func (e *beliefEntry) params(k beliefKey) domain.BeliefParameters {
	return domain.BeliefParameters{
		UserID:    k.userID,
		OfferID:   k.action.OfferID,
		Channel:   k.action.Channel,
		Partner:   k.action.Partner,
		Alpha:     e.alpha,
		Beta:      e.beta,
		UpdatedAt: e.updatedAt,
	}
}

func (s *BeliefStore) update(userID string, action domain.ActionKey, fn func(e *beliefEntry)) domain.BeliefParameters {
	k := beliefKey{userID: userID, action: action}
	e := s.entry(k)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e)
	e.updatedAt = s.now()
	return e.params(k)
}

// GetOrInit returns the current parameters, creating them at the prior.
func (s *BeliefStore) GetOrInit(userID string, action domain.ActionKey) domain.BeliefParameters {
	k := beliefKey{userID: userID, action: action}
	e := s.entry(k)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params(k)
}

// Peek returns the parameters without creating them. Missing keys report the
// prior and false.
func (s *BeliefStore) Peek(userID string, action domain.ActionKey) (domain.BeliefParameters, bool) {
	k := beliefKey{userID: userID, action: action}
	e, ok := s.lookup(k)
	if !ok {
		return domain.BeliefParameters{
			UserID:  userID,
			OfferID: action.OfferID,
			Channel: action.Channel,
			Partner: action.Partner,
			Alpha:   s.priorAlpha,
			Beta:    s.priorBeta,
		}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params(k), true
}

func (s *BeliefStore) RecordSuccess(userID string, action domain.ActionKey) domain.BeliefParameters {
	return s.update(userID, action, func(e *beliefEntry) {
		e.alpha += s.successWeight
	})
}

func (s *BeliefStore) RecordFailure(userID string, action domain.ActionKey) domain.BeliefParameters {
	return s.update(userID, action, func(e *beliefEntry) {
		e.beta += s.failureWeight
	})
}

// Reset puts the parameters back to the prior. Administrative use only.
func (s *BeliefStore) Reset(userID string, action domain.ActionKey) domain.BeliefParameters {
	return s.update(userID, action, func(e *beliefEntry) {
		e.alpha = s.priorAlpha
		e.beta = s.priorBeta
	})
}

func (s *BeliefStore) SuccessRate(userID string, action domain.ActionKey) float64 {
	return s.GetOrInit(userID, action).Mean()
}

// Observations converts the parameters back into outcome counts.
func (s *BeliefStore) Observations(p domain.BeliefParameters) (successes, failures float64) {
	return (p.Alpha - s.priorAlpha) / s.successWeight, (p.Beta - s.priorBeta) / s.failureWeight
}

// Snapshot copies every belief. Each entry is consistent on its own; the set
// as a whole is not a point-in-time cut.
func (s *BeliefStore) Snapshot() []domain.BeliefParameters {
	var out []domain.BeliefParameters
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		for k, e := range sh.entries {
			e.mu.Lock()
			out = append(out, e.params(k))
			e.mu.Unlock()
		}
		sh.mu.RUnlock()
	}
	return out
}

// Restore loads persisted beliefs, overwriting in-memory values. Values below
// the prior are clamped up to it.
func (s *BeliefStore) Restore(params []domain.BeliefParameters) {
	for _, p := range params {
		k := beliefKey{userID: p.UserID, action: p.Key()}
		e := s.entry(k)
		e.mu.Lock()
		e.alpha = max(p.Alpha, s.priorAlpha)
		e.beta = max(p.Beta, s.priorBeta)
		if !p.UpdatedAt.IsZero() {
			e.updatedAt = p.UpdatedAt
		}
		e.mu.Unlock()
	}
}

func (s *BeliefStore) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.RLock()
		n += len(sh.entries)
		sh.mu.RUnlock()
	}
	return n
}
