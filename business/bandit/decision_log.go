package bandit

import (
	"sync"
	"time"

	"myCampaignEngine/domain"
)

type decisionEntry struct {
	mu sync.Mutex
	d  domain.Decision
}

// DecisionLog is the append-only record of every decision. Appends take a
// short write lock; outcome transitions lock only the affected entry.
type DecisionLog struct {
	mu      sync.RWMutex
	entries []*decisionEntry
	byID    map[string]*decisionEntry
}

func NewDecisionLog() *DecisionLog {
	return &DecisionLog{
		byID: make(map[string]*decisionEntry),
	}
}

func (l *DecisionLog) Append(d domain.Decision) {
	if d.Outcome == "" {
		d.Outcome = domain.OutcomePending
	}
	e := &decisionEntry{d: d}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.byID[d.ID]; dup {
		return
	}
	l.entries = append(l.entries, e)
	l.byID[d.ID] = e
}

func (l *DecisionLog) Get(id string) (domain.Decision, bool) {
	l.mu.RLock()
	e, ok := l.byID[id]
	l.mu.RUnlock()
	if !ok {
		return domain.Decision{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.d, true
}

// CompareAndSetOutcome moves a pending decision to a terminal outcome. It
// fails with ErrDecisionNotFound or ErrAlreadyRecorded and never overwrites a
// terminal outcome.
func (l *DecisionLog) CompareAndSetOutcome(id string, outcome domain.Outcome, at time.Time) (domain.Decision, error) {
	if !outcome.Terminal() {
		return domain.Decision{}, ErrInvalidOutcome
	}

	l.mu.RLock()
	e, ok := l.byID[id]
	l.mu.RUnlock()
	if !ok {
		return domain.Decision{}, ErrDecisionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.d.Outcome != domain.OutcomePending {
		return e.d, ErrAlreadyRecorded
	}
	e.d.Outcome = outcome
	e.d.OutcomeAt = &at
	return e.d, nil
}

func (l *DecisionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Window selects a slice of the log. Zero fields are unbounded; Last keeps
// the most recent N decisions after the time filter.
type Window struct {
	Since time.Time
	Until time.Time
	Last  int
}

func (w Window) contains(t time.Time) bool {
	if !w.Since.IsZero() && t.Before(w.Since) {
		return false
	}
	if !w.Until.IsZero() && !t.Before(w.Until) {
		return false
	}
	return true
}

// Snapshot copies the decisions inside w in append order.
func (l *DecisionLog) Snapshot(w Window) []domain.Decision {
	l.mu.RLock()
	entries := make([]*decisionEntry, len(l.entries))
	copy(entries, l.entries)
	l.mu.RUnlock()

	out := make([]domain.Decision, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		d := e.d
		e.mu.Unlock()
		if w.contains(d.CreatedAt) {
			out = append(out, d)
		}
	}
	if w.Last > 0 && len(out) > w.Last {
		out = out[len(out)-w.Last:]
	}
	return out
}

// Restore appends persisted decisions, skipping ids already present.
func (l *DecisionLog) Restore(decisions []domain.Decision) {
	for _, d := range decisions {
		l.Append(d)
	}
}
