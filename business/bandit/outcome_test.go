package bandit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myCampaignEngine/domain"
)

func pendingDecision(id, userID string, at time.Time) domain.Decision {
	return domain.Decision{
		ID:        id,
		UserID:    userID,
		OfferID:   keySMS.OfferID,
		Channel:   keySMS.Channel,
		Partner:   keySMS.Partner,
		Outcome:   domain.OutcomePending,
		CreatedAt: at,
	}
}

func TestOutcomeRecorder_UpdatesBeliefs(t *testing.T) {
	log := NewDecisionLog()
	store := NewBeliefStore(DefaultConfig())
	rec := NewOutcomeRecorder(log, store)
	now := time.Now()

	log.Append(pendingDecision("d1", "U-1", now))
	log.Append(pendingDecision("d2", "U-1", now))
	log.Append(pendingDecision("d3", "U-1", now))

	d, p, updated, err := rec.RecordOutcome("d1", domain.OutcomeConverted)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, domain.OutcomeConverted, d.Outcome)
	require.NotNil(t, d.OutcomeAt)
	assert.Equal(t, 2.0, p.Alpha)
	assert.Equal(t, 1.0, p.Beta)

	_, p, updated, err = rec.RecordOutcome("d2", domain.OutcomeIgnored)
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, 2.0, p.Alpha)
	assert.Equal(t, 2.0, p.Beta)

	_, _, updated, err = rec.RecordOutcome("d3", domain.OutcomeSuppressed)
	require.NoError(t, err)
	assert.False(t, updated)
	cur := store.GetOrInit("U-1", keySMS)
	assert.Equal(t, 2.0, cur.Alpha)
	assert.Equal(t, 2.0, cur.Beta)
}

func TestOutcomeRecorder_Errors(t *testing.T) {
	log := NewDecisionLog()
	store := NewBeliefStore(DefaultConfig())
	rec := NewOutcomeRecorder(log, store)
	log.Append(pendingDecision("d1", "U-1", time.Now()))

	_, _, _, err := rec.RecordOutcome("nope", domain.OutcomeConverted)
	assert.ErrorIs(t, err, ErrDecisionNotFound)

	_, _, _, err = rec.RecordOutcome("d1", domain.OutcomePending)
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	_, _, _, err = rec.RecordOutcome("d1", domain.OutcomeSuppressed)
	require.NoError(t, err)

	d, _, _, err := rec.RecordOutcome("d1", domain.OutcomeConverted)
	assert.ErrorIs(t, err, ErrAlreadyRecorded)
	assert.Equal(t, domain.OutcomeSuppressed, d.Outcome, "terminal outcome is never overwritten")
	assert.Zero(t, store.Len())
}

func TestOutcomeRecorder_ConcurrentReportsApplyOnce(t *testing.T) {
	log := NewDecisionLog()
	store := NewBeliefStore(DefaultConfig())
	rec := NewOutcomeRecorder(log, store)
	log.Append(pendingDecision("d1", "U-1", time.Now()))

	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := domain.OutcomeConverted
			if i%2 == 1 {
				o = domain.OutcomeIgnored
			}
			_, _, _, err := rec.RecordOutcome("d1", o)
			switch err {
			case nil:
				ok.Add(1)
			case ErrAlreadyRecorded:
				dup.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(63), dup.Load())
	p := store.GetOrInit("U-1", keySMS)
	assert.Equal(t, 3.0, p.Alpha+p.Beta)
}

func TestDecisionLog_AppendAndWindow(t *testing.T) {
	log := NewDecisionLog()
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		log.Append(pendingDecision(string(rune('a'+i)), "U-1", base.Add(time.Duration(i)*time.Hour)))
	}
	log.Append(pendingDecision("a", "U-1", base))
	assert.Equal(t, 5, log.Len(), "duplicate ids are ignored")

	all := log.Snapshot(Window{})
	require.Len(t, all, 5)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "e", all[4].ID)

	got := log.Snapshot(Window{Since: base.Add(time.Hour), Until: base.Add(3 * time.Hour)})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	last := log.Snapshot(Window{Last: 2})
	require.Len(t, last, 2)
	assert.Equal(t, "d", last[0].ID)
	assert.Equal(t, "e", last[1].ID)

	d, ok := log.Get("c")
	require.True(t, ok)
	assert.Equal(t, domain.OutcomePending, d.Outcome)
	_, ok = log.Get("z")
	assert.False(t, ok)
}
