package bandit

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"myCampaignEngine/domain"
)

// MetricsAggregator derives read-only statistics from the decision log and
// the belief store. It keeps no state of its own.
type MetricsAggregator struct {
	log     *DecisionLog
	beliefs *BeliefStore
}

func NewMetricsAggregator(log *DecisionLog, beliefs *BeliefStore) *MetricsAggregator {
	return &MetricsAggregator{log: log, beliefs: beliefs}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func (m *MetricsAggregator) ExplorationRate(w Window) float64 {
	return m.Summary(w).ExplorationRate
}

func (m *MetricsAggregator) ConversionRate(w Window) float64 {
	return m.Summary(w).ConversionRate
}

func (m *MetricsAggregator) AverageConfidence(w Window) float64 {
	return m.Summary(w).AverageConfidence
}

func (m *MetricsAggregator) Summary(w Window) domain.MetricsSummary {
	decisions := m.log.Snapshot(w)

	var explored, converted, labelled int
	var confidence float64
	for _, d := range decisions {
		if d.IsExploration {
			explored++
		}
		if d.Outcome.Labelled() {
			labelled++
			if d.Outcome == domain.OutcomeConverted {
				converted++
			}
		}
		confidence += d.Confidence
	}

	s := domain.MetricsSummary{
		Decisions:       len(decisions),
		ExplorationRate: ratio(explored, len(decisions)),
		ConversionRate:  ratio(converted, labelled),
	}
	if len(decisions) > 0 {
		s.AverageConfidence = confidence / float64(len(decisions))
	}
	return s
}

// Bucketing fixes the width of learning-curve buckets. Buckets are aligned
// with time.Truncate, so weekly buckets start on Mondays (UTC).
type Bucketing struct {
	Width time.Duration
}

var (
	BucketHour = Bucketing{Width: time.Hour}
	BucketDay  = Bucketing{Width: 24 * time.Hour}
	BucketWeek = Bucketing{Width: 7 * 24 * time.Hour}
)

// ParseBucketing accepts hour, day, week or any time.ParseDuration value.
func ParseBucketing(s string) (Bucketing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "week", "weekly":
		return BucketWeek, nil
	case "day", "daily":
		return BucketDay, nil
	case "hour", "hourly":
		return BucketHour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return Bucketing{}, fmt.Errorf("invalid bucketing %q: %w", s, err)
	}
	if d <= 0 {
		return Bucketing{}, fmt.Errorf("invalid bucketing %q: width must be positive", s)
	}
	return Bucketing{Width: d}, nil
}

// LearningCurve reports one point per bucket from the first to the last
// decision, gaps included. The cumulative count never decreases; the
// conversion rate is per bucket.
func (m *MetricsAggregator) LearningCurve(b Bucketing) []domain.LearningPoint {
	if b.Width <= 0 {
		b = BucketWeek
	}
	decisions := m.log.Snapshot(Window{})
	if len(decisions) == 0 {
		return []domain.LearningPoint{}
	}

	type agg struct {
		decisions, converted, labelled int
	}
	buckets := make(map[time.Time]*agg)
	first, last := time.Time{}, time.Time{}
	for _, d := range decisions {
		k := d.CreatedAt.UTC().Truncate(b.Width)
		a, ok := buckets[k]
		if !ok {
			a = &agg{}
			buckets[k] = a
		}
		a.decisions++
		if d.Outcome.Labelled() {
			a.labelled++
			if d.Outcome == domain.OutcomeConverted {
				a.converted++
			}
		}
		if first.IsZero() || k.Before(first) {
			first = k
		}
		if k.After(last) {
			last = k
		}
	}

	out := make([]domain.LearningPoint, 0, int(last.Sub(first)/b.Width)+1)
	cumulative := 0
	for k := first; !k.After(last); k = k.Add(b.Width) {
		p := domain.LearningPoint{Bucket: k}
		if a, ok := buckets[k]; ok {
			cumulative += a.decisions
			p.ConversionRate = ratio(a.converted, a.labelled)
		}
		p.CumulativeDecisions = cumulative
		out = append(out, p)
	}
	return out
}

// Leaderboard ranks users by decision count, highest first, ties by user id.
// Success rate and confidence come from the user's beliefs: observed
// successes over observed outcomes, and the mean posterior mean.
func (m *MetricsAggregator) Leaderboard(topN int) []domain.LeaderboardEntry {
	counts := make(map[string]int)
	for _, d := range m.log.Snapshot(Window{}) {
		counts[d.UserID]++
	}

	type beliefAgg struct {
		successes, observed, meanSum float64
		n                            int
	}
	perUser := make(map[string]*beliefAgg)
	for _, p := range m.beliefs.Snapshot() {
		if _, ok := counts[p.UserID]; !ok {
			continue
		}
		a, ok := perUser[p.UserID]
		if !ok {
			a = &beliefAgg{}
			perUser[p.UserID] = a
		}
		s, f := m.beliefs.Observations(p)
		a.successes += s
		a.observed += s + f
		a.meanSum += p.Mean()
		a.n++
	}

	out := make([]domain.LeaderboardEntry, 0, len(counts))
	for userID, n := range counts {
		e := domain.LeaderboardEntry{UserID: userID, TotalDecisions: n}
		if a, ok := perUser[userID]; ok {
			if a.observed > 0 {
				e.SuccessRate = a.successes / a.observed
			}
			if a.n > 0 {
				e.AverageConfidence = a.meanSum / float64(a.n)
			}
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalDecisions != out[j].TotalDecisions {
			return out[i].TotalDecisions > out[j].TotalDecisions
		}
		return out[i].UserID < out[j].UserID
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
