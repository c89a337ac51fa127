package domain

import "time"

type MetricsSummary struct {
	Decisions         int     `json:"decisions"`
	ExplorationRate   float64 `json:"exploration_rate"`
	ConversionRate    float64 `json:"conversion_rate"`
	AverageConfidence float64 `json:"average_confidence"`
}

type LearningPoint struct {
	Bucket              time.Time `json:"bucket"`
	CumulativeDecisions int       `json:"cumulative_decisions"`
	ConversionRate      float64   `json:"conversion_rate"`
}

type LeaderboardEntry struct {
	UserID            string  `json:"user_id"`
	TotalDecisions    int     `json:"total_decisions"`
	SuccessRate       float64 `json:"success_rate"`
	AverageConfidence float64 `json:"average_confidence"`
}
