package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Outcome is the realized result of a decision.
type Outcome string

const (
	OutcomePending    Outcome = "pending"
	OutcomeConverted  Outcome = "converted"
	OutcomeIgnored    Outcome = "ignored"
	OutcomeSuppressed Outcome = "suppressed"
)

// Terminal reports whether the outcome closes a decision.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeConverted, OutcomeIgnored, OutcomeSuppressed:
		return true
	default:
		return false
	}
}

// Labelled reports whether the outcome is a learning signal (success or failure).
func (o Outcome) Labelled() bool {
	return o == OutcomeConverted || o == OutcomeIgnored
}

// ParseOutcome maps a wire value onto an Outcome.
func ParseOutcome(s string) (Outcome, bool) {
	switch o := Outcome(s); o {
	case OutcomePending, OutcomeConverted, OutcomeIgnored, OutcomeSuppressed:
		return o, true
	default:
		return "", false
	}
}

type BeliefParameters struct {
	UserID    string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	OfferID   string    `gorm:"column:offer_id;primaryKey" json:"offer_id"`
	Channel   string    `gorm:"column:channel;primaryKey" json:"channel"`
	Partner   string    `gorm:"column:partner;primaryKey" json:"partner"`
	Alpha     float64   `gorm:"column:alpha;not null" json:"alpha"`
	Beta      float64   `gorm:"column:beta;not null" json:"beta"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (BeliefParameters) TableName() string {
	return "belief_parameters"
}

func (b BeliefParameters) Key() ActionKey {
	return ActionKey{OfferID: b.OfferID, Channel: b.Channel, Partner: b.Partner}
}

// Mean is the posterior mean α/(α+β).
func (b BeliefParameters) Mean() float64 {
	if b.Alpha+b.Beta == 0 {
		return 0
	}
	return b.Alpha / (b.Alpha + b.Beta)
}

type Decision struct {
	ID            string            `gorm:"column:id;primaryKey" json:"id"`
	UserID        string            `gorm:"column:user_id;not null;index" json:"user_id"`
	OfferID       string            `gorm:"column:offer_id;not null" json:"offer_id"`
	Channel       string            `gorm:"column:channel;not null" json:"channel"`
	Partner       string            `gorm:"column:partner;not null" json:"partner"`
	SampledScore  float64           `gorm:"column:sampled_score" json:"sampled_score"`
	Confidence    float64           `gorm:"column:confidence" json:"confidence"`
	IsExploration bool              `gorm:"column:is_exploration" json:"is_exploration"`
	Outcome       Outcome           `gorm:"column:outcome;not null;default:pending" json:"outcome"`
	OutcomeAt     *time.Time        `gorm:"column:outcome_at" json:"outcome_at,omitempty"`
	Context       datatypes.JSONMap `gorm:"column:context" json:"context,omitempty"`
	CreatedAt     time.Time         `gorm:"column:created_at;index" json:"created_at"`
}

func (Decision) TableName() string {
	return "decisions"
}

func (d Decision) Key() ActionKey {
	return ActionKey{OfferID: d.OfferID, Channel: d.Channel, Partner: d.Partner}
}

// DecisionView is what callers of decide receive.
type DecisionView struct {
	DecisionID    string    `json:"decision_id"`
	UserID        string    `json:"user_id"`
	Action        ActionKey `json:"action"`
	Score         float64   `json:"score"`
	Confidence    float64   `json:"confidence"`
	IsExploration bool      `json:"is_exploration"`
	Reasoning     string    `json:"reasoning"`
	CreatedAt     time.Time `json:"created_at"`
}
