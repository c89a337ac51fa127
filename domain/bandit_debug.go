package domain

type DebugCandidate struct {
	Action     ActionKey `json:"action"`
	Alpha      float64   `json:"alpha"`
	Beta       float64   `json:"beta"`
	Mean       float64   `json:"mean"`   // α/(α+β)
	Sample     float64   `json:"sample"` // one Beta(α,β) draw
	Eligible   bool      `json:"eligible"`
	ExcludedBy string    `json:"excluded_by,omitempty"`
}

type DebugDecision struct {
	UserID     string           `json:"user_id"`
	Holdout    bool             `json:"holdout"`
	Candidates []DebugCandidate `json:"candidates"`
}
