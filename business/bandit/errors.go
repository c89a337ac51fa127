package bandit

import "errors"

var (
	// ErrDecisionNotFound is returned when an outcome targets an unknown decision id.
	ErrDecisionNotFound = errors.New("bandit: decision not found")

	// ErrAlreadyRecorded is returned when a decision already carries a terminal outcome.
	ErrAlreadyRecorded = errors.New("bandit: outcome already recorded")

	// ErrInvalidOutcome is returned for outcome values other than converted, ignored or suppressed.
	ErrInvalidOutcome = errors.New("bandit: invalid outcome")

	ErrUserRequired = errors.New("bandit: user id is required")
)
