package rest

import (
	"errors"
	"net/http"

	"myCampaignEngine/business/bandit"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, bandit.ErrDecisionNotFound):
		return http.StatusNotFound
	case errors.Is(err, bandit.ErrAlreadyRecorded):
		return http.StatusConflict
	case errors.Is(err, bandit.ErrInvalidOutcome), errors.Is(err, bandit.ErrUserRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
