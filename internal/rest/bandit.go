package rest

import (
	"context"
	"net/http"
	"time"

	"myCampaignEngine/business/bandit"
	"myCampaignEngine/domain"
	"myCampaignEngine/pkg/logger"
	"myCampaignEngine/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	BanditHandler struct {
		validate      *validator.Validate
		banditService BanditService
		timeout       time.Duration
	}

	BanditService interface {
		Decide(ctx context.Context, userID string, reqCtx map[string]any) (bandit.DecideResult, error)
		DebugDecide(ctx context.Context, userID string) (domain.DebugDecision, error)
		ReportOutcome(ctx context.Context, decisionID string, outcome string) (domain.Decision, error)
	}

	DecideRequest struct {
		UserID  string         `json:"user_id" validate:"required,max=128"`
		Context map[string]any `json:"context"`
	}

	DebugQuery struct {
		UserID string `query:"user_id" validate:"required"`
	}

	OutcomeRequest struct {
		Outcome string `json:"outcome" validate:"required,oneof=converted ignored suppressed"`
	}
)

func NewBanditHandler(svc BanditService) *BanditHandler {
	return &BanditHandler{
		validate:      validator.New(),
		banditService: svc,
		timeout:       5 * time.Second,
	}
}

// POST /api/v1/decisions
func (h *BanditHandler) Decide(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.DecideLatency.Observe(time.Since(start).Seconds())
	}()

	var req DecideRequest
	if err := c.Bind(&req); err != nil {
		metrics.DecideRequests.WithLabelValues("bad_request").Inc()
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		metrics.DecideRequests.WithLabelValues("bad_request").Inc()
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.banditService.Decide(ctx, req.UserID, req.Context)
	if err != nil {
		metrics.DecideRequests.WithLabelValues("error").Inc()
		logger.Error("Failed to decide", "user_id", req.UserID, "error", err)
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	metrics.DecideRequests.WithLabelValues(string(res.Status)).Inc()
	if res.NoEligibleAction() {
		return c.JSON(http.StatusOK, fres.Response.StatusOK(res))
	}
	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(res))
}

// GET /api/v1/decisions/debug?user_id=U-1
func (h *BanditHandler) DebugDecide(c echo.Context) error {
	var q DebugQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	out, err := h.banditService.DebugDecide(c.Request().Context(), q.UserID)
	if err != nil {
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(out))
}

// POST /api/v1/decisions/:id/outcome
func (h *BanditHandler) ReportOutcome(c echo.Context) error {
	id := c.Param("id")

	var req OutcomeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	d, err := h.banditService.ReportOutcome(c.Request().Context(), id, req.Outcome)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.Error("Failed to record outcome", "decision_id", id, "error", err)
		}
		return c.JSON(status, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(d))
}
