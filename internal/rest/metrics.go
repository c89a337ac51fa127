package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"myCampaignEngine/business/bandit"
	"myCampaignEngine/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

const defaultLeaderboardSize = 10

type (
	MetricsHandler struct {
		metricsService MetricsService
	}

	MetricsService interface {
		Metrics(w bandit.Window) domain.MetricsSummary
		LearningCurve(b bandit.Bucketing) []domain.LearningPoint
		Leaderboard(topN int) []domain.LeaderboardEntry
	}
)

func NewMetricsHandler(svc MetricsService) *MetricsHandler {
	return &MetricsHandler{metricsService: svc}
}

// GET /api/v1/metrics/summary?since=2026-01-01T00:00:00Z&until=...&last=100
func (h *MetricsHandler) Summary(c echo.Context) error {
	var w bandit.Window
	var err error

	if w.Since, err = parseTimeParam(c, "since"); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if w.Until, err = parseTimeParam(c, "until"); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if raw := c.QueryParam("last"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid last"})
		}
		w.Last = n
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.metricsService.Metrics(w)))
}

// GET /api/v1/metrics/learning-curve?bucket=week
func (h *MetricsHandler) LearningCurve(c echo.Context) error {
	b, err := bandit.ParseBucketing(c.QueryParam("bucket"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.metricsService.LearningCurve(b)))
}

// GET /api/v1/metrics/leaderboard?top=10
func (h *MetricsHandler) Leaderboard(c echo.Context) error {
	top := defaultLeaderboardSize
	if raw := c.QueryParam("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid top"})
		}
		top = n
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.metricsService.Leaderboard(top)))
}

func parseTimeParam(c echo.Context, name string) (time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: want RFC3339", name)
	}
	return t, nil
}
