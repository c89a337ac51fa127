package middleware

import (
	"errors"
	"net/http"

	"myCampaignEngine/business/bandit"
	"myCampaignEngine/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// TraceID reuses an incoming X-Request-ID or mints one, echoes it back and
// puts it on the request context for engine logs.
func TraceID() echo.MiddlewareFunc {
	return echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(bandit.WithTraceID(req.Context(), id)))
		},
	})
}

// ErrorHandler renders errors that escape handlers, including echo's own
// 404/405, with the same {"message"} body the handlers use.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		logger.Error("Unhandled error",
			"trace_id", bandit.TraceIDFromContext(c.Request().Context()),
			"path", c.Path(),
			"error", err,
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"message": msg})
	}
	if err != nil {
		logger.Error("Failed to write error response", "error", err)
	}
}
