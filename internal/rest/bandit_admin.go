package rest

import (
	"context"
	"net/http"

	"myCampaignEngine/domain"
	"myCampaignEngine/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	BanditAdminHandler struct {
		validate *validator.Validate
		admin    BanditAdminService
	}

	BanditAdminService interface {
		ResetBelief(ctx context.Context, userID string, action domain.ActionKey) (domain.BeliefParameters, error)
		RefreshCatalog(ctx context.Context) error
	}

	// body: { "user_id": "U-1", "offer_id": "loan-10", "channel": "sms", "partner": "bank-a" }
	resetBeliefRequest struct {
		UserID  string `json:"user_id" validate:"required"`
		OfferID string `json:"offer_id" validate:"required"`
		Channel string `json:"channel" validate:"required"`
		Partner string `json:"partner" validate:"required"`
	}
)

func NewBanditAdminHandler(admin BanditAdminService) *BanditAdminHandler {
	return &BanditAdminHandler{
		validate: validator.New(),
		admin:    admin,
	}
}

// DELETE /api/v1/admin/beliefs
func (h *BanditAdminHandler) ResetBelief(c echo.Context) error {
	ctx := c.Request().Context()

	var body resetBeliefRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid body: " + err.Error()})
	}
	if err := h.validate.Struct(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	key := domain.ActionKey{OfferID: body.OfferID, Channel: body.Channel, Partner: body.Partner}
	p, err := h.admin.ResetBelief(ctx, body.UserID, key)
	if err != nil {
		logger.Error("Failed to reset belief", "user_id", body.UserID, "action", key.String(), "error", err)
		return c.JSON(statusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(p))
}

// POST /api/v1/admin/catalog/refresh
func (h *BanditAdminHandler) RefreshCatalog(c echo.Context) error {
	if err := h.admin.RefreshCatalog(c.Request().Context()); err != nil {
		logger.Error("Failed to refresh catalog", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("catalog refreshed"))
}
