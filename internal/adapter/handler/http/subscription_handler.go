package http

import (
	"net/http"

	"github.com/acdc-digital/solopro-sub000/internal/middleware/auth"
	pkgerrors "github.com/acdc-digital/solopro-sub000/pkg/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	billing BillingReader
	logger  *zap.Logger
}

func NewSubscriptionHandler(billing BillingReader, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		billing: billing,
		logger:  logger,
	}
}

// GetCurrentSubscription returns the user's subscription and whether it
// unlocks paid features right now.
func (h *SubscriptionHandler) GetCurrentSubscription(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	status, err := h.billing.GetSubscriptionStatus(c.Request().Context(), user.UserID)
	if err != nil {
		return pkgerrors.Wrap(err, "Failed to retrieve subscription information")
	}

	h.logger.Debug("Retrieved subscription status",
		zap.String("user_id", user.UserID),
		zap.Bool("has_active_subscription", status.HasActiveSubscription))

	return c.JSON(http.StatusOK, status)
}
