package http

import (
	"context"
	"net/http"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	"github.com/acdc-digital/solopro-sub000/internal/middleware/auth"
	"github.com/acdc-digital/solopro-sub000/internal/usecase"
	pkgerrors "github.com/acdc-digital/solopro-sub000/pkg/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BillingReader is the read side used by the app's billing screens.
type BillingReader interface {
	ListPayments(ctx context.Context, userID string, params entity.PaginationParams) (*usecase.PaginatedPayments, error)
	GetSubscriptionStatus(ctx context.Context, userID string) (*usecase.SubscriptionStatus, error)
}

type PaymentHandler struct {
	billing BillingReader
	logger  *zap.Logger
}

func NewPaymentHandler(billing BillingReader, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		billing: billing,
		logger:  logger,
	}
}

func (h *PaymentHandler) GetUserPayments(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	var params entity.PaginationParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return pkgerrors.NewAppError(pkgerrors.ErrInvalidArgument, "Invalid pagination parameters", err)
	}

	payments, err := h.billing.ListPayments(c.Request().Context(), user.UserID, params)
	if err != nil {
		return pkgerrors.Wrap(err, "Failed to get payments")
	}

	h.logger.Debug("Retrieved user payments",
		zap.String("user_id", user.UserID),
		zap.Int("payment_count", len(payments.Data)))

	return c.JSON(http.StatusOK, payments)
}
