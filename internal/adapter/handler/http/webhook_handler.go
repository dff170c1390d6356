package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/acdc-digital/solopro-sub000/internal/domain/provider"
	"github.com/acdc-digital/solopro-sub000/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxWebhookBodyBytes matches the payload limit Stripe documents for events.
const maxWebhookBodyBytes = 65536

// WebhookProcessor handles one signed webhook delivery.
type WebhookProcessor interface {
	HandleDelivery(ctx context.Context, payload []byte, signature string) (*usecase.WebhookOutcome, error)
}

type WebhookHandler struct {
	processor WebhookProcessor
	logger    *zap.Logger
}

func NewWebhookHandler(processor WebhookProcessor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger,
	}
}

// HandleWebhook answers 2xx only when the event was applied or safely
// ignored, so the provider redelivers everything else.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBodyBytes+1))
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}
	if len(body) > maxWebhookBodyBytes {
		h.logger.Warn("Webhook body too large",
			zap.Int("limit_bytes", maxWebhookBodyBytes))
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "Request body too large"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	outcome, err := h.processor.HandleDelivery(c.Request().Context(), body, sig)
	if err != nil {
		var providerErr *provider.ProviderError
		if errors.As(err, &providerErr) {
			h.logger.Warn("Webhook rejected",
				zap.String("code", providerErr.Code),
				zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": providerErr.Message,
				"code":  providerErr.Code,
			})
		}

		h.logger.Error("Failed to handle webhook", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to process webhook",
		})
	}

	if outcome.Duplicate {
		return c.JSON(http.StatusOK, echo.Map{
			"received": true,
			"status":   "duplicate",
		})
	}

	if !outcome.Result.Success {
		h.logger.Warn("Webhook event not applied",
			zap.String("event_id", outcome.EventID),
			zap.String("event_type", outcome.EventType),
			zap.String("error", outcome.Result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"received": true,
			"result":   outcome.Result,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"received": true,
		"result":   outcome.Result,
	})
}
