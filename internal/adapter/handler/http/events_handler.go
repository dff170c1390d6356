package http

import (
	"net/http"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	"github.com/acdc-digital/solopro-sub000/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EventsHandler feeds unsigned events straight to the dispatcher. It is
// only routed when test endpoints are enabled.
type EventsHandler struct {
	dispatcher usecase.EventDispatcher
	logger     *zap.Logger
}

func NewEventsHandler(dispatcher usecase.EventDispatcher, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (h *EventsHandler) DispatchEvent(c echo.Context) error {
	var event entity.Event
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid event body"})
	}
	if event.Type == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "eventType is required"})
	}

	h.logger.Info("Dispatching internal event",
		zap.String("event_type", event.Type))

	result := h.dispatcher.Dispatch(c.Request().Context(), event)
	if !result.Success {
		return c.JSON(http.StatusInternalServerError, result)
	}
	return c.JSON(http.StatusOK, result)
}
