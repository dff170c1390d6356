package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	"github.com/acdc-digital/solopro-sub000/internal/domain/provider"
	"github.com/acdc-digital/solopro-sub000/internal/middleware/auth"
	"github.com/acdc-digital/solopro-sub000/internal/usecase"
	pkgerrors "github.com/acdc-digital/solopro-sub000/pkg/errors"
	"github.com/acdc-digital/solopro-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockWebhookProcessor struct {
	mock.Mock
}

func (m *MockWebhookProcessor) HandleDelivery(ctx context.Context, payload []byte, signature string) (*usecase.WebhookOutcome, error) {
	args := m.Called(ctx, payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.WebhookOutcome), args.Error(1)
}

type MockEventDispatcher struct {
	mock.Mock
}

func (m *MockEventDispatcher) Dispatch(ctx context.Context, event entity.Event) entity.Result {
	args := m.Called(ctx, event)
	return args.Get(0).(entity.Result)
}

type MockBillingReader struct {
	mock.Mock
}

func (m *MockBillingReader) ListPayments(ctx context.Context, userID string, params entity.PaginationParams) (*usecase.PaginatedPayments, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PaginatedPayments), args.Error(1)
}

func (m *MockBillingReader) GetSubscriptionStatus(ctx context.Context, userID string) (*usecase.SubscriptionStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.SubscriptionStatus), args.Error(1)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWebhookHandler_HandleWebhook(t *testing.T) {
	payload := `{"id":"evt_1"}`

	tests := []struct {
		name       string
		outcome    *usecase.WebhookOutcome
		err        error
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "processed",
			outcome: &usecase.WebhookOutcome{
				EventID: "evt_1",
				Result:  entity.Result{Success: true, SessionID: "cs_1", PaymentID: "pay_1"},
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				result := body["result"].(map[string]interface{})
				assert.Equal(t, true, result["success"])
				assert.Equal(t, "cs_1", result["sessionId"])
			},
		},
		{
			name:       "duplicate",
			outcome:    &usecase.WebhookOutcome{EventID: "evt_1", Duplicate: true, Result: entity.Result{Success: true}},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, true, body["received"])
				assert.Equal(t, "duplicate", body["status"])
			},
		},
		{
			name:       "dispatch failure asks for redelivery",
			outcome:    &usecase.WebhookOutcome{EventID: "evt_1", Result: entity.Result{Error: "user not found"}},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]interface{}) {
				result := body["result"].(map[string]interface{})
				assert.Equal(t, false, result["success"])
				assert.Equal(t, "user not found", result["error"])
			},
		},
		{
			name: "bad signature",
			err: &provider.ProviderError{
				Code:    provider.ErrCodeInvalidSignature,
				Message: "invalid webhook signature",
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, provider.ErrCodeInvalidSignature, body["code"])
			},
		},
		{
			name:       "storage failure",
			err:        errors.New("failed to log webhook event: connection refused"),
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Failed to process webhook", body["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processor := new(MockWebhookProcessor)
			if tt.err != nil {
				processor.On("HandleDelivery", mock.Anything, []byte(payload), "t=1,v1=abc").Return(nil, tt.err)
			} else {
				processor.On("HandleDelivery", mock.Anything, []byte(payload), "t=1,v1=abc").Return(tt.outcome, nil)
			}
			handler := NewWebhookHandler(processor, zap.NewNop())

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
			req.Header.Set("Stripe-Signature", "t=1,v1=abc")
			rec := httptest.NewRecorder()

			require.NoError(t, handler.HandleWebhook(e.NewContext(req, rec)))
			assert.Equal(t, tt.wantStatus, rec.Code)
			tt.check(t, decodeBody(t, rec))
			processor.AssertExpectations(t)
		})
	}
}

func TestWebhookHandler_BodyLimit(t *testing.T) {
	e := echo.New()

	t.Run("oversize body is refused", func(t *testing.T) {
		processor := new(MockWebhookProcessor)
		handler := NewWebhookHandler(processor, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(strings.Repeat("x", maxWebhookBodyBytes+1)))
		req.Header.Set("Stripe-Signature", "t=1,v1=abc")
		rec := httptest.NewRecorder()

		require.NoError(t, handler.HandleWebhook(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		processor.AssertNotCalled(t, "HandleDelivery", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("body at the limit is verified", func(t *testing.T) {
		payload := strings.Repeat("x", maxWebhookBodyBytes)
		processor := new(MockWebhookProcessor)
		processor.On("HandleDelivery", mock.Anything, []byte(payload), "t=1,v1=abc").
			Return(nil, &provider.ProviderError{Code: provider.ErrCodeInvalidSignature, Message: "invalid webhook signature"})
		handler := NewWebhookHandler(processor, zap.NewNop())

		req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
		req.Header.Set("Stripe-Signature", "t=1,v1=abc")
		rec := httptest.NewRecorder()

		require.NoError(t, handler.HandleWebhook(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		processor.AssertExpectations(t)
	})
}

func TestEventsHandler_DispatchEvent(t *testing.T) {
	e := echo.New()

	t.Run("dispatches", func(t *testing.T) {
		dispatcher := new(MockEventDispatcher)
		dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(ev entity.Event) bool {
			return ev.Type == "checkout.session.completed" && strings.Contains(string(ev.Data), "cs_1")
		})).Return(entity.Result{Success: true, SessionID: "cs_1", PaymentID: "pay_1"})

		body := `{"eventType":"checkout.session.completed","data":{"id":"cs_1","client_reference_id":"user_42"}}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/events", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		require.NoError(t, NewEventsHandler(dispatcher, zap.NewNop()).DispatchEvent(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)

		got := decodeBody(t, rec)
		assert.Equal(t, true, got["success"])
		assert.Equal(t, "cs_1", got["sessionId"])
		dispatcher.AssertExpectations(t)
	})

	t.Run("failure", func(t *testing.T) {
		dispatcher := new(MockEventDispatcher)
		dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(entity.Result{Error: "user not found"})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/events",
			strings.NewReader(`{"eventType":"checkout.session.completed","data":{}}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		require.NoError(t, NewEventsHandler(dispatcher, zap.NewNop()).DispatchEvent(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, false, decodeBody(t, rec)["success"])
	})

	t.Run("missing type", func(t *testing.T) {
		dispatcher := new(MockEventDispatcher)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/internal/events", strings.NewReader(`{"data":{}}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		require.NoError(t, NewEventsHandler(dispatcher, zap.NewNop()).DispatchEvent(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
	})
}

func authedContext(e *echo.Echo, target, userID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(auth.WithUser(req.Context(), &auth.AuthUser{UserID: userID}))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestPaymentHandler_GetUserPayments(t *testing.T) {
	e := echo.New()
	billing := new(MockBillingReader)
	billing.On("ListPayments", mock.Anything, "user_1", entity.PaginationParams{Page: 2, Limit: 5}).
		Return(&usecase.PaginatedPayments{
			Data: []usecase.PaymentView{{
				Payment:       &entity.Payment{ID: "pay_1", ExternalSessionID: "cs_1", Amount: 1200, Currency: "usd"},
				AmountDisplay: "12.00",
			}},
			Pagination: entity.NewPaginationMeta(2, 5, 6),
		}, nil)
	billing.On("ListPayments", mock.Anything, "user_2", mock.Anything).Return(nil, errors.New("db down"))

	handler := NewPaymentHandler(billing, zap.NewNop())

	c, rec := authedContext(e, "/api/v1/payments?page=2&limit=5", "user_1")
	require.NoError(t, handler.GetUserPayments(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "12.00", data[0].(map[string]interface{})["amount_display"])

	tests := []struct {
		name       string
		ctx        echo.Context
		wantCode   string
		wantStatus int
	}{
		{
			name:       "storage failure",
			ctx:        func() echo.Context { c, _ := authedContext(e, "/api/v1/payments", "user_2"); return c }(),
			wantCode:   pkgerrors.ErrInternal,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "bad pagination",
			ctx:        func() echo.Context { c, _ := authedContext(e, "/api/v1/payments?page=abc", "user_1"); return c }(),
			wantCode:   pkgerrors.ErrInvalidArgument,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "anonymous",
			ctx:        e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil), httptest.NewRecorder()),
			wantCode:   pkgerrors.ErrUnauthenticated,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler.GetUserPayments(tt.ctx)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, pkgerrors.CodeOf(err))
			assert.Equal(t, tt.wantStatus, pkgerrors.ToHTTPError(err).Code)
		})
	}

	billing.AssertExpectations(t)
}

func TestPaymentHandler_ErrorsRenderThroughErrorHandler(t *testing.T) {
	e := echo.New()
	logger.WithEchoLogger(e, zap.NewNop())
	billing := new(MockBillingReader)
	billing.On("ListPayments", mock.Anything, "user_2", mock.Anything).Return(nil, errors.New("pq: connection refused"))
	e.GET("/api/v1/payments", NewPaymentHandler(billing, zap.NewNop()).GetUserPayments, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.SetRequest(c.Request().WithContext(auth.WithUser(c.Request().Context(), &auth.AuthUser{UserID: "user_2"})))
			return next(c)
		}
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Failed to get payments", body["error"])
	assert.Equal(t, pkgerrors.ErrInternal, body["code"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestSubscriptionHandler_GetCurrentSubscription(t *testing.T) {
	e := echo.New()
	end := int64(1900000000)
	billing := new(MockBillingReader)
	billing.On("GetSubscriptionStatus", mock.Anything, "user_1").Return(&usecase.SubscriptionStatus{
		Subscription: &entity.Subscription{
			ID:                     "row-1",
			UserID:                 "user_1",
			ExternalSubscriptionID: "sub_1",
			Status:                 entity.SubscriptionStatusActive,
			CurrentPeriodEnd:       &end,
		},
		HasActiveSubscription: true,
	}, nil)
	billing.On("GetSubscriptionStatus", mock.Anything, "user_2").Return(&usecase.SubscriptionStatus{}, nil)
	billing.On("GetSubscriptionStatus", mock.Anything, "user_3").Return(nil, errors.New("db down"))

	handler := NewSubscriptionHandler(billing, zap.NewNop())

	c, rec := authedContext(e, "/api/v1/subscriptions/current", "user_1")
	require.NoError(t, handler.GetCurrentSubscription(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["has_active_subscription"])
	assert.NotNil(t, body["subscription"])

	c, rec = authedContext(e, "/api/v1/subscriptions/current", "user_2")
	require.NoError(t, handler.GetCurrentSubscription(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["has_active_subscription"])
	assert.Nil(t, body["subscription"])

	c, _ = authedContext(e, "/api/v1/subscriptions/current", "user_3")
	err := handler.GetCurrentSubscription(c)
	assert.Equal(t, pkgerrors.ErrInternal, pkgerrors.CodeOf(err))
	assert.ErrorContains(t, err, "db down")

	anonymous := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/current", nil), httptest.NewRecorder())
	assert.Equal(t, pkgerrors.ErrUnauthenticated, pkgerrors.CodeOf(handler.GetCurrentSubscription(anonymous)))
}
