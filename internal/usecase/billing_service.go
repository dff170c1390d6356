package usecase

import (
	"context"
	"fmt"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	"github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"go.uber.org/zap"
)

// PaymentView is a payment with its amount in major units.
type PaymentView struct {
	*entity.Payment
	AmountDisplay string `json:"amount_display"`
}

// PaginatedPayments is one page of a user's payments.
type PaginatedPayments struct {
	Data       []PaymentView         `json:"data"`
	Pagination entity.PaginationMeta `json:"pagination"`
}

// SubscriptionStatus answers the paywall question for a user.
type SubscriptionStatus struct {
	Subscription          *entity.Subscription `json:"subscription"`
	HasActiveSubscription bool                 `json:"has_active_subscription"`
}

// BillingService serves the read side of payments and subscriptions.
type BillingService struct {
	payments      repository.PaymentRepository
	subscriptions repository.SubscriptionRepository
	clock         Clock
	logger        *zap.Logger
}

func NewBillingService(
	payments repository.PaymentRepository,
	subscriptions repository.SubscriptionRepository,
	clock Clock,
	logger *zap.Logger,
) *BillingService {
	if clock == nil {
		clock = SystemClock
	}
	return &BillingService{
		payments:      payments,
		subscriptions: subscriptions,
		clock:         clock,
		logger:        logger,
	}
}

// ListPayments returns the user's payments, newest first.
func (s *BillingService) ListPayments(ctx context.Context, userID string, params entity.PaginationParams) (*PaginatedPayments, error) {
	params.Normalize()

	payments, total, err := s.payments.ListByUserID(ctx, userID, params.Offset(), params.Limit)
	if err != nil {
		s.logger.Error("Failed to list payments",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	views := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		places := int32(2)
		if entity.IsZeroDecimal(p.Currency) {
			places = 0
		}
		views = append(views, PaymentView{
			Payment:       p,
			AmountDisplay: entity.ToMajorUnits(p.Amount, p.Currency).StringFixed(places),
		})
	}

	return &PaginatedPayments{
		Data:       views,
		Pagination: entity.NewPaginationMeta(params.Page, params.Limit, total),
	}, nil
}

// GetSubscriptionStatus returns the user's subscription, if any, and
// whether it currently grants access.
func (s *BillingService) GetSubscriptionStatus(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	sub, err := s.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get subscription",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return &SubscriptionStatus{
		Subscription:          sub,
		HasActiveSubscription: sub.IsActive(s.clock()),
	}, nil
}
