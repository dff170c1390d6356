package usecase

import (
	"context"
	"fmt"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	domainErrors "github.com/acdc-digital/solopro-sub000/internal/domain/errors"
	"github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentRecorder persists exactly one payment per checkout session.
type PaymentRecorder interface {
	Record(ctx context.Context, cmd entity.CheckoutCompleted) (*entity.RecordResult, error)
	UpdateStatus(ctx context.Context, sessionID string, status entity.PaymentStatus) error
}

type paymentRecorder struct {
	resolver IdentityResolver
	payments repository.PaymentRepository
	users    repository.UserRepository
	mappings repository.CustomerMappingRepository
	clock    Clock
	logger   *zap.Logger
}

// NewPaymentRecorder creates a payment recorder. A nil clock means SystemClock.
func NewPaymentRecorder(
	resolver IdentityResolver,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	mappings repository.CustomerMappingRepository,
	clock Clock,
	logger *zap.Logger,
) PaymentRecorder {
	if clock == nil {
		clock = SystemClock
	}
	return &paymentRecorder{
		resolver: resolver,
		payments: payments,
		users:    users,
		mappings: mappings,
		clock:    clock,
		logger:   logger,
	}
}

// Record resolves the buyer and inserts the payment. A repeated session id
// returns the existing payment id with Created=false.
func (r *paymentRecorder) Record(ctx context.Context, cmd entity.CheckoutCompleted) (*entity.RecordResult, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}

	userID, err := r.resolver.Resolve(ctx, entity.ResolveRequest{
		IDOrEmail:     cmd.IDOrEmail,
		FallbackEmail: derefString(cmd.CustomerEmail),
	})
	if err != nil {
		return nil, err
	}

	now := r.clock()
	payment := &entity.Payment{
		ID:                uuid.NewString(),
		UserID:            userID,
		ExternalSessionID: cmd.ExternalSessionID,
		Status:            entity.PaymentStatusComplete,
		Amount:            cmd.Amount,
		Currency:          cmd.Currency,
		ProductName:       cmd.ProductName,
		PaymentMode:       cmd.PaymentMode,
		CustomerID:        nonEmpty(cmd.CustomerID),
		SubscriptionID:    nonEmpty(cmd.SubscriptionID),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	created, err := r.payments.CreateIfAbsent(ctx, payment)
	if err != nil {
		return nil, domainErrors.NewPersistenceError("insert payment", err)
	}

	if !created {
		existing, err := r.payments.GetByExternalSessionID(ctx, cmd.ExternalSessionID)
		if err != nil {
			return nil, domainErrors.NewPersistenceError("get payment by session id", err)
		}
		if existing == nil {
			return nil, domainErrors.NewPersistenceError("get payment by session id",
				fmt.Errorf("session %s conflicted but no row was found", cmd.ExternalSessionID))
		}

		r.logger.Info("Checkout session already recorded",
			zap.String("session_id", cmd.ExternalSessionID),
			zap.String("payment_id", existing.ID))
		return &entity.RecordResult{PaymentID: existing.ID, UserID: existing.UserID, Created: false}, nil
	}

	r.logger.Info("Payment recorded",
		zap.String("session_id", cmd.ExternalSessionID),
		zap.String("payment_id", payment.ID),
		zap.String("user_id", userID),
		zap.Int64("amount", cmd.Amount),
		zap.String("currency", cmd.Currency))

	r.linkCustomer(ctx, userID, cmd)

	return &entity.RecordResult{PaymentID: payment.ID, UserID: userID, Created: true}, nil
}

// linkCustomer remembers the provider customer of the user and fills in a
// missing user email. Failures here never fail the recording.
func (r *paymentRecorder) linkCustomer(ctx context.Context, userID string, cmd entity.CheckoutCompleted) {
	email := derefString(cmd.CustomerEmail)

	if customerID := derefString(cmd.CustomerID); customerID != "" {
		now := r.clock()
		if err := r.mappings.Create(ctx, &entity.CustomerMapping{
			ProviderCustomerID: customerID,
			UserID:             userID,
			Email:              email,
			CreatedAt:          now,
			UpdatedAt:          now,
		}); err != nil {
			r.logger.Warn("Failed to record customer mapping",
				zap.String("customer_id", customerID),
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}

	if email == "" {
		return
	}
	linked, err := r.users.LinkEmail(ctx, userID, email)
	if err != nil {
		r.logger.Warn("Failed to link customer email to user",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}
	if linked {
		r.logger.Info("Linked customer email to user", zap.String("user_id", userID))
	}
}

// UpdateStatus changes the status of the payment of a session.
func (r *paymentRecorder) UpdateStatus(ctx context.Context, sessionID string, status entity.PaymentStatus) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", domainErrors.ErrInvalidCommand)
	}

	found, err := r.payments.UpdateStatus(ctx, sessionID, status, r.clock())
	if err != nil {
		return domainErrors.NewPersistenceError("update payment status", err)
	}
	if !found {
		return domainErrors.ErrPaymentNotFound
	}

	r.logger.Info("Payment status updated",
		zap.String("session_id", sessionID),
		zap.String("status", string(status)))
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nonEmpty maps empty strings to nil so they count as absent.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
