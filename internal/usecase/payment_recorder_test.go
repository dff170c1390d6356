package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	domainErrors "github.com/acdc-digital/solopro-sub000/internal/domain/errors"
	"github.com/acdc-digital/solopro-sub000/internal/domain/model"
	"github.com/acdc-digital/solopro-sub000/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPaymentRepository is a mock implementation of PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) CreateIfAbsent(ctx context.Context, payment *entity.Payment) (bool, error) {
	args := m.Called(ctx, payment)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) GetByExternalSessionID(ctx context.Context, sessionID string) (*entity.Payment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, sessionID string, status entity.PaymentStatus, updatedAt time.Time) (bool, error) {
	args := m.Called(ctx, sessionID, status, updatedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) ListByUserID(ctx context.Context, userID string, offset, limit int) ([]*entity.Payment, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]*entity.Payment), args.Get(1).(int64), args.Error(2)
}

func checkout(sessionID, idOrEmail string) entity.CheckoutCompleted {
	return entity.CheckoutCompleted{
		ExternalSessionID: sessionID,
		IDOrEmail:         idOrEmail,
		ProductName:       "SoloPro Monthly",
		PaymentMode:       entity.PaymentModePayment,
		Amount:            1200,
		Currency:          "usd",
	}
}

func TestPaymentRecorder_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.UnresolvedFail)
	f.addUser(t, "user_42", "", f.clock())

	first, err := f.recorder.Record(ctx, checkout("cs_1", "user_42"))
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "user_42", first.UserID)

	f.advance(time.Minute)
	second, err := f.recorder.Record(ctx, checkout("cs_1", "user_42"))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.PaymentID, second.PaymentID)

	assert.Equal(t, int64(1), f.count(t, &model.Payment{}))

	stored, err := f.payments.GetByExternalSessionID(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusComplete, stored.Status)
	assert.Equal(t, "user_42", stored.UserID)
	assert.Equal(t, int64(1200), stored.Amount)
	assert.Equal(t, "usd", stored.Currency)
}

func TestPaymentRecorder_ConcurrentDeliveries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.UnresolvedFail)
	f.addUser(t, "user_42", "", f.clock())

	const deliveries = 8
	ids := make([]string, deliveries)
	created := make([]bool, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.recorder.Record(ctx, checkout("cs_race", "user_42"))
			if assert.NoError(t, err) {
				ids[i] = res.PaymentID
				created[i] = res.Created
			}
		}(i)
	}
	wg.Wait()

	createdCount := 0
	for i := range ids {
		assert.Equal(t, ids[0], ids[i])
		if created[i] {
			createdCount++
		}
	}
	assert.Equal(t, 1, createdCount)
	assert.Equal(t, int64(1), f.count(t, &model.Payment{}))
}

func TestPaymentRecorder_LinksCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.UnresolvedFail)
	f.addUser(t, "user_1", "", f.clock())

	cmd := checkout("cs_2", "user_1")
	cmd.CustomerID = strPtr("cus_9")
	cmd.CustomerEmail = strPtr("Buyer@Example.com")
	cmd.SubscriptionID = strPtr("")

	res, err := f.recorder.Record(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, res.Created)

	mapping, err := f.mappings.GetByProviderCustomerID(ctx, "cus_9")
	require.NoError(t, err)
	require.NotNil(t, mapping)
	assert.Equal(t, "user_1", mapping.UserID)

	user, err := f.users.GetByID(ctx, "user_1")
	require.NoError(t, err)
	require.NotNil(t, user.Email)
	assert.Equal(t, "buyer@example.com", *user.Email)

	stored, err := f.payments.GetByExternalSessionID(ctx, "cs_2")
	require.NoError(t, err)
	assert.Nil(t, stored.SubscriptionID, "empty optional values are not written")
}

func TestPaymentRecorder_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user writes nothing", func(t *testing.T) {
		f := newFixture(t, usecase.UnresolvedFail)

		_, err := f.recorder.Record(ctx, checkout("cs_3", "ghost"))
		assert.ErrorIs(t, err, domainErrors.ErrUserNotFound)
		assert.Equal(t, int64(0), f.count(t, &model.Payment{}))
	})

	t.Run("missing session id", func(t *testing.T) {
		f := newFixture(t, usecase.UnresolvedFail)

		_, err := f.recorder.Record(ctx, checkout("", "user_1"))
		assert.ErrorIs(t, err, domainErrors.ErrInvalidCommand)
	})

	t.Run("insert failure is a persistence error", func(t *testing.T) {
		users := new(MockUserRepository)
		payments := new(MockPaymentRepository)
		resolver := usecase.NewIdentityResolver(users, usecase.UnresolvedFail, zap.NewNop())
		recorder := usecase.NewPaymentRecorder(resolver, payments, users, nil, nil, zap.NewNop())

		users.On("GetByID", ctx, "user_1").Return(&entity.User{ID: "user_1"}, nil)
		payments.On("CreateIfAbsent", ctx, mock.AnythingOfType("*entity.Payment")).Return(false, errors.New("disk full"))

		_, err := recorder.Record(ctx, checkout("cs_4", "user_1"))
		var pe *domainErrors.PersistenceError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "insert payment", pe.Op)
		payments.AssertExpectations(t)
	})
}

func TestPaymentRecorder_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.UnresolvedFail)
	f.addUser(t, "user_1", "", f.clock())

	_, err := f.recorder.Record(ctx, checkout("cs_async", "user_1"))
	require.NoError(t, err)

	require.NoError(t, f.recorder.UpdateStatus(ctx, "cs_async", entity.PaymentStatusFailed))
	stored, err := f.payments.GetByExternalSessionID(ctx, "cs_async")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusFailed, stored.Status)

	assert.ErrorIs(t, f.recorder.UpdateStatus(ctx, "cs_missing", entity.PaymentStatusFailed), domainErrors.ErrPaymentNotFound)
	assert.ErrorIs(t, f.recorder.UpdateStatus(ctx, "", entity.PaymentStatusFailed), domainErrors.ErrInvalidCommand)
}
