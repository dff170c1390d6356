package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	domainErrors "github.com/acdc-digital/solopro-sub000/internal/domain/errors"
	"github.com/acdc-digital/solopro-sub000/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetFirst(ctx context.Context) (*entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) LinkEmail(ctx context.Context, id, email string) (bool, error) {
	args := m.Called(ctx, id, email)
	return args.Bool(0), args.Error(1)
}

func TestIdentityResolver_Order(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, usecase.UnresolvedFail)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.addUser(t, "user_42", "owner@example.com", base)
	f.addUser(t, "user_7", "real@user.com", base.Add(time.Minute))

	tests := []struct {
		name    string
		req     entity.ResolveRequest
		want    string
		wantErr error
	}{
		{
			name: "id beats a differing email",
			req:  entity.ResolveRequest{IDOrEmail: "user_42", FallbackEmail: "real@user.com"},
			want: "user_42",
		},
		{
			name: "fallback email when id is unknown",
			req:  entity.ResolveRequest{IDOrEmail: "nonexistent-id", FallbackEmail: "real@user.com"},
			want: "user_7",
		},
		{
			name: "id or email used as email",
			req:  entity.ResolveRequest{IDOrEmail: "Owner@Example.com"},
			want: "user_42",
		},
		{
			name: "fallback email is tried before id as email",
			req:  entity.ResolveRequest{IDOrEmail: "owner@example.com", FallbackEmail: "real@user.com"},
			want: "user_7",
		},
		{
			name:    "nothing matches",
			req:     entity.ResolveRequest{IDOrEmail: "ghost", FallbackEmail: "ghost@example.com"},
			wantErr: domainErrors.ErrUserNotFound,
		},
		{
			name:    "empty request",
			req:     entity.ResolveRequest{},
			wantErr: domainErrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.resolver.Resolve(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentityResolver_LookupErrorTreatedAsNotFound(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	resolver := usecase.NewIdentityResolver(users, usecase.UnresolvedFail, zap.NewNop())

	users.On("GetByID", ctx, "not-a-uuid").Return(nil, errors.New("invalid input syntax for type uuid"))
	users.On("GetByEmail", ctx, "real@user.com").Return(&entity.User{ID: "user_7"}, nil)

	got, err := resolver.Resolve(ctx, entity.ResolveRequest{IDOrEmail: "not-a-uuid", FallbackEmail: "real@user.com"})
	require.NoError(t, err)
	assert.Equal(t, "user_7", got)
	users.AssertExpectations(t)
}

func TestIdentityResolver_EmailLookupFailureIsPersistenceError(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	resolver := usecase.NewIdentityResolver(users, usecase.UnresolvedFail, zap.NewNop())

	users.On("GetByID", ctx, "user_1").Return(nil, nil)
	users.On("GetByEmail", ctx, "a@example.com").Return(nil, errors.New("connection reset"))

	_, err := resolver.Resolve(ctx, entity.ResolveRequest{IDOrEmail: "user_1", FallbackEmail: "a@example.com"})
	assert.True(t, domainErrors.IsPersistenceError(err))
}

func TestIdentityResolver_UseFirstPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("returns oldest user", func(t *testing.T) {
		f := newFixture(t, usecase.UnresolvedUseFirst)
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		f.addUser(t, "user_b", "", base.Add(time.Hour))
		f.addUser(t, "user_a", "", base)

		got, err := f.resolver.Resolve(ctx, entity.ResolveRequest{IDOrEmail: "ghost"})
		require.NoError(t, err)
		assert.Equal(t, "user_a", got)
	})

	t.Run("empty directory still fails", func(t *testing.T) {
		f := newFixture(t, usecase.UnresolvedUseFirst)

		_, err := f.resolver.Resolve(ctx, entity.ResolveRequest{IDOrEmail: "ghost"})
		assert.ErrorIs(t, err, domainErrors.ErrUserNotFound)
	})

	t.Run("default policy fails", func(t *testing.T) {
		users := new(MockUserRepository)
		resolver := usecase.NewIdentityResolver(users, "", zap.NewNop())
		users.On("GetByID", ctx, "ghost").Return(nil, nil)
		users.On("GetByEmail", ctx, "ghost").Return(nil, nil)

		_, err := resolver.Resolve(ctx, entity.ResolveRequest{IDOrEmail: "ghost"})
		assert.ErrorIs(t, err, domainErrors.ErrUserNotFound)
		users.AssertNotCalled(t, "GetFirst", mock.Anything)
	})
}
