package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/acdc-digital/solopro-sub000/internal/config"
	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	domainErrors "github.com/acdc-digital/solopro-sub000/internal/domain/errors"
	"github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"go.uber.org/zap"
)

// UnresolvedPolicy decides what happens when no lookup strategy matches.
type UnresolvedPolicy string

const (
	// UnresolvedFail returns ErrUserNotFound.
	UnresolvedFail UnresolvedPolicy = config.UnresolvedPolicyFail
	// UnresolvedUseFirst returns the oldest user. Development only.
	UnresolvedUseFirst UnresolvedPolicy = config.UnresolvedPolicyUseFirst
)

// IdentityResolver maps an id, an email or both to a user id.
type IdentityResolver interface {
	Resolve(ctx context.Context, req entity.ResolveRequest) (string, error)
}

type identityResolver struct {
	users  repository.UserRepository
	policy UnresolvedPolicy
	logger *zap.Logger
}

// NewIdentityResolver creates a resolver. An empty policy means UnresolvedFail.
func NewIdentityResolver(users repository.UserRepository, policy UnresolvedPolicy, logger *zap.Logger) IdentityResolver {
	if policy == "" {
		policy = UnresolvedFail
	}
	return &identityResolver{
		users:  users,
		policy: policy,
		logger: logger,
	}
}

// Resolve tries, in order: IDOrEmail as a user id, FallbackEmail as an
// email, IDOrEmail as an email. The first match wins.
func (r *identityResolver) Resolve(ctx context.Context, req entity.ResolveRequest) (string, error) {
	idOrEmail := strings.TrimSpace(req.IDOrEmail)
	fallbackEmail := strings.TrimSpace(req.FallbackEmail)

	if idOrEmail != "" {
		user, err := r.users.GetByID(ctx, idOrEmail)
		if err != nil {
			// A malformed id is not a reason to stop looking.
			r.logger.Debug("User lookup by id failed, treating as not found",
				zap.String("id_or_email", idOrEmail),
				zap.Error(err))
		} else if user != nil {
			return user.ID, nil
		}
	}

	if fallbackEmail != "" {
		user, err := r.users.GetByEmail(ctx, fallbackEmail)
		if err != nil {
			return "", domainErrors.NewPersistenceError("get user by fallback email", err)
		}
		if user != nil {
			return user.ID, nil
		}
	}

	if idOrEmail != "" {
		user, err := r.users.GetByEmail(ctx, idOrEmail)
		if err != nil {
			return "", domainErrors.NewPersistenceError("get user by email", err)
		}
		if user != nil {
			return user.ID, nil
		}
	}

	return r.unresolved(ctx, idOrEmail, fallbackEmail)
}

func (r *identityResolver) unresolved(ctx context.Context, idOrEmail, fallbackEmail string) (string, error) {
	if r.policy != UnresolvedUseFirst {
		return "", fmt.Errorf("%w: id_or_email=%q fallback_email=%q", domainErrors.ErrUserNotFound, idOrEmail, fallbackEmail)
	}

	user, err := r.users.GetFirst(ctx)
	if err != nil {
		return "", domainErrors.NewPersistenceError("get first user", err)
	}
	if user == nil {
		return "", domainErrors.ErrUserNotFound
	}

	r.logger.Warn("Identity unresolved, falling back to first user",
		zap.String("id_or_email", idOrEmail),
		zap.String("fallback_email", fallbackEmail),
		zap.String("user_id", user.ID))
	return user.ID, nil
}
