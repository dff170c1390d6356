package repository

import (
	"context"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
)

// UserRepository is the user directory. Lookups return (nil, nil) when
// nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail matches case-insensitively on the trimmed email.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetFirst returns the oldest user.
	GetFirst(ctx context.Context) (*entity.User, error)
	// LinkEmail sets the email of a user that has none. It reports false
	// when the user already had an email.
	LinkEmail(ctx context.Context, id, email string) (bool, error)
}
