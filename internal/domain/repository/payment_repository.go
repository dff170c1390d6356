package repository

import (
	"context"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
)

type PaymentRepository interface {
	// CreateIfAbsent inserts payment unless a row with the same external
	// session id exists. Nil optional fields are left out of the insert.
	CreateIfAbsent(ctx context.Context, payment *entity.Payment) (bool, error)
	GetByExternalSessionID(ctx context.Context, sessionID string) (*entity.Payment, error)
	// UpdateStatus reports false when no payment has the session id.
	UpdateStatus(ctx context.Context, sessionID string, status entity.PaymentStatus, updatedAt time.Time) (bool, error)
	ListByUserID(ctx context.Context, userID string, offset, limit int) ([]*entity.Payment, int64, error)
}
