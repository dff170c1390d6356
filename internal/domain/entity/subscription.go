package entity

import "time"

// Subscription is the single recurring-billing record of a user.
// Status is stored as the provider reports it.
type Subscription struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	ExternalSubscriptionID string    `json:"external_subscription_id"`
	CustomerID             *string   `json:"customer_id,omitempty"`
	Status                 string    `json:"status"`
	CurrentPeriodEnd       *int64    `json:"current_period_end,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusCanceled = "canceled"
)

// IsActive reports whether the subscription grants access at now.
// A missing period end is treated as open-ended.
func (s *Subscription) IsActive(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Status != SubscriptionStatusActive && s.Status != SubscriptionStatusTrialing {
		return false
	}
	if s.CurrentPeriodEnd == nil {
		return true
	}
	return time.Unix(*s.CurrentPeriodEnd, 0).After(now)
}
