package entity

import "time"

// Payment is one completed checkout session.
type Payment struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	ExternalSessionID string        `json:"external_session_id"`
	Status            PaymentStatus `json:"status"`
	Amount            int64         `json:"amount"`
	Currency          string        `json:"currency"`
	ProductName       string        `json:"product_name"`
	PaymentMode       PaymentMode   `json:"payment_mode"`
	CustomerID        *string       `json:"customer_id,omitempty"`
	SubscriptionID    *string       `json:"subscription_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

type PaymentStatus string

const (
	PaymentStatusComplete PaymentStatus = "complete"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusFailed   PaymentStatus = "failed"
)

type PaymentMode string

const (
	PaymentModePayment      PaymentMode = "payment"
	PaymentModeSubscription PaymentMode = "subscription"
	PaymentModeSetup        PaymentMode = "setup"
)
