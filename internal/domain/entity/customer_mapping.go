package entity

import "time"

// CustomerMapping links a provider customer id to a user.
type CustomerMapping struct {
	ID                 int64     `json:"id"`
	ProviderCustomerID string    `json:"provider_customer_id"`
	UserID             string    `json:"user_id"`
	Email              string    `json:"email"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
