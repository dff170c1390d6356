package model

import "time"

// Payment represents a completed checkout session
type Payment struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	UserID            string    `gorm:"column:user_id;size:64;not null;index" json:"user_id"`
	ExternalSessionID string    `gorm:"column:external_session_id;size:255;not null;uniqueIndex" json:"external_session_id"`
	Status            string    `gorm:"size:50;not null" json:"status"`
	Amount            int64     `gorm:"not null;default:0" json:"amount"`
	Currency          string    `gorm:"size:3;not null;default:'usd'" json:"currency"`
	ProductName       string    `gorm:"size:255" json:"product_name"`
	PaymentMode       string    `gorm:"size:20" json:"payment_mode"`
	CustomerID        *string   `gorm:"column:customer_id;size:100" json:"customer_id,omitempty"`
	SubscriptionID    *string   `gorm:"column:subscription_id;size:100;index" json:"subscription_id,omitempty"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
