package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Subscription represents a user's subscription
type Subscription struct {
	ID                     string    `gorm:"primaryKey;size:36" json:"id"`
	UserID                 string    `gorm:"column:user_id;size:64;not null;uniqueIndex" json:"user_id"`
	ExternalSubscriptionID string    `gorm:"column:external_subscription_id;size:100;not null;index" json:"external_subscription_id"`
	CustomerID             *string   `gorm:"column:customer_id;size:100" json:"customer_id,omitempty"`
	Status                 string    `gorm:"size:50;not null" json:"status"`
	CurrentPeriodEnd       *int64    `gorm:"column:current_period_end" json:"current_period_end,omitempty"`
	CreatedAt              time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt              time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}

// JSONB represents a JSONB database type
type JSONB map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONB) Scan(src interface{}) error {
	if src == nil {
		*j = nil
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		*j = make(JSONB)
		return nil
	}
}
