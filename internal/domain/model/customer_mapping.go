package model

import "time"

// CustomerMapping maps provider customer IDs to users
type CustomerMapping struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderCustomerID string    `gorm:"column:provider_customer_id;not null;size:100;uniqueIndex" json:"provider_customer_id"`
	UserID             string    `gorm:"column:user_id;size:64;not null;index" json:"user_id"`
	CustomerEmail      string    `gorm:"size:255" json:"customer_email"`
	CreatedAt          time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (CustomerMapping) TableName() string {
	return "customer_mappings"
}
