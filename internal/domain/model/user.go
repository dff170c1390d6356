package model

import "time"

// User represents an application user
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Email     *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	AuthID    *string   `gorm:"column:auth_id;size:255;index" json:"auth_id,omitempty"`
	Name      *string   `gorm:"size:255" json:"name,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
