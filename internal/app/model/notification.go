package model

import (
	"time"

	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeKYCApproved     NotificationType = "kyc_approved"
	NotificationTypeKYCRejected     NotificationType = "kyc_rejected"
	NotificationTypeKYCResubmission NotificationType = "kyc_resubmission"
)

type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint  `gorm:"not null;index" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Type    NotificationType `gorm:"type:varchar(50);not null;index" json:"type"`
	Title   string           `gorm:"type:text;not null" json:"title"`
	Content string           `gorm:"type:text;not null" json:"content"`

	IsRead bool `gorm:"default:false;index" json:"is_read"`
}

func (Notification) TableName() string {
	return "notifications"
}
