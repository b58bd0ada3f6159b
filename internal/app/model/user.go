package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleCompliance UserRole = "compliance"
	RoleAdmin      UserRole = "admin"
)

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Phone string `gorm:"uniqueIndex" json:"phone"`

	FirstName  string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName   string     `gorm:"type:varchar(100)" json:"last_name"`
	MiddleName string     `gorm:"type:varchar(100)" json:"middle_name"`
	DOB        *time.Time `json:"dob,omitempty"`

	Country  string `gorm:"type:varchar(3)" json:"country"` // ISO-3166 alpha-3
	Address  string `gorm:"type:text" json:"address"`
	City     string `gorm:"type:varchar(100)" json:"city"`
	State    string `gorm:"type:varchar(100)" json:"state"`
	Postcode string `gorm:"type:varchar(20)" json:"postcode"`

	Role UserRole `gorm:"type:varchar(20);default:'user'" json:"role"`

	// KYCVerified flips when the user passes the terminal level of tier one.
	KYCVerified bool `gorm:"default:false" json:"kyc_verified"`
}

func (User) TableName() string {
	return "users"
}
