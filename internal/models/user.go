// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email         string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash  string     `json:"-" gorm:"size:255;not null"`
	IsAdmin       bool       `json:"is_admin" gorm:"default:false"`
	IsPaid        bool       `json:"is_paid" gorm:"default:false"`
	PaidAt        *time.Time `json:"paid_at"`
	AnalysisCount int        `json:"analysis_count" gorm:"default:0"`
	LastLoginAt   *time.Time `json:"last_login_at"`

	// Relationships
	Orders []PaymentOrder `json:"orders,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}
