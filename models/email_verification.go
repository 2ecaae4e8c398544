package models

import "time"

// EmailVerification 注册/重置密码用的邮箱验证码，同一邮箱只保留最新一条
type EmailVerification struct {
	Base
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Code      string    `gorm:"not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}
