package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User 账号与下载券账本。DownloadTickets 只能经由 service 层的原子更新变动，
// 永远不允许为负。
type User struct {
	Base
	Account         string     `gorm:"uniqueIndex;not null" json:"account"`
	Username        string     `gorm:"not null" json:"username"`
	Email           string     `gorm:"uniqueIndex;not null" json:"email"`
	Password        string     `gorm:"not null" json:"-"` // bcrypt hash
	Role            string     `gorm:"default:'user'" json:"role"`
	DownloadTickets int        `gorm:"not null;default:0" json:"download_tickets"`
	IsSponsor       bool       `gorm:"not null;default:false" json:"is_sponsor"`
	LastCheckIn     *time.Time `gorm:"type:date" json:"last_check_in"`
	AvatarURL       string     `json:"avatar_url"`
}

// CheckedInOn 判断用户在给定日期（按自然日）是否已签到
func (u *User) CheckedInOn(day time.Time) bool {
	if u.LastCheckIn == nil {
		return false
	}
	y1, m1, d1 := u.LastCheckIn.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
