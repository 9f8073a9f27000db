package model

import "time"

// User 通过 Google 登录的用户
type User struct {
	BaseModel

	Subject     string     `gorm:"size:128;uniqueIndex;not null;comment:OAuth sub" json:"-"`
	Email       string     `gorm:"size:255;index" json:"email"`
	Name        string     `gorm:"size:255" json:"name"`
	AvatarURL   string     `gorm:"size:512" json:"avatar_url"`
	LastLoginAt *time.Time `json:"last_login_at"`
}

func (User) TableName() string {
	return "users"
}
