package model

import "gorm.io/gorm"

// User represents an account that can sign in to the API.
// @Description User account information
type User struct {
	gorm.Model
	Name           string `json:"name" gorm:"column:name;type:varchar(100)"`
	Username       string `json:"username" gorm:"column:username;type:varchar(100);not null"`
	Email          string `json:"email" gorm:"column:email;type:varchar(191);uniqueIndex;not null"`
	Password       string `json:"-" gorm:"column:password;type:varchar(255);not null"`
	PasswordSalt   string `json:"-" gorm:"column:password_salt;type:varchar(64)"`
	RoleID         uint32 `json:"role_id" gorm:"column:role_id"`
	FailedAttempts int    `json:"-" gorm:"column:failed_attempts;default:0"`
	LockedUntil    *int64 `json:"-" gorm:"column:locked_until"`
	ResetCode      *int   `json:"-" gorm:"column:reset_code"`
}
