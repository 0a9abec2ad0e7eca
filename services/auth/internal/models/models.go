package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"         json:"id"`
	FirstName    string    `gorm:"not null;default:''"              json:"firstName"`
	LastName     string    `gorm:"not null;default:''"              json:"lastName"`
	Phone        string    `gorm:"not null;uniqueIndex:idx_users_phone" json:"phone"`
	Email        string    `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	Login        string    `gorm:"not null;uniqueIndex:idx_users_login" json:"login"`
	PasswordHash string    `gorm:"not null"                         json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
