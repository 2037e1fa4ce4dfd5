package user

import "time"

type UserModel struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;size:191;not null"`
	Name         string    `gorm:"size:64;not null"`
	Username     string    `gorm:"size:64;not null;default:''"`
	PasswordHash string    `gorm:"size:100;not null"`
	Role         string    `gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time `gorm:"index"`
}

func (UserModel) TableName() string { return "users" }
