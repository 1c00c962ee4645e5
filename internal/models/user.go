package models

import "time"

// User represents an account that owns tasks.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:100;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:200;not null"`
	PasswordHash string    `json:"-" gorm:"size:512;not null;default:''"` // never serialised
	CreatedAt    time.Time `json:"createdAt" gorm:"not null"`
	Tasks        []Task    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (User) TableName() string { return "users" }
