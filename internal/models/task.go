package models

import "time"

// Task represents a unit of work owned by a user. The owner is fixed at creation.
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"size:200;not null"`
	Description *string    `json:"description,omitempty" gorm:"size:1000"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	UserID      uint       `json:"userId" gorm:"not null;index"`
}

func (Task) TableName() string { return "tasks" }
