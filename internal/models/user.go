package models

import (
	"time"
)

// User represents a registered user. InitialAmount is the capital baseline
// of the currently open portfolio period.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	InitialAmount float64   `gorm:"not null" json:"initialAmount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"-"`

	// Relations
	Trades  []Trade           `gorm:"foreignKey:UserID" json:"trades,omitempty"`
	Periods []PortfolioPeriod `gorm:"foreignKey:UserID" json:"periods,omitempty"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
