package models

import (
	"time"
)

// PortfolioPeriod is a contiguous span of trading activity between resets.
// The current period has EndDate == nil; at most one open period exists per
// user at any time.
type PortfolioPeriod struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"index;not null" json:"userId"`
	InitialAmount float64    `gorm:"not null" json:"initialAmount"`
	FinalAmount   *float64   `json:"finalAmount"`
	StartDate     time.Time  `gorm:"index;not null" json:"startDate"`
	EndDate       *time.Time `json:"endDate"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`

	// Relations
	Trades []Trade `gorm:"foreignKey:PortfolioPeriodID" json:"trades"`
}

// TableName specifies the table name for PortfolioPeriod model
func (PortfolioPeriod) TableName() string {
	return "portfolio_periods"
}

// Open reports whether this is the user's current, unarchived period.
func (p *PortfolioPeriod) Open() bool {
	return p.EndDate == nil
}
