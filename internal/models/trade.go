package models

import (
	"time"
)

// Trade represents a single buy (and optional sell) of a market pair.
// Profit is derived once, when the trade is closed or its sell price is
// updated; it is never re-derived on read.
type Trade struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"index;not null" json:"userId"`
	Market            string     `gorm:"size:20;not null;index" json:"market"`
	BuyPrice          float64    `gorm:"not null" json:"buyPrice"`
	SellPrice         *float64   `json:"sellPrice"`
	Quantity          float64    `gorm:"not null" json:"quantity"`
	BuyTime           time.Time  `gorm:"index" json:"buyTime"`
	SellTime          *time.Time `json:"sellTime"`
	Profit            *float64   `json:"profit"`
	IsActive          bool       `gorm:"not null;index" json:"isActive"`
	PortfolioPeriodID *uint      `gorm:"index" json:"portfolioPeriodId"`
	CreatedAt         time.Time  `json:"-"`
	UpdatedAt         time.Time  `json:"-"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for Trade model
func (Trade) TableName() string {
	return "trades"
}

// Closed reports whether the trade has been sold.
func (t *Trade) Closed() bool {
	return t.SellTime != nil
}
