package repository

import (
	"errors"

	"github.com/crypto-journal/internal/models"
	"gorm.io/gorm"
)

var (
	ErrTradeNotFound = errors.New("trade not found")
)

// TradeRepository handles trade data access
type TradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new TradeRepository
func NewTradeRepository(db *gorm.DB) *TradeRepository {
	return &TradeRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *TradeRepository) WithTx(tx *gorm.DB) *TradeRepository {
	return &TradeRepository{db: tx}
}

// Create creates a new trade
func (r *TradeRepository) Create(trade *models.Trade) error {
	return r.db.Create(trade).Error
}

// GetByID retrieves a trade by ID
func (r *TradeRepository) GetByID(id uint) (*models.Trade, error) {
	var trade models.Trade
	result := r.db.First(&trade, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, result.Error
	}
	return &trade, nil
}

// GetActiveByUserID retrieves a user's active trades, most recent buy first
func (r *TradeRepository) GetActiveByUserID(userID uint) ([]models.Trade, error) {
	var trades []models.Trade
	result := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("buy_time DESC").
		Find(&trades)
	return trades, result.Error
}

// GetActiveByUserIDAsc retrieves a user's active trades in buy order.
// Stats aggregation uses this ordering.
func (r *TradeRepository) GetActiveByUserIDAsc(userID uint) ([]models.Trade, error) {
	var trades []models.Trade
	result := r.db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("buy_time ASC").
		Find(&trades)
	return trades, result.Error
}

// Update updates a trade. Save writes all fields, so cleared columns
// (sell_time set back to NULL) are persisted as well.
func (r *TradeRepository) Update(trade *models.Trade) error {
	return r.db.Save(trade).Error
}

// Delete removes a trade
func (r *TradeRepository) Delete(id uint) error {
	return r.db.Delete(&models.Trade{}, id).Error
}

// SumActiveClosedProfit sums the profit of a user's active, closed trades
func (r *TradeRepository) SumActiveClosedProfit(userID uint) (float64, error) {
	var total struct {
		Sum float64
	}
	err := r.db.Model(&models.Trade{}).
		Select("COALESCE(SUM(profit), 0) as sum").
		Where("user_id = ? AND is_active = ? AND sell_time IS NOT NULL", userID, true).
		Scan(&total).Error
	return total.Sum, err
}

// ArchiveActive moves all of a user's active trades into the given period
func (r *TradeRepository) ArchiveActive(userID, periodID uint) error {
	return r.db.Model(&models.Trade{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]interface{}{
			"is_active":           false,
			"portfolio_period_id": periodID,
		}).Error
}
