package repository

import (
	"errors"

	"github.com/crypto-journal/internal/models"
	"gorm.io/gorm"
)

var (
	ErrPeriodNotFound = errors.New("portfolio period not found")
)

// PortfolioRepository handles portfolio period data access
type PortfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a new PortfolioRepository
func NewPortfolioRepository(db *gorm.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PortfolioRepository) WithTx(tx *gorm.DB) *PortfolioRepository {
	return &PortfolioRepository{db: tx}
}

// Create creates a new portfolio period
func (r *PortfolioRepository) Create(period *models.PortfolioPeriod) error {
	return r.db.Create(period).Error
}

// Update updates a portfolio period
func (r *PortfolioRepository) Update(period *models.PortfolioPeriod) error {
	return r.db.Save(period).Error
}

// GetOpenByUserID retrieves the user's current open period, if any
func (r *PortfolioRepository) GetOpenByUserID(userID uint) (*models.PortfolioPeriod, error) {
	var period models.PortfolioPeriod
	result := r.db.Where("user_id = ? AND end_date IS NULL", userID).First(&period)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPeriodNotFound
		}
		return nil, result.Error
	}
	return &period, nil
}

// GetByUserIDWithTrades retrieves all of a user's periods, newest first,
// with their archived trades nested
func (r *PortfolioRepository) GetByUserIDWithTrades(userID uint) ([]models.PortfolioPeriod, error) {
	var periods []models.PortfolioPeriod
	result := r.db.Where("user_id = ?", userID).
		Preload("Trades", func(db *gorm.DB) *gorm.DB {
			return db.Order("buy_time DESC")
		}).
		Order("start_date DESC").
		Find(&periods)
	return periods, result.Error
}

// CountOpenByUserID counts the user's open periods. The period engine keeps
// this at most 1.
func (r *PortfolioRepository) CountOpenByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PortfolioPeriod{}).
		Where("user_id = ? AND end_date IS NULL", userID).
		Count(&count).Error
	return count, err
}

// CountClosedByUserID counts the user's archived periods
func (r *PortfolioRepository) CountClosedByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PortfolioPeriod{}).
		Where("user_id = ? AND end_date IS NOT NULL", userID).
		Count(&count).Error
	return count, err
}
