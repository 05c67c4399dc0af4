package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/crypto-journal/internal/cache"
	"github.com/crypto-journal/internal/models"
	"github.com/crypto-journal/internal/repository"
	"github.com/crypto-journal/internal/stream"
)

var (
	ErrNotTradeOwner = errors.New("trade does not belong to this user")
)

// TradeService handles trade ledger operations. Every operation takes the
// authenticated user's id explicitly.
type TradeService struct {
	tradeRepo  *repository.TradeRepository
	userRepo   *repository.UserRepository
	statsCache *cache.StatsCache
	hub        *stream.Hub
}

// NewTradeService creates a new TradeService. Cache and hub may be nil.
func NewTradeService(
	tradeRepo *repository.TradeRepository,
	userRepo *repository.UserRepository,
	statsCache *cache.StatsCache,
	hub *stream.Hub,
) *TradeService {
	return &TradeService{
		tradeRepo:  tradeRepo,
		userRepo:   userRepo,
		statsCache: statsCache,
		hub:        hub,
	}
}

// CreateTradeRequest represents a new trade entry
type CreateTradeRequest struct {
	Market   string  `json:"market" binding:"required"`
	BuyPrice float64 `json:"buyPrice" binding:"required,gt=0"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
}

// TradeUpdate carries the fields of a partial trade update. The Set flags
// distinguish an explicit null (clear the column) from an absent field.
type TradeUpdate struct {
	Market       *string
	BuyPrice     *float64
	Quantity     *float64
	SellPrice    *float64
	SellPriceSet bool
	SellTime     *time.Time
	SellTimeSet  bool
}

// List returns the user's active trades, most recent buy first
func (s *TradeService) List(userID uint) ([]models.Trade, error) {
	return s.tradeRepo.GetActiveByUserID(userID)
}

// Create records a new trade. New trades are always open and active.
func (s *TradeService) Create(ctx context.Context, userID uint, req *CreateTradeRequest) (*models.Trade, error) {
	trade := &models.Trade{
		UserID:   userID,
		Market:   req.Market,
		BuyPrice: req.BuyPrice,
		Quantity: req.Quantity,
		BuyTime:  time.Now(),
		IsActive: true,
	}

	if err := s.tradeRepo.Create(trade); err != nil {
		return nil, err
	}

	s.refreshStats(ctx, userID)
	return trade, nil
}

// Update applies a partial update to a trade the user owns.
//
// Whenever a non-null sell price is supplied, profit is recomputed from the
// effective buy price and quantity, taking values supplied in the same
// update over the stored ones. Clearing the sell time reopens the trade and
// leaves the last profit in place.
func (s *TradeService) Update(ctx context.Context, userID, tradeID uint, upd *TradeUpdate) (*models.Trade, error) {
	trade, err := s.tradeRepo.GetByID(tradeID)
	if err != nil {
		return nil, err
	}
	if trade.UserID != userID {
		return nil, ErrNotTradeOwner
	}

	if upd.Market != nil {
		trade.Market = *upd.Market
	}
	if upd.BuyPrice != nil {
		trade.BuyPrice = *upd.BuyPrice
	}
	if upd.Quantity != nil {
		trade.Quantity = *upd.Quantity
	}
	if upd.SellPriceSet {
		trade.SellPrice = upd.SellPrice
		if upd.SellPrice != nil {
			profit := (*upd.SellPrice - trade.BuyPrice) * trade.Quantity
			trade.Profit = &profit
		}
	}
	if upd.SellTimeSet {
		trade.SellTime = upd.SellTime
	}

	if err := s.tradeRepo.Update(trade); err != nil {
		return nil, err
	}

	s.refreshStats(ctx, userID)
	return trade, nil
}

// Delete removes a trade the user owns
func (s *TradeService) Delete(ctx context.Context, userID, tradeID uint) error {
	trade, err := s.tradeRepo.GetByID(tradeID)
	if err != nil {
		return err
	}
	if trade.UserID != userID {
		return ErrNotTradeOwner
	}

	if err := s.tradeRepo.Delete(trade.ID); err != nil {
		return err
	}

	s.refreshStats(ctx, userID)
	return nil
}

// Stats returns the user's current-period statistics, from cache when fresh
func (s *TradeService) Stats(ctx context.Context, userID uint) (*models.TradeStats, error) {
	if stats, ok := s.statsCache.Get(ctx, userID); ok {
		return stats, nil
	}
	return s.RefreshStats(ctx, userID)
}

// RefreshStats recomputes the user's statistics, writes them through the
// cache and pushes them to connected dashboards
func (s *TradeService) RefreshStats(ctx context.Context, userID uint) (*models.TradeStats, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	trades, err := s.tradeRepo.GetActiveByUserIDAsc(userID)
	if err != nil {
		return nil, err
	}

	stats := ComputeTradeStats(trades, user.InitialAmount)
	s.statsCache.Set(ctx, userID, &stats)

	if s.hub != nil {
		if payload, err := json.Marshal(&stats); err == nil {
			s.hub.Publish(userID, payload)
		}
	}

	return &stats, nil
}

func (s *TradeService) refreshStats(ctx context.Context, userID uint) {
	if _, err := s.RefreshStats(ctx, userID); err != nil {
		log.Printf("[TradeService] failed to refresh stats for user %d: %v", userID, err)
	}
}
