package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/crypto-journal/internal/models"
	"github.com/crypto-journal/internal/repository"
	"github.com/crypto-journal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTradeService(t *testing.T) (*service.TradeService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := service.NewTradeService(
		repository.NewTradeRepository(db),
		repository.NewUserRepository(db),
		nil,
		nil,
	)
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, email string, initialAmount float64) *models.User {
	t.Helper()
	user := &models.User{
		Email:         email,
		PasswordHash:  "x",
		InitialAmount: initialAmount,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCreateTradeStartsOpenAndActive(t *testing.T) {
	svc, db := newTradeService(t)
	user := seedUser(t, db, "a@example.com", 1000)

	trade, err := svc.Create(context.Background(), user.ID, &service.CreateTradeRequest{
		Market:   "BTC/USDT",
		BuyPrice: 100,
		Quantity: 2,
	})
	require.NoError(t, err)

	assert.True(t, trade.IsActive)
	assert.Nil(t, trade.SellPrice)
	assert.Nil(t, trade.SellTime)
	assert.Nil(t, trade.Profit)
	assert.Nil(t, trade.PortfolioPeriodID)
	assert.False(t, trade.BuyTime.IsZero())
}

func TestCloseTradeComputesProfit(t *testing.T) {
	svc, db := newTradeService(t)
	user := seedUser(t, db, "a@example.com", 1000)

	trade, err := svc.Create(context.Background(), user.ID, &service.CreateTradeRequest{
		Market:   "BTC/USDT",
		BuyPrice: 20,
		Quantity: 3,
	})
	require.NoError(t, err)

	sellPrice := 25.0
	sellTime := time.Now()
	updated, err := svc.Update(context.Background(), user.ID, trade.ID, &service.TradeUpdate{
		SellPrice:    &sellPrice,
		SellPriceSet: true,
		SellTime:     &sellTime,
		SellTimeSet:  true,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Profit)
	assert.Equal(t, 15.0, *updated.Profit, "profit = (25-20)*3")
	require.NotNil(t, updated.SellTime)
}

func TestUpdateUsesNewBuyValuesForProfit(t *testing.T) {
	svc, db := newTradeService(t)
	user := seedUser(t, db, "a@example.com", 1000)

	trade, err := svc.Create(context.Background(), user.ID, &service.CreateTradeRequest{
		Market:   "BTC/USDT",
		BuyPrice: 20,
		Quantity: 3,
	})
	require.NoError(t, err)

	// Buy price and quantity updated in the same call take effect before
	// profit is derived.
	buyPrice := 10.0
	quantity := 4.0
	sellPrice := 12.0
	sellTime := time.Now()
	updated, err := svc.Update(context.Background(), user.ID, trade.ID, &service.TradeUpdate{
		BuyPrice:     &buyPrice,
		Quantity:     &quantity,
		SellPrice:    &sellPrice,
		SellPriceSet: true,
		SellTime:     &sellTime,
		SellTimeSet:  true,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Profit)
	assert.Equal(t, 8.0, *updated.Profit, "profit = (12-10)*4")
}

func TestUpdateRecomputesProfitOnNewSellPrice(t *testing.T) {
	svc, db := newTradeService(t)
	user := seedUser(t, db, "a@example.com", 1000)

	trade, err := svc.Create(context.Background(), user.ID, &service.CreateTradeRequest{
		Market:   "BTC/USDT",
		BuyPrice: 20,
		Quantity: 3,
	})
	require.NoError(t, err)

	first := 22.0
	sellTime := time.Now()
	_, err = svc.Update(context.Background(), user.ID, trade.ID, &service.TradeUpdate{
		SellPrice:    &first,
		SellPriceSet: true,
		SellTime:     &sellTime,
		SellTimeSet:  true,
	})
	require.NoError(t, err)

	second := 25.0
	updated, err := svc.Update(context.Background(), user.ID, trade.ID, &service.TradeUpdate{
		SellPrice:    &second,
		SellPriceSet: true,
	})
	require.NoError(t, err)

	require.NotNil(t, updated.Profit)
	assert.Equal(t, 15.0, *updated.Profit, "stale profit must not be reused")
}

func TestReopenTradeLeavesProfitStale(t *testing.T) {
	svc, db := newTradeService(t)
	user := seedUser(t, db, "a@example.com", 1000)

	trade, err := svc.Create(context.Background(), user.ID, &service.CreateTradeRequest{
		Market:   "BTC/USDT",
		BuyPrice: 20,
		Quantity: 3,
	})
	require.NoError(t, err)

	sellPrice := 25.0
	sellTime := time.Now()
	_, err = svc.Update(context.Background(), user.ID, trade.ID, &service.TradeUpdate{
		SellPrice:    &sellPrice,
		SellPriceSet: true,
		SellTime:     &sellTime,
		SellTimeSet:  true,
	})
	require.NoError(t, err)

	// Explicitly clearing sell time reopens the trade but keeps the last
	// profit figure.
	reopened, err := svc.Update(context.Background(), user.ID, trade.ID, &service.TradeUpdate{
		SellTimeSet: true,
	})
	require.NoError(t, err)

	assert.Nil(t, reopened.SellTime)
	require.NotNil(t, reopened.Profit)
	assert.Equal(t, 15.0, *reopened.Profit)
}

func TestListReturnsActiveTradesOnly(t *testing.T) {
	svc, db := newTradeService(t)
	user := seedUser(t, db, "a@example.com", 1000)

	_, err := svc.Create(context.Background(), user.ID, &service.CreateTradeRequest{
		Market: "BTC/USDT", BuyPrice: 100, Quantity: 1,
	})
	require.NoError(t, err)

	archived := &models.Trade{
		UserID:   user.ID,
		Market:   "ETH/USDT",
		BuyPrice: 10,
		Quantity: 1,
		BuyTime:  time.Now(),
		IsActive: false,
	}
	require.NoError(t, db.Create(archived).Error)

	trades, err := svc.List(user.ID)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "BTC/USDT", trades[0].Market)
}

// Guards against a column default on is_active swallowing explicit false
// values at insert time.
func TestCreatePersistsInactiveTrade(t *testing.T) {
	_, db := newTradeService(t)
	user := seedUser(t, db, "a@example.com", 1000)

	trade := &models.Trade{
		UserID:   user.ID,
		Market:   "ETH/USDT",
		BuyPrice: 10,
		Quantity: 1,
		BuyTime:  time.Now(),
		IsActive: false,
	}
	require.NoError(t, repository.NewTradeRepository(db).Create(trade))

	var stored models.Trade
	require.NoError(t, db.First(&stored, trade.ID).Error)
	assert.False(t, stored.IsActive)
}

func TestUpdateForeignTradeForbiddenAndUnmodified(t *testing.T) {
	svc, db := newTradeService(t)
	owner := seedUser(t, db, "owner@example.com", 1000)
	intruder := seedUser(t, db, "intruder@example.com", 1000)

	trade, err := svc.Create(context.Background(), owner.ID, &service.CreateTradeRequest{
		Market:   "BTC/USDT",
		BuyPrice: 100,
		Quantity: 1,
	})
	require.NoError(t, err)

	sellPrice := 200.0
	_, err = svc.Update(context.Background(), intruder.ID, trade.ID, &service.TradeUpdate{
		SellPrice:    &sellPrice,
		SellPriceSet: true,
	})
	assert.ErrorIs(t, err, service.ErrNotTradeOwner)

	var stored models.Trade
	require.NoError(t, db.First(&stored, trade.ID).Error)
	assert.Nil(t, stored.SellPrice, "foreign update must not modify the trade")
	assert.Nil(t, stored.Profit)
}

func TestDeleteForeignTradeForbidden(t *testing.T) {
	svc, db := newTradeService(t)
	owner := seedUser(t, db, "owner@example.com", 1000)
	intruder := seedUser(t, db, "intruder@example.com", 1000)

	trade, err := svc.Create(context.Background(), owner.ID, &service.CreateTradeRequest{
		Market:   "BTC/USDT",
		BuyPrice: 100,
		Quantity: 1,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), intruder.ID, trade.ID)
	assert.ErrorIs(t, err, service.ErrNotTradeOwner)

	var count int64
	require.NoError(t, db.Model(&models.Trade{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTradeNotFound(t *testing.T) {
	svc, db := newTradeService(t)
	user := seedUser(t, db, "a@example.com", 1000)

	_, err := svc.Update(context.Background(), user.ID, 9999, &service.TradeUpdate{})
	assert.ErrorIs(t, err, repository.ErrTradeNotFound)

	err = svc.Delete(context.Background(), user.ID, 9999)
	assert.ErrorIs(t, err, repository.ErrTradeNotFound)
}

func TestStatsEndToEnd(t *testing.T) {
	svc, db := newTradeService(t)
	user := seedUser(t, db, "a@example.com", 1000)

	closed, err := svc.Create(context.Background(), user.ID, &service.CreateTradeRequest{
		Market:   "BTC/USDT",
		BuyPrice: 10,
		Quantity: 5,
	})
	require.NoError(t, err)

	sellPrice := 12.0
	sellTime := time.Now()
	_, err = svc.Update(context.Background(), user.ID, closed.ID, &service.TradeUpdate{
		SellPrice:    &sellPrice,
		SellPriceSet: true,
		SellTime:     &sellTime,
		SellTimeSet:  true,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), user.ID, &service.CreateTradeRequest{
		Market:   "ETH/USDT",
		BuyPrice: 100,
		Quantity: 2,
	})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 10.0, stats.TotalProfit)
	assert.Equal(t, 100.0, stats.WinRate)
	assert.Equal(t, 1210.0, stats.PortfolioValue)
	require.NotNil(t, stats.BestPerformingPair)
	assert.Equal(t, "BTC/USDT", stats.BestPerformingPair.Market)
	assert.InDelta(t, 1.0, stats.BestPerformingPair.Return, 1e-9)
}
