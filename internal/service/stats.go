package service

import (
	"github.com/crypto-journal/internal/models"
)

// ComputeTradeStats aggregates a user's active trades into the dashboard
// statistics. Pure: no side effects, no storage access.
//
// Closed trades (non-nil sell time) contribute realized profit and the win
// rate; open trades are valued at cost basis since there is no price feed.
// A trade closed without a recorded profit counts as zero.
func ComputeTradeStats(trades []models.Trade, initialAmount float64) models.TradeStats {
	var totalProfit, openValue float64
	var closedCount, winCount int

	pairProfit := make(map[string]float64)
	var pairs []string

	for i := range trades {
		t := &trades[i]
		if !t.Closed() {
			openValue += t.BuyPrice * t.Quantity
			continue
		}

		closedCount++
		var profit float64
		if t.Profit != nil {
			profit = *t.Profit
		}
		totalProfit += profit
		if profit > 0 {
			winCount++
		}

		if _, ok := pairProfit[t.Market]; !ok {
			pairs = append(pairs, t.Market)
		}
		pairProfit[t.Market] += profit
	}

	var winRate float64
	if closedCount > 0 {
		winRate = float64(winCount) / float64(closedCount) * 100
	}

	stats := models.TradeStats{
		TotalProfit:    totalProfit,
		WinRate:        winRate,
		PortfolioValue: initialAmount + totalProfit + openValue,
	}

	// Best performing pair: highest return on the period's starting capital.
	// Ties break on market name so the result does not depend on insertion
	// order.
	for _, market := range pairs {
		ret := pairProfit[market] / initialAmount * 100
		best := stats.BestPerformingPair
		if best == nil || ret > best.Return || (ret == best.Return && market < best.Market) {
			stats.BestPerformingPair = &models.PairPerformance{Market: market, Return: ret}
		}
	}

	return stats
}
