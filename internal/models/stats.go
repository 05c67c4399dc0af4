package models

// PairPerformance is the realized return of a single market within the
// current period, as a percentage of the period's starting capital.
type PairPerformance struct {
	Market string  `json:"market"`
	Return float64 `json:"return"`
}

// TradeStats is the aggregate view of a user's current period.
type TradeStats struct {
	TotalProfit        float64          `json:"totalProfit"`
	WinRate            float64          `json:"winRate"`
	PortfolioValue     float64          `json:"portfolioValue"`
	BestPerformingPair *PairPerformance `json:"bestPerformingPair"`
}
