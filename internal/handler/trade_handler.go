package handler

import (
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/crypto-journal/internal/middleware"
	"github.com/crypto-journal/internal/repository"
	"github.com/crypto-journal/internal/service"
	"github.com/crypto-journal/pkg/response"
	"github.com/gin-gonic/gin"
)

// TradeHandler handles trade ledger API requests
type TradeHandler struct {
	tradeService *service.TradeService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(tradeService *service.TradeService) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// List returns the user's active trades
// GET /api/trades
func (h *TradeHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	trades, err := h.tradeService.List(userID)
	if err != nil {
		response.InternalError(c, "failed to load trades")
		return
	}

	response.Success(c, trades)
}

// Stats returns the user's current-period statistics
// GET /api/trades/stats
func (h *TradeHandler) Stats(c *gin.Context) {
	userID := middleware.GetUserID(c)

	stats, err := h.tradeService.Stats(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to compute stats")
		return
	}

	response.Success(c, stats)
}

// Create records a new trade
// POST /api/trades
func (h *TradeHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	trade, err := h.tradeService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c, "failed to create trade")
		return
	}

	response.Created(c, trade)
}

// Close closes a trade with a sell price and time
// PATCH /api/trades/:id
func (h *TradeHandler) Close(c *gin.Context) {
	userID := middleware.GetUserID(c)

	tradeID, ok := parseTradeID(c)
	if !ok {
		return
	}

	var req struct {
		SellPrice float64 `json:"sellPrice" binding:"required,gt=0"`
		SellTime  string  `json:"sellTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	sellTime, err := time.Parse(time.RFC3339, req.SellTime)
	if err != nil {
		response.BadRequest(c, "invalid sell time")
		return
	}

	upd := &service.TradeUpdate{
		SellPrice:    &req.SellPrice,
		SellPriceSet: true,
		SellTime:     &sellTime,
		SellTimeSet:  true,
	}

	trade, err := h.tradeService.Update(c.Request.Context(), userID, tradeID, upd)
	if err != nil {
		h.handleTradeError(c, err)
		return
	}

	response.Success(c, trade)
}

// Update applies a partial update to a trade. Fields present with a null
// value are cleared (sellTime: null reopens the trade); absent fields are
// left alone.
// PUT /api/trades/:id
func (h *TradeHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)

	tradeID, ok := parseTradeID(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, "failed to read request body")
		return
	}

	var req struct {
		Market    *string  `json:"market"`
		BuyPrice  *float64 `json:"buyPrice"`
		Quantity  *float64 `json:"quantity"`
		SellPrice *float64 `json:"sellPrice"`
		SellTime  *string  `json:"sellTime"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	if req.Market != nil && *req.Market == "" {
		response.BadRequest(c, "market must not be empty")
		return
	}
	if req.BuyPrice != nil && *req.BuyPrice <= 0 {
		response.BadRequest(c, "buy price must be greater than 0")
		return
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		response.BadRequest(c, "quantity must be greater than 0")
		return
	}
	if req.SellPrice != nil && *req.SellPrice <= 0 {
		response.BadRequest(c, "sell price must be greater than 0")
		return
	}

	// Distinguish absent fields from explicit nulls for the nullable
	// columns.
	var raw map[string]json.RawMessage
	_ = json.Unmarshal(body, &raw)

	upd := &service.TradeUpdate{
		Market:   req.Market,
		BuyPrice: req.BuyPrice,
		Quantity: req.Quantity,
	}
	if _, present := raw["sellPrice"]; present {
		upd.SellPriceSet = true
		upd.SellPrice = req.SellPrice
	}
	if _, present := raw["sellTime"]; present {
		upd.SellTimeSet = true
		if req.SellTime != nil {
			sellTime, err := time.Parse(time.RFC3339, *req.SellTime)
			if err != nil {
				response.BadRequest(c, "invalid sell time")
				return
			}
			upd.SellTime = &sellTime
		}
	}

	trade, err := h.tradeService.Update(c.Request.Context(), userID, tradeID, upd)
	if err != nil {
		h.handleTradeError(c, err)
		return
	}

	response.Success(c, trade)
}

// Delete removes a trade
// DELETE /api/trades/:id
func (h *TradeHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	tradeID, ok := parseTradeID(c)
	if !ok {
		return
	}

	if err := h.tradeService.Delete(c.Request.Context(), userID, tradeID); err != nil {
		h.handleTradeError(c, err)
		return
	}

	response.NoContent(c)
}

func (h *TradeHandler) handleTradeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrTradeNotFound):
		response.NotFound(c, "trade not found")
	case errors.Is(err, service.ErrNotTradeOwner):
		response.Forbidden(c, "not authorized")
	default:
		response.InternalError(c, "trade operation failed")
	}
}

func parseTradeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid trade id")
		return 0, false
	}
	return uint(id), true
}

// RegisterRoutes registers trade routes
func (h *TradeHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	trades := rg.Group("/trades", authMiddleware)
	{
		trades.GET("", h.List)
		trades.GET("/stats", h.Stats)
		trades.POST("", h.Create)
		trades.PATCH("/:id", h.Close)
		trades.PUT("/:id", h.Update)
		trades.DELETE("/:id", h.Delete)
	}
}
