package handler

import (
	"errors"

	"github.com/crypto-journal/internal/middleware"
	"github.com/crypto-journal/internal/repository"
	"github.com/crypto-journal/internal/service"
	"github.com/crypto-journal/pkg/response"
	"github.com/gin-gonic/gin"
)

// PortfolioHandler handles portfolio period API requests
type PortfolioHandler struct {
	portfolioService *service.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// Reset archives the current period and starts a new one
// POST /api/portfolio/reset
func (h *PortfolioHandler) Reset(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req struct {
		NewAmount float64 `json:"newAmount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.portfolioService.Reset(c.Request.Context(), userID, req.NewAmount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			response.BadRequest(c, "new amount must be greater than 0")
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			response.InternalError(c, "failed to reset portfolio")
		}
		return
	}

	response.Success(c, user)
}

// History returns all of the user's periods with their archived trades
// GET /api/portfolio/history
func (h *PortfolioHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)

	history, err := h.portfolioService.History(userID)
	if err != nil {
		response.InternalError(c, "failed to load portfolio history")
		return
	}

	response.Success(c, gin.H{"history": history})
}

// RegisterRoutes registers portfolio routes
func (h *PortfolioHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	portfolio := rg.Group("/portfolio", authMiddleware)
	{
		portfolio.POST("/reset", h.Reset)
		portfolio.GET("/history", h.History)
	}
}
