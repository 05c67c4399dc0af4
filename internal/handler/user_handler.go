package handler

import (
	"errors"

	"github.com/crypto-journal/internal/middleware"
	"github.com/crypto-journal/internal/repository"
	"github.com/crypto-journal/internal/service"
	"github.com/crypto-journal/pkg/response"
	"github.com/gin-gonic/gin"
)

// UserHandler handles account API requests
type UserHandler struct {
	authService      *service.AuthService
	portfolioService *service.PortfolioService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(authService *service.AuthService, portfolioService *service.PortfolioService) *UserHandler {
	return &UserHandler{
		authService:      authService,
		portfolioService: portfolioService,
	}
}

// Signup handles user registration
// POST /api/users/signup
func (h *UserHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, token, err := h.authService.Signup(&req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.BadRequest(c, "email in use")
			return
		}
		response.InternalError(c, "failed to sign up")
		return
	}

	response.Created(c, gin.H{
		"user":  user,
		"token": token,
	})
}

// Signin handles user login
// POST /api/users/signin
func (h *UserHandler) Signin(c *gin.Context) {
	var req service.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, token, err := h.authService.Signin(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		response.InternalError(c, "failed to sign in")
		return
	}

	response.Success(c, gin.H{
		"user":  user,
		"token": token,
	})
}

// Current returns the authenticated user
// GET /api/users/current
func (h *UserHandler) Current(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to load user")
		return
	}

	response.Success(c, user)
}

// UpdateInitialAmount adjusts the current period's baseline capital
// PATCH /api/users/initial-amount
func (h *UserHandler) UpdateInitialAmount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.portfolioService.UpdateInitialAmount(c.Request.Context(), userID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			response.BadRequest(c, "amount must be greater than 0")
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			response.InternalError(c, "failed to update initial amount")
		}
		return
	}

	response.Success(c, user)
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.POST("/signup", h.Signup)
		users.POST("/signin", h.Signin)
		users.GET("/current", authMiddleware, h.Current)
		users.PATCH("/initial-amount", authMiddleware, h.UpdateInitialAmount)
	}
}
