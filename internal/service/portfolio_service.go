package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/crypto-journal/internal/models"
	"github.com/crypto-journal/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount = errors.New("amount must be greater than zero")
)

// PortfolioService handles portfolio periods and the reset transition
type PortfolioService struct {
	db            *gorm.DB
	userRepo      *repository.UserRepository
	tradeRepo     *repository.TradeRepository
	portfolioRepo *repository.PortfolioRepository
	tradeService  *TradeService

	resetLocks sync.Map // userID -> *sync.Mutex
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	tradeRepo *repository.TradeRepository,
	portfolioRepo *repository.PortfolioRepository,
	tradeService *TradeService,
) *PortfolioService {
	return &PortfolioService{
		db:            db,
		userRepo:      userRepo,
		tradeRepo:     tradeRepo,
		portfolioRepo: portfolioRepo,
		tradeService:  tradeService,
	}
}

// Reset archives the current portfolio period and opens a new one with the
// given baseline. The whole transition runs in a single transaction: summing
// realized profit, closing the outgoing period, archiving every active trade
// onto it, opening the new period and updating the user's baseline either
// all happen or none do.
//
// Reset is not idempotent: each call archives one more period.
func (s *PortfolioService) Reset(ctx context.Context, userID uint, newAmount float64) (*models.User, error) {
	if newAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	// Serialize resets per user on top of the database transaction. SQLite
	// has no row locks, and two concurrent resets must not double-archive
	// trades or leave two open periods.
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var updated *models.User
	err := s.db.Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		trades := s.tradeRepo.WithTx(tx)
		periods := s.portfolioRepo.WithTx(tx)

		user, err := users.GetByID(userID)
		if err != nil {
			return err
		}

		realized, err := trades.SumActiveClosedProfit(userID)
		if err != nil {
			return err
		}

		now := time.Now()
		final := user.InitialAmount + realized

		outgoing, err := periods.GetOpenByUserID(userID)
		switch {
		case err == nil:
			// A prior reset opened this period; close it in place so at
			// most one open period ever exists.
			outgoing.InitialAmount = user.InitialAmount
			outgoing.FinalAmount = &final
			outgoing.EndDate = &now
			if err := periods.Update(outgoing); err != nil {
				return err
			}
		case errors.Is(err, repository.ErrPeriodNotFound):
			// First reset: materialize the implicit signup period.
			outgoing = &models.PortfolioPeriod{
				UserID:        userID,
				InitialAmount: user.InitialAmount,
				FinalAmount:   &final,
				StartDate:     user.CreatedAt,
				EndDate:       &now,
			}
			if err := periods.Create(outgoing); err != nil {
				return err
			}
		default:
			return err
		}

		if err := trades.ArchiveActive(userID, outgoing.ID); err != nil {
			return err
		}

		if err := periods.Create(&models.PortfolioPeriod{
			UserID:        userID,
			InitialAmount: newAmount,
			StartDate:     now,
		}); err != nil {
			return err
		}

		user.InitialAmount = newAmount
		if err := users.Update(user); err != nil {
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.tradeService.refreshStats(ctx, userID)
	return updated, nil
}

// History returns all of the user's periods, newest first, with their
// archived trades nested
func (s *PortfolioService) History(userID uint) ([]models.PortfolioPeriod, error) {
	return s.portfolioRepo.GetByUserIDWithTrades(userID)
}

// UpdateInitialAmount adjusts the baseline capital of the current open
// period without archiving anything
func (s *PortfolioService) UpdateInitialAmount(ctx context.Context, userID uint, amount float64) (*models.User, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateInitialAmount(userID, amount); err != nil {
		return nil, err
	}
	user.InitialAmount = amount

	s.tradeService.refreshStats(ctx, userID)
	return user, nil
}

func (s *PortfolioService) userLock(userID uint) *sync.Mutex {
	v, _ := s.resetLocks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
