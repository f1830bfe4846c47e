package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"holdem-service/internal/config"
	"holdem-service/internal/game"
	"holdem-service/internal/model"
	appErr "holdem-service/pkg/errors"
	"holdem-service/pkg/logger"
	"holdem-service/pkg/utils/random"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

type BorrowResult struct {
	NewChips       int64 `json:"new_chips"`
	RemainingCount int   `json:"remaining_borrow_count"`
	Amount         int64 `json:"amount"`
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Borrow grants a configured chip loan. Only busted or near-busted stacks
// qualify: the balance must not exceed the table's big blind.
func (s *Service) Borrow(ctx context.Context, userID, bigBlind, amount int64) (*BorrowResult, error) {
	if bigBlind <= 0 {
		bigBlind = config.GlobalConfig.Game.BigBlind
	}
	if amount <= 0 {
		amount = config.GlobalConfig.Game.BorrowAmount
	}

	var result *BorrowResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return appErr.ErrUserNotFound
			}
			return err
		}
		if user.BorrowCount <= 0 {
			return appErr.ErrBorrowExhausted
		}
		if user.Chips > bigBlind {
			return appErr.ErrBorrowNotNeeded
		}

		user.Chips += amount
		user.BorrowCount--
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"chips":        user.Chips,
			"borrow_count": user.BorrowCount,
		}).Error; err != nil {
			return err
		}

		record := model.BorrowRecord{
			UserID:         userID,
			Amount:         amount,
			RemainingCount: user.BorrowCount,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		txn := model.Transaction{
			UserID:       userID,
			Type:         "borrow",
			Amount:       amount,
			BalanceAfter: user.Chips,
			Status:       "success",
			Remark:       fmt.Sprintf("borrowed %d chips", amount),
			OutTradeNo:   random.OrderNo("B"),
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		result = &BorrowResult{
			NewChips:       user.Chips,
			RemainingCount: user.BorrowCount,
			Amount:         amount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("chips borrowed",
		zap.Int64("userID", userID),
		zap.Int64("amount", result.Amount),
		zap.Int("remaining", result.RemainingCount),
	)
	return result, nil
}

// CreateRecharge files a pending top-up request for admin review. Chips are
// only credited on approval.
func (s *Service) CreateRecharge(ctx context.Context, userID, amount int64) (*model.Transaction, error) {
	if amount <= 0 {
		return nil, appErr.ErrInvalidAmount
	}
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrUserNotFound
		}
		return nil, err
	}

	txn := model.Transaction{
		UserID:     userID,
		Type:       "recharge",
		Amount:     amount,
		Status:     "pending",
		Remark:     fmt.Sprintf("%s requested %d chips", user.Username, amount),
		OutTradeNo: random.OrderNo("R"),
	}
	if err := s.db.WithContext(ctx).Create(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (s *Service) ApproveRecharge(ctx context.Context, adminUsername string, transactionID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn model.Transaction
		if err := tx.First(&txn, transactionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return appErr.ErrTransactionNotFound
			}
			return err
		}
		if txn.Status != "pending" {
			return appErr.ErrTransactionSettled
		}

		var user model.User
		if err := tx.First(&user, txn.UserID).Error; err != nil {
			return err
		}
		user.Chips += txn.Amount
		if err := tx.Model(&user).Update("chips", user.Chips).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&txn).Updates(map[string]interface{}{
			"status":        "success",
			"balance_after": user.Chips,
			"remark":        txn.Remark + fmt.Sprintf(" - approved by %s", adminUsername),
			"settled_at":    now,
		}).Error
	})
}

func (s *Service) Transactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var txns []model.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// SettleHand writes a finished hand back to storage: a game record with the
// full showdown payload, each player's final stack, and their play stats.
func (s *Service) SettleHand(ctx context.Context, roomID int64, result *game.HandResult) error {
	if result == nil {
		return nil
	}
	payload, err := json.Marshal(result.Results)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := model.GameRecord{
			RoomID:      roomID,
			PotAmount:   result.PotAmount,
			WinnerID:    result.WinnerID,
			ResultsJSON: payload,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		for _, pr := range result.Results {
			var user model.User
			if err := tx.First(&user, pr.UserID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return err
			}

			won := 0.0
			if pr.WinAmount > 0 {
				won = 1.0
			}
			games := user.TotalGames + 1
			rate := (user.WinRate*float64(user.TotalGames) + won) / float64(games)

			if err := tx.Model(&user).Updates(map[string]interface{}{
				"chips":       pr.FinalChips,
				"total_games": games,
				"win_rate":    rate,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
