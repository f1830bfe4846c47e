package user

import (
	"context"
	"strconv"

	"holdem-service/internal/model"
	appErr "holdem-service/pkg/errors"

	"gorm.io/gorm"
)

const borrowAmountKey = "borrow_amount"

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// RequireAdmin loads the user and fails unless the admin flag is set.
func (s *Service) RequireAdmin(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, appErr.ErrAdminRequired
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) SetStatus(ctx context.Context, userID int64, status string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appErr.ErrUserNotFound
	}
	return nil
}

// BorrowAmount reads the configured per-borrow chip grant, falling back to
// the given default when nothing is stored.
func (s *Service) BorrowAmount(ctx context.Context, fallback int64) int64 {
	var cfg model.SystemConfig
	err := s.db.WithContext(ctx).Where("key = ?", borrowAmountKey).First(&cfg).Error
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseInt(cfg.Value, 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func (s *Service) SetBorrowAmount(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return appErr.ErrInvalidAmount
	}
	cfg := model.SystemConfig{Key: borrowAmountKey}
	if err := s.db.WithContext(ctx).Where("key = ?", borrowAmountKey).FirstOrCreate(&cfg).Error; err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&cfg).Update("value", strconv.FormatInt(amount, 10)).Error
}
