package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"holdem-service/internal/config"
	"holdem-service/internal/model"
	pkgAuth "holdem-service/pkg/auth"
	appErr "holdem-service/pkg/errors"
	"holdem-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	maxLoginFailures = 5
	failureWindow    = 10 * time.Minute
)

type Service struct {
	db  *gorm.DB
	rdb *redis.Client
}

type LoginResult struct {
	Token    string     `json:"token"`
	ExpireAt time.Time  `json:"expireAt"`
	User     model.User `json:"user"`
}

func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{db: db, rdb: rdb}
}

func (s *Service) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < 6 {
		return nil, fmt.Errorf("%w: username and a password of at least 6 characters are required", appErr.ErrInvalidCredentials)
	}

	var existing model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, appErr.ErrUsernameTaken
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		Username:     username,
		PasswordHash: string(hash),
		Chips:        config.GlobalConfig.Game.StartingChips,
		BorrowCount:  config.GlobalConfig.Game.BorrowLimit,
		Status:       "active",
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	logger.Log.Info("user registered",
		zap.Int64("userID", user.ID),
		zap.String("username", user.Username),
	)
	return &user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, appErr.ErrInvalidCredentials
	}

	if err := s.checkThrottle(ctx, username); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			s.recordFailure(ctx, username)
			return nil, appErr.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(ctx, username)
		return nil, appErr.ErrInvalidCredentials
	}
	if strings.EqualFold(user.Status, "disabled") {
		return nil, appErr.ErrUserDisabled
	}

	s.clearFailures(ctx, username)

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, err
	}

	token, expireAt, err := pkgAuth.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("user logged in", zap.Int64("userID", user.ID))
	return &LoginResult{
		Token:    token,
		ExpireAt: expireAt,
		User:     user,
	}, nil
}

// checkThrottle refuses logins once an account has burned through its failure
// budget inside the window. Redis being down never locks anyone out.
func (s *Service) checkThrottle(ctx context.Context, username string) error {
	if s.rdb == nil {
		return nil
	}
	n, err := s.rdb.Get(ctx, failureKey(username)).Int()
	if err != nil {
		return nil
	}
	if n >= maxLoginFailures {
		return appErr.ErrTooManyLogins
	}
	return nil
}

func (s *Service) recordFailure(ctx context.Context, username string) {
	if s.rdb == nil {
		return
	}
	key := failureKey(username)
	if n, err := s.rdb.Incr(ctx, key).Result(); err == nil && n == 1 {
		s.rdb.Expire(ctx, key, failureWindow)
	}
}

func (s *Service) clearFailures(ctx context.Context, username string) {
	if s.rdb == nil {
		return
	}
	s.rdb.Del(ctx, failureKey(username))
}

func failureKey(username string) string {
	return "login:fail:" + username
}
