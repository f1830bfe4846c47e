package user_test

import (
	"context"
	"errors"
	"testing"

	"holdem-service/internal/model"
	"holdem-service/internal/service/user"
	appErr "holdem-service/pkg/errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*gorm.DB, *user.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.SystemConfig{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db, user.NewService(db)
}

func TestRequireAdmin(t *testing.T) {
	ctx := context.Background()
	db, svc := newService(t)

	admin := model.User{Username: "u_admin", PasswordHash: "x", IsAdmin: true}
	mortal := model.User{Username: "u_mortal", PasswordHash: "x"}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	if err := db.Create(&mortal).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if _, err := svc.RequireAdmin(ctx, admin.ID); err != nil {
		t.Fatalf("admin should pass: %v", err)
	}
	if _, err := svc.RequireAdmin(ctx, mortal.ID); !errors.Is(err, appErr.ErrAdminRequired) {
		t.Fatalf("expected ErrAdminRequired, got %v", err)
	}
	if _, err := svc.RequireAdmin(ctx, 99999); !errors.Is(err, appErr.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestBorrowAmountConfig(t *testing.T) {
	ctx := context.Background()
	_, svc := newService(t)

	if got := svc.BorrowAmount(ctx, 1000); got != 1000 {
		t.Fatalf("unset config should fall back, got %d", got)
	}

	if err := svc.SetBorrowAmount(ctx, 2500); err != nil {
		t.Fatalf("set borrow amount failed: %v", err)
	}
	if got := svc.BorrowAmount(ctx, 1000); got != 2500 {
		t.Fatalf("expected configured 2500, got %d", got)
	}

	if err := svc.SetBorrowAmount(ctx, 5000); err != nil {
		t.Fatalf("update borrow amount failed: %v", err)
	}
	if got := svc.BorrowAmount(ctx, 1000); got != 5000 {
		t.Fatalf("expected updated 5000, got %d", got)
	}

	if err := svc.SetBorrowAmount(ctx, 0); !errors.Is(err, appErr.ErrInvalidAmount) {
		t.Fatalf("zero amount must be rejected, got %v", err)
	}
}
