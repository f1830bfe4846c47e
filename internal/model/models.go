package model

import (
	"time"

	"gorm.io/datatypes"
)

// 2.1 User & Auth

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Username     string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Nickname     string
	Avatar       string
	Chips        int64   `gorm:"default:0"`
	BorrowCount  int     `gorm:"default:3"`
	Level        int     `gorm:"default:1"`
	WinRate      float64 `gorm:"default:0"`
	TotalGames   int     `gorm:"default:0"`
	IsAdmin      bool    `gorm:"default:false"`
	Status       string `gorm:"default:active;not null"` // active/disabled
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// 2.2 Rooms & Hands

type Room struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Name       string `gorm:"not null"`
	CreatorID  int64
	SmallBlind int64
	BigBlind   int64
	MaxPlayers int    `gorm:"default:9"`
	Status     string `gorm:"default:waiting"` // waiting/playing/closed
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type GameRecord struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	RoomID      int64
	PotAmount   int64
	WinnerID    int64
	ResultsJSON datatypes.JSON `gorm:"type:jsonb"` // per-player showdown lines
	CreatedAt   time.Time
}

// 2.3 Wallet

type Transaction struct {
	ID           int64 `gorm:"primaryKey;autoIncrement"`
	UserID       int64
	Type         string // borrow/recharge/win/lose/adjust
	Amount       int64
	BalanceAfter int64
	Status       string `gorm:"default:success"` // pending/success/rejected
	Remark       string `gorm:"size:255"`
	OutTradeNo   string `gorm:"unique"`
	CreatedAt    time.Time
	SettledAt    *time.Time
}

type BorrowRecord struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	UserID         int64
	Amount         int64
	RemainingCount int
	CreatedAt      time.Time
}

type SystemConfig struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:255"`
	UpdatedAt time.Time
}
