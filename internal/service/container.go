package service

import (
	"holdem-service/internal/game"
	"holdem-service/internal/service/auth"
	"holdem-service/internal/service/room"
	"holdem-service/internal/service/user"
	"holdem-service/internal/service/wallet"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Auth   *auth.Service
	User   *user.Service
	Room   *room.Service
	Wallet *wallet.Service
	Tables *game.Registry
}

func NewContainer(db *gorm.DB, rdb *redis.Client) *Container {
	tables := game.NewRegistry()
	return &Container{
		Auth:   auth.NewService(db, rdb),
		User:   user.NewService(db),
		Room:   room.NewService(db, rdb, tables),
		Wallet: wallet.NewService(db),
		Tables: tables,
	}
}
