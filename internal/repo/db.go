package repo

import (
	"log"

	"holdem-service/internal/config"
	"holdem-service/internal/model"
	"holdem-service/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := config.GlobalConfig.Database.DSN
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Log.Fatal("Failed to connect to database",
			zap.Error(err),
		)
	}

	err = DB.AutoMigrate(
		&model.User{},
		&model.Room{},
		&model.GameRecord{},
		&model.Transaction{},
		&model.BorrowRecord{},
		&model.SystemConfig{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}
