package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // hours
}

type GameConfig struct {
	SmallBlind        int64 `mapstructure:"smallBlind"`
	BigBlind          int64 `mapstructure:"bigBlind"`
	StartingChips     int64 `mapstructure:"startingChips"`
	BorrowAmount      int64 `mapstructure:"borrowAmount"`
	BorrowLimit       int   `mapstructure:"borrowLimit"`
	ResetDelaySeconds int   `mapstructure:"resetDelaySeconds"`
}

var GlobalConfig *Config

func LoadConfig(path string) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetDefault("game.smallBlind", 10)
	viper.SetDefault("game.bigBlind", 20)
	viper.SetDefault("game.startingChips", 1000)
	viper.SetDefault("game.borrowAmount", 1000)
	viper.SetDefault("game.borrowLimit", 3)
	viper.SetDefault("game.resetDelaySeconds", 10)

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file, %s", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
	GlobalConfig = &cfg
}
