package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log defaults to a nop logger so packages (and their tests) can log without
// calling InitLogger first.
var Log = zap.NewNop()

func InitLogger(mode string) {
	var config zap.Config

	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	config.OutputPaths = []string{"stdout"}
	built, err := config.Build()
	if err != nil {
		os.Exit(1)
	}
	Log = built
	zap.ReplaceGlobals(Log)
}
