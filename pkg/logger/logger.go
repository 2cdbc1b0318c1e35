package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Sugared = *zap.SugaredLogger

// New builds the process logger. debug lowers the level to Debug in any env.
func New(env string, debug bool) Sugared {
	var zc zap.Config
	if env == "prod" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if env != "prod" {
		zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	z, err := zc.Build()
	if err != nil {
		z = zap.NewNop()
	}
	return z.Sugar()
}

// Nop returns a logger that discards everything.
func Nop() Sugared { return zap.NewNop().Sugar() }
