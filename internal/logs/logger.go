package logs

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// Init builds the global logger. Call once at startup; before that, logging
// is a no-op so packages can log unconditionally in tests.
func Init(logLevel string) {
	config := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level.SetLevel(level)
	logger, _ = config.Build()
}

func L() *zap.Logger {
	return logger
}

func Sync() {
	_ = logger.Sync()
}
