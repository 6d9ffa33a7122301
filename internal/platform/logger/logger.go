package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.SugaredLogger so call sites log key/value pairs without
// importing zap directly.
type Logger struct {
	*zap.SugaredLogger
}

// L is the process-wide default, replaced by New in the composition root.
// Scripts and tests can use it without wiring.
var L = newNop()

// New builds a production JSON logger at the given level ("debug", "info",
// "warn", "error"; anything else falls back to info).
func New(level string) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	l := &Logger{SugaredLogger: zl.Sugar()}
	L = l
	return l, nil
}

func newNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}
