package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLevel = "info"

// Options controls logger construction.
type Options struct {
	Level string
	// File enables a rotating JSON log file next to stdout when set.
	File string
}

// New builds a structured JSON logger writing to stdout, teed into a
// rotating file when opts.File is set.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(opts.Level)))); err != nil || opts.Level == "" {
		_ = level.UnmarshalText([]byte(defaultLevel))
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	if opts.File == "" {
		cfg := zap.NewProductionConfig()
		cfg.Level = level
		cfg.EncoderConfig = encoderCfg
		cfg.OutputPaths = []string{"stdout"}
		cfg.DisableStacktrace = true
		return cfg.Build()
	}

	rotating := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
	}
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(rotating), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.Lock(os.Stdout), level),
	)
	return zap.New(core, zap.AddCaller()), nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
