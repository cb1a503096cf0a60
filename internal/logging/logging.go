// Package logging builds the node's structured logger, replacing the
// teacher's plain log.Printf/log.Fatalf calls with zap across every
// package that accepts a *zap.Logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where log output goes and at what level.
type Config struct {
	// Level is one of "debug", "info", "warn", "error". Empty defaults
	// to "info", matching the config's own default_log_level().
	Level string

	// FilePath, if non-empty, tees output to a rotating file in
	// addition to stderr.
	FilePath string

	// MaxSizeMB is the rotation threshold for FilePath. Zero uses
	// lumberjack's own default (100 MB).
	MaxSizeMB int

	// MaxBackups caps the number of rotated files kept. Zero keeps all.
	MaxBackups int

	// Development enables human-readable console encoding instead of
	// JSON, for local runs.
	Development bool
}

// New builds a *zap.Logger from config. The returned logger's Sync
// should be called before process exit.
func New(config Config) (*zap.Logger, error) {
	level, err := parseLevel(config.Level)
	if err != nil {
		return nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if config.Development {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level),
	}

	if config.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.MaxSizeMB,
			MaxBackups: config.MaxBackups,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	core := zapcore.NewTee(cores...)
	logger := zap.New(core, zap.AddCaller())
	return logger, nil
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
