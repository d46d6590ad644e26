// Package log configures the global zap logger and wraps it with short
// helpers.
package log

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger names passed to InitZap and zap.Logger.Named.
const (
	LogNameAdmin    = "admin"
	LogNameBackend  = "backend"
	LogNameRequests = "requests"
	LogNameSQL      = "sql"
	LogNameTest     = "test"
)

// InitZap builds the global logger. Local environments get a colored console
// encoder, everything else JSON. An unknown level falls back to info.
func InitZap(logName string, local bool, level string) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	var logger *zap.Logger
	if local {
		logger = zap.New(
			getStandardCore(lvl),
			zap.AddStacktrace(zap.WarnLevel),
			zap.AddCaller(),
			zap.Development(),
		)
	} else {
		logger = zap.New(
			getJSONCore(lvl),
			zap.AddStacktrace(zap.ErrorLevel),
			zap.AddCaller(),
		)
	}

	logger = logger.Named(logName)

	zap.ReplaceGlobals(logger)
	return nil
}

func getStandardCore(level zapcore.Level) zapcore.Core {
	config := zap.NewDevelopmentEncoderConfig()
	config.EncodeLevel = zapcore.CapitalColorLevelEncoder

	encoder := zapcore.NewConsoleEncoder(config)
	output := zapcore.Lock(os.Stdout)

	return zapcore.NewCore(encoder, output, zap.NewAtomicLevelAt(level))
}

func getJSONCore(level zapcore.Level) zapcore.Core {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	output := zapcore.Lock(os.Stdout)

	return zapcore.NewCore(encoder, output, zap.NewAtomicLevelAt(level))
}

// Flush writes out any buffered entries.
func Flush() {
	_ = zap.L().Sync()
}

func Debug(msg string, fields ...zap.Field) {
	zap.L().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	zap.L().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	zap.L().Warn(msg, fields...)
}

func Err(msg string, fields ...zap.Field) {
	zap.L().Error(msg, fields...)
}

// The logger then calls os.Exit(1)
func Fatal(msg string, fields ...zap.Field) {
	zap.L().Fatal(msg, fields...)
}
