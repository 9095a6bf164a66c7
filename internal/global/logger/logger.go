package logger

import "gitlab.com/fcv-2025.net/attempt-service/internal/adapter/logging"

// Logger is used before the configured logger exists and by main.
var Logger = logging.NewZapLogger()

// Configure replaces the process logger once configuration is loaded.
func Configure(level, format string) *logging.ZapLogger {
	Logger = logging.NewZapLoggerWithConfig(level, format)
	return Logger
}

func Info(msg string, args ...interface{}) {
	Logger.Info(msg, args...)
}

func Error(msg string, args ...interface{}) {
	Logger.Error(msg, args...)
}

func Debug(msg string, args ...interface{}) {
	Logger.Debug(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	Logger.Warn(msg, args...)
}
