package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// TraceLevel indicates a log message's level of criticality
	TraceLevel = iota
	// DebugLevel indicates a log message's level of criticality
	DebugLevel
	// InfoLevel indicates a log message's level of criticality
	InfoLevel
	// WarnLevel indicates a log message's level of criticality
	WarnLevel
	// ErrorLevel indicates a log message's level of criticality
	ErrorLevel
	// FatalLevel indicates a log message's level of criticality
	FatalLevel
)

// LogLevelToString translates a log level enum to a string representation
func LogLevelToString(level int) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	case FatalLevel:
		return "FATAL"
	default:
		return "TRACE"
	}
}

// LevelFromString translates a string representation of a log level into a log level enum
func LevelFromString(level string) (int, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return TraceLevel, nil
	case "DEBUG":
		return DebugLevel, nil
	case "", "INFO":
		return InfoLevel, nil
	case "WARN", "WARNING":
		return WarnLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	case "FATAL":
		return FatalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("%s is an unknown log level", level)
	}
}

// zapLevel maps a log level enum onto zap. zap has no trace level, so trace logs at debug.
func zapLevel(level int) zapcore.Level {
	switch level {
	case TraceLevel, DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

// NewLogger builds a structured console logger at the given level
func NewLogger(level int) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))
	cfg.Sampling = nil
	return cfg.Build()
}
