package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// ParseLevel maps a config string to a LogLevel, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	}
	return LevelInfo
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	case LevelFatal:
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

// Logger is the leveled, printf style logger used across the library.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
}

// NewStdLogger output log to command line
func NewStdLogger(lvl LogLevel) Logger {
	return build(lvl, "stdout")
}

// NewFileLogger output log to a file
func NewFileLogger(lvl LogLevel, filePath string) Logger {
	return build(lvl, filePath)
}

func build(lvl LogLevel, path string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(lvl.zapLevel())
	cfg.OutputPaths = []string{path}
	l, err := cfg.Build()
	if err != nil {
		panic("fail to create logger: " + err.Error())
	}
	return l.Sugar()
}

// FromZap adapts an existing zap logger.
func FromZap(l *zap.Logger) Logger {
	return l.Sugar()
}

// NewNopLogger discards everything.
func NewNopLogger() Logger {
	return zap.NewNop().Sugar()
}
