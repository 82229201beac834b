// Package logger содержит настройку логгера.
package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config описывает параметры логгера
type Config struct {
	Level      string
	Path       string
	AppDataDir string
	// FileOutput отключает запись в файл, если false
	FileOutput bool
}

// New создает новый логгер
func New(cfg Config) *zap.Logger {
	level := ParseLevel(cfg.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(os.Stdout),
			level,
		),
	}

	if cfg.FileOutput {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   resolvePath(cfg),
				MaxSize:    100, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// ParseLevel переводит строковый уровень в zapcore.Level, по умолчанию info
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// resolvePath выбирает путь к файлу логов: LOG_PATH, затем APP_DATA_DIR, затем ./logs
func resolvePath(cfg Config) string {
	if cfg.Path != "" {
		return cfg.Path
	}

	if cfg.AppDataDir != "" {
		if err := os.MkdirAll(cfg.AppDataDir, 0755); err == nil {
			return filepath.Join(cfg.AppDataDir, "app.log")
		}
	}

	if err := os.MkdirAll("logs", 0755); err == nil {
		return "logs/app.log"
	}

	return "app.log"
}
