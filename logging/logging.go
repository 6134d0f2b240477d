// Package logging builds the zap logger shared by the controller. Output goes to
// stderr in console form and, when a file is given, to a size rotated log.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Debug bool
	File  string // rotated log file, empty disables it

	MaxSizeMB  int
	MaxBackups int
}

func (c Config) level() zapcore.Level {
	if c.Debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// New returns the logger and a sync func to defer in main.
func New(conf Config) (*zap.SugaredLogger, func()) {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), conf.level()),
	}

	var file *lumberjack.Logger
	if conf.File != "" {
		file = &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSizeMB,
			MaxBackups: conf.MaxBackups,
			Compress:   true,
		}
		if file.MaxSize == 0 {
			file.MaxSize = 10
		}
		if file.MaxBackups == 0 {
			file.MaxBackups = 3
		}

		fileConfig := zap.NewProductionEncoderConfig()
		fileConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileConfig), zapcore.AddSync(file), conf.level()))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	return logger.Sugar(), func() {
		logger.Sync()
		if file != nil {
			file.Close()
		}
	}
}

// Nop is handed to components that were not asked for diagnostics.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
