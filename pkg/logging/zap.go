package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapConfig controls the zap backend of the launcher's diagnostic log.
// Operator-facing status lines go through pkg/console instead; this log
// carries the component-level trace (spawn, polling, termination).
type ZapConfig struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	Output string // stdout or stderr
}

// ZapAdapter exposes a zap.SugaredLogger through the Logger interface.
type ZapAdapter struct {
	sugar *zap.SugaredLogger
}

func NewZapAdapter(config ZapConfig) *ZapAdapter {
	return &ZapAdapter{
		sugar: createZapLogger(config).Sugar(),
	}
}

func (z *ZapAdapter) Debugf(format string, args ...interface{}) {
	z.sugar.Debugf(format, args...)
}

func (z *ZapAdapter) Infof(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

func (z *ZapAdapter) Warnf(format string, args ...interface{}) {
	z.sugar.Warnf(format, args...)
}

func (z *ZapAdapter) Errorf(format string, args ...interface{}) {
	z.sugar.Errorf(format, args...)
}

// Sync flushes buffered log entries. Errors are deliberately ignored:
// syncing stderr fails on some platforms and there is nothing to do about it.
func (z *ZapAdapter) Sync() {
	_ = z.sugar.Sync()
}

func createZapLogger(config ZapConfig) *zap.Logger {
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	var encoder zapcore.Encoder
	switch config.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	var writeSyncer zapcore.WriteSyncer
	switch config.Output {
	case "stdout":
		writeSyncer = zapcore.Lock(zapcore.AddSync(os.Stdout))
	default:
		writeSyncer = zapcore.Lock(zapcore.AddSync(os.Stderr))
	}

	return zap.New(zapcore.NewCore(encoder, writeSyncer, level))
}
