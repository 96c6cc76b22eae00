package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/taskhive/taskhive-server/config"
)

var Log *zap.Logger

// Init builds the global logger: JSON to a rotating file plus console output.
func Init(cfg *config.LogConfig) error {
	level := new(zapcore.Level)
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	fileSyncer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
	consoleSyncer := zapcore.AddSync(os.Stdout)

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(consoleSyncer, fileSyncer), level)

	Log = zap.New(core, zap.AddCaller())
	zap.ReplaceGlobals(Log)
	return nil
}

// Sync flushes buffered entries. Safe to call on shutdown even if Init failed.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
