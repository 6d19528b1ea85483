package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var glog *zap.Logger

func init() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	glog = logger
}

func SetLogLevel(level string) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		Warn("unknown log level", zap.String("level", level))
		return
	}
	glog = glog.WithOptions(zap.IncreaseLevel(lvl))
}

func Debug(msg string, fields ...zap.Field) {
	glog.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	glog.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	glog.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	glog.Error(msg, fields...)
}
