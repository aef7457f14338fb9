package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName はすべてのログに付与するサービス名
const ServiceName = "stay-reservation"

var log *zap.Logger

func init() {
	log = NewLogger("development")
}

// Init は環境に応じたロガーを作成し、パッケージのロガーとして設定する
func Init(env string) *zap.Logger {
	l := NewLogger(env)
	Set(l)
	return l
}

// NewLogger は production なら JSON、それ以外はカラー付きコンソール形式のロガーを返す
// LOG_LEVEL でレベルを上書きできる
func NewLogger(env string) *zap.Logger {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.InitialFields = map[string]interface{}{"service": ServiceName, "env": env}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if level, err := zapcore.ParseLevel(lvl); err == nil {
			config.Level = zap.NewAtomicLevelAt(level)
		}
	}

	logger, err := config.Build()
	if err != nil {
		// 出力先を開けない場合でも呼び出し側を止めない
		return zap.NewNop()
	}
	return logger
}

func Get() *zap.Logger {
	return log
}

func Set(l *zap.Logger) {
	log = l
}

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	log.Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	log.Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	log.Fatal(msg, fields...)
}

func With(fields ...zap.Field) *zap.Logger {
	return log.With(fields...)
}

func Sync() error {
	return log.Sync()
}
