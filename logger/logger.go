// Package logger monta o *zap.Logger do serviço a partir da configuração.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New cria o logger: produção usa a config de produção do zap (sem
// stacktrace, com amostragem), o resto usa a de desenvolvimento.
// format "json" força JSON; qualquer outro valor usa console.
func New(environment, level, format string) (*zap.Logger, error) {
	var config zap.Config
	if environment == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.DisableStacktrace = true
		config.Sampling = &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		}
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	if format == "json" {
		config.Encoding = "json"
		// cores só fazem sentido no console
		if environment != "production" {
			config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	} else {
		config.Encoding = "console"
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config.Build(zap.AddCaller())
}

// ParseLevel aceita debug, info, warn/warning, error; o padrão é info.
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
	default:
		return zapcore.InfoLevel
	}
}
