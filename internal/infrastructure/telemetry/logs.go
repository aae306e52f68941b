package telemetry

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BridgeLogger also ships entries at or above level to the OTLP log
// exporter. Without a provider the logger comes back untouched.
func BridgeLogger(logger *zap.Logger, provider *sdklog.LoggerProvider, name string, level zapcore.Level) *zap.Logger {
	if provider == nil {
		return logger
	}
	exported, err := zapcore.NewIncreaseLevelCore(otelzap.NewCore(name, otelzap.WithLoggerProvider(provider)), level)
	if err != nil {
		logger.Warn("OTLP log export disabled", zap.Error(err))
		return logger
	}
	return logger.WithOptions(zap.WrapCore(func(local zapcore.Core) zapcore.Core {
		return zapcore.NewTee(local, exported)
	}))
}
