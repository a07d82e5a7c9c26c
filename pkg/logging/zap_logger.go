package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ZapLogger struct {
	sugarLogger *zap.SugaredLogger
}

var _ Logger = (*ZapLogger)(nil)

// NewZapLogger creates a new logger wrapping zap. Development mode logs debug
// and above to stdout and file; production logs info and above to file only.
func NewZapLogger(config LoggerConfig) (*ZapLogger, error) {
	if config.LogDir == "" {
		config.LogDir = BaseDataDir
	}

	logDir := filepath.Join(config.LogDir, LogsDir, string(config.ProcessName))
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}
	logPath := filepath.Join(logDir, "service.log")

	minLevel := zapcore.InfoLevel
	encoderConfig := zap.NewProductionEncoderConfig()
	if config.IsDevelopment {
		minLevel = zapcore.DebugLevel
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	fileEncoder := zapcore.NewJSONEncoder(encoderConfig)
	rotator := NewSequentialRotator(logPath, 64, 7, 10)

	cores := []zapcore.Core{
		zapcore.NewCore(fileEncoder, zapcore.AddSync(rotator), minLevel),
	}
	if config.IsDevelopment {
		consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), minLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))

	return &ZapLogger{sugarLogger: logger.Sugar()}, nil
}

func (z *ZapLogger) Debug(msg string, keysAndValues ...interface{}) {
	z.sugarLogger.Debugw(msg, keysAndValues...)
}

func (z *ZapLogger) Info(msg string, keysAndValues ...interface{}) {
	z.sugarLogger.Infow(msg, keysAndValues...)
}

func (z *ZapLogger) Warn(msg string, keysAndValues ...interface{}) {
	z.sugarLogger.Warnw(msg, keysAndValues...)
}

func (z *ZapLogger) Error(msg string, keysAndValues ...interface{}) {
	z.sugarLogger.Errorw(msg, keysAndValues...)
}

func (z *ZapLogger) Fatal(msg string, keysAndValues ...interface{}) {
	z.sugarLogger.Fatalw(msg, keysAndValues...)
}

func (z *ZapLogger) Debugf(template string, args ...interface{}) {
	z.sugarLogger.Debugf(template, args...)
}

func (z *ZapLogger) Infof(template string, args ...interface{}) {
	z.sugarLogger.Infof(template, args...)
}

func (z *ZapLogger) Warnf(template string, args ...interface{}) {
	z.sugarLogger.Warnf(template, args...)
}

func (z *ZapLogger) Errorf(template string, args ...interface{}) {
	z.sugarLogger.Errorf(template, args...)
}

func (z *ZapLogger) Fatalf(template string, args ...interface{}) {
	z.sugarLogger.Fatalf(template, args...)
}

func (z *ZapLogger) With(keysAndValues ...interface{}) Logger {
	return &ZapLogger{sugarLogger: z.sugarLogger.With(keysAndValues...)}
}

// Sync flushes any buffered log entries.
func (z *ZapLogger) Sync() error {
	return z.sugarLogger.Sync()
}
