package logger

import (
	"io"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log      atomic.Pointer[zap.SugaredLogger]
	initOnce sync.Once
)

// Init configures the package logger. Production builds log JSON at info level,
// everything else logs colored console output at debug level.
func Init() {
	InitWithEnv(os.Getenv("ENV"))
}

func InitWithEnv(env string) {
	var cfg zap.Config

	if env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewExample()
	}
	log.Store(l.Sugar())
}

// New wraps a core into the package logger type.
func New(core zapcore.Core) *zap.SugaredLogger {
	return zap.New(core, zap.AddCallerSkip(1)).Sugar()
}

// NewJSONCore writes JSON entries at or above level to w.
func NewJSONCore(w io.Writer, level zapcore.Level) zapcore.Core {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return zapcore.NewCore(enc, zapcore.AddSync(w), level)
}

// SetOutput replaces the package logger, mostly for tests.
func SetOutput(l *zap.SugaredLogger) {
	log.Store(l)
}

// get falls back to Init the first time a message is logged before the
// application configured the logger.
func get() *zap.SugaredLogger {
	if l := log.Load(); l != nil {
		return l
	}
	initOnce.Do(func() {
		if log.Load() == nil {
			Init()
		}
	})
	return log.Load()
}

func Info(msg string, keysAndValues ...interface{}) {
	get().Infow(msg, keysAndValues...)
}

func Infof(format string, v ...interface{}) {
	get().Infof(format, v...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	get().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	get().Errorw(msg, keysAndValues...)
}

func Errorf(format string, v ...interface{}) {
	get().Errorf(format, v...)
}

func Debug(msg string, keysAndValues ...interface{}) {
	get().Debugw(msg, keysAndValues...)
}

func Debugf(format string, v ...interface{}) {
	get().Debugf(format, v...)
}

func Fatal(msg string, keysAndValues ...interface{}) {
	get().Fatalw(msg, keysAndValues...)
}

func Fatalf(format string, v ...interface{}) {
	get().Fatalf(format, v...)
}

func WithError(err error) *zap.SugaredLogger {
	return get().With("error", err)
}

func WithFields(fields map[string]interface{}) *zap.SugaredLogger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return get().With(args...)
}

// Sync flushes buffered entries.
func Sync() {
	if l := log.Load(); l != nil {
		_ = l.Sync()
	}
}
