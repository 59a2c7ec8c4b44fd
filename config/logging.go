package config

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogWriter is the writer used for application and database logs.
var LogWriter io.Writer = os.Stdout

var (
	logMu  sync.RWMutex
	logger = zap.NewNop().Sugar()
)

// LogFilePath returns the path to the backend log file.
func LogFilePath(dir string) string {
	if dir == "" {
		dir = "logs"
	}
	return filepath.Join(dir, "thesis-api.log")
}

// Logger returns the process-wide structured logger. It is a no-op logger
// until InitLogging runs, which keeps unit tests quiet.
func Logger() *zap.SugaredLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// SetLogger replaces the process-wide logger.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	logMu.Lock()
	logger = l
	logMu.Unlock()
}

// InitLogging builds the zap logger, tees it to stdout and a rotating log
// file, and returns a closer for the file.
func InitLogging(s *Settings) (io.Closer, *zap.SugaredLogger) {
	rotator := &lumberjack.Logger{
		Filename:   LogFilePath(s.LogDir),
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   s.IsProduction(),
	}
	LogWriter = io.MultiWriter(os.Stdout, rotator)

	var encCfg zapcore.EncoderConfig
	var encoder zapcore.Encoder
	level := zapcore.DebugLevel
	if s.IsProduction() {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
		level = zapcore.InfoLevel
	} else {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(LogWriter), zap.NewAtomicLevelAt(level))
	sugar := zap.New(core, zap.AddCaller()).Sugar()
	SetLogger(sugar)
	return rotator, sugar
}
