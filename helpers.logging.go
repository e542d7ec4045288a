package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const megabyte = 1 << 20

// RSyncWrite is a rotable and concurent safe file-based logs writer used
// as zap.WriteSyncer. A new file is opened once the current one would
// grow beyond the configured max size in megabytes.
type RSyncWrite struct {
	clock Clocker
	sync.Mutex
	file   *os.File
	folder string
	max    int
	size   int64
	isProd bool
}

func NewRSyncWriter(config *Config, clock Clocker) *RSyncWrite {
	return &RSyncWrite{
		clock:  clock,
		folder: config.LogFolder,
		max:    config.LogMaxSize,
		isProd: config.IsProduction,
	}
}

// Close closes the current log file.
func (rsw *RSyncWrite) Close() error {
	rsw.Lock()
	defer rsw.Unlock()
	if rsw.file == nil {
		return nil
	}
	err := rsw.file.Close()
	rsw.file = nil
	return err
}

func (rsw *RSyncWrite) Sync() error {
	rsw.Lock()
	defer rsw.Unlock()
	if rsw.file == nil {
		return nil
	}
	return rsw.file.Sync()
}

// Write implements the io.Writer interface with file rotation on max size.
func (rsw *RSyncWrite) Write(p []byte) (n int, err error) {
	rsw.Lock()
	defer rsw.Unlock()
	pLen := int64(len(p))
	limit := int64(rsw.max) * megabyte
	if pLen > limit {
		return 0, fmt.Errorf("logging: log size %d exceeds max file size %d", pLen, limit)
	}
	if pLen+rsw.size > limit || rsw.file == nil {
		if rsw.file != nil {
			if err := rsw.file.Close(); err != nil {
				return 0, err
			}
		}

		path := CreateLogFilePath(rsw.folder, rsw.isProd, rsw.clock.Now())
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		rsw.file = file
		rsw.size = 0
	}
	n, err = rsw.file.Write(p)
	rsw.size += int64(n)
	return n, err
}

// SyncWrite wraps stdout to ignore Sync. This avoids the usual
// `Handle is invalid` error when syncing a logger on a console.
type SyncWrite struct {
	out *os.File
}

func (sw *SyncWrite) Sync() error {
	return nil
}

func (sw *SyncWrite) Write(p []byte) (n int, err error) {
	return sw.out.Write(p)
}

// SetupLogging initializes the logging module. In production all logs go
// to the rotating files as JSON. In development they are also printed to
// stdout. Only fatal level logs carry a stacktrace. The custom clock gives
// UTC timestamps in production and Local ones in development.
func SetupLogging(config *Config, w zapcore.WriteSyncer, clock TickerClocker) (*zap.Logger, func() error) {
	var zapConfig zapcore.EncoderConfig
	if config.IsProduction {
		zapConfig = zap.NewProductionEncoderConfig()
	} else {
		zapConfig = zap.NewDevelopmentEncoderConfig()
	}
	zapConfig.TimeKey = "ts"
	zapConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.LevelKey = "lvl"
	zapConfig.NameKey = "name"
	zapConfig.MessageKey = "msg"
	zapConfig.CallerKey = "caller"
	zapConfig.StacktraceKey = "skt"

	cores := []zapcore.Core{zapcore.NewCore(zapcore.NewJSONEncoder(zapConfig), w, config.LogLevel)}
	if !config.IsProduction {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zapConfig),
			zapcore.Lock(&SyncWrite{os.Stdout}),
			config.LogLevel,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.FatalLevel), zap.WithClock(clock))
	logger = logger.With(
		zap.String("app.commit", config.GitCommit),
		zap.String("app.tag", config.GitTag),
		zap.String("app.built", config.BuildTime),
	)

	flusher := func() error {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("[flush logs]: %w", err)
		}
		return nil
	}

	return logger, flusher
}

// CreateLogFilePath returns the path of a new log file stamped with t.
func CreateLogFilePath(folder string, isProd bool, t time.Time) string {
	envKey := "dev"
	if isProd {
		envKey = "prod"
	}
	suffix := fmt.Sprintf("%04d%02d%02d.%02d%02d%02d.%s.log", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), envKey)
	return filepath.Join(folder, suffix)
}
