// Package plog is the ambient logger used by cmd/httpparsedemo and by
// config to report load failures. The core parser package never
// imports this: it stays allocation-free and I/O-free.
package plog

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func toZapLevel(l string) zapcore.Level {
	levels := map[Level]zapcore.Level{
		LevelDebug: zapcore.DebugLevel,
		LevelInfo:  zapcore.InfoLevel,
		LevelWarn:  zapcore.WarnLevel,
		LevelError: zapcore.ErrorLevel,
	}
	if level, ok := levels[Level(strings.ToLower(l))]; ok {
		return level
	}
	return zapcore.InfoLevel
}

// Options configures a Logger. Stream names "stdout", "stderr", or a
// file path; a file path routes through lumberjack for rotation.
type Options struct {
	Level      string
	Stream     string
	MaxSize    int
	MaxAge     int
	MaxBackups int
}

// FromConfigLog builds Options from the level/stream pair a loaded
// config.Log carries, filling in lumberjack rotation defaults.
func FromConfigLog(level, stream string) Options {
	return Options{
		Level:      level,
		Stream:     stream,
		MaxSize:    10,
		MaxAge:     7,
		MaxBackups: 3,
	}
}

type Logger struct {
	sugared *zap.SugaredLogger
}

func (l Logger) Debugf(template string, args ...interface{}) { l.sugared.Debugf(template, args...) }
func (l Logger) Infof(template string, args ...interface{})  { l.sugared.Infof(template, args...) }
func (l Logger) Warnf(template string, args ...interface{})  { l.sugared.Warnf(template, args...) }
func (l Logger) Errorf(template string, args ...interface{}) { l.sugared.Errorf(template, args...) }

func (l Logger) With(args ...interface{}) Logger {
	return Logger{sugared: l.sugared.With(args...)}
}

// New builds a Logger from opt. Stream "stdout"/"stderr" (or empty)
// writes to the matching standard stream; any other value is treated
// as a file path and rotated through lumberjack.
func New(opt Options) Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	var w zapcore.WriteSyncer
	switch strings.ToLower(opt.Stream) {
	case "", "stdout":
		w = zapcore.Lock(os.Stdout)
	case "stderr":
		w = zapcore.Lock(os.Stderr)
	default:
		if err := os.MkdirAll(filepath.Dir(opt.Stream), os.ModePerm); err != nil {
			w = zapcore.Lock(os.Stderr)
			break
		}
		w = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opt.Stream,
			MaxSize:    opt.MaxSize,
			MaxAge:     opt.MaxAge,
			MaxBackups: opt.MaxBackups,
			LocalTime:  true,
		})
	}

	core := zapcore.NewCore(encoder, w, toZapLevel(opt.Level))
	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return Logger{sugared: logger.Sugar()}
}

var (
	stdOpt = Options{Level: string(LevelInfo), Stream: "stdout"}
	std    = New(stdOpt)
)

// SetOptions replaces the package-level default Logger.
func SetOptions(opt Options) {
	stdOpt = opt
	std = New(opt)
}

func Debugf(template string, args ...interface{}) { std.Debugf(template, args...) }
func Infof(template string, args ...interface{})  { std.Infof(template, args...) }
func Warnf(template string, args ...interface{})  { std.Warnf(template, args...) }
func Errorf(template string, args ...interface{}) { std.Errorf(template, args...) }
