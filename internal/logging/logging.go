// Package logging 基于 zerolog 的全局日志
//
//	logging.Init(logging.Config{Level: "info", Format: "console"})
//	logging.Info().Str("title", t).Msg("movie added")
//	log := logging.Component("ranking")
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config 日志配置
type Config struct {
	// Level: debug, info, warn, error
	Level string
	// Format: json 或 console
	Format string
	// Output 默认 os.Stderr
	Output io.Writer
}

var (
	logger zerolog.Logger
	mu     sync.RWMutex
)

func init() {
	Init(Config{Level: "info", Format: "console"})
}

// Init 初始化全局日志
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.ToLower(cfg.Format) != "json" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Logger 返回全局日志实例
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Component 返回带 component 字段的子日志
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

func Debug() *zerolog.Event {
	l := Logger()
	return l.Debug()
}

func Info() *zerolog.Event {
	l := Logger()
	return l.Info()
}

func Warn() *zerolog.Event {
	l := Logger()
	return l.Warn()
}

func Error() *zerolog.Event {
	l := Logger()
	return l.Error()
}

func Fatal() *zerolog.Event {
	l := Logger()
	return l.Fatal()
}
