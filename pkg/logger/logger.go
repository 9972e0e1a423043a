package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	TargetConsole = "console"
	TargetFile    = "file"
)

type Config struct {
	Filename   string   `yaml:"filename"`
	LogLevel   string   `yaml:"level"`
	Targets    []string `yaml:"targets"`
	MaxSize    int      `yaml:"max_size"`
	MaxBackups int      `yaml:"max_backups"`
	Compress   bool     `yaml:"compress"`
}

var global atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	global.Store(&l)
}

// InitGlobalLogger replaces the process-wide logger according to cfg.
// Unknown targets are ignored; no target at all falls back to the console.
func InitGlobalLogger(cfg *Config) {
	writers := make([]io.Writer, 0, len(cfg.Targets))

	for _, t := range cfg.Targets {
		switch strings.ToLower(t) {
		case TargetConsole:
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		case TargetFile:
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.Filename,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				Compress:   cfg.Compress,
			})
		}
	}

	if len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	global.Store(&l)
}

func Debug(msg string, keyvals ...any) {
	write(global.Load().Debug(), msg, keyvals)
}

func Info(msg string, keyvals ...any) {
	write(global.Load().Info(), msg, keyvals)
}

func Warn(msg string, keyvals ...any) {
	write(global.Load().Warn(), msg, keyvals)
}

func Error(msg string, keyvals ...any) {
	write(global.Load().Error(), msg, keyvals)
}

func write(e *zerolog.Event, msg string, keyvals []any) {
	if e == nil {
		return
	}

	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "(MISSING)")
	}

	e.Fields(keyvals).Msg(msg)
}
