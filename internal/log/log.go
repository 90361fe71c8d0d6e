package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	mu     sync.RWMutex
)

// Fields are structured key/value pairs attached to a log line
type Fields = logrus.Fields

// Options configures the process logger
type Options struct {
	Level      string `yaml:"level" json:"level" validate:"omitempty,oneof=trace debug info warn warning error"`
	File       string `yaml:"file" json:"file"`         // empty disables file output
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
	NoColors   bool   `yaml:"no_colors" json:"no_colors"`
	Caller     bool   `yaml:"caller" json:"caller"`
}

func init() {
	logger = newLogger(Options{Level: "info"}, os.Stderr)
}

// Init replaces the process logger according to opts
func Init(opts Options) error {
	writers := []io.Writer{os.Stderr}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxAge:     orDefault(opts.MaxAgeDays, 7),
			MaxBackups: orDefault(opts.MaxBackups, 3),
		})
	}

	l := newLogger(opts, io.MultiWriter(writers...))
	if opts.Level != "" {
		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("failed to parse log level: %w", err)
		}
		l.SetLevel(level)
	}

	mu.Lock()
	logger = l
	mu.Unlock()
	return nil
}

// SetOutput redirects the current logger, mainly for tests
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// Logger returns the underlying logrus logger
func Logger() *logrus.Logger {
	return get()
}

func newLogger(opts Options, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "02 Jan 06 - 15:04:05.000",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
		},
	})
	l.SetOutput(out)
	l.SetReportCaller(opts.Caller)
	return l
}

func get() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Tracef logs at trace level
func Tracef(format string, args ...interface{}) { get().Tracef(format, args...) }

// Debugf logs at debug level
func Debugf(format string, args ...interface{}) { get().Debugf(format, args...) }

// Infof logs at info level
func Infof(format string, args ...interface{}) { get().Infof(format, args...) }

// Warnf logs at warn level
func Warnf(format string, args ...interface{}) { get().Warnf(format, args...) }

// Errorf logs at error level
func Errorf(format string, args ...interface{}) { get().Errorf(format, args...) }

// Debug logs msg with fields at debug level
func Debug(fields Fields, msg string) {
	if fields == nil {
		fields = Fields{}
	}
	get().WithFields(fields).Debug(msg)
}

// Info logs msg with fields at info level
func Info(fields Fields, msg string) {
	if fields == nil {
		fields = Fields{}
	}
	get().WithFields(fields).Info(msg)
}

// Warn logs msg with fields at warn level
func Warn(fields Fields, msg string) {
	if fields == nil {
		fields = Fields{}
	}
	get().WithFields(fields).Warn(msg)
}

// Error logs msg with fields at error level
func Error(fields Fields, msg string) {
	if fields == nil {
		fields = Fields{}
	}
	get().WithFields(fields).Error(msg)
}

// WithFields returns an entry carrying fields, for repeated use
func WithFields(fields Fields) *logrus.Entry {
	return get().WithFields(fields)
}
