// Package base
package base

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cedric1982/fsd/internal/interfaces/global"
	"github.com/fatih/color"
)

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
	levelFatal
)

var levelTags = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

var levelColors = []*color.Color{
	color.New(color.FgCyan),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgRed),
	color.New(color.FgHiRed, color.Bold),
}

type Logger struct {
	debug bool
	mu    sync.Mutex
	file  *os.File
}

func NewLogger() *Logger {
	return &Logger{}
}

// Init resolves the log directory relative to the executable's install base
// (<base>/logs for a <base>/bin/fsd layout), creates it and truncates the
// output file. Failure here is boot-fatal.
func (l *Logger) Init(debug bool) {
	l.debug = debug

	baseDir, err := executableBaseDir()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "FATAL: cannot resolve executable path: %v\n", err)
		os.Exit(1)
	}
	logDir := filepath.Join(baseDir, "logs")
	if err := os.MkdirAll(logDir, global.DefaultDirectoryPermission); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "FATAL: cannot create log directory %s: %v\n", logDir, err)
		os.Exit(1)
	}

	file, err := os.OpenFile(filepath.Join(logDir, "fsd_output.log"),
		os.O_WRONLY|os.O_CREATE|os.O_TRUNC, global.DefaultFilePermissions)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "FATAL: cannot open log file: %v\n", err)
		os.Exit(1)
	}
	l.file = file
}

func executableBaseDir() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", err
	}
	// <base>/bin/fsd -> <base>
	return filepath.Dir(filepath.Dir(executable)), nil
}

type loggerShutdownCallback struct {
	logger *Logger
}

func (c *loggerShutdownCallback) Invoke(_ context.Context) error {
	c.logger.mu.Lock()
	defer c.logger.mu.Unlock()
	if c.logger.file == nil {
		return nil
	}
	err := c.logger.file.Close()
	c.logger.file = nil
	return err
}

func (l *Logger) ShutdownCallback() global.Callable {
	return &loggerShutdownCallback{logger: l}
}

func (l *Logger) log(level logLevel, msg string) {
	if level == levelDebug && !l.debug {
		return
	}
	now := time.Now().Format("2006-01-02 15:04:05.000")

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = levelColors[level].Printf("[%s][%s] %s\n", now, levelTags[level], msg)
	if l.file != nil {
		_, _ = fmt.Fprintf(l.file, "[%s][%s] %s\n", now, levelTags[level], msg)
	}
}

func (l *Logger) Debug(msg string, v ...interface{}) { l.log(levelDebug, fmt.Sprint(append([]interface{}{msg}, v...)...)) }

func (l *Logger) DebugF(msg string, v ...interface{}) { l.log(levelDebug, fmt.Sprintf(msg, v...)) }

func (l *Logger) Info(msg string, v ...interface{}) { l.log(levelInfo, fmt.Sprint(append([]interface{}{msg}, v...)...)) }

func (l *Logger) InfoF(msg string, v ...interface{}) { l.log(levelInfo, fmt.Sprintf(msg, v...)) }

func (l *Logger) Warn(msg string, v ...interface{}) { l.log(levelWarn, fmt.Sprint(append([]interface{}{msg}, v...)...)) }

func (l *Logger) WarnF(msg string, v ...interface{}) { l.log(levelWarn, fmt.Sprintf(msg, v...)) }

func (l *Logger) Error(msg string, v ...interface{}) { l.log(levelError, fmt.Sprint(append([]interface{}{msg}, v...)...)) }

func (l *Logger) ErrorF(msg string, v ...interface{}) { l.log(levelError, fmt.Sprintf(msg, v...)) }

func (l *Logger) Fatal(msg string, v ...interface{}) { l.log(levelFatal, fmt.Sprint(append([]interface{}{msg}, v...)...)) }

func (l *Logger) FatalF(msg string, v ...interface{}) { l.log(levelFatal, fmt.Sprintf(msg, v...)) }
