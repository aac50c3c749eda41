package utils

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	infoTag  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("INFO ")
	warnTag  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("WARN ")
	errorTag = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("ERROR")
	debugTag = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render("DEBUG")
)

// Logger is a small leveled logger. Debug lines are dropped unless enabled.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	debug bool
	now   func() time.Time
}

// NewLogger creates a Logger writing info/debug to stdout and warn/error to stderr.
func NewLogger(debug bool) *Logger {
	return &Logger{out: os.Stdout, err: os.Stderr, debug: debug, now: time.Now}
}

// NewLoggerTo creates a Logger writing every level to w.
func NewLoggerTo(w io.Writer, debug bool) *Logger {
	return &Logger{out: w, err: w, debug: debug, now: time.Now}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger { return NewLoggerTo(io.Discard, false) }

func (l *Logger) SetDebug(on bool) {
	l.mu.Lock()
	l.debug = on
	l.mu.Unlock()
}

func (l *Logger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *Logger) Info(format string, args ...any)  { l.write(false, infoTag, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.write(true, warnTag, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.write(true, errorTag, format, args...) }

func (l *Logger) Debug(format string, args ...any) {
	if l == nil || !l.DebugEnabled() {
		return
	}
	l.write(false, debugTag, format, args...)
}

func (l *Logger) write(toErr bool, tag, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	w := l.out
	if toErr {
		w = l.err
	}
	fmt.Fprintf(w, "[%s] %s %s\n", l.now().Format("2006-01-02 15:04:05"), tag, fmt.Sprintf(format, args...))
}
