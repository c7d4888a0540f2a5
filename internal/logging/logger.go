// Package logging provides the indentation-scoped console logger used by
// brigadier. Every line is prefixed by two spaces per indent level, so nested
// task invocations and commands read as a tree. Three tiers are written to
// standard output (Info, Log, Trace) and one to standard error (Error).
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"golang.org/x/term"
)

// Level represents a log tier.
type Level int

const (
	// LevelTrace is for diagnostic detail, written only when verbose.
	LevelTrace Level = iota
	// LevelLog is for general messages.
	LevelLog
	// LevelInfo marks task and phase boundaries.
	LevelInfo
	// LevelError is for the fatal report printed before exit.
	LevelError
)

// ANSI sequences per level: opening and closing.
var levelStyles = map[Level][2]string{
	LevelTrace: {"\x1b[90m", "\x1b[39m"},
	LevelLog:   {"\x1b[37m", "\x1b[39m"},
	LevelInfo:  {"\x1b[1m", "\x1b[22m"},
	LevelError: {"\x1b[31m", "\x1b[39m"},
}

const indentUnit = "  "

// inspector renders non-string values. Keys are sorted so output is stable.
var inspector = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          false,
}

// Logger writes indented, leveled lines.
type Logger struct {
	mu      sync.RWMutex
	writeMu sync.Mutex
	indent  int
	verbose bool
	color   bool
	out     io.Writer
	errOut  io.Writer
}

var (
	// defaultLogger is the package-level logger.
	defaultLogger = New()
)

// New creates a Logger writing to stdout and stderr. Styling is enabled when
// stdout is a terminal.
func New() *Logger {
	return &Logger{
		out:    os.Stdout,
		errOut: os.Stderr,
		color:  isTerminal(os.Stdout),
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// SetVerbose enables or disables trace output.
func (l *Logger) SetVerbose(verbose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = verbose
}

// Verbose reports whether trace output is enabled.
func (l *Logger) Verbose() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.verbose
}

// SetColor forces ANSI styling on or off.
func (l *Logger) SetColor(color bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = color
}

// SetOutput sets the writers for the standard and error tiers. A nil errOut
// sends errors to out.
func (l *Logger) SetOutput(out, errOut io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
	if errOut == nil {
		errOut = out
	}
	l.errOut = errOut
}

// Indent enters a nested scope. The returned function restores the level that
// was current before the call; use it with defer so the level is restored when
// the nested work fails.
func (l *Logger) Indent() func() {
	l.mu.Lock()
	prev := l.indent
	l.indent++
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		l.indent = prev
		l.mu.Unlock()
	}
}

// IndentLevel returns the current indent level.
func (l *Logger) IndentLevel() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indent
}

// SetIndentLevel replaces the indent level. Negative values are clamped to 0.
func (l *Logger) SetIndentLevel(level int) {
	if level < 0 {
		level = 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.indent = level
}

// write emits one line at the given level and indent.
func (l *Logger) write(level Level, indent int, args ...interface{}) {
	l.mu.RLock()
	verbose := l.verbose
	color := l.color
	out := l.out
	if level == LevelError {
		out = l.errOut
	}
	l.mu.RUnlock()

	if level == LevelTrace && !verbose {
		return
	}

	var sb strings.Builder
	style := levelStyles[level]
	if color {
		sb.WriteString(style[0])
	}
	sb.WriteString(strings.Repeat(indentUnit, indent))
	sb.WriteString(Join(args...))
	if color {
		sb.WriteString(style[1])
	}
	sb.WriteString("\n")

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	io.WriteString(out, sb.String())
}

func (l *Logger) current() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indent
}

// Info logs at the upper tier.
func (l *Logger) Info(args ...interface{}) {
	l.write(LevelInfo, l.current(), args...)
}

// Log logs at the base tier.
func (l *Logger) Log(args ...interface{}) {
	l.write(LevelLog, l.current(), args...)
}

// Trace logs at the lower tier when verbose.
func (l *Logger) Trace(args ...interface{}) {
	l.write(LevelTrace, l.current(), args...)
}

// TraceAt logs at the lower tier using an explicit indent level instead of
// the current one.
func (l *Logger) TraceAt(indent int, args ...interface{}) {
	l.write(LevelTrace, indent, args...)
}

// Error logs to the error stream at the current indent level.
func (l *Logger) Error(args ...interface{}) {
	l.write(LevelError, l.current(), args...)
}

// Inspect returns a structural rendering of v.
func Inspect(v interface{}) string {
	return inspector.Sprintf("%v", v)
}

// Join renders values and joins them with single spaces. Strings are used
// verbatim, errors by message, everything else through Inspect.
func Join(args ...interface{}) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, formatValue(arg))
	}
	return strings.Join(parts, " ")
}

// formatValue formats a value for logging.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	default:
		return Inspect(v)
	}
}

// Package-level functions that use the default logger.

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// SetVerbose enables trace output on the default logger.
func SetVerbose(verbose bool) {
	defaultLogger.SetVerbose(verbose)
}

// Info logs at the upper tier using the default logger.
func Info(args ...interface{}) {
	defaultLogger.Info(args...)
}

// Log logs at the base tier using the default logger.
func Log(args ...interface{}) {
	defaultLogger.Log(args...)
}

// Trace logs at the lower tier using the default logger.
func Trace(args ...interface{}) {
	defaultLogger.Trace(args...)
}

// Error logs to the error stream using the default logger.
func Error(args ...interface{}) {
	defaultLogger.Error(args...)
}
