// Package logx provides the leveled, categorized logger used across
// solar-forth's command-line tooling and event-loop bindings.
package logx

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Level orders message severity, higher is more severe.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Category tags the subsystem a message came from, so -debug can be
// scoped to just the event loop or just the interpreter without
// drowning in the other's noise.
type Category string

const (
	CatNone  Category = ""
	CatVM    Category = "vm"
	CatUV    Category = "uv"
	CatRepl  Category = "repl"
	CatTimer Category = "timer"
	CatTCP   Category = "tcp"
)

const (
	colorRed    = "\x1b[91m"
	colorYellow = "\x1b[93m"
	colorGray   = "\x1b[90m"
	colorReset  = "\x1b[0m"
)

// Logger is a minimal leveled logger: Warn/Error are always shown,
// Trace/Debug/Info are gated on both a global enable flag and, if any
// categories were explicitly enabled, membership in that set.
type Logger struct {
	enabled    bool
	categories map[Category]bool
	out        io.Writer
	errOut     io.Writer
	color      bool
}

// New creates a Logger writing Trace/Debug/Info to stdout and
// Warn/Error to stderr, with ANSI coloring enabled only when stderr is
// an interactive terminal.
func New(enabled bool) *Logger {
	return &Logger{
		enabled:    enabled,
		categories: make(map[Category]bool),
		out:        os.Stdout,
		errOut:     os.Stderr,
		color:      term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// EnableCategory restricts Trace/Debug/Info output to the named
// categories once at least one has been enabled; CatNone-tagged
// messages always pass.
func (l *Logger) EnableCategory(cat Category) {
	l.categories[cat] = true
}

func (l *Logger) shouldLog(level Level, cat Category) bool {
	if level >= LevelWarn {
		return true
	}
	if !l.enabled {
		return false
	}
	if len(l.categories) == 0 || cat == CatNone {
		return true
	}
	return l.categories[cat]
}

func (l *Logger) log(level Level, cat Category, format string, args ...interface{}) {
	if !l.shouldLog(level, cat) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	prefix := "[" + level.String()
	if cat != CatNone {
		prefix += ":" + string(cat)
	}
	prefix += "]"

	if level >= LevelWarn {
		if l.color {
			color := colorYellow
			if level == LevelError {
				color = colorRed
			}
			fmt.Fprintf(l.errOut, "%s%s %s%s\n", color, prefix, msg, colorReset)
		} else {
			fmt.Fprintf(l.errOut, "%s %s\n", prefix, msg)
		}
		return
	}

	if l.color {
		fmt.Fprintf(l.out, "%s%s %s%s\n", colorGray, prefix, msg, colorReset)
	} else {
		fmt.Fprintf(l.out, "%s %s\n", prefix, msg)
	}
}

func (l *Logger) Trace(format string, args ...interface{}) { l.log(LevelTrace, CatNone, format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, CatNone, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(LevelInfo, CatNone, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(LevelWarn, CatNone, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(LevelError, CatNone, format, args...) }

func (l *Logger) TraceCat(cat Category, format string, args ...interface{}) {
	l.log(LevelTrace, cat, format, args...)
}
func (l *Logger) DebugCat(cat Category, format string, args ...interface{}) {
	l.log(LevelDebug, cat, format, args...)
}
func (l *Logger) InfoCat(cat Category, format string, args ...interface{}) {
	l.log(LevelInfo, cat, format, args...)
}
func (l *Logger) WarnCat(cat Category, format string, args ...interface{}) {
	l.log(LevelWarn, cat, format, args...)
}
func (l *Logger) ErrorCat(cat Category, format string, args ...interface{}) {
	l.log(LevelError, cat, format, args...)
}
