package utils

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// DiagnosticLevel represents the level of diagnostic output
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// String returns the tag printed for the level
func (l DiagnosticLevel) String() string {
	switch l {
	case DiagnosticError:
		return "ERROR"
	case DiagnosticWarn:
		return "WARN"
	case DiagnosticInfo:
		return "INFO"
	case DiagnosticVerbose:
		return "VERBOSE"
	case DiagnosticDebug:
		return "DEBUG"
	default:
		return "SILENT"
	}
}

// Fields carries the structured part of a diagnostic record
type Fields map[string]interface{}

// leading keys are printed first, in this order
var leadingFieldKeys = []string{"file", "line", "method", "error"}

// Record is one emitted diagnostic, as seen by a Hook
type Record struct {
	Level   DiagnosticLevel
	Message string
	Fields  Fields
}

// Hook observes every record, including those below the output level
type Hook func(Record)

// DiagnosticSystem provides structured, user-friendly output
type DiagnosticSystem struct {
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
	hooks     []Hook
	mu        sync.Mutex
}

// NewDiagnosticSystem creates a new diagnostic system
func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: shouldUseColors(),
		showTime:  level >= DiagnosticVerbose,
		output:    os.Stdout,
		errorOut:  os.Stderr,
	}
}

// NewQuietDiagnostics creates a diagnostic system that only shows errors
func NewQuietDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticError)
}

// NewVerboseDiagnostics creates a diagnostic system with full output
func NewVerboseDiagnostics() *DiagnosticSystem {
	return NewDiagnosticSystem(DiagnosticVerbose)
}

// NewSilentDiagnostics discards everything except hook notifications
func NewSilentDiagnostics() *DiagnosticSystem {
	d := NewDiagnosticSystem(DiagnosticSilent)
	d.output = io.Discard
	d.errorOut = io.Discard
	return d
}

// WithWriters redirects normal and error output
func (d *DiagnosticSystem) WithWriters(output, errorOut io.Writer) *DiagnosticSystem {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.output = output
	d.errorOut = errorOut
	d.useColors = false
	return d
}

// WithColors enables colored output when the terminal supports it
func (d *DiagnosticSystem) WithColors(enabled bool) *DiagnosticSystem {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.useColors = enabled && shouldUseColors()
	return d
}

// WithTimestamps toggles the time prefix
func (d *DiagnosticSystem) WithTimestamps(show bool) *DiagnosticSystem {
	d.showTime = show
	return d
}

// AddHook registers a hook. Hooks see records of every level, even ones
// filtered from the writers.
func (d *DiagnosticSystem) AddHook(h Hook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, h)
}

// Level returns the configured level
func (d *DiagnosticSystem) Level() DiagnosticLevel {
	return d.level
}

// Error outputs error messages (always shown unless silent)
func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	d.emit(DiagnosticError, nil, format, args...)
}

// Warn outputs warning messages
func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	d.emit(DiagnosticWarn, nil, format, args...)
}

// Info outputs informational messages
func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	d.emit(DiagnosticInfo, nil, format, args...)
}

// Verbose outputs detailed messages (verbose mode only)
func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	d.emit(DiagnosticVerbose, nil, format, args...)
}

// Debug outputs debug messages (highest verbosity)
func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	d.emit(DiagnosticDebug, nil, format, args...)
}

// ErrorWith outputs an error record with structured fields
func (d *DiagnosticSystem) ErrorWith(fields Fields, format string, args ...interface{}) {
	d.emit(DiagnosticError, fields, format, args...)
}

// WarnWith outputs a warning record with structured fields
func (d *DiagnosticSystem) WarnWith(fields Fields, format string, args ...interface{}) {
	d.emit(DiagnosticWarn, fields, format, args...)
}

// DebugWith outputs a debug record with structured fields
func (d *DiagnosticSystem) DebugWith(fields Fields, format string, args ...interface{}) {
	d.emit(DiagnosticDebug, fields, format, args...)
}

// Success outputs success messages with emphasis
func (d *DiagnosticSystem) Success(format string, args ...interface{}) {
	if d.level < DiagnosticInfo {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	message := fmt.Sprintf(format, args...)
	if d.useColors {
		fmt.Fprintf(d.output, "%s%s\n", d.getIndent(), color.GreenString("✓ %s", message))
		return
	}
	fmt.Fprintf(d.output, "%s✓ %s\n", d.getIndent(), message)
}

// Section creates a prominent section header
func (d *DiagnosticSystem) Section(title string) {
	if d.level < DiagnosticInfo {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.useColors {
		fmt.Fprintln(d.output, color.New(color.FgCyan, color.Bold).Sprint(title))
		return
	}
	fmt.Fprintf(d.output, "%s\n", title)
}

// Subsection creates a subsection header
func (d *DiagnosticSystem) Subsection(title string) {
	if d.level < DiagnosticInfo {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.output, "\n%s:\n", title)
}

// List outputs a bulleted list item
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.level < DiagnosticInfo {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.output, "%s- %s\n", d.getIndent(), fmt.Sprintf(format, args...))
}

// Indent increases the indentation level
func (d *DiagnosticSystem) Indent() {
	d.mu.Lock()
	d.indent++
	d.mu.Unlock()
}

// Unindent decreases the indentation level
func (d *DiagnosticSystem) Unindent() {
	d.mu.Lock()
	if d.indent > 0 {
		d.indent--
	}
	d.mu.Unlock()
}

// Summary outputs a final summary with statistics, keys sorted
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if d.level < DiagnosticInfo {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(d.output, "\n%s\n", title)
	for _, key := range keys {
		fmt.Fprintf(d.output, "   %s: %v\n", key, stats[key])
	}
	fmt.Fprintln(d.output)
}

func (d *DiagnosticSystem) emit(level DiagnosticLevel, fields Fields, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	d.mu.Lock()
	hooks := d.hooks
	d.mu.Unlock()
	for _, h := range hooks {
		h(Record{Level: level, Message: message, Fields: fields})
	}

	if d.level < level {
		return
	}

	writer := d.output
	if level == DiagnosticError {
		writer = d.errorOut
	}
	d.writeMessage(writer, level, message, fields)
}

// writeMessage is the internal message writing function
func (d *DiagnosticSystem) writeMessage(writer io.Writer, level DiagnosticLevel, message string, fields Fields) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var output strings.Builder
	output.WriteString(d.getIndent())

	if d.showTime {
		output.WriteString(time.Now().Format("15:04:05 "))
	}

	tag := fmt.Sprintf("[%s]", level)
	if d.useColors {
		tag = levelColor(level).Sprint(tag)
	}
	output.WriteString(tag)
	output.WriteString(" ")
	output.WriteString(message)

	if len(fields) > 0 {
		output.WriteString(" ")
		output.WriteString(FormatFields(fields))
	}
	output.WriteString("\n")

	fmt.Fprint(writer, output.String())
}

// FormatFields renders fields as key=value pairs, leading keys first
func FormatFields(fields Fields) string {
	var parts []string
	seen := make(map[string]bool, len(leadingFieldKeys))
	for _, key := range leadingFieldKeys {
		seen[key] = true
		if value, ok := fields[key]; ok && value != nil && value != "" && value != 0 {
			parts = append(parts, fmt.Sprintf("%s=%v", key, quoteIfNeeded(value)))
		}
	}

	var rest []string
	for key := range fields {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		parts = append(parts, fmt.Sprintf("%s=%v", key, quoteIfNeeded(fields[key])))
	}
	return strings.Join(parts, " ")
}

func quoteIfNeeded(value interface{}) interface{} {
	if s, ok := value.(string); ok && strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return value
}

func levelColor(level DiagnosticLevel) *color.Color {
	switch level {
	case DiagnosticError:
		return color.New(color.FgRed)
	case DiagnosticWarn:
		return color.New(color.FgYellow)
	case DiagnosticInfo:
		return color.New(color.FgBlue)
	case DiagnosticDebug:
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgHiBlack)
	}
}

// getIndent returns the current indentation string
func (d *DiagnosticSystem) getIndent() string {
	return strings.Repeat("  ", d.indent)
}

// shouldUseColors determines if colors should be used
func shouldUseColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
