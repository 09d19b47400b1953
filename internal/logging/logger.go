// Package logging is a leveled, compile-unit-scoped logger for huffc. It is
// adapted from the teacher's request-scoped HTTP logger (pkg/logging/logger.go):
// where that logger threads a request ID through a long-lived server's
// handlers, this one threads a UnitID through one file's lex/parse/resolve/
// codegen/churn pipeline (see pipeline.go). A one-shot CLI invocation has no
// server-lifetime concerns to buffer around, so logging here writes
// synchronously on the calling goroutine: no background processor, no
// Sync() drain, no rotating file writer with numbered backups, and no
// mutable package-level singleton.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// LogFormat represents the output format for logs.
type LogFormat int

const (
	// TextFormat outputs human-readable text logs.
	TextFormat LogFormat = iota
	// JSONFormat outputs structured JSON logs.
	JSONFormat
)

// LogEntry is a single log entry. Stage, File, Macro and DurationMS are
// first-class fields because every entry this compiler emits concerns one
// of those four things — which pipeline stage, which source file, which
// macro being expanded, how long a stage took — unlike a generic HTTP
// logger, which has no fixed vocabulary of request-scoped dimensions and so
// falls back to an open map. Fields remains for the rare ad hoc extra
// (e.g. an error's offending token) that doesn't earn its own column.
type LogEntry struct {
	Timestamp  time.Time              `json:"timestamp"`
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	UnitID     string                 `json:"unit_id,omitempty"`
	Stage      string                 `json:"stage,omitempty"`
	File       string                 `json:"file,omitempty"`
	Macro      string                 `json:"macro,omitempty"`
	DurationMS *int64                 `json:"duration_ms,omitempty"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
	Caller     string                 `json:"caller,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
}

// LoggerConfig holds configuration for the logger.
type LoggerConfig struct {
	// MinLevel is the minimum level to log (zero value: DEBUG).
	MinLevel LogLevel
	// Format is the output format (default: TextFormat).
	Format LogFormat
	// IncludeCaller includes file and line number in logs.
	IncludeCaller bool
	// IncludeStackTrace includes a stack trace for ERROR and FATAL logs.
	IncludeStackTrace bool
	// Outputs are the writers to send logs to.
	Outputs []io.Writer
	// FilePath, if set, is opened for append and added to Outputs.
	FilePath string
}

// Logger is the main logging instance. One compile invocation owns one
// Logger; there is no process-wide default to reach for, since every
// caller already has the Logger a CLI command constructed.
type Logger struct {
	config  LoggerConfig
	mu      sync.Mutex
	file    *os.File
	outputs []io.Writer
}

// NewLogger creates a new logger instance with the given configuration.
func NewLogger(config LoggerConfig) (*Logger, error) {
	if len(config.Outputs) == 0 {
		config.Outputs = []io.Writer{os.Stdout}
	}

	logger := &Logger{config: config, outputs: config.Outputs}

	if config.FilePath != "" {
		if dir := filepath.Dir(config.FilePath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.file = f
		logger.outputs = append(logger.outputs, f)
	}

	return logger, nil
}

// writeLog writes a log entry to all outputs, synchronously.
func (l *Logger) writeLog(entry *LogEntry) {
	var output string

	if l.config.Format == JSONFormat {
		bytes, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal log entry: %v\n", err)
			return
		}
		output = string(bytes) + "\n"
	} else {
		output = l.formatTextLog(entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, w := range l.outputs {
		if _, err := w.Write([]byte(output)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write log: %v\n", err)
		}
	}
}

// formatTextLog formats a log entry as human-readable text.
func (l *Logger) formatTextLog(entry *LogEntry) string {
	timestamp := entry.Timestamp.Format("2006-01-02 15:04:05.000")

	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", timestamp))
	parts = append(parts, fmt.Sprintf("[%s]", entry.Level))

	if entry.UnitID != "" {
		parts = append(parts, fmt.Sprintf("[%s]", entry.UnitID))
	}
	if entry.Stage != "" {
		parts = append(parts, fmt.Sprintf("[%s]", entry.Stage))
	}
	if entry.File != "" {
		parts = append(parts, fmt.Sprintf("[%s]", entry.File))
	}
	if entry.Macro != "" {
		parts = append(parts, fmt.Sprintf("[macro:%s]", entry.Macro))
	}
	if entry.Caller != "" {
		parts = append(parts, fmt.Sprintf("[%s]", entry.Caller))
	}

	parts = append(parts, entry.Message)

	if entry.DurationMS != nil {
		parts = append(parts, fmt.Sprintf("duration_ms=%d", *entry.DurationMS))
	}

	if len(entry.Fields) > 0 {
		fieldsStr := ""
		for k, v := range entry.Fields {
			if fieldsStr != "" {
				fieldsStr += ", "
			}
			fieldsStr += fmt.Sprintf("%s=%v", k, v)
		}
		parts = append(parts, fmt.Sprintf("{%s}", fieldsStr))
	}

	result := ""
	for i, part := range parts {
		if i > 0 {
			result += " "
		}
		result += part
	}

	if entry.StackTrace != "" {
		result += "\n" + entry.StackTrace
	}

	return result + "\n"
}

// entryContext carries the scoped fields a ContextLogger applies to every
// entry it logs.
type entryContext struct {
	unitID string
	stage  string
	file   string
	macro  string
	fields map[string]interface{}
}

// log is the internal logging function.
func (l *Logger) log(level LogLevel, msg string, ctx entryContext, durationMS *int64) {
	if level < l.config.MinLevel {
		return
	}

	entry := &LogEntry{
		Timestamp:  time.Now(),
		Level:      level.String(),
		Message:    msg,
		UnitID:     ctx.unitID,
		Stage:      ctx.stage,
		File:       ctx.file,
		Macro:      ctx.macro,
		DurationMS: durationMS,
		Fields:     ctx.fields,
	}

	if l.config.IncludeCaller {
		_, file, line, ok := runtime.Caller(2)
		if ok {
			entry.Caller = fmt.Sprintf("%s:%d", filepath.Base(file), line)
		}
	}

	if l.config.IncludeStackTrace && (level == ERROR || level == FATAL) {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		entry.StackTrace = string(buf[:n])
	}

	l.writeLog(entry)

	if level == FATAL {
		l.Close()
		os.Exit(1)
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) { l.log(DEBUG, msg, entryContext{}, nil) }

// DebugWithFields logs a debug message with additional fields.
func (l *Logger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log(DEBUG, msg, entryContext{fields: fields}, nil)
}

// Info logs an info message.
func (l *Logger) Info(msg string) { l.log(INFO, msg, entryContext{}, nil) }

// InfoWithFields logs an info message with additional fields.
func (l *Logger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log(INFO, msg, entryContext{fields: fields}, nil)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) { l.log(WARN, msg, entryContext{}, nil) }

// WarnWithFields logs a warning message with additional fields.
func (l *Logger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log(WARN, msg, entryContext{fields: fields}, nil)
}

// Error logs an error message.
func (l *Logger) Error(msg string) { l.log(ERROR, msg, entryContext{}, nil) }

// ErrorWithFields logs an error message with additional fields.
func (l *Logger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log(ERROR, msg, entryContext{fields: fields}, nil)
}

// Fatal logs a fatal message and exits the program.
func (l *Logger) Fatal(msg string) { l.log(FATAL, msg, entryContext{}, nil) }

// FatalWithFields logs a fatal message with additional fields and exits.
func (l *Logger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.log(FATAL, msg, entryContext{fields: fields}, nil)
}

// Close closes the log file, if one was opened.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// WithUnitID creates a new ContextLogger scoped to one compile unit (the
// file or flattened entry point currently being processed).
func (l *Logger) WithUnitID(unitID string) *ContextLogger {
	return &ContextLogger{logger: l, ctx: entryContext{unitID: unitID}}
}

// WithFields creates a new ContextLogger with fields.
func (l *Logger) WithFields(fields map[string]interface{}) *ContextLogger {
	return &ContextLogger{logger: l, ctx: entryContext{fields: fields}}
}

// NewUnitID generates a new ID for tracking one compile unit through the
// pipeline (lex, parse, resolve, codegen) in logs.
func NewUnitID() string {
	return uuid.New().String()
}

// ContextLogger is a logger pre-scoped to a compile unit, pipeline stage,
// file, macro and/or ad hoc fields (see pipeline.go for the stage/file/
// macro scoping helpers).
type ContextLogger struct {
	logger *Logger
	ctx    entryContext
}

// WithField adds an ad hoc field to the context logger.
func (cl *ContextLogger) WithField(key string, value interface{}) *ContextLogger {
	newFields := make(map[string]interface{}, len(cl.ctx.fields)+1)
	for k, v := range cl.ctx.fields {
		newFields[k] = v
	}
	newFields[key] = value

	next := cl.ctx
	next.fields = newFields
	return &ContextLogger{logger: cl.logger, ctx: next}
}

// WithFields adds multiple ad hoc fields to the context logger.
func (cl *ContextLogger) WithFields(fields map[string]interface{}) *ContextLogger {
	newFields := make(map[string]interface{}, len(cl.ctx.fields)+len(fields))
	for k, v := range cl.ctx.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	next := cl.ctx
	next.fields = newFields
	return &ContextLogger{logger: cl.logger, ctx: next}
}

// withStage returns a ContextLogger scoped to stage, used by pipeline.go.
func (cl *ContextLogger) withStage(stage string) *ContextLogger {
	next := cl.ctx
	next.stage = stage
	return &ContextLogger{logger: cl.logger, ctx: next}
}

// withFile returns a ContextLogger scoped to file, used by pipeline.go.
func (cl *ContextLogger) withFile(file string) *ContextLogger {
	next := cl.ctx
	next.file = file
	return &ContextLogger{logger: cl.logger, ctx: next}
}

// withMacro returns a ContextLogger scoped to macro, used by pipeline.go.
func (cl *ContextLogger) withMacro(macro string) *ContextLogger {
	next := cl.ctx
	next.macro = macro
	return &ContextLogger{logger: cl.logger, ctx: next}
}

// Debug logs a debug message with context.
func (cl *ContextLogger) Debug(msg string) { cl.logger.log(DEBUG, msg, cl.ctx, nil) }

// DebugWithFields logs a debug message with additional fields.
func (cl *ContextLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	cl.logger.log(DEBUG, msg, cl.mergeFields(fields), nil)
}

// Info logs an info message with context.
func (cl *ContextLogger) Info(msg string) { cl.logger.log(INFO, msg, cl.ctx, nil) }

// InfoWithFields logs an info message with additional fields.
func (cl *ContextLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	cl.logger.log(INFO, msg, cl.mergeFields(fields), nil)
}

// Warn logs a warning message with context.
func (cl *ContextLogger) Warn(msg string) { cl.logger.log(WARN, msg, cl.ctx, nil) }

// WarnWithFields logs a warning message with additional fields.
func (cl *ContextLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	cl.logger.log(WARN, msg, cl.mergeFields(fields), nil)
}

// Error logs an error message with context.
func (cl *ContextLogger) Error(msg string) { cl.logger.log(ERROR, msg, cl.ctx, nil) }

// ErrorWithFields logs an error message with additional fields.
func (cl *ContextLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	cl.logger.log(ERROR, msg, cl.mergeFields(fields), nil)
}

// Fatal logs a fatal message with context and exits.
func (cl *ContextLogger) Fatal(msg string) { cl.logger.log(FATAL, msg, cl.ctx, nil) }

// FatalWithFields logs a fatal message with additional fields and exits.
func (cl *ContextLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	cl.logger.log(FATAL, msg, cl.mergeFields(fields), nil)
}

// mergeFields returns ctx with additional folded into its ad hoc fields.
func (cl *ContextLogger) mergeFields(additional map[string]interface{}) entryContext {
	if len(additional) == 0 {
		return cl.ctx
	}
	merged := make(map[string]interface{}, len(cl.ctx.fields)+len(additional))
	for k, v := range cl.ctx.fields {
		merged[k] = v
	}
	for k, v := range additional {
		merged[k] = v
	}
	next := cl.ctx
	next.fields = merged
	return next
}
