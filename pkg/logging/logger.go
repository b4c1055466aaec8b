package logging

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/facuhernandez99/shario-admin/pkg/errors"
)

// LogLevel is the severity of an entry
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l LogLevel) String() string {
	if l < LevelDebug || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a LOG_LEVEL value to a LogLevel. Unknown values are LevelInfo.
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// LogEntry is one JSON log line
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Component string                 `json:"component,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	AdminID   string                 `json:"admin_id,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Stack     string                 `json:"stack,omitempty"`
	Service   string                 `json:"service,omitempty"`
	Version   string                 `json:"version,omitempty"`
}

// Logger writes JSON log lines. It is safe for concurrent use.
type Logger struct {
	level      atomic.Int32
	service    string
	version    string
	production bool
	sanitizer  *ErrorSanitizer

	mu     sync.Mutex
	output io.Writer
}

// Config holds logger configuration
type Config struct {
	Level      LogLevel
	Output     io.Writer
	Service    string
	Version    string
	Production bool
}

// DefaultConfig logs INFO and up to stdout
func DefaultConfig() *Config {
	return &Config{
		Level:   LevelInfo,
		Output:  os.Stdout,
		Service: "shario-admin",
	}
}

// NewLogger builds a logger. Production turns on message redaction and keeps
// stack traces to internal failures only.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	output := config.Output
	if output == nil {
		output = os.Stdout
	}

	l := &Logger{
		output:     output,
		service:    config.Service,
		version:    config.Version,
		production: config.Production,
		sanitizer:  NewErrorSanitizer(config.Production),
	}
	l.level.Store(int32(config.Level))
	return l
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// GetDefault returns the process logger, creating it on first use
func GetDefault() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewLogger(DefaultConfig())
	}
	return defaultLogger
}

// SetDefault replaces the process logger
func SetDefault(logger *Logger) {
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
}

// SetLevel sets the minimum level written
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// GetLevel returns the minimum level written
func (l *Logger) GetLevel() LogLevel {
	return LogLevel(l.level.Load())
}

// Sanitizer exposes the redaction rules used for this logger.
func (l *Logger) Sanitizer() *ErrorSanitizer {
	return l.sanitizer
}

func (l *Logger) write(ctx context.Context, level LogLevel, component, message string, fields map[string]interface{}, err error) {
	if level < l.GetLevel() {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Message:   message,
		Component: component,
		RequestID: RequestIDFromContext(ctx),
		AdminID:   AdminIDFromContext(ctx),
		Fields:    l.sanitizer.SanitizeMap(fields),
		Service:   l.service,
		Version:   l.version,
	}

	if err != nil {
		entry.Error = l.sanitizer.Sanitize(err).Error()
		if level >= LevelError && (!l.production || internalFailure(err)) {
			entry.Stack = stackTrace()
		}
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		// Fields held something json cannot encode; keep the line, drop the fields.
		entry.Fields = map[string]interface{}{"fields_error": marshalErr.Error()}
		data, _ = json.Marshal(entry)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.output.Write(append(data, '\n'))
}

// internalFailure reports whether err is ours rather than the backend's answer
func internalFailure(err error) bool {
	appErr, ok := errors.IsAppError(err)
	if !ok {
		return true
	}
	switch appErr.Code {
	case errors.ErrCodeInternal, errors.ErrCodeStorage, errors.ErrCodeDecode:
		return true
	}
	return false
}

func stackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// Component returns a logger whose entries name the emitting component
// ("http", "admin", "dashboard", ...)
func (l *Logger) Component(name string) *ContextLogger {
	return &ContextLogger{logger: l, component: name}
}

// WithFields returns a logger that adds fields to every entry
func (l *Logger) WithFields(fields map[string]interface{}) *ContextLogger {
	return (&ContextLogger{logger: l}).WithFields(fields)
}

// WithField returns a logger that adds one field to every entry
func (l *Logger) WithField(key string, value interface{}) *ContextLogger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *Logger) Debug(ctx context.Context, message string) {
	l.write(ctx, LevelDebug, "", message, nil, nil)
}

func (l *Logger) Info(ctx context.Context, message string) {
	l.write(ctx, LevelInfo, "", message, nil, nil)
}

func (l *Logger) Warn(ctx context.Context, message string) {
	l.write(ctx, LevelWarn, "", message, nil, nil)
}

func (l *Logger) Error(ctx context.Context, message string, err error) {
	l.write(ctx, LevelError, "", message, nil, err)
}

// Fatal logs and exits the process
func (l *Logger) Fatal(ctx context.Context, message string, err error) {
	l.write(ctx, LevelFatal, "", message, nil, err)
	os.Exit(1)
}

// ContextLogger carries a component name and fields into every entry
type ContextLogger struct {
	logger    *Logger
	component string
	fields    map[string]interface{}
}

// WithField returns a copy with one more field
func (cl *ContextLogger) WithField(key string, value interface{}) *ContextLogger {
	return cl.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a copy with more fields; later values win
func (cl *ContextLogger) WithFields(fields map[string]interface{}) *ContextLogger {
	merged := make(map[string]interface{}, len(cl.fields)+len(fields))
	for k, v := range cl.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &ContextLogger{logger: cl.logger, component: cl.component, fields: merged}
}

func (cl *ContextLogger) Debug(ctx context.Context, message string) {
	cl.logger.write(ctx, LevelDebug, cl.component, message, cl.fields, nil)
}

func (cl *ContextLogger) Info(ctx context.Context, message string) {
	cl.logger.write(ctx, LevelInfo, cl.component, message, cl.fields, nil)
}

func (cl *ContextLogger) Warn(ctx context.Context, message string) {
	cl.logger.write(ctx, LevelWarn, cl.component, message, cl.fields, nil)
}

// WarnErr logs a warning that carries an error
func (cl *ContextLogger) WarnErr(ctx context.Context, message string, err error) {
	cl.logger.write(ctx, LevelWarn, cl.component, message, cl.fields, err)
}

func (cl *ContextLogger) Error(ctx context.Context, message string, err error) {
	cl.logger.write(ctx, LevelError, cl.component, message, cl.fields, err)
}
