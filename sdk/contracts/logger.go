package contracts

import "time"

// LogLevel represents the severity level for logging.
type LogLevel int

const (
	// InfoLevel marks messages that track the normal progress of a
	// recording session.
	InfoLevel LogLevel = iota
	// DebugLevel marks diagnostic messages useful when troubleshooting
	// capture or subscription behavior.
	DebugLevel
	// ErrorLevel marks serious failures that need attention.
	ErrorLevel
	// WarnLevel marks recoverable situations that should be monitored,
	// such as a failed subscribe or a retried save.
	WarnLevel
	// FatalLevel marks failures after which the process cannot continue.
	FatalLevel
)

// LogDestination specifies where log messages are directed.
type LogDestination string

const (
	// ConsoleLog directs log messages to the console output.
	ConsoleLog LogDestination = "console"
	// FileLog directs log messages to a file.
	FileLog LogDestination = "file"
)

// Field is a one-shot builder for a typed key/value log attribute. Each
// method returns a populated Field ready to pass to a Logger call.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Int64(key string, val int64) Field
	Error(key string, val error) Field
	Uint64(key string, val uint64) Field
	Uint8(key string, val uint8) Field
}

// Logger is the structured logging surface the capture engine writes to.
// Implementations are supplied by the host (or internal/logger by
// default); the engine itself never configures a global sink.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	Field() Field

	SetLevel(level LogLevel)
	SetDestination(dest LogDestination, filePath ...string)
}
