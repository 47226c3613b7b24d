package server

import "github.com/felixgeelhaar/lsp-go/protocol"

// MessageType is the severity of a window/logMessage notification.
type MessageType int

const (
	MessageError   MessageType = 1
	MessageWarning MessageType = 2
	MessageInfo    MessageType = 3
	MessageLog     MessageType = 4
)

// LogMessageParams is the payload of the window/logMessage notification.
type LogMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// ClientLogger sends log messages to the client via window/logMessage.
// Messages below the configured minimum severity are discarded.
type ClientLogger struct {
	publisher Publisher
	minLevel  MessageType
}

// NewClientLogger creates a client logger publishing via p. The minimum
// level defaults to MessageLog, which passes everything.
func NewClientLogger(p Publisher) *ClientLogger {
	return &ClientLogger{publisher: p, minLevel: MessageLog}
}

// SetLevel sets the minimum severity to send. Lower numeric values are
// more severe.
func (l *ClientLogger) SetLevel(level MessageType) {
	l.minLevel = level
}

// Level returns the current minimum severity.
func (l *ClientLogger) Level() MessageType {
	return l.minLevel
}

// ShouldLog reports whether a message of the given type passes the
// configured minimum severity.
func (l *ClientLogger) ShouldLog(t MessageType) bool {
	return t <= l.minLevel
}

// Log sends a message at the given severity.
func (l *ClientLogger) Log(t MessageType, message string) error {
	if !l.ShouldLog(t) {
		return nil
	}
	return l.publisher.Notify(protocol.MethodLogMessage, LogMessageParams{
		Type:    t,
		Message: message,
	})
}

// Error sends an error message.
func (l *ClientLogger) Error(message string) error { return l.Log(MessageError, message) }

// Warning sends a warning message.
func (l *ClientLogger) Warning(message string) error { return l.Log(MessageWarning, message) }

// Info sends an informational message.
func (l *ClientLogger) Info(message string) error { return l.Log(MessageInfo, message) }

// LogMessage sends a log-level message.
func (l *ClientLogger) LogMessage(message string) error { return l.Log(MessageLog, message) }
