package types

import "time"

// MessageLevel orders report messages by severity
type MessageLevel string

const (
	LevelInfo    MessageLevel = "info"
	LevelWarning MessageLevel = "warning"
	LevelError   MessageLevel = "error"
)

// Message is one human-readable line attached to a report
type Message struct {
	Level MessageLevel `json:"level" yaml:"level"`
	Text  string       `json:"text" yaml:"text"`
	// Code carries the error code for warnings and errors.
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
}

// Report is the structured result every command returns
type Report struct {
	Operation string       `json:"operation" yaml:"operation"`
	Success   bool         `json:"success" yaml:"success"`
	Code      ResultCode   `json:"code" yaml:"code"`
	Messages  []Message    `json:"messages,omitempty" yaml:"messages,omitempty"`
	Summary   *SyncSummary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Data      interface{}  `json:"data,omitempty" yaml:"data,omitempty"`
	Timestamp time.Time    `json:"timestamp" yaml:"timestamp"`
}

// NewReport starts a successful report for operation
func NewReport(operation string) *Report {
	return &Report{
		Operation: operation,
		Success:   true,
		Code:      CodeSuccess,
		Timestamp: time.Now(),
	}
}

// Info appends an informational message
func (r *Report) Info(text string) {
	r.Messages = append(r.Messages, Message{Level: LevelInfo, Text: text})
}

// Warn appends a warning
func (r *Report) Warn(code, text string) {
	r.Messages = append(r.Messages, Message{Level: LevelWarning, Code: code, Text: text})
}

// Error appends an error and marks the report with code
func (r *Report) Error(code, text string, result ResultCode) {
	r.Messages = append(r.Messages, Message{Level: LevelError, Code: code, Text: text})
	r.Fail(result)
}

// Fail marks the report unsuccessful with the given result code
func (r *Report) Fail(result ResultCode) {
	r.Success = false
	r.Code = result
}

// Errors returns the error-level messages
func (r *Report) Errors() []Message {
	return r.filter(LevelError)
}

// Warnings returns the warning-level messages
func (r *Report) Warnings() []Message {
	return r.filter(LevelWarning)
}

func (r *Report) filter(level MessageLevel) []Message {
	var out []Message
	for _, m := range r.Messages {
		if m.Level == level {
			out = append(out, m)
		}
	}
	return out
}
