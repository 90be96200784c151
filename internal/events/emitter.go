package events

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event types written by the CLI and the HTTP service.
const (
	TypeDetectStart     = "detect-start"
	TypeDetection       = "detection"
	TypeArtifactWritten = "artifact-written"
	TypeDetectFinished  = "detect-finished"
	TypeReportSent      = "report-sent"
	TypeReportFailed    = "report-failed"
	TypeReportReceived  = "report-received"
)

// Event represents a single NDJSON record for worker-friendly logs.
type Event struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Message   string                 `json:"message,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Emitter writes NDJSON events to an io.Writer safely across goroutines.
type Emitter struct {
	writer io.Writer
	now    func() time.Time
	mu     sync.Mutex
}

// NewEmitter returns a new NDJSON emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{writer: w, now: func() time.Time { return time.Now().UTC() }}
}

// Emit serializes the event to JSON and appends a newline.
func (e *Emitter) Emit(evt Event) error {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = e.now()
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	_, err = e.writer.Write(append(payload, '\n'))
	return err
}

// Record is shorthand for emitting an event built from its parts.
func (e *Emitter) Record(eventType, message string, fields map[string]interface{}) error {
	return e.Emit(Event{Type: eventType, Message: message, Fields: fields})
}
