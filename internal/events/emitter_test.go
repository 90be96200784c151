package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

type unmarshalable struct{}

func (unmarshalable) MarshalJSON() ([]byte, error) {
	return nil, errors.New("cannot encode")
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []Event {
	t.Helper()
	var out []Event
	scanner := bufio.NewScanner(buf)
	for scanner.Scan() {
		var evt Event
		if err := json.Unmarshal(scanner.Bytes(), &evt); err != nil {
			t.Fatalf("line %q is not an event: %v", scanner.Text(), err)
		}
		out = append(out, evt)
	}
	return out
}

func TestEmitTimestamps(t *testing.T) {
	fixed := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	preset := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event Event
		want  time.Time
	}{
		{name: "zero timestamp uses clock", event: Event{Type: TypeDetectStart}, want: fixed},
		{name: "preset timestamp is kept", event: Event{Type: TypeDetectFinished, Timestamp: preset}, want: preset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			emitter := NewEmitter(buf)
			emitter.now = func() time.Time { return fixed }

			if err := emitter.Emit(tt.event); err != nil {
				t.Fatalf("Emit() error = %v", err)
			}

			evts := decodeLines(t, buf)
			if len(evts) != 1 {
				t.Fatalf("expected 1 event, got %d", len(evts))
			}
			if !evts[0].Timestamp.Equal(tt.want) {
				t.Errorf("expected timestamp %v, got %v", tt.want, evts[0].Timestamp)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf)

	if err := emitter.Record(TypeDetection, "snaps/vc.json", map[string]interface{}{
		"result":     "safari-view-controller",
		"confidence": 50,
	}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	evts := decodeLines(t, buf)
	if len(evts) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evts))
	}
	evt := evts[0]
	if evt.Type != TypeDetection || evt.Message != "snaps/vc.json" {
		t.Errorf("unexpected event %+v", evt)
	}
	if evt.Fields["result"] != "safari-view-controller" {
		t.Errorf("unexpected fields: %#v", evt.Fields)
	}
	if evt.Timestamp.Location() != time.UTC {
		t.Errorf("expected UTC timestamp, got %v", evt.Timestamp.Location())
	}
}

func TestEmitConcurrentWorkers(t *testing.T) {
	buf := &bytes.Buffer{}
	emitter := NewEmitter(buf)

	const workers = 32
	const perWorker = 20

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if err := emitter.Record(TypeDetection, "", map[string]interface{}{"worker": w, "snapshot": i}); err != nil {
					t.Errorf("Record() error = %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	evts := decodeLines(t, buf)
	if len(evts) != workers*perWorker {
		t.Fatalf("expected %d events, got %d", workers*perWorker, len(evts))
	}

	seen := map[[2]float64]bool{}
	for _, evt := range evts {
		key := [2]float64{evt.Fields["worker"].(float64), evt.Fields["snapshot"].(float64)}
		if seen[key] {
			t.Fatalf("duplicate event for %v", key)
		}
		seen[key] = true
	}
}

func TestEmitErrors(t *testing.T) {
	if err := NewEmitter(failingWriter{}).Record(TypeReportFailed, "", nil); err == nil {
		t.Error("expected write error to propagate")
	}

	buf := &bytes.Buffer{}
	err := NewEmitter(buf).Record(TypeDetection, "", map[string]interface{}{"bad": unmarshalable{}})
	if err == nil {
		t.Error("expected marshal error")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written on marshal failure, got %q", buf.String())
	}
}
