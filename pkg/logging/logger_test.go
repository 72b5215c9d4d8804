package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriterEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", &buf)

	logger.Info("appointment booked", "doctor_id", "doc-1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "appointment booked" {
		t.Errorf("unexpected msg: %v", record["msg"])
	}
	if record["doctor_id"] != "doc-1" {
		t.Errorf("unexpected doctor_id: %v", record["doctor_id"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("warn", &buf)

	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("info line emitted at warn level: %q", buf.String())
	}

	logger.Warn("should be kept")
	if buf.Len() == 0 {
		t.Error("warn line not emitted")
	}
}

func TestWithCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("info", &buf).With("component", "scheduler")

	logger.Info("hello")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if record["component"] != "scheduler" {
		t.Errorf("expected component attribute, got %v", record["component"])
	}
}
