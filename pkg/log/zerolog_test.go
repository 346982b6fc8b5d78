package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestZerologAdapter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf))

	l.Info("sent",
		String("call_id", "abc"),
		Strings("headers", []string{"Authorization", "Content-Type"}),
		Int("status", 200),
		Int64("sent", 7),
		Duration("latency", 1500*time.Millisecond),
		Err(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal log line: %v (%s)", err, buf.String())
	}
	if got["message"] != "sent" {
		t.Errorf("message = %v, want sent", got["message"])
	}
	if got["call_id"] != "abc" {
		t.Errorf("call_id = %v, want abc", got["call_id"])
	}
	if got["status"] != float64(200) {
		t.Errorf("status = %v, want 200", got["status"])
	}
	if got["sent"] != float64(7) {
		t.Errorf("sent = %v, want 7", got["sent"])
	}
	if got["error"] != "boom" {
		t.Errorf("error = %v, want boom", got["error"])
	}
	hdrs, ok := got["headers"].([]interface{})
	if !ok || len(hdrs) != 2 {
		t.Errorf("headers = %v, want two names", got["headers"])
	}
}

func TestZerologAdapter_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologAdapterWithLogger(zerolog.New(&buf).Level(zerolog.WarnLevel))

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatal("expected warn output")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{" WARN ", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"loud", zerolog.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
