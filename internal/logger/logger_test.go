package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("dropped")
	if buf.Len() > 0 {
		t.Fatalf("info written at warn level: %s", buf.String())
	}
	log.Warn("kept", "kernel", "gru")
	out := buf.String()
	if !strings.Contains(out, `"kernel":"gru"`) || !strings.Contains(out, `"level":"WARN"`) {
		t.Fatalf("unexpected JSON output: %s", out)
	}
}

func TestPrettyWithoutColor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false))
	log.With("model", "seq").WithGroup("step").Debug("advanced", "t", 3, "note", "two words", "took", 2*time.Millisecond)

	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Fatalf("color codes in plain output: %q", out)
	}
	for _, want := range []string{"DEBUG advanced", " model=seq", " step.t=3", ` step.note="two words"`, " step.took=2ms"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestPrettyColorAndGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(NewPrettyHandler(&buf, nil, true))
	log.Debug("hidden")
	log.Error("failed", slog.Group("req", "id", "abc"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatal("debug written at the default info level")
	}
	if !strings.Contains(out, ansiRed) || !strings.Contains(out, "req.id=abc") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestForFormat(t *testing.T) {
	t.Parallel()
	for _, format := range []string{"", "pretty", "TEXT", "json"} {
		var buf bytes.Buffer
		log, err := ForFormat(format, slog.LevelInfo, &buf)
		if err != nil {
			t.Fatalf("ForFormat(%q): %v", format, err)
		}
		log.Info("ping")
		if !strings.Contains(buf.String(), "ping") {
			t.Fatalf("ForFormat(%q) wrote %q", format, buf.String())
		}
	}
	if _, err := ForFormat("xml", slog.LevelInfo, &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"Warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestContext(t *testing.T) {
	t.Parallel()
	if FromContext(context.Background()) == nil {
		t.Fatal("expected a default logger")
	}
	l := Discard()
	if got := FromContext(WithContext(context.Background(), l)); got != l {
		t.Fatal("logger not carried by the context")
	}
}
