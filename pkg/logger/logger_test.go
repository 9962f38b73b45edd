package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestFor_TagsComponentAndService(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	Init(Options{Level: "debug", Output: &buf, Service: "merchant-app"})
	gate := For("gate")
	gate.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json log line: %v (%s)", err, buf.String())
	}
	if entry["component"] != "gate" || entry["service"] != "merchant-app" || entry["message"] != "hello" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestFor_AppliesComponentOverride(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	Init(Options{Level: "warn", Output: &buf, ComponentLevels: "gate=debug, backend=error,broken"})

	gate := For("gate")
	gate.Debug().Msg("gate debug")
	wizard := For("wizard")
	wizard.Info().Msg("wizard info")
	backend := For("backend")
	backend.Warn().Msg("backend warn")

	out := buf.String()
	if !bytes.Contains(buf.Bytes(), []byte("gate debug")) {
		t.Fatalf("expected gate debug line, got %s", out)
	}
	if bytes.Contains(buf.Bytes(), []byte("wizard info")) || bytes.Contains(buf.Bytes(), []byte("backend warn")) {
		t.Fatalf("unexpected lines below the configured level: %s", out)
	}
}

func TestInit_SecondCallKeepsFirstLogger(t *testing.T) {
	Reset()
	defer Reset()

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})
	l := Get()
	l.Info().Msg("x")

	if first.Len() == 0 || second.Len() != 0 {
		t.Fatalf("expected output on the first writer only")
	}
}
