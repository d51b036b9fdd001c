package observability

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLogger_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "prod")
	l.Info().Str("session", "abc").Msg("hello")
	l.Debug().Msg("hidden")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if line["session"] != "abc" || line["message"] != "hello" {
		t.Fatalf("unexpected fields: %+v", line)
	}
}

func TestNewLogger_DevIsConsole(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "development")
	l.Debug().Msg("visible")
	if !bytes.Contains(buf.Bytes(), []byte("visible")) {
		t.Fatalf("debug line missing: %q", buf.String())
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("console output should not be JSON: %q", buf.String())
	}
}
