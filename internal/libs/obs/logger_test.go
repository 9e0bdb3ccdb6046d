package obs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"info level", "info", zerolog.InfoLevel},
		{"debug level", "debug", zerolog.DebugLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"invalid level defaults to info", "invalid", zerolog.InfoLevel},
		{"empty level defaults to info", "", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level)
			if zerolog.GlobalLevel() != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, zerolog.GlobalLevel())
			}
		})
	}
}

func TestLogger(t *testing.T) {
	InitLogger("info")

	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = orig })

	logger := Logger("test-component")
	logger.Info().Msg("hello")

	if !strings.Contains(buf.String(), `"component":"test-component"`) {
		t.Errorf("expected component field in %q", buf.String())
	}
}

func TestRequestLogger(t *testing.T) {
	InitLogger("info")

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/brew", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}

	if entry["path"] != "/brew" {
		t.Errorf("expected path /brew, got %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("expected status 418, got %v", entry["status"])
	}
	if entry["bytes"] != float64(len("short and stout")) {
		t.Errorf("expected bytes %d, got %v", len("short and stout"), entry["bytes"])
	}
}
