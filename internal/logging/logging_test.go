package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"kahani-ai/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantOut func(string) bool
	}{
		{
			name: "text at info drops debug",
			cfg:  config.Config{LogLevel: slog.LevelInfo, LogFormat: "text"},
			wantOut: func(out string) bool {
				return strings.Contains(out, "msg=hello") && !strings.Contains(out, "hidden")
			},
		},
		{
			name: "json",
			cfg:  config.Config{LogLevel: slog.LevelDebug, LogFormat: "json"},
			wantOut: func(out string) bool {
				var first map[string]any
				line, _, _ := strings.Cut(out, "\n")
				return json.Unmarshal([]byte(line), &first) == nil && first["msg"] == "hello" && strings.Contains(out, "hidden")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(&buf, &tt.cfg)
			logger.Info("hello", "story_id", "root/kitaab")
			logger.Debug("hidden")

			if !tt.wantOut(buf.String()) {
				t.Errorf("unexpected log output: %q", buf.String())
			}
		})
	}
}
