package infra

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		env   string
		level string
		want  zerolog.Level
	}{
		{env: "development", want: zerolog.DebugLevel},
		{env: "production", want: zerolog.InfoLevel},
		{env: "production", level: "WARN", want: zerolog.WarnLevel},
		{env: "development", level: "error", want: zerolog.ErrorLevel},
		{env: "production", level: "chatty", want: zerolog.InfoLevel},
	}
	for _, tc := range tests {
		got := NewLogger(tc.env, tc.level).GetLevel()
		if got != tc.want {
			t.Fatalf("NewLogger(%q, %q) level = %s, want %s", tc.env, tc.level, got, tc.want)
		}
	}
}
