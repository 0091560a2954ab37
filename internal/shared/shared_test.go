package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsGUID(t *testing.T) {
	tc := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "plain", value: "3f2504e0-4f89-11d3-9a0c-0305e82c3301", want: true},
		{name: "braced", value: "{3F2504E0-4F89-11D3-9A0C-0305E82C3301}", want: true},
		{name: "surrounding whitespace", value: "  3f2504e0-4f89-11d3-9a0c-0305e82c3301 ", want: true},
		{name: "empty", value: "", want: false},
		{name: "garbage", value: "not-a-guid", want: false},
		{name: "truncated", value: "3f2504e0-4f89-11d3-9a0c", want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsGUID(tt.value); got != tt.want {
				t.Errorf("IsGUID(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizeGUID(t *testing.T) {
	got := NormalizeGUID("{3F2504E0-4F89-11D3-9A0C-0305E82C3301}")
	want := "3f2504e0-4f89-11d3-9a0c-0305e82c3301"
	if got != want {
		t.Errorf("NormalizeGUID() = %v, want %v", got, want)
	}
}

func TestLoggers(t *testing.T) {
	t.Run("WithLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "handler", "initiator")
		logger.Info("hello")

		if !strings.Contains(buf.String(), "handler=initiator") {
			t.Errorf("expected child logger fields in output, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "listsync.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("written")

		if !strings.Contains(mustRead(t, path), "written") {
			t.Error("expected log line in file")
		}
	})

	t.Run("GenerateID", func(t *testing.T) {
		if id := GenerateID(); !IsGUID(id) {
			t.Errorf("GenerateID() returned non-GUID %q", id)
		}
	})
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(content)
}
