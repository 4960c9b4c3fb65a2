package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/armwire/internal/config"
)

func TestPrintResolvedAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[[listeners]]
transport = "UDP"
format = "take_item"
addr = "127.0.0.1:7010"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out strings.Builder
	if err := printResolved(&out, path); err != nil {
		t.Fatalf("print: %v", err)
	}
	text := out.String()
	for _, want := range []string{"armlinkd", "50ms", "take_item", "udp"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}

	// the printed form loads back to the same config
	again := filepath.Join(t.TempDir(), "again.toml")
	if err := os.WriteFile(again, []byte(text), 0o644); err != nil {
		t.Fatalf("write printed config: %v", err)
	}
	if _, err := config.LoadDaemonConfig(again); err != nil {
		t.Fatalf("printed config does not load: %v", err)
	}
}

func TestPrintResolvedRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`id = "x"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var out strings.Builder
	if err := printResolved(&out, path); err == nil {
		t.Fatalf("expected validation error")
	}
}
