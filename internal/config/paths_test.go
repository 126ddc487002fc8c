package config

import (
	"path/filepath"
	"testing"
)

func TestRegistraPathFromEnv(t *testing.T) {
	t.Setenv("REGISTRA_PATH", "/tmp/registra-test")

	if got := RegistraPath(); got != "/tmp/registra-test" {
		t.Errorf("expected /tmp/registra-test, got %s", got)
	}
	if got := ConfigPath(); got != filepath.Join("/tmp/registra-test", "config.jsonc") {
		t.Errorf("unexpected config path: %s", got)
	}
	if got := ConversationsPath(); got != filepath.Join("/tmp/registra-test", "conversations") {
		t.Errorf("unexpected conversations path: %s", got)
	}
}

func TestRegistraPathDefault(t *testing.T) {
	t.Setenv("REGISTRA_PATH", "")
	t.Setenv("HOME", "/home/someone")

	got := RegistraPath()
	if got != filepath.Join("/home/someone", ".registra") {
		t.Errorf("expected ~/.registra, got %s", got)
	}
}
