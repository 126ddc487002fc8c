package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotenv(t *testing.T) {
	content := `# Backend location
REGISTRA_BACKEND_URL=http://127.0.0.1:8600

# Quoted values
OPENAI_API_KEY="sk-test"
SINGLE='single-quoted'

# Spaces around =
SPACED_KEY = spaced_value

# Shell compatibility and inline comments
export EXPORTED=from-shell-style
COMMENTED=value # trailing note
`

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	// Clear any existing values.
	os.Unsetenv("REGISTRA_BACKEND_URL")
	os.Unsetenv("OPENAI_API_KEY")
	os.Unsetenv("SINGLE")
	os.Unsetenv("SPACED_KEY")
	os.Unsetenv("EXPORTED")
	os.Unsetenv("COMMENTED")

	if err := LoadDotenv(path); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key, want string
	}{
		{"REGISTRA_BACKEND_URL", "http://127.0.0.1:8600"},
		{"OPENAI_API_KEY", "sk-test"},
		{"SINGLE", "single-quoted"},
		{"SPACED_KEY", "spaced_value"},
		{"EXPORTED", "from-shell-style"},
		{"COMMENTED", "value"},
	}

	for _, tt := range tests {
		got := os.Getenv(tt.key)
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLoadDotenvNoOverride(t *testing.T) {
	content := `EXISTING_VAR=new-value`
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("EXISTING_VAR", "original")

	if err := LoadDotenv(path); err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("EXISTING_VAR"); got != "original" {
		t.Errorf("expected existing var to be preserved, got %q", got)
	}
}

func TestParseEnvLine(t *testing.T) {
	cases := []struct {
		line      string
		key, want string
		ok        bool
	}{
		{"KEY=value", "KEY", "value", true},
		{"export KEY=value", "KEY", "value", true},
		{`KEY="a # b"`, "KEY", "a # b", true},
		{"KEY=value # note", "KEY", "value", true},
		{"# comment", "", "", false},
		{"no_equals_here", "", "", false},
		{"=orphan", "", "", false},
	}
	for _, c := range cases {
		key, value, ok := parseEnvLine(c.line)
		if ok != c.ok || key != c.key || value != c.want {
			t.Errorf("parseEnvLine(%q): got (%q, %q, %v), want (%q, %q, %v)",
				c.line, key, value, ok, c.key, c.want, c.ok)
		}
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	err := LoadDotenv("/nonexistent/.env")
	if err != nil {
		t.Errorf("missing file should be silently ignored, got: %v", err)
	}
}
