package config

import (
	"os"
	"path/filepath"
)

// RegistraPath returns the root directory for registra data.
// It uses $REGISTRA_PATH if set, otherwise defaults to ~/.registra.
func RegistraPath() string {
	if v := os.Getenv("REGISTRA_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".registra")
	}
	return filepath.Join(home, ".registra")
}

// ConfigPath returns the path to the registra config file.
func ConfigPath() string {
	return filepath.Join(RegistraPath(), "config.jsonc")
}

// DotenvPath returns the path to the registra .env file.
func DotenvPath() string {
	return filepath.Join(RegistraPath(), ".env")
}

// ConversationsPath returns the directory for persisted transcripts.
func ConversationsPath() string {
	return filepath.Join(RegistraPath(), "conversations")
}
