package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/marcozac/go-jsonc"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a JSONC config file, strips comments, expands ${{ .Env.VAR }} templates,
// unmarshals it into Config, and applies defaults. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variable templates (before stripping, since templates are in strings)
	expanded := expandEnvTemplates(string(data))

	var cfg Config
	if err := jsonc.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8600
	}
	if cfg.Client.BaseURL == "" {
		if v := os.Getenv("REGISTRA_BACKEND_URL"); v != "" {
			cfg.Client.BaseURL = v
		} else {
			cfg.Client.BaseURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
		}
	}
	if cfg.Client.Timeout.Duration() == 0 {
		cfg.Client.Timeout = Duration(60 * time.Second)
	}
	if cfg.Data.Path == "" {
		cfg.Data.Path = filepath.Join(RegistraPath(), "enrollment.db")
	}
	if cfg.Data.CacheTTL.Duration() == 0 {
		cfg.Data.CacheTTL = Duration(time.Hour)
	}
	if cfg.Model.Provider != "" {
		if cfg.Model.Model == "" {
			cfg.Model.Model = "gpt-4o-mini"
		}
		if cfg.Model.Timeout.Duration() == 0 {
			cfg.Model.Timeout = Duration(60 * time.Second)
		}
	}
}
