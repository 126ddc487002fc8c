package config

import "time"

// Config is the root configuration for registra.
type Config struct {
	Server  ServerConfig  `json:"server"`
	Client  ClientConfig  `json:"client"`
	Data    DataConfig    `json:"data"`
	Model   ModelConfig   `json:"model"`
	Greeter GreeterConfig `json:"greeter"`
}

// ServerConfig holds the chat backend listen settings.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ClientConfig holds settings for the chat/ask client side.
type ClientConfig struct {
	BaseURL string   `json:"base_url"` // chat backend, e.g. http://127.0.0.1:8600
	Timeout Duration `json:"timeout,omitempty"`
}

// DataConfig configures the enrollment dataset.
type DataConfig struct {
	Path     string   `json:"path"`                // SQLite file (default: $REGISTRA_PATH/enrollment.db)
	CacheTTL Duration `json:"cache_ttl,omitempty"` // snapshot reload interval
	Vocab    string   `json:"vocab,omitempty"`     // optional vocabulary YAML override
}

// ModelConfig configures the optional LLM used for extraction and phrasing.
// An empty provider means the built-in rule engine handles everything.
type ModelConfig struct {
	Provider    string   `json:"provider,omitempty"` // "" or "openai"
	Model       string   `json:"model,omitempty"`
	APIKey      string   `json:"api_key,omitempty"` // direct key or ${{ .Env.VAR }} template
	BaseURL     string   `json:"base_url,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Timeout     Duration `json:"timeout,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// GreeterConfig holds client-side conversation seeding.
type GreeterConfig struct {
	Greeting string `json:"greeting,omitempty"`
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	// Remove quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
