package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/outcome-tools/soocraft/internal/soocraft/project"
)

// Config carries the connection settings for the generation endpoint and
// the local API server. An empty AIEndpoint is a valid configuration and
// means prompt-only mode.
type Config struct {
	AIEndpoint     string `toml:"ai_endpoint"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ListenAddr     string `toml:"listen_addr"`
	SyncURL        string `toml:"sync_url"`
}

const DefaultConfigToml = `# soocraft configuration

# Generation endpoint (Ollama-compatible). Leave empty for prompt-only mode.
ai_endpoint = ""
model = "llama3"
timeout_seconds = 120

# Local API server bind address. Loopback only.
listen_addr = "127.0.0.1:7333"

# Optional remote answer-sync endpoint. Leave empty to disable.
sync_url = ""
`

// LoadFromRoot reads .soocraft/config.toml and applies environment
// overrides. A missing config file yields the defaults rather than an
// error; a malformed one is reported.
func LoadFromRoot(root string) (Config, error) {
	cfg := Config{
		Model:          "llama3",
		TimeoutSeconds: 120,
		ListenAddr:     "127.0.0.1:7333",
	}
	raw, err := os.ReadFile(project.ConfigPath(root))
	if err == nil {
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, err
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}
	_ = godotenv.Load()
	applyEnv(&cfg)
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 120
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SOOCRAFT_AI_ENDPOINT"); v != "" {
		cfg.AIEndpoint = v
	}
	if v := os.Getenv("SOOCRAFT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("SOOCRAFT_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.TimeoutSeconds = secs
		}
	}
	if v := os.Getenv("SOOCRAFT_SYNC_URL"); v != "" {
		cfg.SyncURL = v
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PromptOnly reports whether no generation endpoint is configured.
func (c Config) PromptOnly() bool {
	return c.AIEndpoint == ""
}
