package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Backend names accepted in Config.Backend.
const (
	BackendCheckpoint = "checkpoint"
	BackendHosted     = "hosted"
	BackendHub        = "hub"
)

// Defaults applied by WithDefaults.
const (
	DefaultBackend     = BackendCheckpoint
	DefaultCheckpoint  = "./model-sqlcoder-7b-2"
	DefaultHostedModel = "gpt-3.5-turbo"
	DefaultHubModel    = "deepseek-coder:33b-instruct"
	DefaultHubHost     = "http://127.0.0.1:11434"
	DefaultAddr        = ":8080"
	DefaultLogLevel    = "info"
)

// Config holds runtime parameters for the generators and their surfaces.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Backend    string       `json:"backend" yaml:"backend" toml:"backend"`
	Checkpoint string       `json:"checkpoint" yaml:"checkpoint" toml:"checkpoint"`
	Hosted     HostedConfig `json:"hosted" yaml:"hosted" toml:"hosted"`
	Hub        HubConfig    `json:"hub" yaml:"hub" toml:"hub"`
	Llama      LlamaConfig  `json:"llama" yaml:"llama" toml:"llama"`
	Addr       string       `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel   string       `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// HostedConfig configures the chat-completion API backend.
type HostedConfig struct {
	Model   string `json:"model" yaml:"model" toml:"model"`
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`
	// APIKey, when set, is exported as OPENAI_API_KEY before the client reads it.
	APIKey string `json:"api_key" yaml:"api_key" toml:"api_key"`
}

// HubConfig configures the Ollama-served backend.
type HubConfig struct {
	Model string `json:"model" yaml:"model" toml:"model"`
	Host  string `json:"host" yaml:"host" toml:"host"`
	// TimeoutSeconds bounds each HTTP round trip to the daemon. 0 means none.
	TimeoutSeconds int `json:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// LlamaConfig selects and tunes the runtime that serves the local checkpoint.
type LlamaConfig struct {
	Mode                string   `json:"mode" yaml:"mode" toml:"mode"`
	Bin                 string   `json:"bin" yaml:"bin" toml:"bin"`
	Host                string   `json:"host" yaml:"host" toml:"host"`
	PortStart           int      `json:"port_start" yaml:"port_start" toml:"port_start"`
	PortEnd             int      `json:"port_end" yaml:"port_end" toml:"port_end"`
	ExtraArgs           []string `json:"extra_args" yaml:"extra_args" toml:"extra_args"`
	ReadyTimeoutSeconds int      `json:"ready_timeout_seconds" yaml:"ready_timeout_seconds" toml:"ready_timeout_seconds"`
	CtxSize             int      `json:"ctx_size" yaml:"ctx_size" toml:"ctx_size"`
	GPULayers           int      `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`
	Threads             int      `json:"threads" yaml:"threads" toml:"threads"`
	URL                 string   `json:"url" yaml:"url" toml:"url"`
	APIKey              string   `json:"api_key" yaml:"api_key" toml:"api_key"`
}

// Default returns a fully populated configuration.
func Default() Config {
	return Config{}.WithDefaults()
}

// WithDefaults fills unspecified fields. Hub host and log level fall back to
// OLLAMA_HOST and SQLGEN_LOG_LEVEL before the built-in defaults. Llama
// runtime tuning is left to the runtime's own defaults.
func (c Config) WithDefaults() Config {
	if strings.TrimSpace(c.Backend) == "" {
		c.Backend = DefaultBackend
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if strings.TrimSpace(c.Checkpoint) == "" {
		c.Checkpoint = DefaultCheckpoint
	}
	if strings.TrimSpace(c.Hosted.Model) == "" {
		c.Hosted.Model = DefaultHostedModel
	}
	if strings.TrimSpace(c.Hub.Model) == "" {
		c.Hub.Model = DefaultHubModel
	}
	if strings.TrimSpace(c.Hub.Host) == "" {
		c.Hub.Host = envOr("OLLAMA_HOST", DefaultHubHost)
	}
	if strings.TrimSpace(c.Addr) == "" {
		c.Addr = DefaultAddr
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = envOr("SQLGEN_LOG_LEVEL", DefaultLogLevel)
	}
	return c
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
