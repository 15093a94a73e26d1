// Package config provides the configuration schema, loader, and provider
// registry for the Sara assistant.
package config

import "path/filepath"

// LogLevel controls log verbosity for the Sara server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for Sara. It is typically
// loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Assistant AssistantConfig `yaml:"assistant"`
	Providers ProvidersConfig `yaml:"providers"`
	Paths     PathsConfig     `yaml:"paths"`
	History   HistoryConfig   `yaml:"history"`
}

// ServerConfig holds network and logging settings for the Sara server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// AssistantConfig names both sides of the conversation. The names are woven
// into the chat system prompt.
type AssistantConfig struct {
	// Username is how the assistant addresses its user.
	Username string `yaml:"username"`

	// Name is the assistant's own name.
	Name string `yaml:"name"`
}

// ProvidersConfig declares which provider implementation to use for each
// concern. Each field selects a named provider registered in the [Registry].
type ProvidersConfig struct {
	LLM    ProviderEntry `yaml:"llm"`
	Search ProviderEntry `yaml:"search"`
	TTS    ProviderEntry `yaml:"tts"`
	STT    ProviderEntry `yaml:"stt"`

	// Image configures the out-of-process image generation worker.
	Image ProviderEntry `yaml:"image"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the
// [Registry]. APIKey and BaseURL support ${ENV_VAR} expansion.
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "groq",
	// "duckduckgo").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint. Leave empty to
	// use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g.,
	// "llama-3.3-70b-versatile").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above.
	Options map[string]any `yaml:"options"`
}

// PathsConfig holds the on-disk locations of the assistant's files.
type PathsConfig struct {
	// DataDir is the root directory for generated files. Defaults to "data".
	DataDir string `yaml:"data_dir"`

	// ChatLog is the chat history file. Defaults to "<data_dir>/chatlog.json".
	ChatLog string `yaml:"chat_log"`

	// ImageExchange is the image request record shared with the worker
	// process. Defaults to "<data_dir>/imagegeneration.data".
	ImageExchange string `yaml:"image_exchange"`

	// ImageDir is where generated images are saved. Defaults to
	// "<data_dir>/images".
	ImageDir string `yaml:"image_dir"`
}

// HistoryConfig bounds the persisted conversation history.
type HistoryConfig struct {
	// MaxTurns is the number of most recent turns retained in the chat log.
	// Zero means the default of 40.
	MaxTurns int `yaml:"max_turns"`
}

// defaultMaxTurns mirrors the chat log store's retention window.
const defaultMaxTurns = 40

// ApplyDefaults fills unset fields with their documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if c.Assistant.Username == "" {
		c.Assistant.Username = "there"
	}
	if c.Assistant.Name == "" {
		c.Assistant.Name = "Sara"
	}
	if c.Paths.DataDir == "" {
		c.Paths.DataDir = "data"
	}
	if c.Paths.ChatLog == "" {
		c.Paths.ChatLog = filepath.Join(c.Paths.DataDir, "chatlog.json")
	}
	if c.Paths.ImageExchange == "" {
		c.Paths.ImageExchange = filepath.Join(c.Paths.DataDir, "imagegeneration.data")
	}
	if c.Paths.ImageDir == "" {
		c.Paths.ImageDir = filepath.Join(c.Paths.DataDir, "images")
	}
	if c.History.MaxTurns == 0 {
		c.History.MaxTurns = defaultMaxTurns
	}
}
