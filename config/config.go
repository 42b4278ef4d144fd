package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service settings. API keys here are only defaults: the form can override them per request.
type Config struct {
	LLM                   *LLMConfig `json:"llm,omitempty"`
	SerperAPIKey          string     `json:"serper_api_key,omitempty"`
	ServerAddr            string     `json:"server_addr,omitempty"`
	RequestTimeoutSeconds int        `json:"request_timeout_seconds,omitempty"`
}

// LLMConfig 生成模块的模型配置。
type LLMConfig struct {
	Provider    string  `json:"provider,omitempty"`
	Model       string  `json:"model,omitempty"`
	APIKey      string  `json:"api_key,omitempty"`
	BaseURL     string   `json:"base_url,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

const (
	DefaultAddr           = ":8080"
	DefaultRequestTimeout = 120
)

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		LLM:                   &LLMConfig{Provider: "openai", Model: "gpt-4o-mini", Temperature: Float(0.9)},
		ServerAddr:            DefaultAddr,
		RequestTimeoutSeconds: DefaultRequestTimeout,
	}
}

// Load reads .env (if present), the JSON config at path (if present), then applies env overrides.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, err
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if cfg.LLM == nil {
		cfg.LLM = Default().LLM
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.Provider = getEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = getEnv("LLM_BASE_URL", c.LLM.BaseURL)
	c.SerperAPIKey = getEnv("SERPER_API_KEY", c.SerperAPIKey)
	c.ServerAddr = getEnv("SERVER_ADDR", c.ServerAddr)
	c.RequestTimeoutSeconds = getEnvInt("REQUEST_TIMEOUT_SECONDS", c.RequestTimeoutSeconds)
}

// Validate checks provider support; missing keys are allowed because the form supplies them.
func (c Config) Validate() error {
	if c.LLM == nil {
		return errors.New("llm config missing")
	}
	switch c.LLM.Provider {
	case "", "openai":
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url。
		if c.LLM.BaseURL == "" {
			return errors.New("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
	default:
		return fmt.Errorf("llm provider %s not supported", c.LLM.Provider)
	}
	if t := c.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("llm temperature %.2f out of range [0, 2]", *t)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return errors.New("request_timeout_seconds must be > 0")
	}
	return nil
}

// RequestTimeout is the per-submission deadline.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Float returns a pointer to v, for optional settings such as temperature.
func Float(v float64) *float64 { return &v }

// MaskKey keeps the last 4 characters for logs.
func MaskKey(key string) string {
	if key == "" {
		return "unset"
	}
	if len(key) > 8 {
		return "***" + key[len(key)-4:]
	}
	return "***"
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
