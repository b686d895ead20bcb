// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port         string
	FrontendURL  string
	DBPath       string
	Provider     ProviderConfig
	Integration  IntegrationConfig
	Sandbox      SandboxConfig
	ProjectTTL   time.Duration
	ProjectSweep time.Duration
	Reminder     ReminderConfig
}

// ProviderConfig holds LLM provider credentials. The first configured
// key in priority order (Groq, OpenAI, Gemini) selects the provider;
// with no key set the server runs against the mock provider.
type ProviderConfig struct {
	GroqAPIKey     string
	OpenAIAPIKey   string
	GeminiAPIKey   string
	RequestTimeout time.Duration
}

// IntegrationConfig holds credentials for outbound integrations. Any
// empty key puts that integration in demo mode.
type IntegrationConfig struct {
	ResendAPIKey      string
	FromEmail         string
	OpenWeatherAPIKey string
	NewsAPIKey        string
	HTTPTimeout       time.Duration
}

// SandboxConfig selects the code execution backend.
type SandboxConfig struct {
	Backend     string // "local" (default) or "docker"
	DockerImage string
}

// ReminderConfig controls the study schedule reminder worker.
type ReminderConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/agentverse.db"),
		Provider: ProviderConfig{
			GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
			OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
			GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
			RequestTimeout: getEnvDuration("PROVIDER_TIMEOUT", 60*time.Second),
		},
		Integration: IntegrationConfig{
			ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
			FromEmail:         getEnv("FROM_EMAIL", "Agentverse <onboarding@resend.dev>"),
			OpenWeatherAPIKey: getEnv("OPENWEATHER_API_KEY", ""),
			NewsAPIKey:        getEnv("NEWS_API_KEY", ""),
			HTTPTimeout:       getEnvDuration("INTEGRATION_TIMEOUT", 15*time.Second),
		},
		Sandbox: SandboxConfig{
			Backend:     getEnv("SANDBOX_BACKEND", "local"),
			DockerImage: getEnv("SANDBOX_IMAGE", "agentverse-runner:latest"),
		},
		ProjectTTL:   getEnvDuration("PROJECT_CACHE_TTL", 30*time.Minute),
		ProjectSweep: getEnvDuration("PROJECT_CACHE_SWEEP", 5*time.Minute),
		Reminder: ReminderConfig{
			Enabled:  getEnvBool("REMINDER_ENABLED", true),
			Interval: getEnvDuration("REMINDER_INTERVAL", time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch c.Sandbox.Backend {
	case "local", "docker":
	default:
		return fmt.Errorf("SANDBOX_BACKEND must be \"local\" or \"docker\", got %q", c.Sandbox.Backend)
	}
	if c.ProjectTTL <= 0 {
		return fmt.Errorf("PROJECT_CACHE_TTL must be > 0")
	}
	if c.ProjectSweep <= 0 {
		return fmt.Errorf("PROJECT_CACHE_SWEEP must be > 0")
	}
	if c.Reminder.Interval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
