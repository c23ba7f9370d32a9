package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported naming providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Config holds everything the server and CLI need. It is built once at startup.
type Config struct {
	Provider     string  `yaml:"provider"`
	APIKey       string  `yaml:"api_key"`
	APIBaseURL   string  `yaml:"api_base_url"`
	Model        string  `yaml:"model"`
	GeminiAPIKey string  `yaml:"gemini_api_key"`
	OllamaURL    string  `yaml:"ollama_url"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	UploadDir    string  `yaml:"upload_dir"`
	RenamedDir   string  `yaml:"renamed_dir"`
	Port         string  `yaml:"port"`
	MaxUploadMB  int64   `yaml:"max_upload_mb"`

	// AllowedOrigins enables CORS for these origins; empty means same-origin only
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Provider:    ProviderOpenAI,
		Model:       "qwen-vl-plus",
		Temperature: 0.1,
		MaxTokens:   200,
		UploadDir:   "uploads",
		RenamedDir:  "renamed",
		Port:        "5000",
		MaxUploadMB: 32,
	}
}

// Load reads the optional YAML file at path and applies environment overrides
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.OllamaURL = normalizeOllamaURL(cfg.OllamaURL)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Provider, "NAMING_PROVIDER")
	setString(&c.APIKey, "API_KEY")
	setString(&c.APIBaseURL, "API_BASE_URL")
	setString(&c.Model, "MODEL_NAME")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.OllamaURL, "OLLAMA_HOST")
	setString(&c.OllamaURL, "OLLAMA_URL")
	setString(&c.UploadDir, "UPLOAD_DIR")
	setString(&c.RenamedDir, "RENAMED_DIR")
	setString(&c.Port, "PORT")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}

	if v := os.Getenv("TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid TEMPERATURE %q: %w", v, err)
		}
		c.Temperature = f
	}
	if v := os.Getenv("MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_TOKENS %q: %w", v, err)
		}
		c.MaxTokens = n
	}
	if v := os.Getenv("MAX_UPLOAD_MB"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_UPLOAD_MB %q: %w", v, err)
		}
		c.MaxUploadMB = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// normalizeOllamaURL accepts OLLAMA_HOST style values such as 0.0.0.0:11434
func normalizeOllamaURL(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.Contains(u, "://") {
		return u
	}
	return "http://" + u
}

// Validate checks values that would make the service unusable
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderGemini, ProviderOllama:
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	if c.Model == "" {
		return fmt.Errorf("model name must not be empty")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.UploadDir == "" || c.RenamedDir == "" {
		return fmt.Errorf("upload_dir and renamed_dir must be set")
	}
	return nil
}

// Warnings lists missing settings that will make model calls fail.
// They do not stop the server; failed calls fall back to timestamped names.
func (c Config) Warnings() []string {
	var warnings []string
	switch c.Provider {
	case ProviderOpenAI:
		if c.APIKey == "" {
			warnings = append(warnings, "API_KEY is not set")
		}
		if c.APIBaseURL == "" {
			warnings = append(warnings, "API_BASE_URL is not set")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			warnings = append(warnings, "GEMINI_API_KEY is not set")
		}
	}
	return warnings
}

// MaxUploadBytes is the multipart memory limit for one upload request
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}
