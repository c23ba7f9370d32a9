package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

var envKeys = []string{
	"NAMING_PROVIDER", "API_KEY", "API_BASE_URL", "MODEL_NAME", "GEMINI_API_KEY",
	"OLLAMA_HOST", "OLLAMA_URL", "UPLOAD_DIR", "RENAMED_DIR", "PORT",
	"TEMPERATURE", "MAX_TOKENS", "MAX_UPLOAD_MB", "CORS_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
	if cfg.Model != "qwen-vl-plus" || cfg.MaxTokens != 200 || cfg.Port != "5000" {
		t.Errorf("Unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
provider: ollama
model: llava
ollama_url: http://gpu:11434
renamed_dir: out
max_tokens: 50
`)
	t.Setenv("MODEL_NAME", "qwen2.5vl")
	t.Setenv("MAX_TOKENS", "64")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Provider != ProviderOllama {
		t.Errorf("Expected provider from file, got %s", cfg.Provider)
	}
	if cfg.Model != "qwen2.5vl" {
		t.Errorf("Expected env to override model, got %s", cfg.Model)
	}
	if cfg.MaxTokens != 64 {
		t.Errorf("Expected env to override max tokens, got %d", cfg.MaxTokens)
	}
	if cfg.OllamaURL != "http://gpu:11434" || cfg.RenamedDir != "out" {
		t.Errorf("File values lost: %+v", cfg)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("Expected default upload dir, got %s", cfg.UploadDir)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "unknown provider", env: map[string]string{"NAMING_PROVIDER": "claude"}},
		{name: "bad max tokens", env: map[string]string{"MAX_TOKENS": "many"}},
		{name: "zero max tokens", env: map[string]string{"MAX_TOKENS": "0"}},
		{name: "bad temperature", env: map[string]string{"TEMPERATURE": "warm"}},
		{name: "invalid yaml", file: "provider: [openai"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			if _, err := Load(path); err == nil {
				t.Error("Expected an error")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("Expected an error")
		}
	})
}

func TestProviderNormalized(t *testing.T) {
	clearEnv(t)
	t.Setenv("NAMING_PROVIDER", " Gemini ")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != ProviderGemini {
		t.Errorf("Expected gemini, got %q", cfg.Provider)
	}
}

func TestOllamaURL(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		value    string
		expected string
	}{
		{name: "host without scheme", env: "OLLAMA_HOST", value: "0.0.0.0:11434", expected: "http://0.0.0.0:11434"},
		{name: "host with scheme", env: "OLLAMA_HOST", value: "https://gpu:11434", expected: "https://gpu:11434"},
		{name: "url", env: "OLLAMA_URL", value: "http://localhost:11434/", expected: "http://localhost:11434/"},
		{name: "unset", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.env != "" {
				t.Setenv(tt.env, tt.value)
			}
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.OllamaURL != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, cfg.OllamaURL)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "allowed_origins:\n  - http://intranet\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"http://intranet"}) {
		t.Errorf("Unexpected origins from file %v", cfg.AllowedOrigins)
	}

	t.Setenv("CORS_ORIGINS", "http://localhost:3000, ,https://app.example")
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	expected := []string{"http://localhost:3000", "https://app.example"}
	if !reflect.DeepEqual(cfg.AllowedOrigins, expected) {
		t.Errorf("Expected env to override origins, got %v", cfg.AllowedOrigins)
	}
}

func TestWarnings(t *testing.T) {
	cfg := Default()
	if n := len(cfg.Warnings()); n != 2 {
		t.Errorf("Expected 2 warnings for missing key and URL, got %d", n)
	}

	cfg.APIKey = "sk-test"
	cfg.APIBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	if n := len(cfg.Warnings()); n != 0 {
		t.Errorf("Expected no warnings, got %d", n)
	}

	cfg.Provider = ProviderOllama
	if n := len(cfg.Warnings()); n != 0 {
		t.Errorf("Ollama needs no credentials, got %d warnings", n)
	}
}

func TestMaxUploadBytes(t *testing.T) {
	cfg := Default()
	cfg.MaxUploadMB = 2
	if cfg.MaxUploadBytes() != 2*1024*1024 {
		t.Errorf("Unexpected byte limit %d", cfg.MaxUploadBytes())
	}
}
