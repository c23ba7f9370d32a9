package cmd

import (
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/imagenamer/internal/config"
	"github.com/lehigh-university-libraries/imagenamer/internal/gemini"
	"github.com/lehigh-university-libraries/imagenamer/internal/naming"
	"github.com/lehigh-university-libraries/imagenamer/internal/ollama"
	"github.com/lehigh-university-libraries/imagenamer/internal/openai"
	"github.com/lehigh-university-libraries/imagenamer/internal/providers"
	"github.com/lehigh-university-libraries/imagenamer/internal/renaming"
	"github.com/lehigh-university-libraries/imagenamer/internal/storage"
	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	for _, warning := range cfg.Warnings() {
		slog.Warn("Configuration incomplete, model calls will fall back to timestamped names", "warning", warning)
	}
	return cfg, nil
}

func newProvider(cfg config.Config) (providers.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.New(cfg.APIKey, cfg.APIBaseURL), nil
	case config.ProviderGemini:
		return gemini.New(cfg.GeminiAPIKey), nil
	case config.ProviderOllama:
		return ollama.New(cfg.OllamaURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}

func newService(cfg config.Config) (*storage.Store, *renaming.Service, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, nil, err
	}

	store := storage.New(cfg.UploadDir, cfg.RenamedDir)
	if err := store.EnsureDirs(); err != nil {
		return nil, nil, err
	}

	extractor := naming.NewExtractor(provider, cfg.Model, cfg.Temperature, cfg.MaxTokens)
	slog.Info("Naming service ready", "provider", cfg.Provider, "model", cfg.Model, "uploads", cfg.UploadDir, "renamed", cfg.RenamedDir)

	return store, renaming.NewService(store, extractor), nil
}
