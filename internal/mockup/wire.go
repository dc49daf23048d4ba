package mockup

import (
	"context"
	"fmt"
	"image"
	"time"

	"mockup/internal/imageproc"
	"mockup/internal/infra"
	provider "mockup/internal/providers/image"
	"mockup/internal/storage"
)

// Runtime is the process-wide wiring built from configuration.
type Runtime struct {
	Service *Service
	// Model is the generation model in use, reported by the health endpoint.
	Model string
	// StaticDir is the filesystem result store root, empty for remote stores.
	StaticDir string
}

// NewFromConfig builds the generation client, result store and service once
// for the whole process.
func NewFromConfig(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (*Runtime, error) {
	generator, model, err := newGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("mockup: generation client: %w", err)
	}
	store, staticDir, err := newResultStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("mockup: result store: %w", err)
	}
	size, err := provider.ParseSize(cfg.OutputSize)
	if err != nil {
		return nil, err
	}
	svc, err := NewService(Options{
		Generator:   generator,
		Store:       store,
		Validation:  cfg.ValidationPolicy,
		Composition: cfg.CompositionPolicy,
		MaxSize:     cfg.MaxImageSize,
		Placement: imageproc.Placement{
			Offset: image.Pt(cfg.LogoOffsetX, cfg.LogoOffsetY),
			Scale:  cfg.LogoScale,
		},
		Size:    size,
		TempDir: cfg.TempDir,
		Timeout: cfg.GenerationTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return &Runtime{Service: svc, Model: model, StaticDir: staticDir}, nil
}

func newGenerator(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (provider.Generator, string, error) {
	switch cfg.GenerationProvider {
	case infra.ProviderGemini:
		gen, err := provider.NewGeminiGenerator(ctx, provider.GeminiOptions{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiImageModel,
			Logger: logger,
		})
		if err != nil {
			return nil, "", err
		}
		return gen, gen.Model(), nil
	case infra.ProviderOpenAI:
		gen := provider.NewOpenAIGenerator(provider.OpenAIOptions{
			APIKey:         cfg.OpenAIAPIKey,
			BaseURL:        cfg.OpenAIBaseURL,
			Model:          cfg.OpenAIImageModel,
			Logger:         logger,
			RequestTimeout: cfg.GenerationTimeout + 10*time.Second,
		})
		return gen, gen.Model(), nil
	default:
		return nil, "", fmt.Errorf("unsupported provider %q", cfg.GenerationProvider)
	}
}

func newResultStore(cfg *infra.Config) (ResultStore, string, error) {
	switch cfg.ResultStore {
	case infra.StoreAzure:
		store, err := storage.NewAzureBlobStore(cfg.AzureConnectionString, cfg.AzureContainer)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	case infra.StoreFilesystem:
		store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
		if err != nil {
			return nil, "", err
		}
		return store, store.BasePath(), nil
	default:
		return nil, "", fmt.Errorf("unsupported result store %q", cfg.ResultStore)
	}
}
