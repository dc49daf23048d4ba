package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"mockup/internal/domain"
)

// Generation providers and result stores selectable through the environment.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	StoreFilesystem = "filesystem"
	StoreAzure      = "azure"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	LogLevel           string
	Port               string
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	CORSAllowedOrigins []string
	MaxUploadBytes     int64

	MaxImageSize      int
	OutputSize        string
	ValidationPolicy  domain.ValidationPolicy
	CompositionPolicy domain.CompositionPolicy
	LogoOffsetX       int
	LogoOffsetY       int
	LogoScale         float64

	GenerationProvider string
	GenerationTimeout  time.Duration
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIImageModel   string
	GeminiAPIKey       string
	GeminiImageModel   string

	TempDir               string
	ResultStore           string
	StoragePath           string
	StorageBaseURL        string
	AzureConnectionString string
	AzureContainer        string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "5000")
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		Port:               port,
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 30)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),

		MaxImageSize: getEnvInt("MAX_IMAGE_SIZE", 1024),
		OutputSize:   getEnv("OUTPUT_SIZE", "1024x1024"),
		LogoOffsetX:  getEnvInt("LOGO_OFFSET_X", 50),
		LogoOffsetY:  getEnvInt("LOGO_OFFSET_Y", 50),
		LogoScale:    getEnvFloat("LOGO_SCALE", 0),

		GenerationProvider: strings.ToLower(getEnv("GENERATION_PROVIDER", ProviderOpenAI)),
		GenerationTimeout:  getEnvDuration("GENERATION_TIMEOUT", 120*time.Second),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIImageModel:   getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiImageModel:   getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),

		TempDir:               os.Getenv("TEMP_DIR"),
		ResultStore:           strings.ToLower(getEnv("RESULT_STORE", StoreFilesystem)),
		StoragePath:           getEnv("STORAGE_PATH", "./data/generated"),
		StorageBaseURL:        lookupEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		AzureConnectionString: os.Getenv("AZURE_STORAGE_CONNECTION_STRING"),
		AzureContainer:        getEnv("AZURE_STORAGE_CONTAINER", "mockups"),
	}

	var err error
	if cfg.ValidationPolicy, err = domain.ParseValidationPolicy(os.Getenv("VALIDATION_POLICY")); err != nil {
		return nil, fmt.Errorf("VALIDATION_POLICY: %w", err)
	}
	if cfg.CompositionPolicy, err = domain.ParseCompositionPolicy(os.Getenv("COMPOSITION_POLICY")); err != nil {
		return nil, fmt.Errorf("COMPOSITION_POLICY: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.GenerationProvider {
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required"))
		}
	case ProviderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("GENERATION_PROVIDER %q is not supported", c.GenerationProvider))
	}
	switch c.ResultStore {
	case StoreFilesystem:
		if strings.TrimSpace(c.StoragePath) == "" {
			errs = append(errs, errors.New("STORAGE_PATH is required"))
		}
	case StoreAzure:
		if strings.TrimSpace(c.AzureConnectionString) == "" {
			errs = append(errs, errors.New("AZURE_STORAGE_CONNECTION_STRING is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("RESULT_STORE %q is not supported", c.ResultStore))
	}
	switch strings.ToLower(c.OutputSize) {
	case "512", "512x512", "1024", "1024x1024":
	default:
		errs = append(errs, fmt.Errorf("OUTPUT_SIZE %q is not supported", c.OutputSize))
	}
	if c.MaxImageSize <= 0 {
		errs = append(errs, errors.New("MAX_IMAGE_SIZE must be positive"))
	}
	if c.LogoScale < 0 || c.LogoScale > 1 {
		errs = append(errs, errors.New("LOGO_SCALE must be between 0 and 1"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// lookupEnv differs from getEnv in that an explicitly empty value is kept.
func lookupEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "2m") or plain seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
