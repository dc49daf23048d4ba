package infra

import (
	"os"
	"strings"
	"testing"
	"time"

	"mockup/internal/domain"
)

// clearEnv blanks every key LoadConfig reads so host settings do not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "PORT", "CORS_ALLOWED_ORIGINS", "MAX_UPLOAD_BYTES",
		"MAX_IMAGE_SIZE", "OUTPUT_SIZE", "VALIDATION_POLICY", "COMPOSITION_POLICY",
		"LOGO_OFFSET_X", "LOGO_OFFSET_Y", "LOGO_SCALE", "GENERATION_PROVIDER",
		"GENERATION_TIMEOUT", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_IMAGE_MODEL",
		"GEMINI_API_KEY", "GEMINI_IMAGE_MODEL", "TEMP_DIR", "RESULT_STORE",
		"STORAGE_PATH", "AZURE_STORAGE_CONNECTION_STRING", "AZURE_STORAGE_CONTAINER",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "5000" {
		t.Fatalf("Port = %q, want 5000", cfg.Port)
	}
	if cfg.ValidationPolicy != domain.RequireProduct {
		t.Fatalf("ValidationPolicy = %q", cfg.ValidationPolicy)
	}
	if cfg.CompositionPolicy != domain.OverlayLocal {
		t.Fatalf("CompositionPolicy = %q", cfg.CompositionPolicy)
	}
	if cfg.MaxImageSize != 1024 || cfg.OutputSize != "1024x1024" {
		t.Fatalf("sizes = %d / %q", cfg.MaxImageSize, cfg.OutputSize)
	}
	if cfg.LogoOffsetX != 50 || cfg.LogoOffsetY != 50 || cfg.LogoScale != 0 {
		t.Fatalf("placement = (%d,%d) x%v", cfg.LogoOffsetX, cfg.LogoOffsetY, cfg.LogoScale)
	}
	if cfg.GenerationProvider != ProviderOpenAI || cfg.OpenAIImageModel != "gpt-image-1" {
		t.Fatalf("provider = %q model = %q", cfg.GenerationProvider, cfg.OpenAIImageModel)
	}
	if cfg.GenerationTimeout != 120*time.Second {
		t.Fatalf("GenerationTimeout = %s", cfg.GenerationTimeout)
	}
	if cfg.MaxUploadBytes != 20<<20 {
		t.Fatalf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
	if cfg.ResultStore != StoreFilesystem {
		t.Fatalf("ResultStore = %q", cfg.ResultStore)
	}
}

func TestLoadConfigStorageBaseURL(t *testing.T) {
	tests := []struct {
		name  string
		port  string
		set   bool
		value string
		want  string
	}{
		{name: "default port", want: "http://localhost:5000/static"},
		{name: "inherits port", port: "1919", want: "http://localhost:1919/static"},
		{name: "explicit", port: "1919", set: true, value: "https://cdn.example.com/static", want: "https://cdn.example.com/static"},
		{name: "explicitly empty", set: true, value: "", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("OPENAI_API_KEY", "sk-test")
			t.Setenv("PORT", tc.port)
			t.Setenv("STORAGE_BASE_URL", tc.value)
			if !tc.set {
				os.Unsetenv("STORAGE_BASE_URL")
			}
			cfg, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig returned error: %v", err)
			}
			if cfg.StorageBaseURL != tc.want {
				t.Fatalf("StorageBaseURL mismatch: got %q want %q", cfg.StorageBaseURL, tc.want)
			}
		})
	}
}

func TestLoadConfigParsesOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GENERATION_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("VALIDATION_POLICY", "REQUIRE_BOTH")
	t.Setenv("COMPOSITION_POLICY", "send_as_mask")
	t.Setenv("GENERATION_TIMEOUT", "45")
	t.Setenv("LOGO_SCALE", "0.25")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("OUTPUT_SIZE", "512")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.GenerationProvider != ProviderGemini {
		t.Fatalf("GenerationProvider = %q", cfg.GenerationProvider)
	}
	if cfg.ValidationPolicy != domain.RequireBoth || cfg.CompositionPolicy != domain.SendAsMask {
		t.Fatalf("policies = %q / %q", cfg.ValidationPolicy, cfg.CompositionPolicy)
	}
	if cfg.GenerationTimeout != 45*time.Second {
		t.Fatalf("GenerationTimeout = %s", cfg.GenerationTimeout)
	}
	if cfg.LogoScale != 0.25 {
		t.Fatalf("LogoScale = %v", cfg.LogoScale)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSAllowedOrigins = %#v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing openai key", env: map[string]string{}, want: "OPENAI_API_KEY"},
		{name: "missing gemini key", env: map[string]string{"GENERATION_PROVIDER": "gemini"}, want: "GEMINI_API_KEY"},
		{name: "unknown provider", env: map[string]string{"GENERATION_PROVIDER": "midjourney"}, want: "GENERATION_PROVIDER"},
		{name: "bad validation policy", env: map[string]string{"OPENAI_API_KEY": "k", "VALIDATION_POLICY": "sometimes"}, want: "VALIDATION_POLICY"},
		{name: "bad composition policy", env: map[string]string{"OPENAI_API_KEY": "k", "COMPOSITION_POLICY": "blend"}, want: "COMPOSITION_POLICY"},
		{name: "azure without connection", env: map[string]string{"OPENAI_API_KEY": "k", "RESULT_STORE": "azure"}, want: "AZURE_STORAGE_CONNECTION_STRING"},
		{name: "bad output size", env: map[string]string{"OPENAI_API_KEY": "k", "OUTPUT_SIZE": "256x256"}, want: "OUTPUT_SIZE"},
		{name: "zero max image size", env: map[string]string{"OPENAI_API_KEY": "k", "MAX_IMAGE_SIZE": "0"}, want: "MAX_IMAGE_SIZE"},
		{name: "negative max image size", env: map[string]string{"OPENAI_API_KEY": "k", "MAX_IMAGE_SIZE": "-5"}, want: "MAX_IMAGE_SIZE"},
		{name: "logo scale out of range", env: map[string]string{"OPENAI_API_KEY": "k", "LOGO_SCALE": "1.5"}, want: "LOGO_SCALE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %s", err, tc.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_TIMEOUT", "2m")
	if got := getEnvDuration("X_TIMEOUT", time.Second); got != 2*time.Minute {
		t.Fatalf("got %s", got)
	}
	t.Setenv("X_TIMEOUT", "garbage")
	if got := getEnvDuration("X_TIMEOUT", time.Second); got != time.Second {
		t.Fatalf("got %s, want fallback", got)
	}
}
