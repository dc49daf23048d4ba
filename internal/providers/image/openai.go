package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"mockup/internal/domain"
	"mockup/internal/infra"
)

// ErrMissingAPIKey indicates that the generator was configured without credentials.
var ErrMissingAPIKey = errors.New("openai: api key is required")

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-image-1"
	maxResponseBytes     = 64 << 20
)

// OpenAIOptions configures the OpenAI Images backend.
type OpenAIOptions struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// OpenAIGenerator talks to the OpenAI Images API. Pure generation goes through
// go-openai; edits are sent as a hand-built multipart request so that every
// image part carries its real content type.
type OpenAIGenerator struct {
	apiKey     string
	baseURL    string
	model      string
	client     *openai.Client
	httpClient *http.Client
	logger     *infra.Logger
}

// NewOpenAIGenerator constructs the generator. It is built once at startup and
// shared by all requests.
func NewOpenAIGenerator(opts OpenAIOptions) *OpenAIGenerator {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 180 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	apiKey := strings.TrimSpace(opts.APIKey)

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = httpClient

	return &OpenAIGenerator{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		client:     openai.NewClientWithConfig(cfg),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Model returns the configured model identifier.
func (g *OpenAIGenerator) Model() string {
	return g.model
}

// HasCredentials reports whether the generator can perform remote calls.
func (g *OpenAIGenerator) HasCredentials() bool {
	return g.apiKey != ""
}

// Generate fulfils the Generator interface.
func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (*Outcome, error) {
	if g == nil {
		return nil, domain.NewServiceError("openai generator not configured", nil)
	}
	if !g.HasCredentials() {
		return nil, domain.NewServiceError("openai generator unavailable", ErrMissingAPIKey)
	}
	size := req.Size
	if size == "" {
		size = DefaultSize
	}
	switch req.Mode {
	case ModeEdit:
		if req.Base == nil {
			return nil, domain.NewServiceError("openai edit: base image is required", nil)
		}
		return g.edit(ctx, req, size)
	case ModeGenerate, "":
		return g.generate(ctx, req.Prompt, size)
	default:
		return nil, domain.NewServiceError(fmt.Sprintf("openai: unsupported mode %q", req.Mode), nil)
	}
}

func (g *OpenAIGenerator) generate(ctx context.Context, prompt string, size Size) (*Outcome, error) {
	request := openai.ImageRequest{
		Prompt: prompt,
		Model:  g.model,
		N:      1,
		Size:   string(size),
	}
	if g.wantsURL() {
		request.ResponseFormat = openai.CreateImageResponseFormatURL
	}
	start := time.Now()
	resp, err := g.client.CreateImage(ctx, request)
	if err != nil {
		return nil, serviceError(ctx, "openai generate", err)
	}
	ctxLogger(ctx, g.logger).Debug().
		Str("mode", string(ModeGenerate)).
		Str("model", g.model).
		Int("results", len(resp.Data)).
		Dur("elapsed", time.Since(start)).
		Msg("openai image call finished")
	return reconcile(resp.Data)
}

func (g *OpenAIGenerator) edit(ctx context.Context, req GenerateRequest, size Size) (*Outcome, error) {
	body, contentType, err := g.editBody(req, size)
	if err != nil {
		return nil, domain.NewServiceError("openai edit: build request", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/images/edits", body)
	if err != nil {
		return nil, domain.NewServiceError("openai edit: build request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, serviceError(ctx, "openai edit", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, serviceError(ctx, "openai edit: read response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewServiceError(
			fmt.Sprintf("openai edit: status %d", resp.StatusCode),
			errors.New(apiErrorMessage(raw, resp.Status)),
		)
	}

	var payload openai.ImageResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, domain.NewServiceError("openai edit: decode response", err)
	}
	ctxLogger(ctx, g.logger).Debug().
		Str("mode", string(ModeEdit)).
		Str("model", g.model).
		Bool("mask", req.Mask != nil).
		Int("results", len(payload.Data)).
		Dur("elapsed", time.Since(start)).
		Msg("openai image call finished")
	return reconcile(payload.Data)
}

func (g *OpenAIGenerator) editBody(req GenerateRequest, size Size) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := addImagePart(w, "image", req.Base); err != nil {
		return nil, "", err
	}
	if req.Mask != nil {
		if err := addImagePart(w, "mask", req.Mask); err != nil {
			return nil, "", err
		}
	}
	fields := [][2]string{
		{"model", g.model},
		{"prompt", req.Prompt},
		{"n", "1"},
		{"size", string(size)},
	}
	if g.wantsURL() {
		fields = append(fields, [2]string{"response_format", openai.CreateImageResponseFormatURL})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// addImagePart writes src as a file part with its corrected content type.
func addImagePart(w *multipart.Writer, field string, src *SourceImage) error {
	name := strings.TrimSpace(src.Filename)
	if name == "" && src.Path != "" {
		name = filepath.Base(src.Path)
	}
	if name == "" {
		name = field + ".png"
	}
	mimeType := strings.TrimSpace(src.MIMEType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	header.Set("Content-Type", mimeType)
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if src.Path == "" {
		_, err = part.Write(src.Data)
		return err
	}
	f, err := os.Open(src.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}
	return nil
}

// wantsURL reports whether the model accepts response_format=url. The
// gpt-image models always answer with base64.
func (g *OpenAIGenerator) wantsURL() bool {
	return strings.HasPrefix(strings.ToLower(g.model), "dall-e")
}

// ctxLogger prefers the request-scoped logger so provider lines carry the
// request id.
func ctxLogger(ctx context.Context, fallback *infra.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}

func apiErrorMessage(raw []byte, status string) string {
	var errResp openai.ErrorResponse
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error != nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		if len(msg) > 256 {
			msg = msg[:256] + "..."
		}
		return msg
	}
	return status
}

// serviceError maps transport and API failures onto the ServiceError kind.
func serviceError(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewServiceError(op+": generation timed out", err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewServiceError(fmt.Sprintf("%s: status %d", op, apiErr.HTTPStatusCode), err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewServiceError(fmt.Sprintf("%s: status %d", op, reqErr.HTTPStatusCode), err)
	}
	return domain.NewServiceError(op, err)
}

var _ Generator = (*OpenAIGenerator)(nil)
