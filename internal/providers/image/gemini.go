package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"mockup/internal/domain"
	"mockup/internal/infra"
)

const defaultGeminiModel = "gemini-2.5-flash-image"

// contentGenerator is the slice of *genai.Models the generator depends on.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiOptions configures the Gemini image backend.
type GeminiOptions struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// GeminiGenerator produces mockups with Gemini's native image output. The
// base image and optional mask travel as inline parts next to the prompt.
type GeminiGenerator struct {
	models contentGenerator
	model  string
	logger *infra.Logger
}

// NewGeminiGenerator builds the genai client once for the whole process.
func NewGeminiGenerator(ctx context.Context, opts GeminiOptions) (*GeminiGenerator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return newGeminiGenerator(client.Models, opts.Model, opts.Logger), nil
}

func newGeminiGenerator(models contentGenerator, model string, logger *infra.Logger) *GeminiGenerator {
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultGeminiModel
	}
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &GeminiGenerator{models: models, model: model, logger: logger}
}

// Model returns the configured model identifier.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate fulfils the Generator interface.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (*Outcome, error) {
	if g == nil || g.models == nil {
		return nil, domain.NewServiceError("gemini generator not configured", nil)
	}
	if req.Mode == ModeEdit && req.Base == nil {
		return nil, domain.NewServiceError("gemini edit: base image is required", nil)
	}

	parts := []*genai.Part{{Text: req.Prompt}}
	if req.Mode == ModeEdit {
		for _, src := range []*SourceImage{req.Base, req.Mask} {
			if src == nil {
				continue
			}
			part, err := inlinePart(src)
			if err != nil {
				return nil, domain.NewServiceError("gemini: read source image", err)
			}
			parts = append(parts, part)
		}
	}
	contents := []*genai.Content{{Role: string(genai.RoleUser), Parts: parts}}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: "1:1"},
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, geminiError(ctx, err)
	}
	ctxLogger(ctx, g.logger).Debug().
		Str("mode", string(req.Mode)).
		Str("model", g.model).
		Int("parts", len(parts)).
		Dur("elapsed", time.Since(start)).
		Msg("gemini image call finished")

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, domain.NewEmptyResponse("generation service returned no images")
	}
	candidate := resp.Candidates[0]
	if candidate != nil && candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			out := inlineOutcome(part.InlineData.Data, part.InlineData.MIMEType)
			return fitOutcome(ctxLogger(ctx, g.logger), out, req.Size), nil
		}
	}
	return nil, domain.NewServiceError("generation service returned an image without url or data", nil)
}

// fitOutcome scales an inline result down to the requested square size.
// Gemini has no 512px option, so the size is enforced here. Bytes that do
// not decode are returned unchanged.
func fitOutcome(logger *zerolog.Logger, out *Outcome, size Size) *Outcome {
	edge := size.Edge()
	if edge == 0 {
		edge = DefaultSize.Edge()
	}
	img, err := imaging.Decode(bytes.NewReader(out.Data))
	if err != nil {
		logger.Debug().Err(err).Msg("gemini result not resized")
		return out
	}
	b := img.Bounds()
	if b.Dx() <= edge && b.Dy() <= edge {
		return out
	}
	format := imaging.PNG
	mimeType := "image/png"
	if out.MIMEType == "image/jpeg" {
		format, mimeType = imaging.JPEG, "image/jpeg"
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Fit(img, edge, edge, imaging.Lanczos), format); err != nil {
		logger.Warn().Err(err).Msg("gemini result resize failed")
		return out
	}
	return &Outcome{Kind: OutcomeInline, Data: buf.Bytes(), MIMEType: mimeType}
}

func inlinePart(src *SourceImage) (*genai.Part, error) {
	data := src.Data
	if src.Path != "" {
		b, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, err
		}
		data = b
	}
	mimeType := strings.TrimSpace(src.MIMEType)
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}, nil
}

func geminiError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewServiceError("gemini generate: generation timed out", err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewServiceError(fmt.Sprintf("gemini generate: status %d", apiErr.Code), err)
	}
	return domain.NewServiceError("gemini generate", err)
}

var _ Generator = (*GeminiGenerator)(nil)
