// Package mockup runs the mockup pipeline for a single request: validate the
// uploads, normalize and composite them, build the prompt, call the
// generation service and turn its answer into a MockupResult.
package mockup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"mockup/internal/domain"
	"mockup/internal/imageproc"
	"mockup/internal/infra"
	provider "mockup/internal/providers/image"
	"mockup/internal/storage"
)

const defaultTimeout = 120 * time.Second

// ResultStore persists inline generation results and returns the reference
// handed back to clients (a public URL or a local path).
type ResultStore interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
}

// Options wires the service's collaborators and policies.
type Options struct {
	Generator   provider.Generator
	Store       ResultStore
	Validation  domain.ValidationPolicy
	Composition domain.CompositionPolicy
	MaxSize     int
	Placement   imageproc.Placement
	Size        provider.Size
	TempDir     string
	Timeout     time.Duration
	Logger      *infra.Logger
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	generator   provider.Generator
	store       ResultStore
	validation  domain.ValidationPolicy
	composition domain.CompositionPolicy
	maxSize     int
	placement   imageproc.Placement
	size        provider.Size
	tempDir     string
	timeout     time.Duration
	logger      *infra.Logger
}

// NewService validates the options and applies defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("mockup: generator is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("mockup: result store is required")
	}
	validation := opts.Validation
	if validation == "" {
		validation = domain.RequireProduct
	}
	composition := opts.Composition
	if composition == "" {
		composition = domain.OverlayLocal
	}
	size := opts.Size
	if size == "" {
		size = provider.DefaultSize
	}
	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = imageproc.DefaultMaxSize
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	return &Service{
		generator:   opts.Generator,
		store:       opts.Store,
		validation:  validation,
		composition: composition,
		maxSize:     maxSize,
		placement:   opts.Placement,
		size:        size,
		tempDir:     opts.TempDir,
		timeout:     timeout,
		logger:      logger,
	}, nil
}

// Generate runs the pipeline. Every failure is a *domain.Error; temp files
// created for the request are gone by the time Generate returns.
func (s *Service) Generate(ctx context.Context, req domain.MockupRequest) (result *domain.MockupResult, err error) {
	logger := s.requestLogger(ctx)
	run := &pipeline{svc: s, req: req, logger: logger, stage: domain.StageValidating}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("stage", string(run.stage)).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("mockup pipeline panicked")
			result = nil
			err = &domain.Error{
				Kind:   domain.ErrService,
				Stage:  run.stage,
				Detail: "internal error while generating mockup",
			}
		}
		if err != nil {
			logger.Warn().Err(err).
				Str("stage", string(domain.StageFailed)).
				Str("failed_at", string(run.stage)).
				Dur("elapsed", time.Since(start)).
				Msg("mockup failed")
			return
		}
		logger.Info().
			Str("stage", string(domain.StageCompleted)).
			Str("variant", result.Variant).
			Dur("elapsed", time.Since(start)).
			Msg("mockup completed")
	}()

	return run.execute(ctx)
}

func (s *Service) requestLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

// pipeline carries the state of one request through the stages.
type pipeline struct {
	svc    *Service
	req    domain.MockupRequest
	logger *zerolog.Logger
	stage  domain.Stage
	scope  *storage.TempScope
}

func (p *pipeline) enter(stage domain.Stage) {
	p.stage = stage
	p.logger.Debug().Str("stage", string(stage)).Msg("mockup stage")
}

func (p *pipeline) execute(ctx context.Context) (*domain.MockupResult, error) {
	p.enter(domain.StageValidating)
	if err := p.req.Validate(p.svc.validation); err != nil {
		return nil, err
	}

	scope, err := storage.NewTempScope(p.svc.tempDir)
	if err != nil {
		return nil, domain.NewServiceError("could not allocate temp storage", err)
	}
	p.scope = scope
	defer func() {
		if err := scope.Release(); err != nil {
			p.logger.Error().Err(err).Str("dir", scope.Dir()).Msg("release temp scope")
		}
	}()

	p.enter(domain.StageNormalizing)
	product, logo, err := p.normalize()
	if err != nil {
		return nil, err
	}

	base, mask := product, (*imageproc.Image)(nil)
	if product != nil && logo != nil {
		p.enter(domain.StageCompositing)
		switch p.svc.composition {
		case domain.OverlayLocal:
			base = imageproc.Overlay(product, logo, p.svc.placement)
		case domain.SendAsMask:
			mask = imageproc.MaskCanvas(product, logo, p.svc.placement)
		}
	}
	if base == nil {
		base = logo
	}

	p.enter(domain.StagePromptBuilding)
	prompt := provider.BuildMockupPrompt(p.req.ProductName, p.req.VariantOrDefault(), logo != nil)

	p.enter(domain.StageGenerating)
	genReq := provider.GenerateRequest{Mode: provider.ModeGenerate, Prompt: prompt, Size: p.svc.size}
	if base != nil {
		genReq.Mode = provider.ModeEdit
		if genReq.Base, err = p.writeSource(base, "base"); err != nil {
			return nil, err
		}
		if mask != nil {
			if genReq.Mask, err = p.writeSource(mask, "mask"); err != nil {
				return nil, err
			}
		}
	}

	outcome, err := p.generate(ctx, genReq)
	if err != nil {
		return nil, err
	}
	imageURL, err := p.resolve(ctx, outcome)
	if err != nil {
		return nil, err
	}

	p.enter(domain.StageCompleted)
	return &domain.MockupResult{
		Variant:  p.req.VariantOrDefault(),
		Product:  strings.TrimSpace(p.req.ProductName),
		ImageURL: imageURL,
	}, nil
}

// normalize decodes the present uploads concurrently.
func (p *pipeline) normalize() (product, logo *imageproc.Image, err error) {
	var g errgroup.Group
	if p.req.Product != nil {
		g.Go(func() error {
			img, err := normalizeUpload("product", *p.req.Product, p.svc.maxSize)
			product = img
			return err
		})
	}
	if p.req.Logo != nil {
		g.Go(func() error {
			img, err := normalizeUpload("logo", *p.req.Logo, p.svc.maxSize)
			logo = img
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return product, logo, nil
}

func normalizeUpload(field string, up domain.Upload, maxSize int) (img *imageproc.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, domain.NewDecodeError(field+" image could not be decoded", fmt.Errorf("panic: %v", r))
		}
	}()
	img, err = imageproc.Normalize(up, maxSize)
	if err != nil {
		return nil, domain.NewDecodeError(field+" image could not be decoded", err)
	}
	return img, nil
}

// writeSource encodes img into the request's temp scope.
func (p *pipeline) writeSource(img *imageproc.Image, name string) (*provider.SourceImage, error) {
	enc, err := img.Encode()
	if err != nil {
		return nil, domain.NewServiceError("could not encode "+name+" image", err)
	}
	path, err := p.scope.WriteFile(enc.Data, enc.Ext)
	if err != nil {
		return nil, domain.NewServiceError("could not stage "+name+" image", err)
	}
	return &provider.SourceImage{
		Path:     path,
		MIMEType: enc.ContentType,
		Filename: name + enc.Ext,
		Width:    img.Width,
		Height:   img.Height,
	}, nil
}

func (p *pipeline) generate(ctx context.Context, req provider.GenerateRequest) (*provider.Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, p.svc.timeout)
	defer cancel()

	p.logger.Debug().
		Str("mode", string(req.Mode)).
		Bool("mask", req.Mask != nil).
		Str("size", string(req.Size)).
		Msg("calling generation service")
	outcome, err := p.svc.generator.Generate(ctx, req)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.NewServiceError("generation failed", err)
	}
	if outcome == nil {
		return nil, domain.NewEmptyResponse("generation service returned no images")
	}
	return outcome, nil
}

// resolve turns an outcome into the image_url returned to the client.
func (p *pipeline) resolve(ctx context.Context, outcome *provider.Outcome) (string, error) {
	switch outcome.Kind {
	case provider.OutcomeURL:
		if strings.TrimSpace(outcome.URL) == "" {
			return "", domain.NewServiceError("generation service returned an empty url", nil)
		}
		return outcome.URL, nil
	case provider.OutcomeInline:
		if len(outcome.Data) == 0 {
			return "", domain.NewServiceError("generation service returned empty image data", nil)
		}
		ref, err := p.svc.store.Save(ctx, outcome.Data, outcome.MIMEType)
		if err != nil {
			return "", domain.NewServiceError("could not store generated image", err)
		}
		return ref, nil
	default:
		return "", domain.NewServiceError(fmt.Sprintf("unknown generation outcome %q", outcome.Kind), nil)
	}
}
