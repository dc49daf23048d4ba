package image

import (
	"context"
	"fmt"
	"strings"
)

// Mode selects between editing an uploaded base image and generating from a
// prompt alone.
type Mode string

const (
	ModeEdit     Mode = "edit"
	ModeGenerate Mode = "generate"
)

// Size is the square output resolution requested from the service.
type Size string

const (
	Size512  Size = "512x512"
	Size1024 Size = "1024x1024"

	DefaultSize = Size1024
)

// ParseSize accepts "512", "512x512", "1024" or "1024x1024". Empty input
// yields DefaultSize.
func ParseSize(raw string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return DefaultSize, nil
	case "512", string(Size512):
		return Size512, nil
	case "1024", string(Size1024):
		return Size1024, nil
	default:
		return "", fmt.Errorf("image: unsupported output size %q", raw)
	}
}

// Edge returns the side length in pixels, or 0 for an unknown size.
func (s Size) Edge() int {
	switch s {
	case Size512:
		return 512
	case Size1024:
		return 1024
	default:
		return 0
	}
}

// SourceImage is an encoded image handed to a provider. Path points at the
// request's temp copy; Data is used when Path is empty.
type SourceImage struct {
	Path     string
	Data     []byte
	MIMEType string
	Filename string
	Width    int
	Height   int
}

// GenerateRequest is the provider-neutral input for one generation call.
type GenerateRequest struct {
	Mode   Mode
	Prompt string
	Base   *SourceImage
	Mask   *SourceImage
	Size   Size
}

// OutcomeKind tags which field of Outcome carries the result.
type OutcomeKind int

const (
	OutcomeURL OutcomeKind = iota + 1
	OutcomeInline
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeURL:
		return "url"
	case OutcomeInline:
		return "inline"
	default:
		return "unknown"
	}
}

// Outcome is a successful generation. URL is set for OutcomeURL; Data and
// MIMEType are set for OutcomeInline.
type Outcome struct {
	Kind     OutcomeKind
	URL      string
	Data     []byte
	MIMEType string
}

// Generator is the contract implemented by all image providers. Failures are
// *domain.Error values of kind ErrService or ErrEmptyResponse.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Outcome, error)
}
